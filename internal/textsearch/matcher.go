// Package textsearch provides the streaming grep-style matcher the
// retrieval engine uses for lexical search and reference lookups. The
// walker honors the shared exclusions predicate and never follows symlinks,
// so text search sees exactly the files the indexer sees.
package textsearch

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/semantiq/semantiq/internal/exclusions"
)

// Match is one matching line in one file.
type Match struct {
	Path     string // project-relative, slash-separated
	Line     int    // 1-based
	Column   int    // 1-based byte offset of the match in the line
	LineText string
}

// Matcher streams regex matches over a project tree. Implementations must
// honor the exclusions predicate and stop promptly on context cancellation.
type Matcher interface {
	Search(ctx context.Context, root string, pattern *regexp.Regexp, limit int, accept func(path string) bool) ([]Match, error)
}

// FSMatcher is the default Matcher: a bounded walk over the real
// filesystem, reading eligible files line by line.
type FSMatcher struct{}

// New creates the default filesystem matcher.
func New() *FSMatcher { return &FSMatcher{} }

// Search walks root and returns up to limit matches of pattern. accept may
// be nil; when set, files it rejects are skipped before reading.
func (m *FSMatcher) Search(ctx context.Context, root string, pattern *regexp.Regexp, limit int, accept func(path string) bool) ([]Match, error) {
	matches := make([]Match, 0, 32)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, the walk continues
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if len(matches) >= limit {
			return filepath.SkipAll
		}

		if d.IsDir() {
			if p != root && exclusions.ExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if exclusions.ExcludedPath(rel) {
			return nil
		}
		if info, err := d.Info(); err != nil || exclusions.TooLarge(info.Size()) {
			return nil
		}
		if accept != nil && !accept(rel) {
			return nil
		}

		fileMatches, err := scanFile(ctx, p, rel, pattern, limit-len(matches))
		if err != nil {
			return err
		}
		matches = append(matches, fileMatches...)
		return nil
	})

	if err != nil && err != filepath.SkipAll {
		return matches, err
	}
	return matches, nil
}

// scanFile reads one file line by line, collecting up to limit matches.
func scanFile(ctx context.Context, fullPath, relPath string, pattern *regexp.Regexp, limit int) ([]Match, error) {
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, nil
	}
	defer func() { _ = f.Close() }()

	var matches []Match
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), exclusions.MaxFileSize)

	line := 0
	for scanner.Scan() {
		line++
		if line%256 == 0 && ctx.Err() != nil {
			return matches, ctx.Err()
		}
		text := scanner.Text()
		loc := pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		matches = append(matches, Match{
			Path:     relPath,
			Line:     line,
			Column:   loc[0] + 1,
			LineText: strings.TrimRight(text, "\r"),
		})
		if len(matches) >= limit {
			break
		}
	}
	// Scanner errors (binary files with overlong lines) just end the file.
	return matches, nil
}
