package engine

import (
	"context"
	"hash/fnv"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/semantiq/semantiq/internal/embedder"
	"github.com/semantiq/semantiq/internal/textsearch"
)

// fakeEmbedder produces bag-of-token unit vectors, so texts sharing tokens
// land close together. Deterministic and fast; stands in for the model.
type fakeEmbedder struct{}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, embedder.Dimension)
		for _, tok := range tokenize(text) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(tok))
			v[h.Sum32()%embedder.Dimension] += 1
		}
		out[i] = embedder.Normalize(v)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int  { return embedder.Dimension }
func (f *fakeEmbedder) Available() bool { return true }

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]bool)
	out := raw[:0]
	for _, tok := range raw {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

// fakeMatcher greps an in-memory file map instead of the filesystem.
type fakeMatcher struct {
	files map[string]string
	delay time.Duration
}

func (m *fakeMatcher) Search(ctx context.Context, root string, pattern *regexp.Regexp, limit int, accept func(string) bool) ([]textsearch.Match, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var matches []textsearch.Match
	for _, p := range paths {
		if accept != nil && !accept(p) {
			continue
		}
		for i, line := range strings.Split(m.files[p], "\n") {
			if loc := pattern.FindStringIndex(line); loc != nil {
				matches = append(matches, textsearch.Match{
					Path: p, Line: i + 1, Column: loc[0] + 1, LineText: line,
				})
				if len(matches) >= limit {
					return matches, nil
				}
			}
		}
	}
	return matches, nil
}
