package engine

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/semantiq/semantiq/internal/store"
	"github.com/semantiq/semantiq/pkg/types"
)

// Deps returns the dependency graph around one file: its outgoing imports
// (resolved against the index where possible) and every file importing it.
func (e *Engine) Deps(ctx context.Context, filePath string) (*types.DependencyReport, error) {
	filePath = strings.TrimPrefix(path.Clean(strings.ReplaceAll(filePath, "\\", "/")), "./")
	if filePath == "" || filePath == "." {
		return nil, fmt.Errorf("%w: empty path", types.ErrInvalidInput)
	}

	file, err := e.store.GetFileByPath(ctx, filePath)
	if err == store.ErrNotFound {
		return nil, fmt.Errorf("%w: %s is not indexed", types.ErrPathNotFound, filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load file: %v", types.ErrInternal, err)
	}

	report := &types.DependencyReport{Path: filePath}

	deps, err := e.store.DependenciesByFile(ctx, file.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: load dependencies: %v", types.ErrInternal, err)
	}
	for _, dep := range deps {
		resolved := e.resolveTarget(ctx, filePath, file.Language, dep.Target)
		report.Imports = append(report.Imports, types.DependencyEdge{
			Path:     resolved,
			Target:   dep.Target,
			Symbol:   dep.Symbol,
			Kind:     dep.Kind,
			Resolved: resolved != "",
		})
	}

	dependents, err := e.store.GetDependents(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: load dependents: %v", types.ErrInternal, err)
	}
	seen := make(map[int64]bool)
	for _, dep := range dependents {
		if seen[dep.FileID] {
			continue
		}
		seen[dep.FileID] = true
		src, err := e.store.GetFileByID(ctx, dep.FileID)
		if err != nil {
			continue
		}
		report.ImportedBy = append(report.ImportedBy, types.DependencyEdge{
			Path:     src.Path,
			Target:   dep.Target,
			Symbol:   dep.Symbol,
			Kind:     dep.Kind,
			Resolved: true,
		})
	}

	return report, nil
}

// resolveTarget maps a raw import literal to an indexed file path, or ""
// when nothing matches. Relative paths and the @/ alias resolve first; then
// the literal's basename is matched against candidate extensions for the
// importing file's language.
func (e *Engine) resolveTarget(ctx context.Context, fromPath, lang, target string) string {
	exts := e.candidateExts(lang)

	if strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") {
		joined := path.Join(path.Dir(fromPath), target)
		if p := e.lookupWithExts(ctx, joined, exts); p != "" {
			return p
		}
		return e.lookupWithExts(ctx, joined+"/index", exts)
	}

	if rest, ok := strings.CutPrefix(target, "@/"); ok {
		if p := e.lookupWithExts(ctx, rest, exts); p != "" {
			return p
		}
		return e.lookupWithExts(ctx, "src/"+rest, exts)
	}

	// Module-style imports: match the final segment against basenames.
	stem := lastSegment(target)
	if stem == "" {
		return ""
	}
	files, err := e.store.FindFilesByStem(ctx, stem)
	if err != nil {
		return ""
	}
	for _, f := range files {
		for _, ext := range exts {
			if strings.HasSuffix(f.Path, stem+ext) {
				return f.Path
			}
		}
	}
	return ""
}

// lookupWithExts tries an exact path, then each candidate extension.
func (e *Engine) lookupWithExts(ctx context.Context, base string, exts []string) string {
	base = strings.TrimPrefix(path.Clean(base), "./")
	if f, err := e.store.GetFileByPath(ctx, base); err == nil {
		return f.Path
	}
	for _, ext := range exts {
		if f, err := e.store.GetFileByPath(ctx, base+ext); err == nil {
			return f.Path
		}
	}
	return ""
}

// candidateExts returns the extensions to try for a language, falling back
// to a generic set when the language is unknown.
func (e *Engine) candidateExts(lang string) []string {
	if spec := e.registry.ForName(lang); spec != nil && len(spec.ImportExts) > 0 {
		return spec.ImportExts
	}
	return []string{".ts", ".tsx", ".js", ".jsx", ".py", ".rs", ".go"}
}

// lastSegment extracts the final component of a module path, whatever the
// separator convention (/, ., ::).
func lastSegment(target string) string {
	seg := target
	for _, sep := range []string{"/", "::", "."} {
		if i := strings.LastIndex(seg, sep); i >= 0 {
			seg = seg[i+len(sep):]
		}
	}
	return strings.TrimSpace(seg)
}
