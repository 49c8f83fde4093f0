package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/semantiq/semantiq/internal/store"
	"github.com/semantiq/semantiq/pkg/types"
)

// FindRefs returns every reference to a symbol: definitions from the symbol
// table whose name equals the symbol or one of its case variants, plus
// word-boundary text matches of those names as usages, deduplicated by
// (file, line).
func (e *Engine) FindRefs(ctx context.Context, symbol string, limit int) ([]types.SearchResult, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", types.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > refsLimitCap {
		limit = refsLimitCap
	}

	results := make([]types.SearchResult, 0, limit)
	seen := make(map[string]bool)

	// Definitions match the symbol under any naming convention, so a
	// snake_case query still finds the camelCase definition.
	names := append([]string{symbol}, expandQuery(symbol)...)
	var rows []store.SymbolRow
	for _, name := range names {
		found, err := e.store.FindSymbolsByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: find definitions: %v", types.ErrInternal, err)
		}
		rows = append(rows, found...)
	}
	for _, row := range rows {
		f, err := e.store.GetFileByID(ctx, row.FileID)
		if err != nil {
			continue
		}
		key := fmt.Sprintf("%s:%d", f.Path, row.StartLine)
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, types.SearchResult{
			Path:      f.Path,
			Score:     1.0,
			Role:      types.RoleDefinition,
			Symbols:   []string{row.Name},
			StartLine: row.StartLine,
			EndLine:   row.EndLine,
			Snippet:   row.Signature,
		})
	}

	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	pattern, err := regexp.Compile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("%w: compile reference pattern: %v", types.ErrInternal, err)
	}

	srcCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()
	matches, err := e.matcher.Search(srcCtx, e.root, pattern, sourceCap, func(p string) bool {
		return e.registry.Known(p)
	})
	if err != nil && len(matches) == 0 {
		// Usages are best-effort; definitions alone are still a valid answer.
		matches = nil
	}

	for _, m := range matches {
		if len(results) >= limit {
			break
		}
		key := fmt.Sprintf("%s:%d", m.Path, m.Line)
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, types.SearchResult{
			Path:      m.Path,
			Score:     0.8,
			Role:      types.RoleUsage,
			StartLine: m.Line,
			EndLine:   m.Line,
			Snippet:   strings.TrimSpace(m.LineText),
		})
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
