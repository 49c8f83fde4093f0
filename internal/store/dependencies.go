package store

import (
	"context"
	"path"
	"strings"

	"github.com/semantiq/semantiq/pkg/types"
)

// DependencyRow is a persisted dependency edge with its row and file ids.
type DependencyRow struct {
	ID     int64
	FileID int64
	types.Dependency
}

// DependenciesByFile returns every outgoing edge of a file.
func (s *Store) DependenciesByFile(ctx context.Context, fileID int64) ([]DependencyRow, error) {
	return s.scanDependencies(ctx, `
		SELECT id, file_id, target, symbol, kind
		FROM dependencies WHERE file_id = ?
		ORDER BY target`, fileID)
}

// dependentExts are the extensions a stored import literal may append to a
// basename; used to confirm candidate reverse edges.
var dependentExts = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".py", ".rs", ".go", ".rb", ".php"}

// GetDependents returns incoming edges: dependency rows whose target
// literal plausibly refers to targetPath. Candidates come from a single OR
// of escaped LIKE patterns on the path's basename, then a Go-side
// post-filter discards false positives. LIKE operands are always escaped,
// so path fragments cannot inject wildcards.
func (s *Store) GetDependents(ctx context.Context, targetPath string) ([]DependencyRow, error) {
	base := path.Base(strings.ReplaceAll(targetPath, "\\", "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		return nil, nil
	}

	escStem := escapeLike(stem)
	escBase := escapeLike(base)
	patterns := []string{
		"%" + escStem,
		"%" + escBase,
		"%/" + escStem,
		"%/" + escBase,
		"%" + escStem + ".%",
	}

	conditions := make([]string, len(patterns))
	args := make([]any, len(patterns))
	for i, p := range patterns {
		conditions[i] = `target LIKE ? ESCAPE '\'`
		args[i] = p
	}

	rows, err := s.scanDependencies(ctx, `
		SELECT id, file_id, target, symbol, kind
		FROM dependencies WHERE `+strings.Join(conditions, " OR "), args...)
	if err != nil {
		return nil, err
	}

	out := rows[:0]
	seen := make(map[int64]bool)
	for _, r := range rows {
		if seen[r.ID] || !dependentMatches(r.Target, stem, base) {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out, nil
}

// dependentMatches validates a candidate reverse edge against the target's
// basename to cut LIKE false positives.
func dependentMatches(target, stem, base string) bool {
	if strings.HasSuffix(target, stem) || strings.HasSuffix(target, base) {
		return true
	}
	for _, ext := range dependentExts {
		if strings.HasSuffix(target, stem+ext) {
			return true
		}
	}
	return false
}

func (s *Store) scanDependencies(ctx context.Context, query string, args ...any) ([]DependencyRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]DependencyRow, 0)
	for rows.Next() {
		var r DependencyRow
		var kind string
		if err := rows.Scan(&r.ID, &r.FileID, &r.Target, &r.Symbol, &kind); err != nil {
			return nil, err
		}
		r.Kind = types.DependencyKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}
