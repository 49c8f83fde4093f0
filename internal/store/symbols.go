package store

import (
	"context"
	"strings"

	"github.com/semantiq/semantiq/pkg/types"
)

// SymbolRow is a persisted symbol together with its row and file ids.
type SymbolRow struct {
	ID     int64
	FileID int64
	types.Symbol
}

const symbolColumns = "id, file_id, name, kind, line_start, line_end, signature, doc_comment"

func (s *Store) scanSymbols(ctx context.Context, query string, args ...any) ([]SymbolRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]SymbolRow, 0)
	for rows.Next() {
		var r SymbolRow
		var kind, sig, doc string
		if err := rows.Scan(&r.ID, &r.FileID, &r.Name, &kind, &r.StartLine, &r.EndLine, &sig, &doc); err != nil {
			return nil, err
		}
		r.Kind = types.SymbolKind(kind)
		r.Signature = sig
		r.DocComment = doc
		out = append(out, r)
	}
	return out, rows.Err()
}

// SearchSymbols runs a tokenized full-text search over symbol names,
// signatures and doc comments, ranked by BM25 relevance.
func (s *Store) SearchSymbols(ctx context.Context, query string, limit int) ([]SymbolRow, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	return s.scanSymbols(ctx, `
		SELECT s.id, s.file_id, s.name, s.kind, s.line_start, s.line_end,
		       COALESCE(s.signature, ''), COALESCE(s.doc_comment, '')
		FROM symbols s
		JOIN symbols_fts fts ON s.id = fts.rowid
		WHERE symbols_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, match, limit)
}

// FindSymbolsByName returns every symbol whose name matches exactly.
func (s *Store) FindSymbolsByName(ctx context.Context, name string) ([]SymbolRow, error) {
	return s.scanSymbols(ctx, `
		SELECT s.id, s.file_id, s.name, s.kind, s.line_start, s.line_end,
		       COALESCE(s.signature, ''), COALESCE(s.doc_comment, '')
		FROM symbols s
		WHERE s.name = ?
		ORDER BY s.file_id, s.line_start`, name)
}

// SymbolsByFile returns every symbol in a file ordered by position.
func (s *Store) SymbolsByFile(ctx context.Context, fileID int64) ([]SymbolRow, error) {
	return s.scanSymbols(ctx, `
		SELECT s.id, s.file_id, s.name, s.kind, s.line_start, s.line_end,
		       COALESCE(s.signature, ''), COALESCE(s.doc_comment, '')
		FROM symbols s
		WHERE s.file_id = ?
		ORDER BY s.line_start`, fileID)
}

// ftsQuery converts raw user text into a safe FTS5 MATCH expression: each
// whitespace token becomes a quoted prefix term, OR-combined. Quoting
// neutralizes every FTS operator, so adversarial input cannot change the
// query shape.
func ftsQuery(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		escaped := strings.ReplaceAll(f, `"`, `""`)
		terms = append(terms, `"`+escaped+`"*`)
	}
	return strings.Join(terms, " OR ")
}
