package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/semantiq/semantiq/pkg/types"
)

// File is a tracked source file row.
type File struct {
	ID            int64
	Path          string // project-relative, slash-separated
	ContentHash   string // hex sha-256
	SizeBytes     int64
	ModifiedAt    int64 // unix seconds
	Language      string
	IndexedAt     int64 // unix seconds
	ParserVersion int
}

const fileColumns = "id, path, content_hash, size_bytes, modified_at, language, indexed_at, parser_version"

func scanFile(row interface{ Scan(...any) error }) (*File, error) {
	var f File
	var lang sql.NullString
	err := row.Scan(&f.ID, &f.Path, &f.ContentHash, &f.SizeBytes, &f.ModifiedAt, &lang, &f.IndexedAt, &f.ParserVersion)
	if err != nil {
		return nil, err
	}
	f.Language = lang.String
	return &f, nil
}

// GetFileByPath returns the file row for a project-relative path.
func (s *Store) GetFileByPath(ctx context.Context, path string) (*File, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+fileColumns+" FROM files WHERE path = ?", path)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return f, err
}

// GetFileByID returns the file row with the given id.
func (s *Store) GetFileByID(ctx context.Context, id int64) (*File, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+fileColumns+" FROM files WHERE id = ?", id)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return f, err
}

// ListFiles returns every tracked file ordered by path.
func (s *Store) ListFiles(ctx context.Context) ([]*File, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+fileColumns+" FROM files ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// FindFilesByStem returns files whose basename (without extension) equals
// stem. The LIKE operand is escaped, so stems containing wildcards match
// literally.
func (s *Store) FindFilesByStem(ctx context.Context, stem string) ([]*File, error) {
	escaped := escapeLike(stem)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+fileColumns+` FROM files
		WHERE path LIKE ? ESCAPE '\' OR path LIKE ? ESCAPE '\'
		ORDER BY path`,
		"%/"+escaped+".%", escaped+".%")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteFile removes a file row and, through cascades and the FTS triggers,
// all of its symbols, chunks, dependencies and vector entries.
func (s *Store) DeleteFile(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteFileRows(ctx, tx, path); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteFileRows(ctx context.Context, tx *sql.Tx, path string) error {
	if VectorExtensionAvailable {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM chunks_vec WHERE chunk_id IN (SELECT c.id FROM chunks c JOIN files f ON c.file_id = f.id WHERE f.path = ?)", path)
		if err != nil {
			return fmt.Errorf("delete vector rows: %w", err)
		}
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// ReplaceFile upserts a file row and replaces all of its symbols, chunks and
// dependencies in a single transaction. embeddings may be nil (chunks stored
// without vectors) or must have one entry per chunk, where individual nil
// entries mean "not yet embedded". Readers never observe a partially
// reindexed file.
func (s *Store) ReplaceFile(ctx context.Context, f *File, symbols []types.Symbol, chunks []types.Chunk, embeddings [][]float32, deps []types.Dependency) (int64, error) {
	if embeddings != nil && len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("%w: %d embeddings for %d chunks", types.ErrInvalidInput, len(embeddings), len(chunks))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()

	// Clear any previous rows for the path, then insert fresh. The cascade
	// plus explicit vector cleanup keeps every ancillary table consistent.
	if err := deleteFileRows(ctx, tx, f.Path); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO files (path, content_hash, size_bytes, modified_at, language, indexed_at, parser_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.Path, f.ContentHash, f.SizeBytes, f.ModifiedAt, nullable(f.Language), now, ParserVersion)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	f.ID = fileID
	f.IndexedAt = now
	f.ParserVersion = ParserVersion

	for i := range symbols {
		sym := &symbols[i]
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO symbols (file_id, name, kind, line_start, line_end, signature, doc_comment)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			fileID, sym.Name, string(sym.Kind), sym.StartLine, sym.EndLine, sym.Signature, sym.DocComment)
		if err != nil {
			return 0, fmt.Errorf("insert symbol %s: %w", sym.Name, err)
		}
	}

	for i := range chunks {
		chunk := &chunks[i]
		var blob []byte
		if embeddings != nil && embeddings[i] != nil {
			blob = serializeVector(embeddings[i])
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (file_id, content, line_start, line_end, context_label, embedding)
			VALUES (?, ?, ?, ?, ?, ?)`,
			fileID, chunk.Content, chunk.StartLine, chunk.EndLine, chunk.ContextLabel, blob)
		if err != nil {
			return 0, fmt.Errorf("insert chunk: %w", err)
		}
		if blob != nil && VectorExtensionAvailable {
			chunkID, err := res.LastInsertId()
			if err != nil {
				return 0, err
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO chunks_vec (chunk_id, embedding) VALUES (?, ?)", chunkID, blob); err != nil {
				return 0, fmt.Errorf("insert vector: %w", err)
			}
		}
	}

	for i := range deps {
		dep := &deps[i]
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO dependencies (file_id, target, symbol, kind)
			VALUES (?, ?, ?, ?)`,
			fileID, dep.Target, dep.Symbol, string(dep.Kind))
		if err != nil {
			return 0, fmt.Errorf("insert dependency %s: %w", dep.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit file replace: %w", err)
	}
	return fileID, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
