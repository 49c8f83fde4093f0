package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/semantiq/semantiq/pkg/types"
)

// ErrNotFound is returned when a requested row doesn't exist.
var ErrNotFound = errors.New("not found")

// Store owns the single on-disk index database and every persistent row.
// All access, reads included, goes through one connection, so queries and
// writes are serialized; reads do not run in parallel with each other.
type Store struct {
	db *sql.DB
}

// Open creates or opens the index database at dbPath and ensures the schema
// exists. The file is created with mode 0600 on Unix.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := ensureFileMode(dbPath); err != nil {
			return nil, fmt.Errorf("create database file: %w", err)
		}
	}

	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer; SQLite contends on write locks otherwise.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA mmap_size=268435456",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if VectorExtensionAvailable {
		if _, err := db.Exec(vecDDL); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create vector table: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// ensureFileMode creates the database file with owner-only permissions
// before the driver touches it.
func ensureFileMode(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}
	return f.Close()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Meta keys.
const (
	metaSchemaVersion = "schema_version"
	metaParserVersion = "parser_version"
)

// InitOrMigrate compares the stored schema and parser versions against the
// binary's constants inside a single transaction. On mismatch it wipes all
// content rows (files cascade to symbols, chunks and dependencies; the meta
// table survives) and returns types.ErrNeedsFullReindex so the auto-indexer
// reparses everything on the next sweep.
func (s *Store) InitOrMigrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin migration: %v", types.ErrInternal, err)
	}
	defer func() { _ = tx.Rollback() }()

	storedSchema, err := metaInt(ctx, tx, metaSchemaVersion)
	if err != nil {
		return err
	}
	storedParser, err := metaInt(ctx, tx, metaParserVersion)
	if err != nil {
		return err
	}

	fresh := storedSchema == 0 && storedParser == 0
	mismatch := !fresh && (storedSchema != SchemaVersion || storedParser != ParserVersion)

	if mismatch {
		wipe := []string{
			"DELETE FROM dependencies",
			"DELETE FROM chunks",
			"DELETE FROM symbols",
			"DELETE FROM files",
		}
		if VectorExtensionAvailable {
			wipe = append([]string{"DELETE FROM chunks_vec"}, wipe...)
		}
		for _, stmt := range wipe {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%w: wipe content rows: %v", types.ErrInternal, err)
			}
		}
	}

	for key, value := range map[string]int{
		metaSchemaVersion: SchemaVersion,
		metaParserVersion: ParserVersion,
	} {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, strconv.Itoa(value)); err != nil {
			return fmt.Errorf("%w: write meta: %v", types.ErrInternal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit migration: %v", types.ErrInternal, err)
	}

	if mismatch {
		return fmt.Errorf("%w: stored schema=%d parser=%d, binary schema=%d parser=%d",
			types.ErrNeedsFullReindex, storedSchema, storedParser, SchemaVersion, ParserVersion)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func metaInt(ctx context.Context, q querier, key string) (int, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read meta %s: %v", types.ErrInternal, key, err)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: meta %s holds %q", types.ErrInternal, key, value)
	}
	return n, nil
}

// GetMeta returns a metadata value, or "" if unset.
func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetMeta writes a metadata key-value pair.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// escapeLike escapes LIKE wildcards so user-supplied fragments can never
// widen a pattern. Use with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
