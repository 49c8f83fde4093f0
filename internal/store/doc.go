// Package store owns the persistent index: a single SQLite database holding
// files, symbols, chunks, dependency edges, distance observations and
// threshold calibrations, plus an FTS5 index over symbols and a dense
// vector table over chunk embeddings.
//
// # Build modes
//
// Two driver configurations exist behind build tags:
//
//   - default (pure Go): modernc.org/sqlite, vector similarity computed in
//     Go over the chunks.embedding column;
//   - -tags sqlite_vec (CGO): mattn/go-sqlite3 with the sqlite-vec
//     extension, KNN served by the chunks_vec vec0 virtual table.
//
// # Consistency
//
// Every multi-row mutation affecting one file happens inside a single
// transaction (ReplaceFile, DeleteFile), so readers observe either the
// pre-state or the post-state of a file, never a mix. Deleting a file
// cascades to its symbols, chunks and dependencies; FTS triggers and
// explicit vec-table deletes keep the derived indexes in step.
//
// # Versioning
//
// The meta table records schema_version and parser_version. InitOrMigrate
// compares them with the binary's constants in one transaction; any
// mismatch wipes content rows and surfaces types.ErrNeedsFullReindex, which
// the auto-indexer answers with a full sweep.
package store
