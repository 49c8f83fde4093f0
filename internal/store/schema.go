package store

const (
	// SchemaVersion tracks the on-disk table layout. Bumping it wipes
	// content rows on the next open and forces a full reindex.
	SchemaVersion = 3

	// ParserVersion tracks extraction logic. Bumping it forces every file
	// to be reparsed on the next sweep.
	ParserVersion = 3

	// EmbeddingDim is the width of stored chunk embeddings.
	EmbeddingDim = 384

	// DefaultDBName is the database file created at the project root.
	DefaultDBName = ".semantiq.db"
)

const ddl = `
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    path           TEXT NOT NULL UNIQUE,
    content_hash   TEXT NOT NULL,
    size_bytes     INTEGER NOT NULL DEFAULT 0,
    modified_at    INTEGER NOT NULL DEFAULT 0,
    language       TEXT,
    indexed_at     INTEGER NOT NULL DEFAULT 0,
    parser_version INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);

CREATE TABLE IF NOT EXISTS symbols (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id     INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    kind        TEXT NOT NULL,
    line_start  INTEGER NOT NULL,
    line_end    INTEGER NOT NULL,
    signature   TEXT,
    doc_comment TEXT,
    UNIQUE(file_id, name, kind, line_start)
);

CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind);

CREATE TABLE IF NOT EXISTS chunks (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id       INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
    content       TEXT NOT NULL,
    line_start    INTEGER NOT NULL,
    line_end      INTEGER NOT NULL,
    context_label TEXT NOT NULL DEFAULT '',
    embedding     BLOB
);

CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_id);

CREATE TABLE IF NOT EXISTS dependencies (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
    target  TEXT NOT NULL,
    symbol  TEXT NOT NULL DEFAULT '',
    kind    TEXT NOT NULL,
    UNIQUE(file_id, target, symbol)
);

CREATE INDEX IF NOT EXISTS idx_deps_file ON dependencies(file_id);
CREATE INDEX IF NOT EXISTS idx_deps_target ON dependencies(target);

CREATE TABLE IF NOT EXISTS distance_observations (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    language   TEXT NOT NULL,
    distance   REAL NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_obs_language ON distance_observations(language);

CREATE TABLE IF NOT EXISTS threshold_calibration (
    language       TEXT PRIMARY KEY,
    max_distance   REAL NOT NULL,
    min_similarity REAL NOT NULL,
    sample_count   INTEGER NOT NULL,
    calibrated_at  INTEGER NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS symbols_fts USING fts5(
    name,
    signature,
    doc_comment,
    content='symbols',
    content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS symbols_ai AFTER INSERT ON symbols BEGIN
    INSERT INTO symbols_fts(rowid, name, signature, doc_comment)
    VALUES (new.id, new.name, new.signature, new.doc_comment);
END;

CREATE TRIGGER IF NOT EXISTS symbols_ad AFTER DELETE ON symbols BEGIN
    INSERT INTO symbols_fts(symbols_fts, rowid, name, signature, doc_comment)
    VALUES ('delete', old.id, old.name, old.signature, old.doc_comment);
END;

CREATE TRIGGER IF NOT EXISTS symbols_au AFTER UPDATE ON symbols BEGIN
    INSERT INTO symbols_fts(symbols_fts, rowid, name, signature, doc_comment)
    VALUES ('delete', old.id, old.name, old.signature, old.doc_comment);
    INSERT INTO symbols_fts(rowid, name, signature, doc_comment)
    VALUES (new.id, new.name, new.signature, new.doc_comment);
END;
`

// vecDDL is only executed when the sqlite-vec extension is loaded.
const vecDDL = `
CREATE VIRTUAL TABLE IF NOT EXISTS chunks_vec USING vec0(
    chunk_id  INTEGER PRIMARY KEY,
    embedding float[384]
);
`
