package types

import "errors"

// Error taxonomy surfaced to callers. Every fallible engine operation
// returns one of these (wrapped with context) or succeeds with a result.
var (
	// ErrInvalidInput indicates malformed arguments (overlong query, bad score).
	ErrInvalidInput = errors.New("invalid input")
	// ErrPathNotFound indicates a deps/explain target that is not indexed.
	ErrPathNotFound = errors.New("path not found")
	// ErrIndexNotReady indicates the initial sweep has not completed.
	ErrIndexNotReady = errors.New("index not ready")
	// ErrEmbedderUnavailable disables the semantic sub-search for a call.
	ErrEmbedderUnavailable = errors.New("embedder unavailable")
	// ErrTimeout is returned together with whatever partial results exist.
	ErrTimeout = errors.New("timeout")
	// ErrInternal indicates an unexpected condition.
	ErrInternal = errors.New("internal error")
	// ErrNeedsFullReindex is raised by the store when the on-disk schema or
	// parser version lags the binary; the auto-indexer honors it by
	// reparsing every file on the next sweep.
	ErrNeedsFullReindex = errors.New("full reindex required")
	// ErrParserInternal indicates a grammar or query failure for one file;
	// the file is skipped, the sweep continues.
	ErrParserInternal = errors.New("parser internal error")
)
