// Package indexer keeps the persistent index synchronized with the project
// tree.
//
// The initial sweep walks the tree under the shared exclusions predicate
// (symlinks are never followed), hashing each eligible file and skipping
// those whose stored hash and parser version already match — so re-running
// a sweep over an unchanged tree writes nothing. Changed files are parsed,
// their chunks embedded in batches of 32, and all rows replaced in a single
// transaction. Eight workers run concurrently, each with its own parser;
// progress is logged every hundred files. Paths that disappeared or became
// ineligible are deleted afterwards.
//
// The watch phase subscribes to filesystem events with a two second
// per-path debounce: creates and modifies reindex exactly like the sweep,
// removes delete the file row. Cancellation is honored at file boundaries,
// letting the current transaction finish.
package indexer
