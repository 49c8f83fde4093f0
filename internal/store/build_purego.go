//go:build !sqlite_vec
// +build !sqlite_vec

package store

// Compiled without the sqlite_vec tag. Uses the pure Go SQLite driver, so
// this package needs no C compiler; the tree-sitter parser elsewhere in the
// module still does. Vector similarity falls back to Go-computed cosine
// distance over the embedding column.
//
// Build command:
//   CGO_ENABLED=1 go build ./...

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use.
	DriverName = "sqlite"

	// VectorExtensionAvailable indicates the vec0 virtual table exists.
	VectorExtensionAvailable = false

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
