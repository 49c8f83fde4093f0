//go:build sqlite_vec
// +build sqlite_vec

package store

// Compiled when building with CGO and the sqlite_vec tag. Enables the
// sqlite-vec extension so vector similarity runs inside SQLite via the
// chunks_vec vec0 virtual table.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_vec" ./...

import (
	sqlitevec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlitevec.Auto()
}

const (
	// DriverName is the SQLite driver to use.
	DriverName = "sqlite3"

	// VectorExtensionAvailable indicates the vec0 virtual table exists.
	VectorExtensionAvailable = true

	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)
