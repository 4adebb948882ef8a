//go:build sqlite_cgo && !purego

package storage

// Compiled with the sqlite_cgo tag. Uses the C SQLite amalgamation; FTS5
// is only compiled in with the driver's sqlite_fts5 tag.
//
//   CGO_ENABLED=1 go build -tags "sqlite_cgo sqlite_fts5" ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
