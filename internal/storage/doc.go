// Package storage persists dictionaries in one SQLite file per language pair.
//
// Each store holds a key/value metadata table and a full-text indexed
// entries table:
//
//	metadata(key TEXT PRIMARY KEY, value TEXT)
//	entries USING fts5(id UNINDEXED, left_word, left_gender, left_other,
//	                   right_word, right_gender, right_other, category,
//	                   tokenize="unicode61 remove_diacritics 0")
//
// The metadata rows are "languages", "timestamp" and "metadataVersion".
// The entries table is dropped and recreated on every import.
//
// # Opening stores
//
// Open creates a store and applies migrations; it is used by the importer.
// OpenExisting requires the file to exist and never writes schema; it is
// used for searching and listing:
//
//	store, err := storage.OpenExisting("/data/EN-DE.db")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // not imported yet
//	}
//
// The Registry maps store names to files in a data directory and caches
// read handles:
//
//	reg, _ := storage.NewRegistry(dataDir, 8, logger)
//	store, err := reg.Acquire("EN-DE")
//
// # Schema variants
//
// A store is read with one of two column layouts, picked once when it is
// opened: StandardSchema for imported dict.cc stores, RichSchema for
// prebuilt stores that carry a "heinzelnisse" table with grades.
//
// # Matching
//
// MatchEntries issues "SELECT * FROM <table> WHERE <table> MATCH ?" and
// returns an EntryRows iterator so callers can stop between rows:
//
//	rows, err := store.MatchEntries(ctx, storage.PrefixPattern("house"))
//	defer rows.Close()
//	for rows.Next() {
//	    result, err := rows.Result()
//	    ...
//	}
//
// # Build Modes
//
// The default build uses modernc.org/sqlite, which ships FTS5. Building
// with -tags "sqlite_cgo sqlite_fts5" switches to github.com/mattn/go-sqlite3;
// without sqlite_fts5 that driver cannot create the entries table.
// BuildMode and DriverName report the active choice.
package storage
