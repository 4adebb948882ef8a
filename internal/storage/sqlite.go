package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/dshills/dictcc-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested store or row doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned for store names that are not plain file names
	ErrInvalidName = errors.New("invalid store name")
)

// StoreExt is the file extension of store files
const StoreExt = ".db"

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db     *sql.DB
	path   string
	schema *Schema
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string, writable bool) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if writable {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	return db, nil
}

// Open opens or creates the store at dbPath for importing.
func Open(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx := context.Background()
	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return newWithDB(ctx, db, dbPath)
}

// OpenExisting opens a store for searching. The file must already exist;
// no migrations are applied.
func OpenExisting(dbPath string) (*SQLiteStorage, error) {
	info, err := os.Stat(dbPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("store %s: %w", dbPath, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat store: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("store %s is a directory: %w", dbPath, ErrInvalidName)
	}

	db, err := openDatabase(dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newWithDB(context.Background(), db, dbPath)
}

// newWithDB wraps db and picks the schema variant once
func newWithDB(ctx context.Context, db *sql.DB, dbPath string) (*SQLiteStorage, error) {
	schema, err := detectSchema(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStorage{db: db, path: dbPath, schema: schema}, nil
}

func detectSchema(ctx context.Context, q querier) (*Schema, error) {
	rich, err := tableExists(ctx, q, RichTable)
	if err != nil {
		return nil, fmt.Errorf("failed to detect schema: %w", err)
	}
	if rich {
		return RichSchema, nil
	}
	return StandardSchema, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the store file path
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Schema returns the column layout chosen when the store was opened
func (s *SQLiteStorage) Schema() *Schema {
	return s.schema
}

// BeginTx starts a new bulk load transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

func tableExists(ctx context.Context, q querier, name string) (bool, error) {
	var found string
	err := q.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Metadata operations

func (s *SQLiteStorage) dictionaryMetadataWithQuerier(ctx context.Context, q querier) (*types.DictionaryMetadata, error) {
	exists, err := tableExists(ctx, q, "metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to check metadata table: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := q.QueryContext(ctx, "SELECT key, value FROM metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	meta := &types.DictionaryMetadata{}
	found := 0
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		found++
		switch key {
		case KeyLanguages:
			meta.LanguagePair = value.String
		case KeyTimestamp:
			meta.Timestamp = value.String
		case KeyMetadataVersion:
			// an unparsable version reads as 0, which forces a re-import
			meta.SchemaVersion, _ = strconv.Atoi(value.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if found == 0 {
		return nil, ErrNotFound
	}
	return meta, nil
}

// DictionaryMetadata returns the stored metadata or ErrNotFound when the
// store has never been imported into.
func (s *SQLiteStorage) DictionaryMetadata(ctx context.Context) (*types.DictionaryMetadata, error) {
	return s.dictionaryMetadataWithQuerier(ctx, s.querier())
}

func (s *SQLiteStorage) upsertDictionaryMetadataWithQuerier(ctx context.Context, q querier, meta types.DictionaryMetadata) error {
	query, args, err := sq.Insert("metadata").
		Options("OR REPLACE").
		Columns("key", "value").
		Values(KeyLanguages, meta.LanguagePair).
		Values(KeyTimestamp, meta.Timestamp).
		Values(KeyMetadataVersion, strconv.Itoa(meta.SchemaVersion)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build metadata upsert: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert metadata: %w", err)
	}
	return nil
}

// UpsertDictionaryMetadata writes the languages, timestamp and
// metadataVersion rows.
func (s *SQLiteStorage) UpsertDictionaryMetadata(ctx context.Context, meta types.DictionaryMetadata) error {
	return s.upsertDictionaryMetadataWithQuerier(ctx, s.querier(), meta)
}

// DeleteMetadataKey removes one metadata row
func (s *SQLiteStorage) DeleteMetadataKey(ctx context.Context, key string) error {
	query, args, err := sq.Delete("metadata").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build metadata delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete metadata %s: %w", key, err)
	}
	return nil
}

// Entry operations

// RecreateEntries drops the entries table if present and creates an
// empty one.
func (s *SQLiteStorage) RecreateEntries(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+EntriesTable); err != nil {
		return fmt.Errorf("failed to drop entries: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createEntriesSQL); err != nil {
		if strings.Contains(err.Error(), "no such module: fts5") {
			return fmt.Errorf("failed to create entries (%s build without FTS5, add -tags sqlite_fts5): %w", BuildMode, err)
		}
		return fmt.Errorf("failed to create entries: %w", err)
	}
	s.schema = StandardSchema
	return nil
}

// Reset rolls back every migration and applies them again. The entries
// and metadata are gone afterwards, so the next import loads the store
// from scratch whatever its dump timestamp.
func (s *SQLiteStorage) Reset(ctx context.Context) error {
	for {
		exists, err := tableExists(ctx, s.db, "schema_version")
		if err != nil {
			return fmt.Errorf("failed to check schema_version table: %w", err)
		}
		if !exists {
			break
		}
		if err := RollbackMigration(ctx, s.db); err != nil {
			return err
		}
	}
	if err := ApplyMigrations(ctx, s.db); err != nil {
		return err
	}

	schema, err := detectSchema(ctx, s.db)
	if err != nil {
		return err
	}
	s.schema = schema
	return nil
}

// CountEntries returns the number of rows in the entry table
func (s *SQLiteStorage) CountEntries(ctx context.Context) (int, error) {
	exists, err := tableExists(ctx, s.db, s.schema.Table)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	query, args, err := sq.Select("COUNT(*)").From(s.schema.Table).ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// PrefixPattern builds a match expression for entries containing every
// term of query, the last one as a prefix. Terms are quoted so
// punctuation in user input is never parsed as query syntax.
func PrefixPattern(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return query + "*"
	}
	for i, term := range terms {
		terms[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ") + "*"
}

// MatchEntries runs a full-text match against the entry table. Rows come
// back in the index's natural order and must be closed by the caller.
func (s *SQLiteStorage) MatchEntries(ctx context.Context, pattern string) (*EntryRows, error) {
	table := s.schema.Table
	query, args, err := sq.Select("*").
		From(table).
		Where(sq.Expr(table+" MATCH ?", pattern)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build match query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("match %q: %w", pattern, err)
	}

	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	if len(cols) != len(s.schema.Columns) {
		_ = rows.Close()
		return nil, fmt.Errorf("table %s has %d columns, %s schema expects %d",
			table, len(cols), s.schema.Kind, len(s.schema.Columns))
	}

	return newEntryRows(rows, s.schema), nil
}

// Status operations

// Status reports metadata, entry count and file size of the store
func (s *SQLiteStorage) Status(ctx context.Context) (*StoreStatus, error) {
	status := &StoreStatus{
		Name:   strings.TrimSuffix(filepath.Base(s.path), StoreExt),
		Path:   s.path,
		Schema: s.schema.Kind,
	}

	meta, err := s.DictionaryMetadata(ctx)
	switch {
	case err == nil:
		status.LanguagePair = meta.LanguagePair
		status.Timestamp = meta.Timestamp
		status.MetadataVersion = meta.SchemaVersion
	case errors.Is(err, ErrNotFound):
	default:
		return nil, err
	}

	count, err := s.CountEntries(ctx)
	if err != nil {
		return nil, err
	}
	status.EntryCount = count

	var pageCount, pageSize int
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.SizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	return status, nil
}

// sqliteTx wraps a SQL transaction with a lazily prepared insert
type sqliteTx struct {
	tx     *sql.Tx
	insert *sql.Stmt
}

const insertEntrySQL = `INSERT INTO entries
	(id, left_word, left_gender, left_other, right_word, right_gender, right_other, category)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (t *sqliteTx) InsertEntry(ctx context.Context, entry *types.Entry) error {
	if t.insert == nil {
		stmt, err := t.tx.PrepareContext(ctx, insertEntrySQL)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		t.insert = stmt
	}

	_, err := t.insert.ExecContext(ctx,
		entry.ID,
		entry.Left.Word, entry.Left.Gender, entry.Left.Qualifier,
		entry.Right.Word, entry.Right.Gender, entry.Right.Qualifier,
		entry.Category)
	if err != nil {
		return fmt.Errorf("failed to insert entry %d: %w", entry.ID, err)
	}
	return nil
}

func (t *sqliteTx) Commit() error {
	t.closeStmt()
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	t.closeStmt()
	return t.tx.Rollback()
}

func (t *sqliteTx) closeStmt() {
	if t.insert != nil {
		_ = t.insert.Close()
		t.insert = nil
	}
}
