package storage

import (
	"context"

	"github.com/dshills/dictcc-mcp/pkg/types"
)

// Metadata keys persisted in the metadata table
const (
	KeyLanguages       = "languages"
	KeyTimestamp       = "timestamp"
	KeyMetadataVersion = "metadataVersion"
)

// Storage defines the interface for a single language pair store
type Storage interface {
	// Metadata operations
	DictionaryMetadata(ctx context.Context) (*types.DictionaryMetadata, error)
	UpsertDictionaryMetadata(ctx context.Context, meta types.DictionaryMetadata) error
	DeleteMetadataKey(ctx context.Context, key string) error

	// Entry operations
	RecreateEntries(ctx context.Context) error
	CountEntries(ctx context.Context) (int, error)
	MatchEntries(ctx context.Context, pattern string) (*EntryRows, error)

	// Status operations
	Status(ctx context.Context) (*StoreStatus, error)
	Schema() *Schema
	Path() string

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a bulk load transaction on the entries table
type Tx interface {
	InsertEntry(ctx context.Context, entry *types.Entry) error
	Commit() error
	Rollback() error
}

// StoreStatus summarises a store for listings
type StoreStatus struct {
	Name            string // file name without extension
	Path            string
	LanguagePair    string
	Timestamp       string
	MetadataVersion int
	Schema          SchemaKind
	EntryCount      int
	SizeMB          float64
}
