package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dshills/dictcc-mcp/internal/parser"
	"github.com/dshills/dictcc-mcp/internal/storage"
	"github.com/dshills/dictcc-mcp/pkg/types"
)

// writeDictionary replaces the entries of the language pair's store with
// lines, unless the store already holds this dump.
func (imp *Importer) writeDictionary(ctx context.Context, lines []string, meta types.DictionaryMetadata, res *FileResult, obs Observer, log *slog.Logger) {
	store, err := imp.registry.OpenForWrite(meta.LanguagePair)
	if err != nil {
		log.Error("store_open_failed", slog.String("error", err.Error()))
		res.Status, res.Err = FileFailed, err
		return
	}
	defer func() { _ = store.Close() }()

	if imp.isAlreadyImported(ctx, store, meta, log) {
		log.Info("dictionary_current", slog.String("timestamp", meta.Timestamp))
		res.Status = FileCurrent
		return
	}

	if err := store.UpsertDictionaryMetadata(ctx, meta); err != nil {
		log.Error("metadata_write_failed", slog.String("error", err.Error()))
	}

	if err := store.RecreateEntries(ctx); err != nil {
		log.Error("entries_recreate_failed", slog.String("error", err.Error()))
		imp.forgetTimestamp(ctx, store, log)
		res.Status, res.Err = FileFailed, err
		return
	}

	total := len(lines)
	obs.StatusChanged(fmt.Sprintf("%s dictionary: Importing %d entries.", meta.LanguagePair, total))

	tx, err := store.BeginTx(ctx)
	if err != nil {
		log.Error("transaction_begin_failed", slog.String("error", err.Error()))
		imp.forgetTimestamp(ctx, store, log)
		res.Status, res.Err = FileFailed, err
		return
	}

	interval := imp.cfg.ProgressInterval
	for i, line := range lines {
		processed := i + 1
		entry, ok := parser.ParseEntryLine(int64(processed), line)
		if !ok {
			res.Dropped++
		} else if err := tx.InsertEntry(ctx, entry); err != nil {
			res.InsertErrors++
			log.Warn("entry_insert_failed", slog.Int64("id", entry.ID), slog.String("error", err.Error()))
		} else {
			res.Written++
		}

		if processed%interval == 0 {
			obs.Progress(Progress{
				LanguagePair: meta.LanguagePair,
				Processed:    processed,
				Total:        total,
				Percent:      processed * 100 / total,
			})
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("transaction_commit_failed", slog.String("error", err.Error()))
		imp.forgetTimestamp(ctx, store, log)
		res.Status, res.Err = FileFailed, err
		return
	}

	imp.registry.Invalidate(meta.LanguagePair)
	res.Status = FileImported

	log.Info("dictionary_imported",
		slog.Int("total", total),
		slog.Int("written", res.Written),
		slog.Int("dropped", res.Dropped),
		slog.Int("insert_errors", res.InsertErrors))
	obs.StatusChanged(fmt.Sprintf("%s dictionary with %d entries successfully imported.", meta.LanguagePair, res.Written))
	obs.DictionaryFound(meta.LanguagePair, meta.Timestamp)
}

// isAlreadyImported reports whether store's metadata marks the incoming
// dump as current. Unreadable metadata means re-import.
func (imp *Importer) isAlreadyImported(ctx context.Context, store storage.Storage, meta types.DictionaryMetadata, log *slog.Logger) bool {
	existing, err := store.DictionaryMetadata(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		log.Warn("metadata_read_failed", slog.String("error", err.Error()))
		return false
	}
	return existing.IsCurrent(meta, imp.cfg.MetadataVersion)
}

// forgetTimestamp drops the timestamp row after a failed load so the next
// scan does not treat the half-written store as current.
func (imp *Importer) forgetTimestamp(ctx context.Context, store storage.Storage, log *slog.Logger) {
	if err := store.DeleteMetadataKey(ctx, storage.KeyTimestamp); err != nil {
		log.Warn("metadata_reset_failed", slog.String("error", err.Error()))
	}
}
