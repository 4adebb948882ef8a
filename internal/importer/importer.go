package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/dictcc-mcp/internal/parser"
	"github.com/dshills/dictcc-mcp/internal/storage"
	"github.com/dshills/dictcc-mcp/pkg/types"
)

const (
	// DefaultMetadataVersion is the dump import format written to metadataVersion
	DefaultMetadataVersion = 1
	// DefaultProgressInterval is the number of lines between progress events
	DefaultProgressInterval = 1000
)

// Config contains configuration for the importer. It is copied at
// construction and never changes afterwards.
type Config struct {
	TempDir          string     // archives are extracted below this directory
	MetadataVersion  int        // stores with an older version are re-imported
	ProgressInterval int        // lines between progress events
	Extractor        Extractor  // defaults to ZipExtractor
	Parser           DumpParser // defaults to parser.New()
}

// DumpParser reads one extracted dump file
type DumpParser interface {
	ParseFile(path string) (*types.ParseResult, error)
}

// FileStatus is the outcome of importing one extracted file
type FileStatus string

const (
	FileImported FileStatus = "imported"
	FileCurrent  FileStatus = "current" // timestamp already imported
	FileSkipped  FileStatus = "skipped" // not a dict.cc dump
	FileFailed   FileStatus = "failed"
)

// FileResult describes one extracted file
type FileResult struct {
	Path         string
	Status       FileStatus
	LanguagePair string
	Timestamp    string
	Total        int // non-comment lines
	Written      int
	Dropped      int // lines with fewer than three fields
	InsertErrors int
	Err          error
}

// Report summarises one directory scan
type Report struct {
	RunID     uuid.UUID
	SourceDir string

	ArchivesFound  int
	FilesProcessed int
	FilesSkipped   int

	DictionariesImported []string
	DictionariesCurrent  []string

	EntriesWritten int
	LinesDropped   int
	InsertErrors   int

	Busy     bool // another import held the lock
	Errors   []string
	Duration time.Duration
}

func (r *Report) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) add(res *FileResult) {
	r.FilesProcessed++
	switch res.Status {
	case FileImported:
		r.DictionariesImported = append(r.DictionariesImported, res.LanguagePair)
	case FileCurrent:
		r.DictionariesCurrent = append(r.DictionariesCurrent, res.LanguagePair)
	case FileSkipped:
		r.FilesSkipped++
	case FileFailed:
		r.addError("%s: %v", filepath.Base(res.Path), res.Err)
	}
	r.EntriesWritten += res.Written
	r.LinesDropped += res.Dropped
	r.InsertErrors += res.InsertErrors
}

// Importer coordinates the pipeline: discover -> extract -> parse -> store
type Importer struct {
	parser   DumpParser
	registry *storage.Registry
	cfg      Config
	log      *slog.Logger

	lock     IndexLock
	fileLock *FileLock
}

// New creates a new Importer writing stores through registry
func New(registry *storage.Registry, cfg Config, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.MetadataVersion <= 0 {
		cfg.MetadataVersion = DefaultMetadataVersion
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}
	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(os.TempDir(), "dictcc-mcp")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = ZipExtractor{Log: log}
	}
	if cfg.Parser == nil {
		cfg.Parser = parser.New()
	}

	return &Importer{
		parser:   cfg.Parser,
		registry: registry,
		cfg:      cfg,
		log:      log,
		fileLock: NewFileLock(registry.Dir()),
	}
}

// Lock exposes the in-process lock so callers can fail fast
func (imp *Importer) Lock() *IndexLock {
	return &imp.lock
}

// ImportAsync runs ImportDirectory on its own goroutine. The channel
// receives the report and is then closed.
func (imp *Importer) ImportAsync(ctx context.Context, sourceDir string, obs Observer) <-chan *Report {
	ch := make(chan *Report, 1)
	go func() {
		defer close(ch)
		ch <- imp.ImportDirectory(ctx, sourceDir, obs)
	}()
	return ch
}

// ImportDirectory imports every dict.cc archive found in sourceDir.
// Failures are logged and recorded in the report; ImportFinished is
// always emitted. Cancelling ctx stops the scan between files, never
// inside a running bulk write.
func (imp *Importer) ImportDirectory(ctx context.Context, sourceDir string, obs Observer) *Report {
	if obs == nil {
		obs = NopObserver{}
	}

	report := &Report{RunID: uuid.New(), SourceDir: sourceDir}
	log := imp.log.With(slog.String("run_id", report.RunID.String()))
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		obs.ImportFinished(report)
	}()

	obs.StatusChanged(StatusChecking)
	log.Info("import_started", slog.String("source_dir", sourceDir))

	if !imp.lock.TryAcquire() {
		report.Busy = true
		obs.StatusChanged(StatusBusy)
		return report
	}
	defer imp.lock.Release()

	acquired, err := imp.fileLock.TryLock()
	if err != nil {
		log.Error("import_lock_failed", slog.String("error", err.Error()))
		report.addError("lock: %v", err)
		return report
	}
	if !acquired {
		report.Busy = true
		obs.StatusChanged(StatusBusy)
		return report
	}
	defer func() {
		if err := imp.fileLock.Unlock(); err != nil {
			log.Warn("import_unlock_failed", slog.String("error", err.Error()))
		}
	}()

	archives, err := DiscoverArchives(sourceDir)
	if err != nil {
		log.Error("discover_failed", slog.String("error", err.Error()))
		report.addError("discover: %v", err)
		return report
	}
	report.ArchivesFound = len(archives)

	for _, archive := range archives {
		if ctx.Err() != nil {
			log.Info("import_cancelled")
			break
		}
		imp.importArchive(ctx, archive, obs, report, log)
	}

	return report
}

func (imp *Importer) importArchive(ctx context.Context, archive string, obs Observer, report *Report, log *slog.Logger) {
	log = log.With(slog.String("archive", filepath.Base(archive)))

	extractDir := filepath.Join(imp.cfg.TempDir, filepath.Base(archive))
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		log.Error("extract_dir_failed", slog.String("error", err.Error()))
		report.addError("%s: %v", filepath.Base(archive), err)
		return
	}
	defer func() {
		if err := os.RemoveAll(extractDir); err != nil {
			log.Warn("extract_dir_remove_failed", slog.String("error", err.Error()))
		}
	}()

	files := imp.cfg.Extractor.Extract(archive, extractDir)
	if len(files) == 0 {
		log.Warn("archive_empty")
	}

	for _, file := range files {
		if ctx.Err() != nil {
			return
		}
		report.add(imp.ImportFile(ctx, file, obs))
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("file_remove_failed", slog.String("file", file), slog.String("error", err.Error()))
		}
	}
}

// ImportFile imports one extracted dump file. The file itself is left in
// place.
func (imp *Importer) ImportFile(ctx context.Context, path string, obs Observer) *FileResult {
	if obs == nil {
		obs = NopObserver{}
	}
	res := &FileResult{Path: path}
	log := imp.log.With(slog.String("file", filepath.Base(path)))

	parsed, err := imp.parser.ParseFile(path)
	if err != nil {
		log.Warn("file_unreadable", slog.String("error", err.Error()))
		res.Status = FileSkipped
		return res
	}
	if !parsed.HasMetadata {
		log.Debug("file_not_a_dictionary")
		res.Status = FileSkipped
		return res
	}

	meta := parsed.Metadata
	if err := meta.Validate(); err != nil {
		log.Debug("metadata_invalid", slog.String("error", err.Error()))
		res.Status = FileSkipped
		return res
	}
	meta.SchemaVersion = imp.cfg.MetadataVersion
	res.LanguagePair = meta.LanguagePair
	res.Timestamp = meta.Timestamp
	res.Total = parsed.Total()

	obs.StatusChanged(fmt.Sprintf("Dict.cc dictionary found: %s - %s", meta.LanguagePair, meta.Timestamp))

	// the bulk write runs to completion once started
	imp.writeDictionary(context.WithoutCancel(ctx), parsed.Lines, meta, res, obs, log.With(slog.String("languages", meta.LanguagePair)))
	return res
}
