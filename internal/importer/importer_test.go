package importer

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_importer "github.com/dshills/dictcc-mcp/internal/mocks/importer"
	"github.com/dshills/dictcc-mcp/internal/storage"
	"github.com/dshills/dictcc-mcp/pkg/types"
)

const exampleDump = "dict.cc EN-DE dictionary\n2019-05-01 10:00\nhouse {n} [housing]\tHaus {n}\tnoun\n"

// recorder captures observer events in order
type recorder struct {
	events   []string
	statuses []string
	progress []Progress
	found    [][2]string
	reports  []*Report
}

func (r *recorder) StatusChanged(message string) {
	r.events = append(r.events, "status")
	r.statuses = append(r.statuses, message)
}

func (r *recorder) Progress(p Progress) {
	r.events = append(r.events, "progress")
	r.progress = append(r.progress, p)
}

func (r *recorder) DictionaryFound(pair, ts string) {
	r.events = append(r.events, "found")
	r.found = append(r.found, [2]string{pair, ts})
}

func (r *recorder) ImportFinished(report *Report) {
	r.events = append(r.events, "finished")
	r.reports = append(r.reports, report)
}

type fixture struct {
	dataDir  string
	tempDir  string
	registry *storage.Registry
	importer *Importer
}

func setupImporter(t *testing.T, cfg Config) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		dataDir: filepath.Join(root, "data"),
		tempDir: filepath.Join(root, "tmp"),
	}
	require.NoError(t, os.MkdirAll(f.dataDir, 0o755))

	reg, err := storage.NewRegistry(f.dataDir, 0, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	f.registry = reg

	if cfg.TempDir == "" {
		cfg.TempDir = f.tempDir
	}
	f.importer = New(reg, cfg, nil)
	return f
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeZip(t *testing.T, dir, name string, files map[string]string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(out)
	for fname, content := range files {
		w, err := zw.Create(fname)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
	return path
}

func readAll(t *testing.T, f *fixture, pair string) []types.SearchResult {
	t.Helper()
	path, err := f.registry.StorePath(pair)
	require.NoError(t, err)
	store, err := storage.OpenExisting(path)
	require.NoError(t, err)
	defer store.Close()

	// every row has a category, so match on the categories used in tests
	rows, err := store.MatchEntries(context.Background(), "noun OR verb OR adj")
	require.NoError(t, err)
	defer rows.Close()

	var out []types.SearchResult
	for rows.Next() {
		r, err := rows.Result()
		require.NoError(t, err)
		out = append(out, r)
	}
	require.NoError(t, rows.Err())
	return out
}

func storedMetadata(t *testing.T, f *fixture, pair string) *types.DictionaryMetadata {
	t.Helper()
	path, err := f.registry.StorePath(pair)
	require.NoError(t, err)
	store, err := storage.OpenExisting(path)
	require.NoError(t, err)
	defer store.Close()

	meta, err := store.DictionaryMetadata(context.Background())
	require.NoError(t, err)
	return meta
}

func TestImportFile_Example(t *testing.T) {
	f := setupImporter(t, Config{})
	path := writeFile(t, t.TempDir(), "dump.txt", exampleDump)
	rec := &recorder{}

	res := f.importer.ImportFile(context.Background(), path, rec)

	require.Equal(t, FileImported, res.Status, res.Err)
	assert.Equal(t, "EN-DE", res.LanguagePair)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, []string{
		"Dict.cc dictionary found: EN-DE - 2019-05-01 10:00",
		"EN-DE dictionary: Importing 1 entries.",
		"EN-DE dictionary with 1 entries successfully imported.",
	}, rec.statuses)
	assert.Equal(t, [][2]string{{"EN-DE", "2019-05-01 10:00"}}, rec.found)
	assert.Equal(t, []string{"status", "status", "status", "found"}, rec.events)

	entries := readAll(t, f, "EN-DE")
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, int64(1), e.Index)
	assert.Equal(t, "house", e.WordLeft)
	assert.Equal(t, "(n)", e.GenderLeft)
	assert.Equal(t, "[housing]", e.QualifierLeft)
	assert.Equal(t, "Haus", e.WordRight)
	assert.Equal(t, "(n)", e.GenderRight)
	assert.Empty(t, e.QualifierRight)
	assert.Equal(t, "noun", e.Category)

	meta := storedMetadata(t, f, "EN-DE")
	assert.Equal(t, types.DictionaryMetadata{LanguagePair: "EN-DE", Timestamp: "2019-05-01 10:00", SchemaVersion: 1}, *meta)
}

func TestImportFile_SkipsCurrentDump(t *testing.T) {
	f := setupImporter(t, Config{})
	dir := t.TempDir()
	ctx := context.Background()

	first := f.importer.ImportFile(ctx, writeFile(t, dir, "a.txt", exampleDump), nil)
	require.Equal(t, FileImported, first.Status)

	// same timestamp, different content: must not be written
	changed := "dict.cc EN-DE dictionary\n2019-05-01 10:00\ncat\tKatze\tnoun\n"
	rec := &recorder{}
	second := f.importer.ImportFile(ctx, writeFile(t, dir, "b.txt", changed), rec)

	assert.Equal(t, FileCurrent, second.Status)
	assert.Empty(t, rec.found)
	assert.Equal(t, []string{"Dict.cc dictionary found: EN-DE - 2019-05-01 10:00"}, rec.statuses)

	entries := readAll(t, f, "EN-DE")
	require.Len(t, entries, 1)
	assert.Equal(t, "house", entries[0].WordLeft)
}

func TestImportFile_ReplacesOnChangedTimestamp(t *testing.T) {
	f := setupImporter(t, Config{})
	dir := t.TempDir()
	ctx := context.Background()

	require.Equal(t, FileImported, f.importer.ImportFile(ctx, writeFile(t, dir, "a.txt", exampleDump), nil).Status)

	// an older timestamp is still a different dump
	older := "dict.cc EN-DE dictionary\n2018-01-01 00:00\ncat\tKatze {f}\tnoun\ndog\tHund {m}\tnoun\n"
	rec := &recorder{}
	res := f.importer.ImportFile(ctx, writeFile(t, dir, "b.txt", older), rec)

	require.Equal(t, FileImported, res.Status)
	assert.Len(t, rec.found, 1)

	entries := readAll(t, f, "EN-DE")
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotEqual(t, "house", e.WordLeft)
	}
	assert.Equal(t, "2018-01-01 00:00", storedMetadata(t, f, "EN-DE").Timestamp)
}

func TestImportFile_ReimportsOutdatedVersion(t *testing.T) {
	f := setupImporter(t, Config{MetadataVersion: 2})
	ctx := context.Background()

	// simulate a store written by version 1
	store, err := f.registry.OpenForWrite("EN-DE")
	require.NoError(t, err)
	require.NoError(t, store.UpsertDictionaryMetadata(ctx, types.DictionaryMetadata{
		LanguagePair: "EN-DE", Timestamp: "2019-05-01 10:00", SchemaVersion: 1,
	}))
	require.NoError(t, store.Close())

	res := f.importer.ImportFile(ctx, writeFile(t, t.TempDir(), "a.txt", exampleDump), nil)
	require.Equal(t, FileImported, res.Status)
	assert.Equal(t, 2, storedMetadata(t, f, "EN-DE").SchemaVersion)
}

func TestImportFile_IDsCountDroppedLines(t *testing.T) {
	f := setupImporter(t, Config{})
	dump := "dict.cc EN-DE\n2019-05-01 10:00\n" +
		"# comment\n" +
		"cat\tKatze\tnoun\n" +
		"broken\tline\n" +
		"\n" +
		"dog\tHund\tnoun\n"

	rec := &recorder{}
	res := f.importer.ImportFile(context.Background(), writeFile(t, t.TempDir(), "a.txt", dump), rec)
	require.Equal(t, FileImported, res.Status)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 2, res.Dropped)
	assert.Equal(t, []string{
		"Dict.cc dictionary found: EN-DE - 2019-05-01 10:00",
		"EN-DE dictionary: Importing 4 entries.",
		"EN-DE dictionary with 2 entries successfully imported.",
	}, rec.statuses)

	ids := map[string]int64{}
	for _, e := range readAll(t, f, "EN-DE") {
		ids[e.WordLeft] = e.Index
	}
	assert.Equal(t, map[string]int64{"cat": 1, "dog": 4}, ids)
}

func TestImportFile_Progress(t *testing.T) {
	f := setupImporter(t, Config{ProgressInterval: 2})
	var b strings.Builder
	b.WriteString("dict.cc EN-DE\n2019-05-01 10:00\n")
	for _, w := range []string{"a", "b", "c", "d", "e"} {
		b.WriteString(w + "\t" + strings.ToUpper(w) + "\tnoun\n")
	}
	rec := &recorder{}

	f.importer.ImportFile(context.Background(), writeFile(t, t.TempDir(), "a.txt", b.String()), rec)

	assert.Equal(t, []Progress{
		{LanguagePair: "EN-DE", Processed: 2, Total: 5, Percent: 40},
		{LanguagePair: "EN-DE", Processed: 4, Total: 5, Percent: 80},
	}, rec.progress)
	assert.Equal(t, []string{"status", "status", "progress", "progress", "status", "found"}, rec.events)
}

func TestImportFile_NotADictionary(t *testing.T) {
	f := setupImporter(t, Config{})
	rec := &recorder{}

	res := f.importer.ImportFile(context.Background(), writeFile(t, t.TempDir(), "readme.txt", "hello\nworld\n"), rec)

	assert.Equal(t, FileSkipped, res.Status)
	assert.Empty(t, rec.events)
	names, err := f.registry.Names()
	require.NoError(t, err)
	assert.Empty(t, names)
}

// staticParser returns the same parse result for every file
type staticParser struct {
	result *types.ParseResult
}

func (p staticParser) ParseFile(path string) (*types.ParseResult, error) {
	r := *p.result
	r.Path = path
	return &r, nil
}

func TestImportFile_InvalidMetadataIsSkipped(t *testing.T) {
	tests := []struct {
		name string
		meta types.DictionaryMetadata
	}{
		{"missing pair", types.DictionaryMetadata{Timestamp: "2019-05-01 10:00"}},
		{"malformed pair", types.DictionaryMetadata{LanguagePair: "ENG-DE", Timestamp: "2019-05-01 10:00"}},
		{"missing timestamp", types.DictionaryMetadata{LanguagePair: "EN-DE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupImporter(t, Config{Parser: staticParser{result: &types.ParseResult{
				Metadata:    tt.meta,
				HasMetadata: true,
				Lines:       []string{"cat\tKatze\tnoun"},
			}}})
			rec := &recorder{}

			res := f.importer.ImportFile(context.Background(), writeFile(t, t.TempDir(), "dump.txt", "ignored"), rec)

			assert.Equal(t, FileSkipped, res.Status)
			assert.NoError(t, res.Err)
			assert.Empty(t, rec.events)
			names, err := f.registry.Names()
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestImportFile_Unreadable(t *testing.T) {
	f := setupImporter(t, Config{})

	res := f.importer.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Equal(t, FileSkipped, res.Status)
}

func TestImportDirectory_Zip(t *testing.T) {
	f := setupImporter(t, Config{})
	src := t.TempDir()
	archive := writeZip(t, src, "ende-2019-abcdef.zip", map[string]string{
		"ende.txt":   exampleDump,
		"readme.txt": "not a dump\n",
	})
	writeZip(t, src, "holiday.zip", map[string]string{"x.txt": exampleDump})
	writeFile(t, src, "notes-1-a.txt", "ignored")
	rec := &recorder{}

	report := f.importer.ImportDirectory(context.Background(), src, rec)

	assert.Equal(t, 1, report.ArchivesFound)
	assert.Equal(t, 2, report.FilesProcessed)
	assert.Equal(t, 1, report.FilesSkipped)
	assert.Equal(t, []string{"EN-DE"}, report.DictionariesImported)
	assert.Equal(t, 1, report.EntriesWritten)
	assert.Empty(t, report.Errors)
	assert.False(t, report.Busy)
	assert.NotEmpty(t, report.RunID.String())

	assert.Equal(t, StatusChecking, rec.statuses[0])
	assert.Equal(t, "finished", rec.events[len(rec.events)-1])
	require.Len(t, rec.reports, 1)
	assert.Same(t, report, rec.reports[0])

	_, err := os.Stat(filepath.Join(f.tempDir, "ende-2019-abcdef.zip"))
	assert.True(t, os.IsNotExist(err), "extraction dir must be removed")
	_, err = os.Stat(archive)
	assert.NoError(t, err, "source archive is kept")
}

func TestImportDirectory_SecondRunIsCurrent(t *testing.T) {
	f := setupImporter(t, Config{})
	src := t.TempDir()
	writeZip(t, src, "ende-2019-abcdef.zip", map[string]string{"ende.txt": exampleDump})
	ctx := context.Background()

	require.Equal(t, []string{"EN-DE"}, f.importer.ImportDirectory(ctx, src, nil).DictionariesImported)

	rec := &recorder{}
	report := f.importer.ImportDirectory(ctx, src, rec)
	assert.Empty(t, report.DictionariesImported)
	assert.Equal(t, []string{"EN-DE"}, report.DictionariesCurrent)
	assert.Empty(t, rec.found)
}

func TestImportDirectory_MockExtractor(t *testing.T) {
	ctrl := gomock.NewController(t)
	extractor := mock_importer.NewMockExtractor(ctrl)
	f := setupImporter(t, Config{Extractor: extractor})

	src := t.TempDir()
	archive := writeFile(t, src, "deen-7-xyz.zip", "not really a zip")
	extracted := filepath.Join(f.tempDir, "deen-7-xyz.zip")

	var produced []string
	extractor.EXPECT().
		Extract(archive, extracted).
		DoAndReturn(func(_, dest string) []string {
			produced = []string{
				writeFile(t, dest, "one.txt", "dict.cc DE-EN\n2021-06-07 08:09\nHaus\thouse\tnoun\n"),
				writeFile(t, dest, "two.txt", "garbage"),
			}
			return produced
		})

	report := f.importer.ImportDirectory(context.Background(), src, nil)

	assert.Equal(t, []string{"DE-EN"}, report.DictionariesImported)
	assert.Equal(t, 1, report.FilesSkipped)
	for _, p := range produced {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "extracted file %s must be deleted", p)
	}
}

func TestImportDirectory_ExtractionFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	extractor := mock_importer.NewMockExtractor(ctrl)
	f := setupImporter(t, Config{Extractor: extractor})

	src := t.TempDir()
	writeFile(t, src, "aa-1-bb.zip", "x")
	writeFile(t, src, "cc-2-dd.zip", "x")
	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	rec := &recorder{}

	report := f.importer.ImportDirectory(context.Background(), src, rec)

	assert.Equal(t, 2, report.ArchivesFound)
	assert.Zero(t, report.FilesProcessed)
	assert.Equal(t, []string{"status", "finished"}, rec.events)
}

func TestImportDirectory_MissingSource(t *testing.T) {
	f := setupImporter(t, Config{})
	rec := &recorder{}

	report := f.importer.ImportDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), rec)

	assert.NotEmpty(t, report.Errors)
	require.Len(t, rec.reports, 1)
}

func TestImportDirectory_Busy(t *testing.T) {
	f := setupImporter(t, Config{})
	require.True(t, f.importer.Lock().TryAcquire())
	defer f.importer.Lock().Release()
	rec := &recorder{}

	report := f.importer.ImportDirectory(context.Background(), t.TempDir(), rec)

	assert.True(t, report.Busy)
	assert.Equal(t, []string{StatusChecking, StatusBusy}, rec.statuses)
	assert.Len(t, rec.reports, 1)
}

func TestImportDirectory_FileLockHeld(t *testing.T) {
	f := setupImporter(t, Config{})
	other := NewFileLock(f.dataDir)
	ok, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer other.Unlock()

	report := f.importer.ImportDirectory(context.Background(), t.TempDir(), nil)
	assert.True(t, report.Busy)

	// the in-process lock must be released again
	assert.True(t, f.importer.Lock().TryAcquire())
	f.importer.Lock().Release()
}

func TestImportDirectory_CancelledBeforeStart(t *testing.T) {
	f := setupImporter(t, Config{})
	src := t.TempDir()
	writeZip(t, src, "ende-2019-abcdef.zip", map[string]string{"ende.txt": exampleDump})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}

	report := f.importer.ImportDirectory(ctx, src, rec)

	assert.Equal(t, 1, report.ArchivesFound)
	assert.Empty(t, report.DictionariesImported)
	assert.Len(t, rec.reports, 1)
}

func TestImportAsync(t *testing.T) {
	f := setupImporter(t, Config{})
	src := t.TempDir()
	writeZip(t, src, "ende-2019-abcdef.zip", map[string]string{"ende.txt": exampleDump})

	report, ok := <-f.importer.ImportAsync(context.Background(), src, nil)
	require.True(t, ok)
	assert.Equal(t, []string{"EN-DE"}, report.DictionariesImported)

	_, ok = <-f.importer.ImportAsync(context.Background(), src, nil)
	require.True(t, ok)
}
