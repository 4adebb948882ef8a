// Package importer loads dict.cc vocabulary dumps into per-language-pair stores.
//
// # Basic Usage
//
//	reg, _ := storage.NewRegistry(dataDir, 8, logger)
//	imp := importer.New(reg, importer.Config{TempDir: tmp}, logger)
//
//	report := imp.ImportDirectory(ctx, "/home/me/Downloads", importer.LogObserver{Log: logger})
//	fmt.Printf("imported %v in %v\n", report.DictionariesImported, report.Duration)
//
// # Pipeline
//
//  1. Discovery: regular files in the source directory whose name contains
//     a match of \w+-\d+-\w+\.zip
//  2. Extraction: each archive is unpacked into <TempDir>/<archive name>;
//     extracted files are deleted after processing, the directory after that
//  3. Metadata: line 1 must mention dict.cc and an XX-XX pair, line 2 a
//     "YYYY-MM-DD HH:MM" timestamp; other files are skipped silently
//  4. Freshness: a store whose metadataVersion is current and whose
//     timestamp equals the dump's is left untouched
//  5. Bulk write: metadata rows are upserted, the entries table is
//     recreated and all lines are inserted in one transaction
//
// Entry ids are 1-based positions among non-comment lines, so lines
// dropped for having fewer than three tab separated fields leave gaps.
//
// # Events
//
// Progress is delivered through an Observer passed to each call. Events
// arrive in order on the importing goroutine:
//
//	obs := importer.Funcs{
//	    OnProgress: func(p importer.Progress) { bar.Set(p.Percent) },
//	    OnDictionary: func(pair, ts string) { searcher.InvalidateCache() },
//	}
//
// ImportFinished is always the last event, even when nothing was imported
// or everything failed. Failures never surface as errors; they are logged
// and counted in the Report.
//
// # Locking
//
// Only one import runs per process (IndexLock) and per data directory
// (FileLock on <data_dir>/.import.lock). A second caller gets a report with
// Busy set.
package importer
