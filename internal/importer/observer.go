package importer

import "log/slog"

// Status messages emitted through Observer.StatusChanged
const (
	StatusChecking = "Checking for new dictionaries..."
	StatusBusy     = "Import already running"
)

// Progress is reported while entries of one dictionary are written
type Progress struct {
	LanguagePair string
	Processed    int
	Total        int
	Percent      int // Processed*100/Total, truncated
}

// Observer receives pipeline events. Calls are made synchronously from
// the importing goroutine, in emission order.
type Observer interface {
	StatusChanged(message string)
	Progress(p Progress)
	DictionaryFound(languagePair, timestamp string)
	ImportFinished(report *Report)
}

// NopObserver ignores all events
type NopObserver struct{}

func (NopObserver) StatusChanged(string)           {}
func (NopObserver) Progress(Progress)              {}
func (NopObserver) DictionaryFound(string, string) {}
func (NopObserver) ImportFinished(*Report)         {}

// Funcs adapts plain functions to Observer. Nil fields are skipped.
type Funcs struct {
	OnStatus     func(message string)
	OnProgress   func(p Progress)
	OnDictionary func(languagePair, timestamp string)
	OnFinished   func(report *Report)
}

func (f Funcs) StatusChanged(message string) {
	if f.OnStatus != nil {
		f.OnStatus(message)
	}
}

func (f Funcs) Progress(p Progress) {
	if f.OnProgress != nil {
		f.OnProgress(p)
	}
}

func (f Funcs) DictionaryFound(languagePair, timestamp string) {
	if f.OnDictionary != nil {
		f.OnDictionary(languagePair, timestamp)
	}
}

func (f Funcs) ImportFinished(report *Report) {
	if f.OnFinished != nil {
		f.OnFinished(report)
	}
}

// Multi fans every event out to each observer in order
func Multi(observers ...Observer) Observer {
	return multiObserver(observers)
}

type multiObserver []Observer

func (m multiObserver) StatusChanged(message string) {
	for _, o := range m {
		o.StatusChanged(message)
	}
}

func (m multiObserver) Progress(p Progress) {
	for _, o := range m {
		o.Progress(p)
	}
}

func (m multiObserver) DictionaryFound(languagePair, timestamp string) {
	for _, o := range m {
		o.DictionaryFound(languagePair, timestamp)
	}
}

func (m multiObserver) ImportFinished(report *Report) {
	for _, o := range m {
		o.ImportFinished(report)
	}
}

// LogObserver writes events as structured log records
type LogObserver struct {
	Log *slog.Logger
}

func (o LogObserver) StatusChanged(message string) {
	o.Log.Info("import_status", slog.String("message", message))
}

func (o LogObserver) Progress(p Progress) {
	o.Log.Debug("import_progress",
		slog.String("languages", p.LanguagePair),
		slog.Int("processed", p.Processed),
		slog.Int("total", p.Total),
		slog.Int("percent", p.Percent))
}

func (o LogObserver) DictionaryFound(languagePair, timestamp string) {
	o.Log.Info("dictionary_found",
		slog.String("languages", languagePair),
		slog.String("timestamp", timestamp))
}

func (o LogObserver) ImportFinished(report *Report) {
	o.Log.Info("import_finished",
		slog.String("run_id", report.RunID.String()),
		slog.Int("archives", report.ArchivesFound),
		slog.Int("files", report.FilesProcessed),
		slog.Any("imported", report.DictionariesImported),
		slog.Int("entries", report.EntriesWritten),
		slog.Duration("duration", report.Duration))
}
