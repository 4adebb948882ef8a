package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/dictcc-mcp/internal/importer"
)

// DefaultDebounce is the quiet period after the last archive event
// before an import is triggered
const DefaultDebounce = 2 * time.Second

// TriggerFunc is called once per debounced burst of archive events
type TriggerFunc func(ctx context.Context)

// Watcher watches a download directory for dict.cc archives
type Watcher struct {
	dir      string
	debounce time.Duration
	trigger  TriggerFunc
	log      *slog.Logger
	ready    chan struct{}
}

// New creates a Watcher for dir. trigger runs on the Run goroutine, so a
// slow import delays the handling of further events.
func New(dir string, debounce time.Duration, trigger TriggerFunc, log *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		trigger:  trigger,
		log:      log.With(slog.String("dir", dir)),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the directory is being watched
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is done. It returns nil on cancellation and an
// error only if the watch cannot be set up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	close(w.ready)
	w.log.Info("watch_started", slog.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watch_stopped")
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if isArchiveEvent(event) {
				w.log.Debug("archive_event", slog.String("file", filepath.Base(event.Name)), slog.String("op", event.Op.String()))
				timer.Reset(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch_error", slog.String("error", err.Error()))
		case <-timer.C:
			w.log.Info("watch_triggered")
			w.trigger(ctx)
		}
	}
}

func isArchiveEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	return importer.IsArchiveName(filepath.Base(event.Name))
}
