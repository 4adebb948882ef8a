package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string, debounce time.Duration) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	w := New(dir, debounce, func(context.Context) { calls.Add(1) }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errCh)
	})

	select {
	case <-w.Ready():
	case err := <-errCh:
		t.Fatalf("watcher failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}
	return &calls
}

func TestWatcher_DebouncesArchiveBurst(t *testing.T) {
	dir := t.TempDir()
	calls := startWatcher(t, dir, 100*time.Millisecond)

	path := filepath.Join(dir, "ende-1234-abcdef.zip")
	for i := range 5 {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	// nothing more arrives after the burst settles
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	calls := startWatcher(t, dir, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ende-1234.zip"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), time.Second, func(context.Context) {}, nil)
	assert.Error(t, w.Run(context.Background()))
}

func TestIsArchiveEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"create archive", fsnotify.Event{Name: "/d/ende-1-ab.zip", Op: fsnotify.Create}, true},
		{"write archive", fsnotify.Event{Name: "/d/ende-1-ab.zip", Op: fsnotify.Write}, true},
		{"rename archive", fsnotify.Event{Name: "/d/ende-1-ab.zip", Op: fsnotify.Rename}, true},
		{"remove archive", fsnotify.Event{Name: "/d/ende-1-ab.zip", Op: fsnotify.Remove}, false},
		{"chmod archive", fsnotify.Event{Name: "/d/ende-1-ab.zip", Op: fsnotify.Chmod}, false},
		{"partial download", fsnotify.Event{Name: "/d/ende-1-ab.zip.part", Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isArchiveEvent(tt.event))
		})
	}
}
