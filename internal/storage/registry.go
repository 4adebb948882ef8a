package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultHandleCacheSize is the number of read handles kept open
const DefaultHandleCacheSize = 8

// Registry locates the stores of a data directory and keeps a small
// cache of open read handles for searching.
type Registry struct {
	dir string
	log *slog.Logger

	mu      sync.Mutex
	handles *lru.Cache[string, *SQLiteStorage]
}

// NewRegistry creates a registry for stores under dir
func NewRegistry(dir string, cacheSize int, log *slog.Logger) (*Registry, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultHandleCacheSize
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := &Registry{dir: dir, log: log}
	cache, err := lru.NewWithEvict(cacheSize, func(name string, store *SQLiteStorage) {
		if err := store.Close(); err != nil {
			r.log.Warn("store_close_failed", slog.String("store", name), slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create handle cache: %w", err)
	}
	r.handles = cache
	return r, nil
}

// Dir returns the data directory
func (r *Registry) Dir() string {
	return r.dir
}

// StorePath returns the file path of the named store
func (r *Registry) StorePath(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(r.dir, name+StoreExt), nil
}

func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

// OpenForWrite opens or creates the named store with migrations applied.
// The caller owns the returned handle.
func (r *Registry) OpenForWrite(name string) (*SQLiteStorage, error) {
	path, err := r.StorePath(name)
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Acquire returns a cached read handle for the named store. The handle is
// owned by the registry and must not be closed by the caller.
func (r *Registry) Acquire(name string) (*SQLiteStorage, error) {
	path, err := r.StorePath(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.handles.Get(name); ok {
		return store, nil
	}
	store, err := OpenExisting(path)
	if err != nil {
		return nil, err
	}
	r.handles.Add(name, store)
	return store, nil
}

// Invalidate closes the cached handle of a store so the next Acquire sees
// a freshly imported table and schema.
func (r *Registry) Invalidate(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles.Remove(name)
}

// Reset empties an existing store and drops its cached handle
func (r *Registry) Reset(ctx context.Context, name string) error {
	path, err := r.StorePath(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	r.Invalidate(name)
	store, err := Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset %s: %w", name, err)
	}
	r.log.Info("store_reset", slog.String("store", name))
	return nil
}

// Names lists the store names present in the data directory
func (r *Registry) Names() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != StoreExt {
			continue
		}
		name := strings.TrimSuffix(e.Name(), StoreExt)
		if validateName(name) == nil {
			names = append(names, name)
		}
	}
	return names, nil
}

// List returns the status of every store using short-lived handles, so
// cached search handles are never evicted by a listing. Stores that fail
// to open are logged and left out.
func (r *Registry) List(ctx context.Context) ([]*StoreStatus, error) {
	names, err := r.Names()
	if err != nil {
		return nil, err
	}

	statuses := make([]*StoreStatus, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range names {
		g.Go(func() error {
			path, _ := r.StorePath(name)
			store, err := OpenExisting(path)
			if err != nil {
				r.log.Warn("store_open_failed", slog.String("store", name), slog.String("error", err.Error()))
				return nil
			}
			defer func() { _ = store.Close() }()

			status, err := store.Status(gctx)
			if err != nil {
				r.log.Warn("store_status_failed", slog.String("store", name), slog.String("error", err.Error()))
				return nil
			}
			statuses[i] = status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := statuses[:0]
	for _, s := range statuses {
		if s != nil {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Close closes every cached handle
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles.Purge()
	return nil
}
