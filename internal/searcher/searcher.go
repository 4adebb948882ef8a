package searcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/dictcc-mcp/internal/storage"
	"github.com/dshills/dictcc-mcp/pkg/types"
)

const (
	// MaxResults caps the number of hits returned by one search
	MaxResults = 200
	// DefaultCacheSize is the number of responses kept in the query cache
	DefaultCacheSize = 128
)

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	Dictionary string // language pair, e.g. "EN-DE"
	Query      string
	Limit      int // 0 means MaxResults
}

// SearchResponse contains ranked hits and metadata about the scan
type SearchResponse struct {
	Dictionary  string
	Query       string
	Results     []types.SearchResult
	TierCounts  map[string]int // hits per tier before truncation
	RowsScanned int
	Cancelled   bool
	CacheHit    bool
	Duration    time.Duration
}

// CompletionFunc is called exactly once per search with the query that
// finished, whether it succeeded, failed or was cancelled.
type CompletionFunc func(query string)

// Searcher runs prefix searches against the stores of a registry and
// ranks the hits into tiers.
type Searcher struct {
	registry   *storage.Registry
	log        *slog.Logger
	maxResults int

	cacheMu sync.Mutex
	cache   *lru.Cache[[32]byte, *SearchResponse]
}

// Option configures a Searcher
type Option func(*Searcher)

// WithLogger sets the logger used for store failures
func WithLogger(log *slog.Logger) Option {
	return func(s *Searcher) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMaxResults lowers the result cap. Values outside 1..MaxResults are ignored.
func WithMaxResults(n int) Option {
	return func(s *Searcher) {
		if n > 0 && n <= MaxResults {
			s.maxResults = n
		}
	}
}

// NewSearcher creates a new Searcher with a response cache of cacheSize entries
func NewSearcher(registry *storage.Registry, cacheSize int, opts ...Option) (*Searcher, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, *SearchResponse](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	s := &Searcher{
		registry:   registry,
		log:        slog.New(slog.DiscardHandler),
		maxResults: MaxResults,
		cache:      cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SearchAsync runs Search on its own goroutine. The channel receives the
// response and is then closed; the cancel func stops the scan early.
func (s *Searcher) SearchAsync(ctx context.Context, req SearchRequest) (<-chan *SearchResponse, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan *SearchResponse, 1)
	go func() {
		defer close(ch)
		ch <- s.Search(ctx, req, nil)
	}()
	return ch, cancel
}

// Search looks up req.Query in the named dictionary. It never fails: a
// missing or broken store yields an empty response. done, if set, is
// called once before Search returns.
func (s *Searcher) Search(ctx context.Context, req SearchRequest, done CompletionFunc) *SearchResponse {
	start := time.Now()
	if done != nil {
		defer done(req.Query)
	}

	req.Limit = s.clampLimit(req.Limit)
	resp := &SearchResponse{
		Dictionary: req.Dictionary,
		Query:      req.Query,
		TierCounts: emptyTierCounts(),
	}
	log := s.log.With(slog.String("dictionary", req.Dictionary), slog.String("query", req.Query))

	store, err := s.registry.Acquire(req.Dictionary)
	if err != nil {
		log.Error("store_open_failed", slog.String("error", err.Error()))
		resp.Duration = time.Since(start)
		return resp
	}

	key := computeQueryHash(req, s.storeTimestamp(ctx, store))
	if cached, ok := s.checkCache(key); ok {
		cached.CacheHit = true
		cached.Duration = time.Since(start)
		return cached
	}

	s.scan(ctx, store, req, resp, log)
	resp.Duration = time.Since(start)

	if !resp.Cancelled {
		s.storeInCache(key, resp)
	}
	log.Debug("search_completed",
		slog.Int("results", len(resp.Results)),
		slog.Int("rows_scanned", resp.RowsScanned),
		slog.Bool("cancelled", resp.Cancelled),
		slog.Duration("duration", resp.Duration))
	return resp
}

// scan streams the matched rows into tier buckets and fills resp
func (s *Searcher) scan(ctx context.Context, store storage.Storage, req SearchRequest, resp *SearchResponse, log *slog.Logger) {
	rows, err := store.MatchEntries(ctx, storage.PrefixPattern(req.Query))
	if err != nil {
		if ctx.Err() != nil {
			resp.Cancelled = true
			return
		}
		log.Error("search_query_failed", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = rows.Close() }()

	needle := strings.ToLower(req.Query)
	buckets := make([][]types.SearchResult, len(types.Tiers))

	for {
		if ctx.Err() != nil {
			resp.Cancelled = true
			break
		}
		if !rows.Next() {
			break
		}
		r, err := rows.Result()
		if err != nil {
			log.Warn("search_row_failed", slog.String("error", err.Error()))
			continue
		}
		resp.RowsScanned++

		r.Tier = Classify(needle, r.WordLeft, r.WordRight)
		buckets[r.Tier] = append(buckets[r.Tier], r)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			resp.Cancelled = true
		} else {
			log.Warn("search_rows_failed", slog.String("error", err.Error()))
		}
	}

	resp.Results = make([]types.SearchResult, 0, min(resp.RowsScanned, req.Limit))
	for _, tier := range types.Tiers {
		resp.TierCounts[tier.String()] = len(buckets[tier])
		room := req.Limit - len(resp.Results)
		if room <= 0 {
			continue
		}
		bucket := buckets[tier]
		if len(bucket) > room {
			bucket = bucket[:room]
		}
		resp.Results = append(resp.Results, bucket...)
	}
}

// Classify ranks a hit by how its left and right words relate to the
// lowercased query: equal, starting with it, containing it, or neither.
func Classify(needle, left, right string) types.Tier {
	left, right = strings.ToLower(left), strings.ToLower(right)
	switch {
	case left == needle || right == needle:
		return types.TierWord
	case strings.HasPrefix(left, needle) || strings.HasPrefix(right, needle):
		return types.TierDirect
	case strings.Contains(left, needle) || strings.Contains(right, needle):
		return types.TierIndirect
	default:
		return types.TierOther
	}
}

func (s *Searcher) clampLimit(limit int) int {
	if limit <= 0 || limit > s.maxResults {
		return s.maxResults
	}
	return limit
}

// storeTimestamp returns the dump timestamp of store, or "" if unknown
func (s *Searcher) storeTimestamp(ctx context.Context, store storage.Storage) string {
	meta, err := store.DictionaryMetadata(ctx)
	if err != nil {
		return ""
	}
	return meta.Timestamp
}

func emptyTierCounts() map[string]int {
	counts := make(map[string]int, len(types.Tiers))
	for _, t := range types.Tiers {
		counts[t.String()] = 0
	}
	return counts
}

// checkCache returns a copy of the cached response for key
func (s *Searcher) checkCache(key [32]byte) (*SearchResponse, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	entry, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	return copySearchResponse(entry), true
}

func (s *Searcher) storeInCache(key [32]byte, resp *SearchResponse) {
	s.cacheMu.Lock()
	s.cache.Add(key, copySearchResponse(resp))
	s.cacheMu.Unlock()
}

// copySearchResponse creates a deep copy of a SearchResponse
func copySearchResponse(src *SearchResponse) *SearchResponse {
	dst := *src
	dst.Results = append([]types.SearchResult(nil), src.Results...)
	dst.TierCounts = maps.Clone(src.TierCounts)
	return &dst
}

// computeQueryHash computes a unique hash for a search against a given
// dump. A re-import changes the timestamp and so the key.
func computeQueryHash(req SearchRequest, timestamp string) [32]byte {
	var data strings.Builder
	data.WriteString(req.Dictionary)
	data.WriteString("|")
	data.WriteString(req.Query)
	data.WriteString("|")
	data.WriteString(fmt.Sprintf("%d", req.Limit))
	data.WriteString("|")
	data.WriteString(timestamp)
	return sha256.Sum256([]byte(data.String()))
}

// InvalidateCache drops every cached response
func (s *Searcher) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// CacheLen returns the number of cached responses
func (s *Searcher) CacheLen() int {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cache.Len()
}
