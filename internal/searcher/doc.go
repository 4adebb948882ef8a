// Package searcher implements the tiered prefix search over dictionary stores.
//
// A query q is sent to the store's full-text index as the prefix pattern
// "q*". Every matched row is then classified by comparing the query,
// case-insensitively, with the left and right headwords:
//
//   - word: a headword equals the query
//   - direct: a headword starts with the query
//   - indirect: a headword contains the query
//   - other: the index matched some other column
//
// Results are the concatenation of the tiers in that order, cut at the
// request limit (at most 200). Within a tier rows keep index order.
//
// # Basic Usage
//
//	s, _ := searcher.NewSearcher(registry, 128)
//
//	resp := s.Search(ctx, searcher.SearchRequest{
//	    Dictionary: "EN-DE",
//	    Query:      "house",
//	}, func(q string) { log.Printf("search %q done", q) })
//
//	for _, r := range resp.Results {
//	    fmt.Printf("[%s] %s\n", r.Tier, r.DisplayText)
//	}
//
// # Cancellation
//
// The context is checked before each row. A cancelled search returns the
// hits classified so far with Cancelled set, and is not cached. SearchAsync
// wraps Search with its own cancel func for callers that start a new
// search on every keystroke.
//
// # Caching
//
// Complete responses are cached in an LRU keyed by dictionary, query,
// limit and the store's dump timestamp. InvalidateCache clears it after
// an import.
package searcher
