// Package types provides shared type definitions for the dictcc-mcp server.
//
// The import pipeline produces Entry values from dict.cc dump lines and
// records a DictionaryMetadata per language pair; the search engine turns
// matched rows into SearchResult values classified by Tier.
//
// # Entries
//
// Each side of a pair is a WordForm with the annotations split off:
//
//	entry := &types.Entry{
//	    ID:       1,
//	    Left:     types.WordForm{Word: "house", Gender: "(n)", Qualifier: "[housing]"},
//	    Right:    types.WordForm{Word: "Haus", Gender: "(n)"},
//	    Category: "noun",
//	}
//
// # Freshness
//
// A store is current when its schema version is at least the importer's
// version and its timestamp equals the incoming one byte for byte:
//
//	if stored.IsCurrent(incoming, 1) {
//	    // skip
//	}
//
// # Search Results
//
// Results are ranked by Tier (word, direct, indirect, other) and carry a
// DisplayText such as "house (n) [housing] - Haus (n)".
package types
