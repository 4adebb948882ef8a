// Package mcp implements the Model Context Protocol (MCP) server for dictcc-mcp.
//
// The MCP server exposes three tools:
//   - import_dictionaries: Import dict.cc dump archives from a directory
//   - search_dictionary: Look up a word in one imported dictionary
//   - list_dictionaries: List imported dictionaries
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Logs never go to stdout, which carries the protocol.
//
// # Basic Usage
//
//	dictcc serve          # MCP on stdio
//	dictcc serve --watch  # also import new archives as they are downloaded
//
// # Tool: import_dictionaries
//
//	Request:
//	{
//	  "name": "import_dictionaries",
//	  "arguments": {"source_dir": "/home/me/Downloads"}
//	}
//
//	Response:
//	{
//	  "run_id": "5b0c...",
//	  "archives_found": 1,
//	  "dictionaries_imported": ["EN-DE"],
//	  "dictionaries_current": [],
//	  "entries_written": 1234567,
//	  "lines_dropped": 3,
//	  "duration_ms": 45120
//	}
//
// The call blocks until the import has finished. Requests that carry a
// progress token receive notifications/progress messages while entries
// are written.
//
// # Tool: search_dictionary
//
//	Request:
//	{
//	  "name": "search_dictionary",
//	  "arguments": {"dictionary": "EN-DE", "query": "house", "limit": 20}
//	}
//
//	Response:
//	{
//	  "dictionary": "EN-DE",
//	  "query": "house",
//	  "total": 20,
//	  "tier_counts": {"word": 4, "direct": 61, "indirect": 12, "other": 9},
//	  "results": [
//	    {
//	      "index": 30418,
//	      "tier": "word",
//	      "display_text": "house (n) - Haus (n)",
//	      "left": {"word": "house", "gender": "(n)"},
//	      "right": {"word": "Haus", "gender": "(n)"},
//	      "category": "noun"
//	    }
//	  ]
//	}
//
// # Error Codes
//
//   - -32602: Invalid parameters (missing dictionary, limit out of range, bad source_dir)
//   - -32603: Internal error
//   - -32001: Dictionary not found (Data lists the available ones)
//   - -32002: Import already running
//   - -32003: Empty query
package mcp
