package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// importDictionariesTool returns the tool definition for import_dictionaries
func importDictionariesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "import_dictionaries",
		Description: "Import dict.cc dump archives (*.zip) from a directory into local dictionaries. Dumps that are already imported are skipped.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source_dir": map[string]interface{}{
					"type":        "string",
					"description": "Directory containing the downloaded dict.cc archives (defaults to the configured source directory)",
				},
			},
		},
	}
}

// searchDictionaryTool returns the tool definition for search_dictionary
func searchDictionaryTool(maxResults int) mcp.Tool {
	return mcp.Tool{
		Name:        "search_dictionary",
		Description: "Look up a word in an imported dictionary. Results are ranked: exact headword matches first, then headwords starting with the query, then headwords containing it, then other matches.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dictionary": map[string]interface{}{
					"type":        "string",
					"description": "Language pair of the dictionary, e.g. EN-DE (see list_dictionaries)",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Word or word prefix to look up",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return",
					"default":     maxResults,
					"minimum":     1,
					"maximum":     maxResults,
				},
			},
			Required: []string{"dictionary", "query"},
		},
	}
}

// listDictionariesTool returns the tool definition for list_dictionaries
func listDictionariesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_dictionaries",
		Description: "List the imported dictionaries with their dump timestamp and entry count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
