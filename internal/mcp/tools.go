package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/dictcc-mcp/internal/importer"
	"github.com/dshills/dictcc-mcp/internal/searcher"
	"github.com/dshills/dictcc-mcp/internal/storage"
	"github.com/dshills/dictcc-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeDictionaryNotFound = -32001 // No store for the requested language pair
	ErrorCodeImportInProgress   = -32002 // Another import is already running
	ErrorCodeEmptyQuery         = -32003 // Query parameter is empty
)

// handleImportDictionaries handles the import_dictionaries tool invocation
func (s *Server) handleImportDictionaries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := argumentsOf(request)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	dir := getStringDefault(args, "source_dir", s.cfg.SourceDir)
	if err := validateDir(dir); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid source_dir", map[string]interface{}{
			"param":  "source_dir",
			"reason": err.Error(),
		})
	}

	report := s.Import(ctx, dir, newProgressObserver(ctx, request, s.log))
	if report.Busy {
		return nil, newMCPError(ErrorCodeImportInProgress, types.ErrImportInProgress.Error(), nil)
	}

	response := map[string]interface{}{
		"run_id":                report.RunID.String(),
		"source_dir":            report.SourceDir,
		"archives_found":        report.ArchivesFound,
		"files_processed":       report.FilesProcessed,
		"files_skipped":         report.FilesSkipped,
		"dictionaries_imported": nonNil(report.DictionariesImported),
		"dictionaries_current":  nonNil(report.DictionariesCurrent),
		"entries_written":       report.EntriesWritten,
		"lines_dropped":         report.LinesDropped,
		"insert_errors":         report.InsertErrors,
		"duration_ms":           report.Duration.Milliseconds(),
	}
	if len(report.Errors) > 0 {
		// Include first few errors
		errorCount := len(report.Errors)
		if errorCount > 5 {
			response["errors"] = report.Errors[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = report.Errors
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchDictionary handles the search_dictionary tool invocation
func (s *Server) handleSearchDictionary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := argumentsOf(request)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	dictionary := strings.ToUpper(strings.TrimSpace(getStringDefault(args, "dictionary", "")))
	if dictionary == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "dictionary parameter is required", map[string]interface{}{
			"param":  "dictionary",
			"reason": "missing or empty",
		})
	}

	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	maxResults := s.cfg.Search.MaxResults
	limit := getIntDefault(args, "limit", maxResults)
	if limit < 1 || limit > maxResults {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", maxResults), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	if err := s.requireDictionary(ctx, dictionary); err != nil {
		return nil, err
	}

	resp := s.searcher.Search(ctx, searcher.SearchRequest{
		Dictionary: dictionary,
		Query:      query,
		Limit:      limit,
	}, nil)

	return mcp.NewToolResultText(formatJSON(newSearchPayload(resp))), nil
}

// handleListDictionaries handles the list_dictionaries tool invocation
func (s *Server) handleListDictionaries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statuses, err := s.registry.List(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list dictionaries", map[string]interface{}{
			"error": err.Error(),
		})
	}

	dictionaries := make([]map[string]interface{}, 0, len(statuses))
	for _, st := range statuses {
		dictionaries = append(dictionaries, map[string]interface{}{
			"name":             st.Name,
			"languages":        st.LanguagePair,
			"timestamp":        st.Timestamp,
			"metadata_version": st.MetadataVersion,
			"entries":          st.EntryCount,
			"schema":           string(st.Schema),
			"size_mb":          fmt.Sprintf("%.2f", st.SizeMB),
		})
	}

	response := map[string]interface{}{
		"data_dir":     s.registry.Dir(),
		"count":        len(dictionaries),
		"dictionaries": dictionaries,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// requireDictionary returns a not-found MCP error naming the available
// dictionaries when no store exists for name
func (s *Server) requireDictionary(ctx context.Context, name string) error {
	path, err := s.registry.StorePath(name)
	if err != nil {
		return newMCPError(ErrorCodeInvalidParams, "invalid dictionary", map[string]interface{}{
			"param":  "dictionary",
			"reason": err.Error(),
		})
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return newMCPError(ErrorCodeInternalError, "failed to open dictionary", map[string]interface{}{
			"error": err.Error(),
		})
	}

	available, err := s.registry.Names()
	if err != nil {
		s.log.WarnContext(ctx, "store_list_failed", slog.String("error", err.Error()))
	}
	return newMCPError(ErrorCodeDictionaryNotFound, fmt.Sprintf("dictionary %s not found: %v", name, storage.ErrNotFound), map[string]interface{}{
		"dictionary": name,
		"available":  nonNil(available),
	})
}

type searchPayload struct {
	Dictionary string          `json:"dictionary"`
	Query      string          `json:"query"`
	Total      int             `json:"total"`
	TierCounts map[string]int  `json:"tier_counts"`
	Cancelled  bool            `json:"cancelled,omitempty"`
	CacheHit   bool            `json:"cache_hit"`
	DurationMS int64           `json:"duration_ms"`
	Results    []searchHitJSON `json:"results"`
}

type sideJSON struct {
	Word      string `json:"word"`
	Gender    string `json:"gender,omitempty"`
	Qualifier string `json:"qualifier,omitempty"`
	Other     string `json:"other,omitempty"`
}

type searchHitJSON struct {
	Index       int64    `json:"index"`
	Tier        string   `json:"tier"`
	DisplayText string   `json:"display_text"`
	Left        sideJSON `json:"left"`
	Right       sideJSON `json:"right"`
	Category    string   `json:"category,omitempty"`
	Grade       string   `json:"grade,omitempty"`
}

func newSearchPayload(resp *searcher.SearchResponse) searchPayload {
	hits := make([]searchHitJSON, 0, len(resp.Results))
	for _, r := range resp.Results {
		hits = append(hits, searchHitJSON{
			Index:       r.Index,
			Tier:        r.Tier.String(),
			DisplayText: r.DisplayText,
			Left:        sideJSON{Word: r.WordLeft, Gender: r.GenderLeft, Qualifier: r.QualifierLeft, Other: r.OtherLeft},
			Right:       sideJSON{Word: r.WordRight, Gender: r.GenderRight, Qualifier: r.QualifierRight, Other: r.OtherRight},
			Category:    r.Category,
			Grade:       r.Grade,
		})
	}
	return searchPayload{
		Dictionary: resp.Dictionary,
		Query:      resp.Query,
		Total:      len(hits),
		TierCounts: resp.TierCounts,
		Cancelled:  resp.Cancelled,
		CacheHit:   resp.CacheHit,
		DurationMS: resp.Duration.Milliseconds(),
		Results:    hits,
	}
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validateDir checks that path is an existing, readable directory
func validateDir(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

func argumentsOf(request mcp.CallToolRequest) (map[string]interface{}, bool) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, true
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	return args, ok
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)

// progressObserver forwards import progress to the client as MCP
// progress notifications when the request carries a progress token.
type progressObserver struct {
	importer.NopObserver
	ctx   context.Context
	token mcp.ProgressToken
	log   *slog.Logger
	sent  int
}

func newProgressObserver(ctx context.Context, request mcp.CallToolRequest, log *slog.Logger) importer.Observer {
	if request.Params.Meta == nil || request.Params.Meta.ProgressToken == nil {
		return importer.NopObserver{}
	}
	return &progressObserver{ctx: ctx, token: request.Params.Meta.ProgressToken, log: log}
}

func (o *progressObserver) Progress(p importer.Progress) {
	o.notify(fmt.Sprintf("%s: %d of %d entries (%d%%)", p.LanguagePair, p.Processed, p.Total, p.Percent))
}

func (o *progressObserver) StatusChanged(message string) {
	o.notify(message)
}

// notify sends one notification. progress counts notifications so it
// keeps increasing across dictionaries.
func (o *progressObserver) notify(message string) {
	srv := serverFromContext(o.ctx)
	if srv == nil {
		return
	}
	o.sent++
	params := map[string]any{
		"progressToken": o.token,
		"progress":      o.sent,
		"message":       message,
	}
	if err := srv.SendNotificationToClient(o.ctx, "notifications/progress", params); err != nil {
		o.log.Debug("progress_notification_failed", slog.String("error", err.Error()))
	}
}
