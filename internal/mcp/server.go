package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/dictcc-mcp/internal/config"
	"github.com/dshills/dictcc-mcp/internal/importer"
	"github.com/dshills/dictcc-mcp/internal/searcher"
	"github.com/dshills/dictcc-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "dictcc-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	log      *slog.Logger
	registry *storage.Registry
	importer *importer.Importer
	searcher *searcher.Searcher
}

// NewServer creates the registry, importer and searcher for cfg and
// registers the dictionary tools.
func NewServer(cfg *config.Config, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	registry, err := storage.NewRegistry(cfg.DataDir, cfg.Search.StoreCacheSize, log.With(slog.String("component", "storage")))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	imp := importer.New(registry, importer.Config{
		TempDir:          cfg.TempDir,
		MetadataVersion:  cfg.MetadataVersion,
		ProgressInterval: cfg.ProgressInterval,
	}, log.With(slog.String("component", "importer")))

	srch, err := searcher.NewSearcher(registry, cfg.Search.CacheSize,
		searcher.WithLogger(log.With(slog.String("component", "searcher"))),
		searcher.WithMaxResults(cfg.Search.MaxResults))
	if err != nil {
		_ = registry.Close()
		return nil, fmt.Errorf("failed to initialize searcher: %w", err)
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		cfg:      cfg,
		log:      log,
		registry: registry,
		importer: imp,
		searcher: srch,
	}
	s.registerTools()

	return s, nil
}

// Import runs one import of dir and drops cached search responses
// afterwards, so a re-imported dump is never answered from the cache.
func (s *Server) Import(ctx context.Context, dir string, obs importer.Observer) *importer.Report {
	report := s.importer.ImportDirectory(ctx, dir, importer.Multi(importer.LogObserver{Log: s.log}, orNop(obs)))
	if len(report.DictionariesImported) > 0 {
		s.searcher.InvalidateCache()
	}
	return report
}

// Searcher returns the searcher used by the search tool
func (s *Server) Searcher() *searcher.Searcher {
	return s.searcher
}

// Registry returns the store registry of the data directory
func (s *Server) Registry() *storage.Registry {
	return s.registry
}

// Serve runs the MCP protocol on stdin/stdout until ctx is done or the
// client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return s.ServeIO(ctx, os.Stdin, os.Stdout)
}

// ServeIO runs the MCP protocol on the given streams
func (s *Server) ServeIO(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError))

	s.log.Info("mcp_server_started", slog.String("data_dir", s.cfg.DataDir))
	err := stdio.Listen(ctx, in, out)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Close releases cached store handles
func (s *Server) Close() error {
	return s.registry.Close()
}

func (s *Server) registerTools() {
	s.mcp.AddTool(importDictionariesTool(), s.handleImportDictionaries)
	s.mcp.AddTool(searchDictionaryTool(s.cfg.Search.MaxResults), s.handleSearchDictionary)
	s.mcp.AddTool(listDictionariesTool(), s.handleListDictionaries)
}

func orNop(obs importer.Observer) importer.Observer {
	if obs == nil {
		return importer.NopObserver{}
	}
	return obs
}

// serverFromContext returns the MCP server handling the current request
func serverFromContext(ctx context.Context) *server.MCPServer {
	return server.ServerFromContext(ctx)
}
