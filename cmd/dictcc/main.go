package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/dictcc-mcp/internal/config"
	"github.com/dshills/dictcc-mcp/internal/importer"
	"github.com/dshills/dictcc-mcp/internal/logging"
	"github.com/dshills/dictcc-mcp/internal/mcp"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// app holds what every command needs once the root pre-run has loaded
// the configuration
type app struct {
	configFile string

	cfg     *config.Config
	log     *slog.Logger
	cleanup func()
}

func main() {
	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "dictcc",
		Short:         "Offline dict.cc dictionaries: import dumps, search them, serve them over MCP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.cleanup != nil {
				a.cleanup()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file path")
	flags.String("data-dir", "", "directory holding the dictionary stores")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newImportCommand(a),
		newSearchCommand(a),
		newListCommand(a),
		newWatchCommand(a),
		newServeCommand(a),
		newResetCommand(a),
		newVersionCommand(),
	)
	return root
}

// setup loads the configuration, configures logging and makes sure the
// data directory exists
func (a *app) setup(cmd *cobra.Command) error {
	loader, err := config.NewLoader(a.configFile)
	if err != nil {
		return fmt.Errorf("failed to create config loader: %w", err)
	}
	flags := cmd.Root().PersistentFlags()
	if err := loader.BindFlag("data_dir", flags.Lookup("data-dir")); err != nil {
		return err
	}
	if err := loader.BindFlag("log.level", flags.Lookup("log-level")); err != nil {
		return err
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, cleanup, err := logging.Setup(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		FilePath:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if used := loader.ConfigFileUsed(); used != "" {
		log.Debug("config_loaded", slog.String("file", used))
	}

	home, _ := os.UserHomeDir()
	cfg.DataDir = importer.EnsureDirectory(cfg.DataDir, filepath.Join(home, ".dictcc-mcp"), log)

	a.cfg, a.log, a.cleanup = cfg, log, cleanup
	return nil
}

// server builds the registry, importer and searcher. The caller closes it.
func (a *app) server() (*mcp.Server, error) {
	srv, err := mcp.NewServer(a.cfg, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return srv, nil
}

// sourceDir returns the directory argument or the configured download
// directory, created if missing
func (a *app) sourceDir(args []string) string {
	dir := a.cfg.SourceDir
	if len(args) > 0 && args[0] != "" {
		dir = args[0]
	}
	home, _ := os.UserHomeDir()
	return importer.EnsureDirectory(dir, home, a.log)
}
