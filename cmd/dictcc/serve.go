package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/dictcc-mcp/internal/importer"
	"github.com/dshills/dictcc-mcp/internal/watcher"
)

func newServeCommand(a *app) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := a.server()
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			a.log.Info("server_starting", slog.String("version", version), slog.Bool("watch", watch))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				// client disconnect ends the watcher too
				defer cancel()
				return srv.Serve(gctx)
			})

			if watch {
				dir := a.sourceDir(nil)
				obs := importer.NopObserver{}
				g.Go(func() error {
					srv.Import(gctx, dir, obs)
					return watcher.New(dir, a.cfg.Watch.Debounce, func(ctx context.Context) {
						srv.Import(ctx, dir, obs)
					}, a.log).Run(gctx)
				})
			}

			err = g.Wait()
			a.log.Info("server_stopped")
			return err
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "import archives from source_dir as they appear")
	return cmd
}
