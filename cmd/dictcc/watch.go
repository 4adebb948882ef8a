package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dshills/dictcc-mcp/internal/watcher"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Import once, then import again whenever a new archive is downloaded",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := a.server()
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			dir := a.sourceDir(args)
			obs := newConsoleObserver(cmd.OutOrStdout())
			trigger := func(ctx context.Context) {
				printReport(cmd.OutOrStdout(), srv.Import(ctx, dir, obs))
			}

			trigger(cmd.Context())
			return watcher.New(dir, a.cfg.Watch.Debounce, trigger, a.log).Run(cmd.Context())
		},
	}
}
