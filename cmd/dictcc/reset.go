package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newResetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <pair>",
		Short: "Empty an imported dictionary so the next import reloads it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dictionary := strings.ToUpper(args[0])

			srv, err := a.server()
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			if err := srv.Registry().Reset(cmd.Context(), dictionary); err != nil {
				return fmt.Errorf("dictionary %s: %w", dictionary, err)
			}
			srv.Searcher().InvalidateCache()

			_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "%s reset, run import to reload it\n", dictionary)
			return nil
		},
	}
}
