package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported dictionaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := a.server()
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			statuses, err := srv.Registry().List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), statuses)
			}
			if len(statuses) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No dictionaries in %s\n", srv.Registry().Dir())
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLANGUAGES\tTIMESTAMP\tENTRIES\tSCHEMA\tSIZE")
			for _, s := range statuses {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.1f MB\n",
					s.Name, s.LanguagePair, s.Timestamp, s.EntryCount, s.Schema, s.SizeMB)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
