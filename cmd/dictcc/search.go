package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/dictcc-mcp/internal/searcher"
	"github.com/dshills/dictcc-mcp/pkg/types"
)

var tierColors = map[types.Tier]*color.Color{
	types.TierWord:     color.New(color.FgGreen, color.Bold),
	types.TierDirect:   color.New(color.FgGreen),
	types.TierIndirect: color.New(color.FgYellow),
	types.TierOther:    color.New(color.FgWhite),
}

func newSearchCommand(a *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search <pair> <query...>",
		Short: "Search an imported dictionary, e.g. dictcc search EN-DE house",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dictionary := strings.ToUpper(args[0])
			query := strings.TrimSpace(strings.Join(args[1:], " "))
			if query == "" {
				return errors.New("query cannot be empty")
			}
			if limit < 0 || limit > searcher.MaxResults {
				return fmt.Errorf("--limit must be between 1 and %d", searcher.MaxResults)
			}

			srv, err := a.server()
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			if _, err := srv.Registry().Acquire(dictionary); err != nil {
				return fmt.Errorf("dictionary %s: %w", dictionary, err)
			}

			resp := srv.Searcher().Search(cmd.Context(), searcher.SearchRequest{
				Dictionary: dictionary,
				Query:      query,
				Limit:      limit,
			}, nil)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printResults(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, fmt.Sprintf("maximum number of results (default %d)", searcher.MaxResults))
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func printResults(out io.Writer, resp *searcher.SearchResponse) {
	if len(resp.Results) == 0 {
		fmt.Fprintf(out, "No results for %q in %s\n", resp.Query, resp.Dictionary)
		return
	}
	for _, r := range resp.Results {
		c := tierColors[r.Tier]
		_, _ = c.Fprintf(out, "%-8s", r.Tier)
		fmt.Fprintf(out, " %s", r.DisplayText)
		if r.Category != "" {
			fmt.Fprintf(out, "  [%s]", r.Category)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%d results (%d rows, %s)\n", len(resp.Results), resp.RowsScanned, resp.Duration)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
