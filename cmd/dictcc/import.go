package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/dictcc-mcp/internal/importer"
	"github.com/dshills/dictcc-mcp/pkg/types"
)

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [dir]",
		Short: "Import dict.cc archives from a directory (default: the configured source_dir)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := a.server()
			if err != nil {
				return err
			}
			defer func() { _ = srv.Close() }()

			out := cmd.OutOrStdout()
			report := srv.Import(cmd.Context(), a.sourceDir(args), newConsoleObserver(out))
			if report.Busy {
				return types.ErrImportInProgress
			}
			printReport(out, report)
			return nil
		},
	}
}

// consoleObserver prints import events as coloured lines
type consoleObserver struct {
	out io.Writer
}

func newConsoleObserver(out io.Writer) importer.Observer {
	return consoleObserver{out: out}
}

func (o consoleObserver) StatusChanged(message string) {
	_, _ = color.New(color.FgCyan).Fprintln(o.out, message)
}

func (o consoleObserver) Progress(p importer.Progress) {
	_, _ = color.New(color.FgYellow).Fprintf(o.out, "  %s %3d%% (%d/%d)\n", p.LanguagePair, p.Percent, p.Processed, p.Total)
}

func (o consoleObserver) DictionaryFound(languagePair, timestamp string) {
	_, _ = color.New(color.FgGreen).Fprintf(o.out, "%s ready (dump of %s)\n", languagePair, timestamp)
}

func (o consoleObserver) ImportFinished(*importer.Report) {}

func printReport(out io.Writer, r *importer.Report) {
	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(out, "Archives: %d, files: %d, entries written: %d, lines dropped: %d (%s)\n",
		r.ArchivesFound, r.FilesProcessed, r.EntriesWritten, r.LinesDropped, r.Duration.Round(time.Millisecond))
	if len(r.DictionariesCurrent) > 0 {
		fmt.Fprintf(out, "Already current: %v\n", r.DictionariesCurrent)
	}
	red := color.New(color.FgRed)
	for _, e := range r.Errors {
		_, _ = red.Fprintln(out, e)
	}
}
