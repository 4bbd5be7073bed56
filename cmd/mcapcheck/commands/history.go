package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/history"
)

const defaultHistoryLimit = 20

// ErrNoDatabase is returned when the history command has no --db.
var ErrNoDatabase = errors.New("--db is required")

// HistoryCommand holds the flag values of the history command.
type HistoryCommand struct {
	dbPath string
	show   string
	limit  int
}

// NewHistoryCommand creates the command listing stored runs.
func NewHistoryCommand() *cobra.Command {
	hc := &HistoryCommand{}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List previous check runs",
		Long:          "List check runs recorded with --db, newest first, or print one stored report with --show.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          hc.run,
	}

	cmd.Flags().StringVar(&hc.dbPath, "db", "", "SQLite history database")
	cmd.Flags().IntVar(&hc.limit, "limit", defaultHistoryLimit, "Maximum number of runs (0 = all)")
	cmd.Flags().StringVar(&hc.show, "show", "", "Print the stored JSON report of this run id")

	return cmd
}

func (hc *HistoryCommand) run(cmd *cobra.Command, _ []string) error {
	if hc.dbPath == "" {
		return ErrNoDatabase
	}

	store, err := history.Open(cmd.Context(), hc.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if hc.show != "" {
		data, err := store.Report(cmd.Context(), hc.show)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(out, strings.TrimRight(string(data), "\n"))

		return err
	}

	runs, err := store.List(cmd.Context(), hc.limit)
	if err != nil {
		return err
	}

	return writeRuns(out, runs)
}

func writeRuns(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := io.WriteString(w, "no runs recorded\n")

		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "WHEN", "LEVEL", "PASS", "WARN", "FAIL", "STRICT", "DURATION", "FILE"})

	for _, run := range runs {
		tw.AppendRow(table.Row{
			run.ID,
			humanize.Time(run.CreatedAt),
			run.Level,
			run.Summary.Passed,
			run.Summary.Warnings,
			run.Summary.Failed,
			run.Strict,
			run.Duration.String(),
			run.File,
		})
	}

	if _, err := io.WriteString(w, tw.Render()+"\n"); err != nil {
		return fmt.Errorf("write history: %w", err)
	}

	return nil
}
