package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
)

// NewDiffCommand creates the command comparing two saved reports.
func NewDiffCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "diff <a.json> <b.json>",
		Short: "Compare the findings of two saved reports",
		Long: `Validate two saved JSON reports (plain or .lz4) against the report schema
and print a line diff of their grades and findings.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadReport(args[0])
			if err != nil {
				return err
			}

			b, err := loadReport(args[1])
			if err != nil {
				return err
			}

			return writeDiff(cmd.OutOrStdout(), a, b, noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

func loadReport(path string) (report.Document, error) {
	data, err := report.ReadFile(path)
	if err != nil {
		return report.Document{}, err
	}

	if err := report.Validate(data); err != nil {
		return report.Document{}, fmt.Errorf("%s: %w", path, err)
	}

	return report.DecodeJSON(data)
}

// findingLines flattens doc into one line per grade, summary and finding.
func findingLines(doc report.Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "level: %s\n", doc.Level)
	fmt.Fprintf(&b, "summary: %d passed, %d warnings, %d failed\n",
		doc.Summary.Passed, doc.Summary.Warnings, doc.Summary.Failed)

	for _, item := range doc.Items {
		if item.Info != nil {
			fmt.Fprintf(&b, "[%s] %s: %s\n", item.Level, item.Name, *item.Info)
		} else {
			fmt.Fprintf(&b, "[%s] %s\n", item.Level, item.Name)
		}
	}

	return b.String()
}

func writeDiff(w io.Writer, a, b report.Document, noColor bool) error {
	dmp := diffmatchpatch.New()

	left, right, lines := dmp.DiffLinesToChars(findingLines(a), findingLines(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(left, right, false), lines)

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	header := color.New(color.Bold)

	if noColor {
		added.DisableColor()
		removed.DisableColor()
		header.DisableColor()
	}

	var out strings.Builder

	header.Fprintf(&out, "--- %s\n", a.File)
	header.Fprintf(&out, "+++ %s\n", b.File)

	changed := false

	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}

			line = strings.TrimSuffix(line, "\n")

			switch d.Type {
			case diffmatchpatch.DiffInsert:
				changed = true

				added.Fprintf(&out, "+ %s\n", line)
			case diffmatchpatch.DiffDelete:
				changed = true

				removed.Fprintf(&out, "- %s\n", line)
			case diffmatchpatch.DiffEqual:
				fmt.Fprintf(&out, "  %s\n", line)
			}
		}
	}

	if !changed {
		out.WriteString("reports are identical\n")
	}

	if _, err := io.WriteString(w, out.String()); err != nil {
		return fmt.Errorf("write diff: %w", err)
	}

	return nil
}
