package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/terminal"
)

// TextOptions controls human-readable rendering.
type TextOptions struct {
	Terminal terminal.Config
	// FileSize is shown next to the path when positive.
	FileSize int64
}

var levelColors = map[Level]terminal.Color{
	LevelPass: terminal.ColorGreen,
	LevelWarn: terminal.ColorYellow,
	LevelFail: terminal.ColorRed,
}

// WriteText renders doc as a banner, a findings table and a summary line.
func WriteText(w io.Writer, doc Document, opts TextOptions) error {
	term := opts.Terminal
	width := term.Width
	if width <= 0 {
		width = terminal.DefaultWidth
	}

	var b strings.Builder

	title := "MCAP CHECK RESULT: " + string(doc.Level)
	header := terminal.DrawHeader(title, fmt.Sprintf("%d items", len(doc.Items)), width)
	colored := "MCAP CHECK RESULT: " + term.Colorize(string(doc.Level), levelColors[doc.Level])
	b.WriteString(strings.Replace(header, title, colored, 1))
	b.WriteString("\n")

	file := "File: " + doc.File
	if opts.FileSize > 0 {
		file += " (" + humanize.IBytes(uint64(opts.FileSize)) + ")"
	}

	b.WriteString(file + "\n\n")

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateHeader = true
	tw.AppendHeader(table.Row{"", "LEVEL", "CHECK", "DETAIL"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: max(width-40, 20), WidthMaxEnforcer: text.WrapSoft},
	})

	for _, item := range doc.Items {
		col := levelColors[item.Level]
		detail := ""

		if item.Info != nil {
			detail = *item.Info
		}

		tw.AppendRow(table.Row{
			term.Colorize(item.Level.Icon(), col),
			term.Colorize(string(item.Level), col),
			item.Name,
			detail,
		})
	}

	b.WriteString(tw.Render())
	b.WriteString("\n\n")
	b.WriteString(terminal.DrawSeparator(width))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Summary: %d passed, %d warnings, %d failed\n",
		doc.Summary.Passed, doc.Summary.Warnings, doc.Summary.Failed)
	b.WriteString(terminal.DrawSeparator(width))
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	return nil
}
