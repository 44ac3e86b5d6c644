// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/invowk/pkgtab/internal/config"
	"github.com/invowk/pkgtab/internal/winget"
	"github.com/invowk/pkgtab/pkg/tabparse"

	"github.com/spf13/cobra"
)

type (
	// inspectReport is the full analysis of one capture.
	inspectReport struct {
		Header     string          `json:"header" yaml:"header" toml:"header"`
		NameColumn columnReport    `json:"name_column" yaml:"name_column" toml:"name_column"`
		IDColumn   columnReport    `json:"id_column" yaml:"id_column" toml:"id_column"`
		Rows       []inspectRow    `json:"rows" yaml:"rows" toml:"rows"`
		Dropped    []droppedReport `json:"dropped" yaml:"dropped" toml:"dropped"`
	}

	columnReport struct {
		Edge      int         `json:"edge" yaml:"edge" toml:"edge"`
		Normal    int         `json:"normal" yaml:"normal" toml:"normal"`
		Truncated int         `json:"truncated" yaml:"truncated" toml:"truncated"`
		Edges     []edgeCount `json:"edges" yaml:"edges" toml:"edges"`
	}

	edgeCount struct {
		Column int `json:"column" yaml:"column" toml:"column"`
		Rows   int `json:"rows" yaml:"rows" toml:"rows"`
	}

	inspectRow struct {
		Line      int    `json:"line" yaml:"line" toml:"line"`
		Kind      string `json:"kind" yaml:"kind" toml:"kind"`
		Realigned bool   `json:"realigned" yaml:"realigned" toml:"realigned"`
		Name      string `json:"name" yaml:"name" toml:"name"`
		ID        string `json:"id" yaml:"id" toml:"id"`
		Version   string `json:"version" yaml:"version" toml:"version"`
		Source    string `json:"source" yaml:"source" toml:"source"`
	}

	droppedReport struct {
		Line   int    `json:"line" yaml:"line" toml:"line"`
		Reason string `json:"reason" yaml:"reason" toml:"reason"`
		Text   string `json:"text" yaml:"text" toml:"text"`
	}
)

func newInspectCommand(app *App) *cobra.Command {
	var input, term string

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show how a capture was split into columns",
		Long: `Show the column statistics pkgtab inferred for a capture, how every row was
split, and which rows were dropped and why.

Without --search the capture is 'winget list'.`,
		Example: `  pkgtab inspect --input list.txt
  pkgtab inspect --search vscode --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subcommand := "list"
			if term != "" {
				subcommand = "search"
			}
			captures, err := app.captureFrom(subcommand, input)
			if err != nil {
				return err
			}
			s, err := app.open(cmd.Context(), captures)
			if err != nil {
				return err
			}
			defer s.Close()

			var capture winget.Capture
			if term != "" {
				capture, err = s.manager.CaptureSearch(cmd.Context(), term)
			} else {
				capture, err = s.manager.CaptureList(cmd.Context())
			}
			if err != nil {
				return wingetError(err, "capture winget output", "winget "+subcommand)
			}
			s.logger.Debug("inspecting capture", "subcommand", subcommand, "cached", capture.Cached, "bytes", len(capture.Output))

			report := newInspectReport(tabparse.Analyze(capture.Output))
			if s.format == config.OutputTable {
				return writeInspectTable(app.stdout, report)
			}
			return encode(app.stdout, s.format, report)
		},
	}

	inspectCmd.Flags().StringVar(&input, "input", "", `analyze a saved capture ("-" reads stdin)`)
	inspectCmd.Flags().StringVar(&term, "search", "", "analyze 'winget search <term>' instead of 'winget list'")
	return inspectCmd
}

func newInspectReport(t tabparse.Table) inspectReport {
	report := inspectReport{
		Header:     t.Header,
		NameColumn: newColumnReport(t.Stats),
		IDColumn:   newColumnReport(t.RemainderStats),
		Rows:       make([]inspectRow, 0, len(t.Rows)),
		Dropped:    make([]droppedReport, 0, len(t.Dropped)),
	}
	for _, row := range t.Rows {
		report.Rows = append(report.Rows, inspectRow{
			Line:      row.Line,
			Kind:      row.Field.Kind.String(),
			Realigned: row.Realigned,
			Name:      row.Field.LeadingField,
			ID:        row.Rest.ID,
			Version:   row.Rest.Version,
			Source:    row.Rest.Source,
		})
	}
	for _, d := range t.Dropped {
		report.Dropped = append(report.Dropped, droppedReport{Line: d.Line, Reason: string(d.Reason), Text: d.Text})
	}
	return report
}

func newColumnReport(stats tabparse.ColumnStats) columnReport {
	cr := columnReport{
		Edge:      stats.ModalBoundaryStart,
		Normal:    stats.NormalCount,
		Truncated: stats.TruncatedCount,
		Edges:     make([]edgeCount, 0, len(stats.FrequencyTable)),
	}
	for _, col := range slices.Sorted(maps.Keys(stats.FrequencyTable)) {
		cr.Edges = append(cr.Edges, edgeCount{Column: col, Rows: stats.FrequencyTable[col]})
	}
	return cr
}

func writeInspectTable(w io.Writer, r inspectReport) error {
	header := r.Header
	if header == "" {
		header = SubtitleStyle.Render("(none)")
	}
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Header"), header)
	writeColumn(w, "Name column", r.NameColumn)
	writeColumn(w, "Id column", r.IDColumn)
	fmt.Fprintln(w)

	if len(r.Rows) > 0 {
		rows := make([][]string, len(r.Rows))
		for i, row := range r.Rows {
			kind := row.Kind
			if row.Realigned {
				kind += " (realigned)"
			}
			rows[i] = []string{strconv.Itoa(row.Line), kind, row.Name, row.ID, row.Version, row.Source}
		}
		fmt.Fprintln(w, newTable([]string{"Line", "Kind", "Name", "Id", "Version", "Source"}, rows).Render())
	}

	if len(r.Dropped) == 0 {
		return nil
	}
	fmt.Fprintln(w, WarningStyle.Render("Dropped:"))
	for _, d := range r.Dropped {
		fmt.Fprintf(w, "  line %d (%s): %q\n", d.Line, d.Reason, d.Text)
	}
	return nil
}

func writeColumn(w io.Writer, label string, c columnReport) {
	fmt.Fprintf(w, "%s: edge %d (%d normal, %d truncated)\n", KeyStyle.Render(label), c.Edge, c.Normal, c.Truncated)
}
