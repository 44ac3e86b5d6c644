// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/invowk/pkgtab/internal/config"
	"github.com/invowk/pkgtab/pkg/tabparse"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	packageHeaders = []string{"Name", "Id", "Version"}
	searchHeaders  = []string{"Name", "Id", "Version", "Source"}
)

// encode writes v in one of the structured formats. TOML documents must be tables,
// so v has to be a struct or a map when format is toml.
func encode(w io.Writer, format config.OutputFormat, v any) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case config.OutputTOML:
		return toml.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// writeRecords prints records as a table, or encodes them. In TOML the records become
// an array of tables named key.
func writeRecords[T any](w io.Writer, format config.OutputFormat, key string, records []T, headers []string, cells func(T) []string) error {
	if records == nil {
		records = []T{}
	}
	switch format {
	case config.OutputTable:
		if len(records) == 0 {
			_, err := fmt.Fprintln(w, SubtitleStyle.Render("No packages found."))
			return err
		}
		rows := make([][]string, len(records))
		for i, r := range records {
			rows[i] = cells(r)
		}
		_, err := fmt.Fprintln(w, newTable(headers, rows).Render())
		return err
	case config.OutputTOML:
		return encode(w, format, map[string][]T{key: records})
	default:
		return encode(w, format, records)
	}
}

func writePackages(w io.Writer, format config.OutputFormat, pkgs []tabparse.PackageRecord) error {
	return writeRecords(w, format, "packages", pkgs, packageHeaders, func(p tabparse.PackageRecord) []string {
		return []string{p.Name, p.ID, p.Version}
	})
}

func writeSearchResults(w io.Writer, format config.OutputFormat, results []tabparse.SearchRecord) error {
	return writeRecords(w, format, "results", results, searchHeaders, func(r tabparse.SearchRecord) []string {
		return []string{r.Name, r.ID, r.Version, r.Source}
	})
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCellStyle
			case row >= 0 && row < len(rows) && col < len(rows[row]) && strings.HasSuffix(rows[row][col], tabparse.Ellipsis):
				return truncatedCellStyle
			default:
				return cellStyle
			}
		})
}
