package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table output formats.
const (
	formatTable    = "table"
	formatMarkdown = "markdown"
	formatCSV      = "csv"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// validateTableFormat checks a --format value.
func validateTableFormat(format string) error {
	switch format {
	case formatTable, formatMarkdown, formatCSV:
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be 'table', 'markdown' or 'csv')", format)
}

// writeTable renders rows in the given format to w.
func writeTable(w io.Writer, format string, headers []string, rows [][]string, aligns []columnAlignment) error {
	columns := len(headers)
	if columns == 0 {
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	var out string
	switch format {
	case formatMarkdown:
		out = tw.RenderMarkdown()
	case formatCSV:
		out = tw.RenderCSV()
	default:
		out = tw.Render()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
