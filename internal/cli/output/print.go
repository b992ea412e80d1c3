package output

import (
	"encoding/json"
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by result types that can lay themselves
// out as a table.
type TableRenderer interface {
	// Headers returns the column headers.
	Headers() []string
	// Rows returns one slice per data row, aligned with Headers.
	Rows() [][]string
}

// PrintJSON writes data as indented JSON.
func PrintJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintTable writes data as a borderless left-aligned table.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := newTable(w)
	table.SetHeader(data.Headers())
	for _, row := range data.Rows() {
		table.Append(row)
	}
	table.Render()
	return nil
}

// newTable configures the house table style: no borders or separators,
// headers upcased, two-space column padding.
func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}
