package render

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/razeghi71/csvpresto/table"
)

// TextFormatter prints an aligned, borderless table for terminals.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the table with a header row and a separator line.
func (f *TextFormatter) Format(t *table.Table) error {
	if len(t.Columns) == 0 {
		return nil
	}

	ew := &errWriter{w: f.writer}
	tw := tablewriter.NewWriter(ew)
	tw.SetHeader(t.Columns)
	// Labels such as sum(salary) must print as given.
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetBorder(false)
	tw.SetColumnSeparator("|")
	tw.SetCenterSeparator("+")
	tw.SetRowSeparator("-")
	tw.AppendBulk(t.Records())
	tw.Render()

	if ew.err != nil {
		return fmt.Errorf("failed to write table: %w", ew.err)
	}
	return nil
}
