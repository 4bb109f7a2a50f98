package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/razeghi71/csvpresto/table"
)

// CSVFormatter outputs a table as CSV with a header row.
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// Format writes the header and every row. Values are written exactly as
// the table renders them.
func (c *CSVFormatter) Format(t *table.Table) error {
	if len(t.Columns) == 0 {
		return nil
	}

	csvWriter := csv.NewWriter(c.writer)
	if err := csvWriter.Write(t.Columns); err != nil {
		return err
	}
	if err := csvWriter.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
