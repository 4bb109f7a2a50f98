package table

import (
	"fmt"
	"strings"
)

// Record is one input row: the text fields of a single line, in file order.
type Record struct {
	Line   int
	Fields []string
}

// Field returns the field at a 0-based offset, or "" when the record is
// shorter than that.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// Header holds the column names of an input.
type Header struct {
	Names []string
}

// NewHeader creates a header from column names.
func NewHeader(names []string) *Header {
	return &Header{Names: names}
}

// Len returns the number of columns.
func (h *Header) Len() int {
	return len(h.Names)
}

// Label returns a display name for a 0-based column offset. Unnamed columns
// are labelled colN with N 1-based.
func (h *Header) Label(i int) string {
	if i >= 0 && i < len(h.Names) {
		if name := strings.TrimSpace(h.Names[i]); name != "" {
			return name
		}
	}
	return fmt.Sprintf("col%d", i+1)
}

// Row is a single row in a table, mapping column index to value.
type Row struct {
	Values []Value
}

// Table is the result structure: columns + rows.
type Table struct {
	Columns []string
	// Precision holds per-column decimals for float values; -1 is exact.
	Precision []int
	Rows      []Row
}

// NewTable creates an empty table with the given columns.
func NewTable(columns []string) *Table {
	prec := make([]int, len(columns))
	for i := range prec {
		prec[i] = -1
	}
	return &Table{
		Columns:   columns,
		Precision: prec,
		Rows:      nil,
	}
}

// AddRow appends a row to the table.
func (t *Table) AddRow(values []Value) {
	t.Rows = append(t.Rows, Row{Values: values})
}

// SetPrecision fixes the number of decimals a float column renders with.
func (t *Table) SetPrecision(col, decimals int) {
	if col >= 0 && col < len(t.Precision) {
		t.Precision[col] = decimals
	}
}

// Cell returns the rendered text of a cell. Missing or null cells render
// as an empty string.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	vals := t.Rows[row].Values
	if col < 0 || col >= len(vals) {
		return ""
	}
	prec := -1
	if col < len(t.Precision) {
		prec = t.Precision[col]
	}
	return vals[col].Format(prec)
}

// Records returns every row rendered as text, in row order.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i := range t.Rows {
		rec := make([]string, len(t.Columns))
		for j := range t.Columns {
			rec[j] = t.Cell(i, j)
		}
		out[i] = rec
	}
	return out
}
