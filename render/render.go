// Package render writes result tables as aligned text or CSV.
//
// Both formats print a header row followed by one line per result row.
// Undefined values (for example the average of a group with no numeric
// values) render as empty fields.
package render

import (
	"io"

	"github.com/razeghi71/csvpresto/table"
)

// Formatter writes a table to its output.
type Formatter interface {
	Format(t *table.Table) error
}

// New returns the CSV formatter when csv is set, the text formatter
// otherwise.
func New(w io.Writer, csv bool) Formatter {
	if csv {
		return NewCSVFormatter(w)
	}
	return NewTextFormatter(w)
}

// errWriter remembers the first write error so formatters built on
// libraries that swallow errors can still report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
