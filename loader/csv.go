package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"

	"github.com/razeghi71/csvpresto/table"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type csvSource struct {
	path    string
	reader  *csv.Reader
	header  []string
	closers closerStack
}

func newCSVSource(r io.Reader, path string, delim rune, closers closerStack) (*csvSource, error) {
	br := bufio.NewReader(r)
	if err := skipBOM(br); err != nil {
		return nil, &InputReadError{Path: path, Err: err}
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.TrimLeadingSpace = true
	// Field counts are checked against the header by the engine.
	reader.FieldsPerRecord = -1

	s := &csvSource{
		path:    path,
		reader:  reader,
		closers: closers,
	}

	header, err := reader.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, &InputReadError{Path: path, Err: err}
	}
	s.header = header
	return s, nil
}

// skipBOM drops a leading UTF-8 byte order mark, as written by spreadsheet
// exports on Windows.
func skipBOM(br *bufio.Reader) error {
	prefix, err := br.Peek(len(utf8BOM))
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if bytes.Equal(prefix, utf8BOM) {
		_, err = br.Discard(len(utf8BOM))
		return err
	}
	return nil
}

func (s *csvSource) Header() []string {
	return s.header
}

func (s *csvSource) Next() (table.Record, error) {
	fields, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return table.Record{}, io.EOF
		}
		return table.Record{}, &InputReadError{Path: s.path, Err: err}
	}
	line, _ := s.reader.FieldPos(0)
	return table.Record{Line: line, Fields: fields}, nil
}

func (s *csvSource) Close() error {
	return s.closers.Close()
}
