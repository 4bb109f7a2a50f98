package loader

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/razeghi71/csvpresto/table"
)

const parquetBatch = 128

type parquetSource struct {
	path    string
	file    *os.File
	reader  *parquet.Reader
	columns []string

	buf  []parquet.Row
	pos  int
	n    int
	err  error // terminal error from the last batch
	line int
}

func openParquet(path string) (*parquetSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputReadError{Path: path, Err: err}
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &InputReadError{Path: path, Err: err}
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		_ = f.Close()
		return nil, &InputReadError{Path: path, Err: err}
	}

	// Leaf columns, in the order row values report through Value.Column.
	var columns []string
	for _, p := range pf.Schema().Columns() {
		columns = append(columns, strings.Join(p, "."))
	}

	return &parquetSource{
		path:    path,
		file:    f,
		reader:  parquet.NewReader(pf),
		columns: columns,
		buf:     make([]parquet.Row, parquetBatch),
	}, nil
}

func (s *parquetSource) Header() []string {
	return s.columns
}

func (s *parquetSource) Next() (table.Record, error) {
	if s.pos >= s.n {
		if s.err != nil {
			return table.Record{}, s.err
		}
		n, err := s.reader.ReadRows(s.buf)
		s.pos, s.n = 0, n
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.err = io.EOF
			} else {
				s.err = &InputReadError{Path: s.path, Err: err}
			}
		}
		if n == 0 {
			if s.err == nil {
				s.err = io.EOF
			}
			return table.Record{}, s.err
		}
	}

	row := s.buf[s.pos]
	s.pos++
	s.line++

	fields := make([]string, len(s.columns))
	for _, v := range row {
		if c := v.Column(); c >= 0 && c < len(fields) {
			fields[c] = parquetText(v)
		}
	}
	return table.Record{Line: s.line, Fields: fields}, nil
}

func (s *parquetSource) Close() error {
	err := s.reader.Close()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// parquetText renders a leaf value as a field; null is empty.
func parquetText(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'f', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
