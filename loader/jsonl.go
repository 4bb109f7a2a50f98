package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/razeghi71/csvpresto/table"
)

const maxJSONLine = 16 << 20

// jsonlSource reads one JSON object per line. Columns are the keys of the
// first object, in the order they appear there.
type jsonlSource struct {
	path    string
	scanner *bufio.Scanner
	columns []string
	line    int
	pending []byte
	closers closerStack
}

func newJSONLSource(r io.Reader, path string, closers closerStack) (*jsonlSource, error) {
	br := bufio.NewReader(r)
	if err := skipBOM(br); err != nil {
		return nil, &InputReadError{Path: path, Err: err}
	}
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 64*1024), maxJSONLine)
	s := &jsonlSource{path: path, scanner: scanner, closers: closers}

	line, err := s.nextLine()
	if err == io.EOF {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	columns, err := objectKeys(line)
	if err != nil {
		return nil, &InputReadError{Path: path, Err: fmt.Errorf("invalid JSON on line %d: %w", s.line, err)}
	}
	s.columns = columns
	s.pending = line
	return s, nil
}

// nextLine returns the next non-blank line.
func (s *jsonlSource) nextLine() ([]byte, error) {
	for s.scanner.Scan() {
		s.line++
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) > 0 {
			return line, nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return nil, &InputReadError{Path: s.path, Err: err}
	}
	return nil, io.EOF
}

func (s *jsonlSource) Header() []string {
	return s.columns
}

func (s *jsonlSource) Next() (table.Record, error) {
	line := s.pending
	s.pending = nil
	if line == nil {
		var err error
		if line, err = s.nextLine(); err != nil {
			return table.Record{}, err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return table.Record{}, &InputReadError{Path: s.path, Err: fmt.Errorf("invalid JSON on line %d: %w", s.line, err)}
	}

	fields := make([]string, len(s.columns))
	for i, col := range s.columns {
		fields[i] = jsonText(obj[col])
	}
	return table.Record{Line: s.line, Fields: fields}, nil
}

func (s *jsonlSource) Close() error {
	return s.closers.Close()
}

// objectKeys lists the top-level keys of a JSON object in document order.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected an object, got %v", tok)
	}

	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// jsonText renders a decoded JSON value as a field; null and missing keys
// are empty, nested values keep their JSON encoding.
func jsonText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case json.Number:
		return val.String()
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}
