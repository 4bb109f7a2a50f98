package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	goavro "github.com/linkedin/goavro/v2"
	"github.com/razeghi71/csvpresto/table"
)

type avroSource struct {
	path    string
	ocfr    *goavro.OCFReader
	columns []string
	n       int
	closers closerStack
}

func newAvroSource(r io.Reader, path string, closers closerStack) (*avroSource, error) {
	ocfr, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, &InputReadError{Path: path, Err: fmt.Errorf("not an Avro OCF: %w", err)}
	}

	// Extract column names from the schema
	var schemaDef struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(ocfr.Codec().Schema()), &schemaDef); err != nil {
		return nil, &InputReadError{Path: path, Err: fmt.Errorf("cannot parse Avro schema: %w", err)}
	}

	columns := make([]string, len(schemaDef.Fields))
	for i, field := range schemaDef.Fields {
		columns[i] = field.Name
	}

	return &avroSource{
		path:    path,
		ocfr:    ocfr,
		columns: columns,
		closers: closers,
	}, nil
}

func (s *avroSource) Header() []string {
	return s.columns
}

func (s *avroSource) Next() (table.Record, error) {
	if !s.ocfr.Scan() {
		if err := s.ocfr.Err(); err != nil {
			return table.Record{}, &InputReadError{Path: s.path, Err: err}
		}
		return table.Record{}, io.EOF
	}

	datum, err := s.ocfr.Read()
	if err != nil {
		return table.Record{}, &InputReadError{Path: s.path, Err: err}
	}
	rec, ok := datum.(map[string]interface{})
	if !ok {
		return table.Record{}, &InputReadError{Path: s.path, Err: fmt.Errorf("unexpected Avro record type %T", datum)}
	}

	s.n++
	fields := make([]string, len(s.columns))
	for i, col := range s.columns {
		fields[i] = avroText(rec[col])
	}
	return table.Record{Line: s.n, Fields: fields}, nil
}

func (s *avroSource) Close() error {
	return s.closers.Close()
}

// avroText renders a decoded Avro datum as a field; null is empty.
func avroText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case []byte:
		return string(val)
	case map[string]interface{}:
		// Avro unions decode as {"type": value} - extract the value
		for _, inner := range val {
			return avroText(inner)
		}
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
