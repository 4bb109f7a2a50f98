// Package loader opens an input and yields its rows one at a time.
//
// Every source exposes the same shape: a header naming the columns and a
// sequence of text records. Delimited text is read with encoding/csv,
// JSON lines with encoding/json, Avro object container files with goavro
// and Parquet files with parquet-go. Every format but Parquet may be gzip,
// zstd or lz4 compressed.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/razeghi71/csvpresto/query"
	"github.com/razeghi71/csvpresto/table"
)

// Source is a finite, non-restartable sequence of records.
type Source interface {
	// Header returns the column names, in input order.
	Header() []string
	// Next returns the next record, or io.EOF when the input is exhausted.
	Next() (table.Record, error)
	Close() error
}

// Options controls how an input is opened.
type Options struct {
	// Format overrides detection by file extension.
	Format string
	// Delimiter separates fields in text input; 0 means comma (tab for tsv).
	Delimiter rune
	// Stdin is read when the filename is "" or "-".
	Stdin io.Reader
}

// InputReadError reports an input that could not be opened or read.
type InputReadError struct {
	Path string
	Err  error
}

func (e *InputReadError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", displayName(e.Path), e.Err)
}

func (e *InputReadError) Unwrap() error {
	return e.Err
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "standard input"
	}
	return path
}

// Open opens filename and returns a source positioned after the header.
func Open(filename string, opts Options) (Source, error) {
	stdin := filename == "" || filename == "-"
	format, codec := detect(filename)
	if opts.Format != "" {
		format = opts.Format
	}
	if stdin && opts.Format == "" {
		format = query.FormatCSV
	}

	if format == query.FormatParquet {
		if stdin {
			return nil, &InputReadError{Path: filename, Err: errors.New("parquet input must be a file")}
		}
		if codec != "" {
			return nil, &InputReadError{Path: filename, Err: fmt.Errorf("compressed parquet (%s) is not supported", codec)}
		}
		return openParquet(filename)
	}

	var (
		r       io.Reader
		closers closerStack
	)
	if stdin {
		if opts.Stdin == nil {
			return nil, &InputReadError{Path: filename, Err: errors.New("no standard input")}
		}
		r = opts.Stdin
	} else {
		f, err := os.Open(filename)
		if err != nil {
			return nil, &InputReadError{Path: filename, Err: err}
		}
		r = f
		closers = append(closers, f)
	}

	if codec != "" {
		dr, c, err := decompress(r, codec)
		if err != nil {
			closers.Close()
			return nil, &InputReadError{Path: filename, Err: err}
		}
		r = dr
		if c != nil {
			closers = append(closers, c)
		}
	}

	var (
		src Source
		err error
	)
	switch format {
	case query.FormatAvro:
		src, err = newAvroSource(r, filename, closers)
	case query.FormatJSONL:
		src, err = newJSONLSource(r, filename, closers)
	default:
		delim := opts.Delimiter
		if delim == 0 {
			delim = ','
			if format == query.FormatTSV {
				delim = '\t'
			}
		}
		src, err = newCSVSource(r, filename, delim, closers)
	}
	if err != nil {
		closers.Close()
		return nil, err
	}
	return src, nil
}

// detect infers the input format and compression codec from a file name,
// e.g. "sales.tsv.gz" is tsv compressed with gzip. Unknown extensions are
// read as csv.
func detect(filename string) (format, codec string) {
	name := strings.ToLower(filename)
	ext := filepath.Ext(name)
	switch ext {
	case ".gz", ".zst", ".lz4":
		codec = ext
		name = strings.TrimSuffix(name, ext)
		ext = filepath.Ext(name)
	}

	switch ext {
	case ".tsv", ".tab":
		return query.FormatTSV, codec
	case ".avro":
		return query.FormatAvro, codec
	case ".jsonl", ".ndjson":
		return query.FormatJSONL, codec
	case ".parquet":
		return query.FormatParquet, codec
	default:
		return query.FormatCSV, codec
	}
}

// closerStack closes in reverse order of opening.
type closerStack []io.Closer

func (s closerStack) Close() error {
	var errs []error
	for i := len(s) - 1; i >= 0; i-- {
		if err := s[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
