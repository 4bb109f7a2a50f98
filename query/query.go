// Package query describes a single csvpresto invocation: the operation to
// run, the input to read and the columns to group, aggregate and sort by.
package query

import "strings"

// Operation is the statistic a run computes.
type Operation int

const (
	OpNone Operation = iota
	OpSum
	OpAvg
	OpMin
	OpMax
	OpCount
	OpHeaders
)

var opNames = map[Operation]string{
	OpSum:     "SUM",
	OpAvg:     "AVG",
	OpMin:     "MIN",
	OpMax:     "MAX",
	OpCount:   "COUNT",
	OpHeaders: "HEADERS",
}

// ParseOperation converts an operation name, case-insensitively.
func ParseOperation(name string) (Operation, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for op, n := range opNames {
		if n == upper {
			return op, nil
		}
	}
	return OpNone, &InvalidOperationError{Name: name}
}

func (o Operation) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "NONE"
}

// Label is the lowercase prefix used in result column labels, e.g. sum.
func (o Operation) Label() string {
	return strings.ToLower(o.String())
}

// NeedsStats reports whether the operation aggregates stat columns.
func (o Operation) NeedsStats() bool {
	switch o {
	case OpSum, OpAvg, OpMin, OpMax:
		return true
	}
	return false
}

// Malformed-row policies.
const (
	MalformedSkip  = "skip"
	MalformedAbort = "abort"
)

// Input formats understood by the loader.
const (
	FormatCSV     = "csv"
	FormatTSV     = "tsv"
	FormatAvro    = "avro"
	FormatParquet = "parquet"
	FormatJSONL   = "jsonl"
)

// Query is the immutable description of a run. Column lists hold the
// user's 1-based indices in the order given.
type Query struct {
	Op       Operation
	Filename string // "" or "-" reads standard input

	GroupCols []int
	StatCols  []int
	SortAsc   []int
	SortDesc  []int

	// Limit is the maximum number of result rows; -1 means unlimited.
	Limit int
	CSV   bool

	// Settings below default from configuration when left unset
	// (Precision -1, empty strings, zero rune).
	Precision   int
	OnMalformed string
	Delimiter   rune
	Format      string

	Help bool
}

// New returns a query with every optional setting unset.
func New() *Query {
	return &Query{
		Limit:     -1,
		Precision: -1,
	}
}

// IsStdin reports whether the query reads standard input.
func (q *Query) IsStdin() bool {
	return q.Filename == "" || q.Filename == "-"
}

// Validate checks everything that can be checked before the input header is
// seen: an operation is present, stat columns are given when required and
// settings hold legal values.
func (q *Query) Validate() error {
	if q.Op == OpNone {
		return &InvalidOperationError{}
	}
	if q.Op.NeedsStats() && len(q.StatCols) == 0 {
		return &MissingStatColumnsError{Op: q.Op}
	}
	switch q.OnMalformed {
	case "", MalformedSkip, MalformedAbort:
	default:
		return &SettingError{Name: "on-malformed", Value: q.OnMalformed, Reason: "must be skip or abort"}
	}
	switch q.Format {
	case "", FormatCSV, FormatTSV, FormatAvro, FormatParquet, FormatJSONL:
	default:
		return &SettingError{Name: "format", Value: q.Format, Reason: "must be csv, tsv, jsonl, avro or parquet"}
	}
	return nil
}
