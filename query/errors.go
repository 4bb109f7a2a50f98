package query

import "fmt"

// InvalidOperationError reports an unknown or missing operation name.
type InvalidOperationError struct {
	Name string
}

func (e *InvalidOperationError) Error() string {
	if e.Name == "" {
		return "missing operation (one of SUM, AVG, MIN, MAX, COUNT, HEADERS)"
	}
	return fmt.Sprintf("invalid operation %q (one of SUM, AVG, MIN, MAX, COUNT, HEADERS)", e.Name)
}

// InvalidColumnError reports a column index that is not an integer or lies
// outside the input's columns.
type InvalidColumnError struct {
	Flag   string // option the column was given to, e.g. -g
	Value  string // raw text when the index did not parse
	Index  int
	Fields int // number of input columns, when known
	Reason string
}

func (e *InvalidColumnError) Error() string {
	where := ""
	if e.Flag != "" {
		where = " for " + e.Flag
	}
	switch {
	case e.Value != "":
		return fmt.Sprintf("invalid column %q%s: %s", e.Value, where, e.Reason)
	case e.Reason != "":
		return fmt.Sprintf("invalid column %d%s: %s", e.Index, where, e.Reason)
	default:
		return fmt.Sprintf("invalid column %d%s: out of range [1, %d]", e.Index, where, e.Fields)
	}
}

// MissingStatColumnsError reports a numeric operation run without -s.
type MissingStatColumnsError struct {
	Op Operation
}

func (e *MissingStatColumnsError) Error() string {
	return fmt.Sprintf("%s requires at least one stat column (-s)", e.Op)
}

// SettingError reports a bad option value that is not a column.
type SettingError struct {
	Name   string
	Value  string
	Reason string
}

func (e *SettingError) Error() string {
	return fmt.Sprintf("invalid value %q for --%s: %s", e.Value, e.Name, e.Reason)
}
