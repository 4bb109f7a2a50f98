// Package engine computes grouped statistics over a stream of records.
//
// A run resolves the query against the input header, folds every record
// into per-group aggregates, then sorts and truncates the finished groups
// into a result table.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/razeghi71/csvpresto/query"
	"github.com/razeghi71/csvpresto/table"
)

// RowSource yields records after a header; Next returns io.EOF at the end.
type RowSource interface {
	Header() []string
	Next() (table.Record, error)
}

// Options carries settings that are not part of the query's columns.
type Options struct {
	// OnMalformed is query.MalformedSkip (default) or query.MalformedAbort.
	OnMalformed string
	// Precision is the number of decimals averages render with.
	Precision int
	Logger    *slog.Logger
}

// Execute runs a full query over src and returns the sorted, limited
// result. Nothing is returned when reading fails part way.
func Execute(q *query.Query, src RowSource, opts Options) (*table.Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if q.Op == query.OpHeaders {
		return Headers(src.Header()), nil
	}

	plan, err := Resolve(q, src.Header())
	if err != nil {
		return nil, err
	}

	agg := NewAggregator(plan, opts.OnMalformed, logger)
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := agg.Add(rec); err != nil {
			return nil, err
		}
	}

	records := agg.Finalize()
	logger.Debug("aggregation finished",
		"rows", agg.Rows(),
		"skipped", agg.Skipped(),
		"groups", len(records),
	)

	result := buildTable(plan, records, opts.Precision)
	SortRows(result, plan.Sort)
	Limit(result, plan.Limit)
	return result, nil
}

// buildTable lays out one row per group: the group columns, then the
// operation's value for each stat column (or the row count for COUNT).
func buildTable(plan *Plan, records []GroupRecord, precision int) *table.Table {
	columns := make([]string, 0, len(plan.Group)+len(plan.Stats)+1)
	for _, c := range plan.Group {
		columns = append(columns, plan.Header.Label(c))
	}
	if plan.Op == query.OpCount {
		columns = append(columns, "count")
	} else {
		for _, c := range plan.Stats {
			columns = append(columns, fmt.Sprintf("%s(%s)", plan.Op.Label(), plan.Header.Label(c)))
		}
	}

	result := table.NewTable(columns)
	if plan.Op == query.OpAvg {
		for i := range plan.Stats {
			result.SetPrecision(len(plan.Group)+i, precision)
		}
	}

	for _, r := range records {
		vals := make([]table.Value, 0, len(columns))
		vals = append(vals, r.Key...)
		if plan.Op == query.OpCount {
			vals = append(vals, table.IntVal(r.Rows))
		} else {
			for _, a := range r.Stats {
				vals = append(vals, a.Metric(plan.Op))
			}
		}
		result.AddRow(vals)
	}
	return result
}

// Headers lists each column's 1-based index and name, in file order.
func Headers(header []string) *table.Table {
	result := table.NewTable([]string{"index", "name"})
	for i, name := range header {
		result.AddRow([]table.Value{table.IntVal(int64(i + 1)), table.StrVal(name)})
	}
	return result
}
