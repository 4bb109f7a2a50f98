package engine

import (
	"github.com/razeghi71/csvpresto/query"
	"github.com/razeghi71/csvpresto/table"
)

// SortKey orders result rows by one result column.
type SortKey struct {
	Col  int
	Desc bool
}

// Plan is a query resolved against an input header: every column is a
// validated 0-based offset and sort keys point at result columns.
type Plan struct {
	Op     query.Operation
	Header *table.Header
	Group  []int
	Stats  []int
	Sort   []SortKey
	Limit  int
}

// Resolve validates the query's 1-based columns against the header.
// Stat columns are ignored for COUNT and HEADERS. With no sort columns,
// results are ordered by the group columns ascending.
func Resolve(q *query.Query, header []string) (*Plan, error) {
	h := table.NewHeader(header)
	plan := &Plan{
		Op:     q.Op,
		Header: h,
		Limit:  q.Limit,
	}

	var err error
	if plan.Group, err = offsets("-g", q.GroupCols, h.Len()); err != nil {
		return nil, err
	}
	if q.Op.NeedsStats() {
		if len(q.StatCols) == 0 {
			return nil, &query.MissingStatColumnsError{Op: q.Op}
		}
		if plan.Stats, err = offsets("-s", q.StatCols, h.Len()); err != nil {
			return nil, err
		}
	}

	for _, dir := range []struct {
		flag string
		cols []int
		desc bool
	}{
		{"-a", q.SortAsc, false},
		{"-d", q.SortDesc, true},
	} {
		if _, err := offsets(dir.flag, dir.cols, h.Len()); err != nil {
			return nil, err
		}
		for _, c := range dir.cols {
			col := resultColumn(c, q, plan)
			if col < 0 {
				return nil, &query.InvalidColumnError{Flag: dir.flag, Index: c, Reason: "not a group or stat column of this query"}
			}
			plan.Sort = append(plan.Sort, SortKey{Col: col, Desc: dir.desc})
		}
	}

	if len(plan.Sort) == 0 {
		for i := range plan.Group {
			plan.Sort = append(plan.Sort, SortKey{Col: i})
		}
	}

	return plan, nil
}

// offsets converts 1-based columns to 0-based offsets within [1, fields].
func offsets(flag string, cols []int, fields int) ([]int, error) {
	out := make([]int, len(cols))
	for i, c := range cols {
		if c < 1 || c > fields {
			return nil, &query.InvalidColumnError{Flag: flag, Index: c, Fields: fields}
		}
		out[i] = c - 1
	}
	return out, nil
}

// resultColumn maps a 1-based input column to its result column: group
// columns come first, then one column per stat column.
func resultColumn(c int, q *query.Query, plan *Plan) int {
	for i, g := range q.GroupCols {
		if g == c {
			return i
		}
	}
	if len(plan.Stats) > 0 {
		for i, s := range q.StatCols {
			if s == c {
				return len(plan.Group) + i
			}
		}
	}
	return -1
}
