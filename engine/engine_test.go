package engine

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/razeghi71/csvpresto/query"
	"github.com/razeghi71/csvpresto/table"
)

type sliceSource struct {
	header []string
	rows   [][]string
	pos    int
	err    error // returned after the rows, instead of io.EOF
}

func (s *sliceSource) Header() []string { return s.header }

func (s *sliceSource) Next() (table.Record, error) {
	if s.pos >= len(s.rows) {
		if s.err != nil {
			return table.Record{}, s.err
		}
		return table.Record{}, io.EOF
	}
	s.pos++
	return table.Record{Line: s.pos + 1, Fields: s.rows[s.pos-1]}, nil
}

func employees(extra ...[]string) *sliceSource {
	rows := [][]string{
		{"A", "eng", "100"},
		{"B", "eng", "200"},
		{"C", "sales", "50"},
	}
	return &sliceSource{
		header: []string{"name", "dept", "salary"},
		rows:   append(rows, extra...),
	}
}

func runQuery(t *testing.T, src RowSource, args ...string) *table.Table {
	t.Helper()
	q, err := query.Parse(args)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("validate error: %v", err)
	}
	result, err := Execute(q, src, Options{Precision: 2})
	if err != nil {
		t.Fatalf("exec error: %v", err)
	}
	return result
}

func expectRows(t *testing.T, result *table.Table, want [][]string) {
	t.Helper()
	got := result.Records()
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("row %d col %d: expected %q, got %q", i, j, want[i][j], got[i][j])
			}
		}
	}
}

func TestSumByDept(t *testing.T) {
	result := runQuery(t, employees(), "SUM", "-g", "2", "-s", "3")
	if result.Columns[0] != "dept" || result.Columns[1] != "sum(salary)" {
		t.Errorf("unexpected columns: %v", result.Columns)
	}
	expectRows(t, result, [][]string{{"eng", "300"}, {"sales", "50"}})
}

func TestCountByDept(t *testing.T) {
	result := runQuery(t, employees(), "count", "-g", "2")
	if result.Columns[1] != "count" {
		t.Errorf("unexpected columns: %v", result.Columns)
	}
	expectRows(t, result, [][]string{{"eng", "2"}, {"sales", "1"}})
}

func TestAvgWithLimit(t *testing.T) {
	result := runQuery(t, employees(), "avg", "-g", "2", "-s", "3", "-r", "1")
	expectRows(t, result, [][]string{{"eng", "150.00"}})
}

func TestNonNumericValueIsMissing(t *testing.T) {
	src := func() *sliceSource { return employees([]string{"D", "eng", "oops"}) }

	expectRows(t, runQuery(t, src(), "sum", "-g", "2", "-s", "3"),
		[][]string{{"eng", "300"}, {"sales", "50"}})
	expectRows(t, runQuery(t, src(), "avg", "-g", "2", "-s", "3"),
		[][]string{{"eng", "150.00"}, {"sales", "50.00"}})
	expectRows(t, runQuery(t, src(), "count", "-g", "2"),
		[][]string{{"eng", "3"}, {"sales", "1"}})
}

func TestImplicitGlobalGroup(t *testing.T) {
	result := runQuery(t, employees(), "sum", "-s", "3")
	expectRows(t, result, [][]string{{"350"}})

	result = runQuery(t, &sliceSource{header: []string{"a", "b"}}, "count")
	expectRows(t, result, [][]string{{"0"}})
}

func TestMinMax(t *testing.T) {
	src := func() *sliceSource { return employees([]string{"D", "sales", "50.5"}) }
	expectRows(t, runQuery(t, src(), "min", "-g", "2", "-s", "3"),
		[][]string{{"eng", "100"}, {"sales", "50"}})
	expectRows(t, runQuery(t, src(), "max", "-g", "2", "-s", "3"),
		[][]string{{"eng", "200"}, {"sales", "50.5"}})
}

func TestMinMaxDropPadding(t *testing.T) {
	src := &sliceSource{
		header: []string{"k", "v"},
		rows:   [][]string{{"x", "100 "}, {"x", " 7"}},
	}
	expectRows(t, runQuery(t, src, "max", "-g", "1", "-s", "2"), [][]string{{"x", "100"}})
	src.pos = 0
	expectRows(t, runQuery(t, src, "min", "-g", "1", "-s", "2"), [][]string{{"x", "7"}})
}

func TestAllMissingRendersBlank(t *testing.T) {
	src := &sliceSource{
		header: []string{"k", "v"},
		rows:   [][]string{{"x", "n/a"}, {"y", "4"}},
	}
	result := runQuery(t, src, "avg", "-g", "1", "-s", "2")
	expectRows(t, result, [][]string{{"x", ""}, {"y", "4.00"}})
}

func TestMultipleGroupAndStatColumns(t *testing.T) {
	src := &sliceSource{
		header: []string{"region", "dept", "salary", "bonus"},
		rows: [][]string{
			{"west", "eng", "100", "10"},
			{"east", "eng", "200", "20"},
			{"west", "eng", "300", "5"},
			{"west", "ops", "50", ""},
		},
	}
	result := runQuery(t, src, "sum", "-g", "1", "2", "-s", "3-4")
	if len(result.Columns) != 4 || result.Columns[3] != "sum(bonus)" {
		t.Fatalf("unexpected columns: %v", result.Columns)
	}
	expectRows(t, result, [][]string{
		{"east", "eng", "200", "20"},
		{"west", "eng", "400", "15"},
		{"west", "ops", "50", ""},
	})
}

func TestSortDescendingByStat(t *testing.T) {
	result := runQuery(t, employees(), "sum", "-g", "2", "-s", "3", "-d", "3")
	expectRows(t, result, [][]string{{"eng", "300"}, {"sales", "50"}})

	result = runQuery(t, employees(), "sum", "-g", "2", "-s", "3", "-a", "3")
	expectRows(t, result, [][]string{{"sales", "50"}, {"eng", "300"}})
}

func TestSortNumericGroupKeys(t *testing.T) {
	src := &sliceSource{
		header: []string{"n", "v"},
		rows:   [][]string{{"10", "1"}, {"9", "1"}, {"100", "1"}},
	}
	result := runQuery(t, src, "count", "-g", "1")
	expectRows(t, result, [][]string{{"9", "1"}, {"10", "1"}, {"100", "1"}})

	result = runQuery(t, src, "count", "-g", "1", "-d", "1")
	expectRows(t, result, [][]string{{"100", "1"}, {"10", "1"}, {"9", "1"}})
}

func TestSortAscThenDesc(t *testing.T) {
	src := &sliceSource{
		header: []string{"a", "b", "v"},
		rows: [][]string{
			{"x", "1", "1"},
			{"y", "2", "1"},
			{"x", "3", "1"},
			{"y", "1", "1"},
		},
	}
	result := runQuery(t, src, "count", "-g", "1", "2", "-a", "1", "-d", "2")
	expectRows(t, result, [][]string{
		{"x", "3", "1"},
		{"x", "1", "1"},
		{"y", "2", "1"},
		{"y", "1", "1"},
	})
}

func TestSortStableOnTies(t *testing.T) {
	src := &sliceSource{
		header: []string{"k", "v"},
		rows:   [][]string{{"c", "5"}, {"a", "5"}, {"b", "5"}},
	}
	result := runQuery(t, src, "sum", "-g", "1", "-s", "2", "-d", "2")
	expectRows(t, result, [][]string{{"c", "5"}, {"a", "5"}, {"b", "5"}})
}

func TestNullsSortLast(t *testing.T) {
	src := &sliceSource{
		header: []string{"k", "v"},
		rows:   [][]string{{"a", "x"}, {"b", "2"}, {"c", "3"}},
	}
	asc := runQuery(t, src, "avg", "-g", "1", "-s", "2", "-a", "2")
	expectRows(t, asc, [][]string{{"b", "2.00"}, {"c", "3.00"}, {"a", ""}})

	src.pos = 0
	desc := runQuery(t, src, "avg", "-g", "1", "-s", "2", "-d", "2")
	expectRows(t, desc, [][]string{{"c", "3.00"}, {"b", "2.00"}, {"a", ""}})
}

func TestMixedKeysSortIndependentOfInputOrder(t *testing.T) {
	orders := [][]string{
		{"10", "9", "1a"}, {"10", "1a", "9"}, {"9", "10", "1a"},
		{"9", "1a", "10"}, {"1a", "10", "9"}, {"1a", "9", "10"},
	}
	want := []string{"9", "10", "1a"}
	for _, order := range orders {
		for _, desc := range []bool{false, true} {
			tbl := table.NewTable([]string{"k"})
			for _, k := range order {
				tbl.AddRow([]table.Value{table.ParseValue(k)})
			}
			SortRows(tbl, []SortKey{{Col: 0, Desc: desc}})

			for i := range want {
				w := want[i]
				if desc {
					w = want[len(want)-1-i]
				}
				if got := tbl.Cell(i, 0); got != w {
					t.Errorf("order %v desc=%v: row %d = %q, want %q", order, desc, i, got, w)
				}
			}
		}
	}
}

func TestLimitZero(t *testing.T) {
	result := runQuery(t, employees(), "count", "-g", "2", "-r", "0")
	if len(result.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(result.Rows))
	}
}

func TestHeaders(t *testing.T) {
	result := runQuery(t, employees(), "headers")
	expectRows(t, result, [][]string{{"1", "name"}, {"2", "dept"}, {"3", "salary"}})
}

func TestHeadersDoesNotReadRows(t *testing.T) {
	src := employees()
	src.err = errors.New("should not be read")
	runQuery(t, src, "headers")
	if src.pos != 0 {
		t.Errorf("HEADERS consumed %d rows", src.pos)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"group out of range", []string{"count", "-g", "4"}},
		{"stat out of range", []string{"sum", "-s", "9"}},
		{"sort out of range", []string{"count", "-g", "1", "-a", "5"}},
		{"sort not in query", []string{"count", "-g", "1", "-a", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := query.Parse(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			src := employees()
			_, err = Execute(q, src, Options{})
			var ice *query.InvalidColumnError
			if !errors.As(err, &ice) {
				t.Fatalf("expected InvalidColumnError, got %v", err)
			}
			if src.pos != 0 {
				t.Errorf("rows consumed before validation failed")
			}
		})
	}
}

func TestMissingStatColumns(t *testing.T) {
	q, err := query.Parse([]string{"max", "-g", "1"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Execute(q, employees(), Options{})
	var mse *query.MissingStatColumnsError
	if !errors.As(err, &mse) {
		t.Errorf("expected MissingStatColumnsError, got %v", err)
	}
}

func TestMalformedRows(t *testing.T) {
	src := func() *sliceSource { return employees([]string{"D", "eng"}, []string{"E", "sales", "10"}) }

	result := runQuery(t, src(), "count", "-g", "2")
	expectRows(t, result, [][]string{{"eng", "2"}, {"sales", "2"}})

	q, err := query.Parse([]string{"count", "-g", "2"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Execute(q, src(), Options{OnMalformed: query.MalformedAbort})
	var mre *MalformedRowError
	if !errors.As(err, &mre) {
		t.Fatalf("expected MalformedRowError, got %v", err)
	}
	if mre.Line != 5 || mre.Fields != 2 || mre.Want != 3 {
		t.Errorf("unexpected error detail: %+v", mre)
	}
}

func TestReadErrorDiscardsResult(t *testing.T) {
	src := employees()
	src.err = errors.New("disk gone")
	q, err := query.Parse([]string{"count", "-g", "2"})
	if err != nil {
		t.Fatal(err)
	}
	result, err := Execute(q, src, Options{})
	if err == nil || result != nil {
		t.Errorf("expected error and no result, got %v, %v", result, err)
	}
}

func TestCountsSumToRowTotal(t *testing.T) {
	src := &sliceSource{header: []string{"k", "v"}}
	for i := 0; i < 500; i++ {
		src.rows = append(src.rows, []string{string(rune('a' + i%7)), "x"})
	}
	result := runQuery(t, src, "count", "-g", "1")
	var total int64
	for _, r := range result.Rows {
		total += r.Values[1].Int
	}
	if total != 500 {
		t.Errorf("expected counts to total 500, got %d", total)
	}
}

func TestAggregateProperties(t *testing.T) {
	vals := []string{"3", "-1.5", "8", "2.25", "x", "", "0"}
	var a Aggregate
	var sum float64
	var n int64
	for _, s := range vals {
		v := table.ParseValue(s)
		if f, ok := v.AsFloat(); ok {
			sum += f
			n++
		}
		a.Add(v)
	}
	if a.Count != n {
		t.Fatalf("expected count %d, got %d", n, a.Count)
	}
	avg := a.Metric(query.OpAvg).Float
	if math.Abs(avg-sum/float64(n)) > 1e-9 {
		t.Errorf("avg %v != sum/count %v", avg, sum/float64(n))
	}
	minV, _ := a.Metric(query.OpMin).AsFloat()
	maxV, _ := a.Metric(query.OpMax).AsFloat()
	if minV != -1.5 || maxV != 8 {
		t.Errorf("unexpected min/max %v/%v", minV, maxV)
	}
	if a.Exact {
		t.Errorf("sum with fractional values should not be exact")
	}
}

func TestIntSumOverflowFallsBack(t *testing.T) {
	var a Aggregate
	a.Add(table.IntVal(math.MaxInt64))
	a.Add(table.IntVal(1))
	if a.Exact {
		t.Fatal("expected overflow to clear exact sum")
	}
	if got := a.Metric(query.OpSum); got.Type != table.TypeFloat {
		t.Errorf("expected float sum after overflow, got type %d", got.Type)
	}
}

func TestSortIdempotent(t *testing.T) {
	result := runQuery(t, employees(), "sum", "-g", "2", "-s", "3", "-d", "3")
	before := result.Records()
	SortRows(result, []SortKey{{Col: 1, Desc: true}})
	after := result.Records()
	for i := range before {
		if before[i][0] != after[i][0] {
			t.Errorf("row %d changed after re-sort", i)
		}
	}

	Limit(result, 1)
	Limit(result, 1)
	if len(result.Rows) != 1 {
		t.Errorf("expected 1 row after repeated limit, got %d", len(result.Rows))
	}
}
