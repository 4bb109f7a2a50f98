package engine

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/razeghi71/csvpresto/query"
	"github.com/razeghi71/csvpresto/table"
)

// Aggregate is the running state for one (group, stat column) pair. Only
// numeric values are added; everything else counts as missing.
type Aggregate struct {
	Count int64
	Sum   float64
	// IntSum is exact while Exact holds: every value so far was an integer
	// and the running total has not overflowed.
	IntSum int64
	Exact  bool
	Min    table.Value
	Max    table.Value
}

// Add folds a numeric value into the aggregate.
func (a *Aggregate) Add(v table.Value) {
	f, ok := v.AsFloat()
	if !ok {
		return
	}

	if a.Count == 0 {
		a.Min, a.Max = v, v
		a.Exact = true
	} else {
		if table.Compare(v, a.Min) < 0 {
			a.Min = v
		}
		if table.Compare(v, a.Max) > 0 {
			a.Max = v
		}
	}

	a.Sum += f
	if a.Exact {
		if v.Type == table.TypeInt {
			if s, ok := addInt64(a.IntSum, v.Int); ok {
				a.IntSum = s
			} else {
				a.Exact = false
			}
		} else {
			a.Exact = false
		}
	}
	a.Count++
}

func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// Metric finalizes the aggregate for an operation. With no valid values
// every metric is null.
func (a Aggregate) Metric(op query.Operation) table.Value {
	if a.Count == 0 {
		return table.Null()
	}
	switch op {
	case query.OpSum:
		if a.Exact {
			return table.IntVal(a.IntSum)
		}
		return table.FloatVal(a.Sum)
	case query.OpAvg:
		if a.Exact {
			return table.FloatVal(float64(a.IntSum) / float64(a.Count))
		}
		return table.FloatVal(a.Sum / float64(a.Count))
	case query.OpMin:
		return a.Min
	case query.OpMax:
		return a.Max
	default:
		return table.Null()
	}
}

// GroupRecord is a finished group: its key, the number of rows it holds
// and one aggregate per stat column.
type GroupRecord struct {
	Key   []table.Value
	Rows  int64
	Stats []Aggregate
}

// MalformedRowError reports a record whose field count differs from the
// header's.
type MalformedRowError struct {
	Line   int
	Fields int
	Want   int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row at line %d: expected %d fields, got %d", e.Line, e.Want, e.Fields)
}

// Aggregator folds records into per-group aggregates in a single pass.
// Memory grows with the number of distinct groups, not with row count.
type Aggregator struct {
	plan  *Plan
	abort bool
	log   *slog.Logger

	groups []*GroupRecord
	index  map[string]int

	rows    int64
	skipped int64
}

// NewAggregator creates an aggregator for a resolved plan. onMalformed is
// query.MalformedSkip or query.MalformedAbort.
func NewAggregator(plan *Plan, onMalformed string, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Aggregator{
		plan:  plan,
		abort: onMalformed == query.MalformedAbort,
		log:   logger,
		index: make(map[string]int),
	}
	// Without group columns every row lands in one implicit group, which
	// exists even when the input has no rows.
	if len(plan.Group) == 0 {
		a.group(nil, "")
	}
	return a
}

// Add consumes one record.
func (a *Aggregator) Add(rec table.Record) error {
	if want := a.plan.Header.Len(); len(rec.Fields) != want {
		if a.abort {
			return &MalformedRowError{Line: rec.Line, Fields: len(rec.Fields), Want: want}
		}
		a.skipped++
		a.log.Warn("skipping malformed row", "line", rec.Line, "fields", len(rec.Fields), "want", want)
		return nil
	}

	var g *GroupRecord
	if len(a.plan.Group) == 0 {
		g = a.groups[0]
	} else {
		var sb strings.Builder
		for _, c := range a.plan.Group {
			f := rec.Fields[c]
			// Length-prefixed so that no field content can collide.
			sb.WriteString(strconv.Itoa(len(f)))
			sb.WriteByte(':')
			sb.WriteString(f)
		}
		key := sb.String()
		if gi, ok := a.index[key]; ok {
			g = a.groups[gi]
		} else {
			g = a.group(&rec, key)
		}
	}

	g.Rows++
	for i, c := range a.plan.Stats {
		v := table.ParseValue(rec.Fields[c])
		if v.IsNumeric() {
			g.Stats[i].Add(v)
		}
	}
	a.rows++
	return nil
}

func (a *Aggregator) group(rec *table.Record, key string) *GroupRecord {
	g := &GroupRecord{
		Key:   make([]table.Value, len(a.plan.Group)),
		Stats: make([]Aggregate, len(a.plan.Stats)),
	}
	for i, c := range a.plan.Group {
		g.Key[i] = table.ParseValue(rec.Fields[c])
	}
	a.index[key] = len(a.groups)
	a.groups = append(a.groups, g)
	return g
}

// Rows returns the number of records aggregated.
func (a *Aggregator) Rows() int64 {
	return a.rows
}

// Skipped returns the number of malformed records skipped.
func (a *Aggregator) Skipped() int64 {
	return a.skipped
}

// Finalize returns copies of every group in encounter order.
func (a *Aggregator) Finalize() []GroupRecord {
	out := make([]GroupRecord, len(a.groups))
	for i, g := range a.groups {
		out[i] = GroupRecord{
			Key:   append([]table.Value(nil), g.Key...),
			Rows:  g.Rows,
			Stats: append([]Aggregate(nil), g.Stats...),
		}
	}
	return out
}
