package engine

import (
	"sort"

	"github.com/razeghi71/csvpresto/table"
)

// SortRows orders rows by keys in priority order. Null values sort last in
// either direction; ties keep their existing order.
func SortRows(t *table.Table, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		for _, k := range keys {
			a := cell(t.Rows[i], k.Col)
			b := cell(t.Rows[j], k.Col)
			if a.IsNull() != b.IsNull() {
				return b.IsNull()
			}
			cmp := table.Compare(a, b)
			if cmp != 0 {
				if k.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return false
	})
}

func cell(r table.Row, col int) table.Value {
	if col < 0 || col >= len(r.Values) {
		return table.Null()
	}
	return r.Values[col]
}

// Limit keeps at most n rows; a negative n keeps everything.
func Limit(t *table.Table, n int) {
	if n < 0 || n >= len(t.Rows) {
		return
	}
	t.Rows = t.Rows[:n]
}
