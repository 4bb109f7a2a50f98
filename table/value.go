package table

import (
	"strconv"
	"strings"
)

// ValueType represents the type of a Value.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeInt
	TypeFloat
	TypeString
)

// Value is a single field, tagged as numeric or text.
//
// Values parsed from input keep their text in Str so that group keys
// render exactly as they were read. Numbers keep it without surrounding
// whitespace.
type Value struct {
	Type  ValueType
	Int   int64
	Float float64
	Str   string
}

// Null returns a null value.
func Null() Value {
	return Value{Type: TypeNull}
}

// IntVal creates an integer value.
func IntVal(v int64) Value {
	return Value{Type: TypeInt, Int: v, Float: float64(v)}
}

// FloatVal creates a float value.
func FloatVal(v float64) Value {
	return Value{Type: TypeFloat, Float: v}
}

// StrVal creates a string value.
func StrVal(v string) Value {
	return Value{Type: TypeString, Str: v}
}

// ParseValue infers the type of a field. Numbers are recognised in plain
// decimal or exponent notation; everything else is text. An empty field is
// null.
func ParseValue(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Null()
	}

	if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Value{Type: TypeInt, Int: v, Float: float64(v), Str: trimmed}
	}

	if v, err := strconv.ParseFloat(trimmed, 64); err == nil && !isSpecialFloat(trimmed) {
		return Value{Type: TypeFloat, Float: v, Str: trimmed}
	}

	return StrVal(s)
}

// isSpecialFloat reports spellings strconv accepts that are not data values
// in a CSV file (inf, nan, hex floats).
func isSpecialFloat(s string) bool {
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	return strings.HasPrefix(lower, "inf") || strings.HasPrefix(lower, "nan") || strings.HasPrefix(lower, "0x")
}

// IsNull returns true if the value is null.
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// IsNumeric returns true for integer and float values.
func (v Value) IsNumeric() bool {
	return v.Type == TypeInt || v.Type == TypeFloat
}

// AsFloat attempts to coerce to float64 for arithmetic.
func (v Value) AsFloat() (float64, bool) {
	switch v.Type {
	case TypeInt:
		return float64(v.Int), true
	case TypeFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// AsString returns the string representation. Null renders as an empty
// string and floats are rendered exactly.
func (v Value) AsString() string {
	if v.Str != "" {
		return v.Str
	}
	switch v.Type {
	case TypeNull:
		return ""
	case TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return v.Str
	}
}

// Format renders the value with a fixed number of decimals when it is a
// float and precision is non-negative.
func (v Value) Format(precision int) string {
	if v.Type == TypeFloat && precision >= 0 {
		return strconv.FormatFloat(v.Float, 'f', precision, 64)
	}
	return v.AsString()
}

// Compare orders two values. Numbers come before text and nulls come
// last; numbers compare numerically and text compares bytewise, so mixed
// columns still get a total order.
func Compare(a, b Value) int {
	if ka, kb := a.rank(), b.rank(); ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}

	switch {
	case a.IsNull():
		return 0
	case a.IsNumeric():
		if a.Type == TypeInt && b.Type == TypeInt {
			switch {
			case a.Int < b.Int:
				return -1
			case a.Int > b.Int:
				return 1
			}
			return 0
		}
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	default:
		return strings.Compare(a.AsString(), b.AsString())
	}
}

func (v Value) rank() int {
	switch {
	case v.IsNumeric():
		return 0
	case v.IsNull():
		return 2
	default:
		return 1
	}
}
