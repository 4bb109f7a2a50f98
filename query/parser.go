package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parser converts command-line arguments into a Query.
type Parser struct {
	args []string
	pos  int

	// inline holds the value of a --name=value argument until consumed.
	inline *string
}

// Parse parses the arguments that follow the program name.
//
// The operation and file may be given positionally (OP [FILE]) or with the
// -o and -f options. Column options take one or more column lists, each a
// 1-based index, a comma list (2,3) or an inclusive range (5-7).
func Parse(args []string) (*Query, error) {
	p := &Parser{args: args}
	return p.parseQuery()
}

func (p *Parser) peek() (string, bool) {
	if p.pos >= len(p.args) {
		return "", false
	}
	return p.args[p.pos], true
}

func (p *Parser) advance() (string, bool) {
	arg, ok := p.peek()
	if ok {
		p.pos++
	}
	return arg, ok
}

func (p *Parser) expect(name string) (string, error) {
	if p.inline != nil {
		v := *p.inline
		p.inline = nil
		return v, nil
	}
	arg, ok := p.advance()
	if !ok {
		return "", fmt.Errorf("option %s requires a value", name)
	}
	return arg, nil
}

func (p *Parser) parseQuery() (*Query, error) {
	q := New()
	var positional []string

	for {
		arg, ok := p.advance()
		if !ok {
			break
		}

		if arg == "--" {
			positional = append(positional, p.args[p.pos:]...)
			p.pos = len(p.args)
			break
		}

		if arg == "-" || !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			continue
		}

		if strings.HasPrefix(arg, "--") {
			if name, value, found := strings.Cut(arg, "="); found {
				arg = name
				p.inline = &value
			}
		}

		if err := p.parseOption(arg, q); err != nil {
			return nil, err
		}
		if p.inline != nil {
			return nil, fmt.Errorf("option %s does not take an inline value", arg)
		}
	}

	for _, arg := range positional {
		switch {
		case q.Op == OpNone:
			op, err := ParseOperation(arg)
			if err != nil {
				return nil, err
			}
			q.Op = op
		case q.Filename == "":
			q.Filename = arg
		default:
			return nil, fmt.Errorf("unexpected argument %q", arg)
		}
	}

	return q, nil
}

func (p *Parser) parseOption(name string, q *Query) error {
	var err error
	switch name {
	case "-g", "--group":
		q.GroupCols, err = p.parseColumns(name, q.GroupCols)
	case "-s", "--stats":
		q.StatCols, err = p.parseColumns(name, q.StatCols)
	case "-a", "--asc":
		q.SortAsc, err = p.parseColumns(name, q.SortAsc)
	case "-d", "--desc":
		q.SortDesc, err = p.parseColumns(name, q.SortDesc)
	case "-r", "--rows":
		q.Limit, err = p.parseCount(name)
	case "-c", "--csv":
		q.CSV = true
	case "-h", "--help":
		q.Help = true
	case "-o", "--op":
		var v string
		if v, err = p.expect(name); err == nil {
			q.Op, err = ParseOperation(v)
		}
	case "-f", "--file":
		q.Filename, err = p.expect(name)
	case "--precision":
		q.Precision, err = p.parseCount(name)
	case "--on-malformed":
		q.OnMalformed, err = p.expect(name)
		q.OnMalformed = strings.ToLower(q.OnMalformed)
	case "--delimiter":
		var v string
		if v, err = p.expect(name); err == nil {
			q.Delimiter, err = ParseDelimiter(v)
		}
	case "--format":
		q.Format, err = p.expect(name)
		q.Format = strings.ToLower(q.Format)
	default:
		err = fmt.Errorf("unknown option %q", name)
	}
	return err
}

// parseColumns consumes every following argument that looks like a column
// list and appends the indices to cols.
func (p *Parser) parseColumns(flag string, cols []int) ([]int, error) {
	if p.inline != nil {
		v := *p.inline
		p.inline = nil
		parsed, err := ParseColumnList(v)
		if err != nil {
			return nil, withFlag(err, flag)
		}
		return append(cols, parsed...), nil
	}

	arg, ok := p.peek()
	if !ok || (strings.HasPrefix(arg, "-") && arg != "-") {
		return nil, &InvalidColumnError{Flag: flag, Reason: "expected at least one column"}
	}
	if !isColumnList(arg) {
		return nil, &InvalidColumnError{Flag: flag, Value: arg, Reason: "not a positive integer"}
	}

	for ok && isColumnList(arg) {
		p.advance()
		parsed, err := ParseColumnList(arg)
		if err != nil {
			return nil, withFlag(err, flag)
		}
		cols = append(cols, parsed...)
		arg, ok = p.peek()
	}
	return cols, nil
}

func withFlag(err error, flag string) error {
	var ce *InvalidColumnError
	if errors.As(err, &ce) {
		ce.Flag = flag
	}
	return err
}

func (p *Parser) parseCount(name string) (int, error) {
	v, err := p.expect(name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &SettingError{Name: strings.TrimLeft(name, "-"), Value: v, Reason: "must be a non-negative integer"}
	}
	return n, nil
}

// isColumnList reports whether an argument is shaped like a column list:
// digits, commas and dashes, starting with a digit.
func isColumnList(s string) bool {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != ',' && r != '-' {
			return false
		}
	}
	return true
}

// MaxColumn is the highest column index accepted on the command line.
const MaxColumn = 1 << 16

// ParseColumnList parses "3", "2,3" or "5-7" into 1-based column indices.
func ParseColumnList(s string) ([]int, error) {
	var cols []int
	for _, part := range strings.Split(s, ",") {
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := parseColumn(lo, part)
		if err != nil {
			return nil, err
		}
		if !isRange {
			cols = append(cols, first)
			continue
		}
		last, err := parseColumn(hi, part)
		if err != nil {
			return nil, err
		}
		if last < first {
			return nil, &InvalidColumnError{Value: part, Reason: "range end precedes start"}
		}
		for c := first; c <= last; c++ {
			cols = append(cols, c)
		}
	}
	return cols, nil
}

func parseColumn(s, context string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &InvalidColumnError{Value: context, Reason: "not a positive integer"}
	}
	if n < 1 {
		return 0, &InvalidColumnError{Index: n, Reason: "columns are numbered from 1"}
	}
	if n > MaxColumn {
		return 0, &InvalidColumnError{Index: n, Reason: fmt.Sprintf("exceeds the maximum column %d", MaxColumn)}
	}
	return n, nil
}

// ParseDelimiter accepts a single character, or "\t" / "tab" for a tab.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, &SettingError{Name: "delimiter", Value: s, Reason: "must be a single character"}
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, &SettingError{Name: "delimiter", Value: s, Reason: "not usable as a field separator"}
	}
	return r, nil
}
