// Package filters decomposes the three filter encodings the query layer
// accepts — a map, a single "column__op=value" string, or a slice of
// (column, op, value) triples — into a typed AST, and renders that AST
// into WHERE-ready SQL fragments.
//
// Grounded on original_source/lorelie/backends.py:decompose_filters/
// build_filters and database/expressions/base.py:ExpressionMap.
package filters

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lorelie-orm/lorelie/sqltoken"
)

// Op is the decomposed operator of a filter triple.
type Op string

const (
	OpEq         Op = "eq"
	OpNe         Op = "ne"
	OpLt         Op = "lt"
	OpLte        Op = "lte"
	OpGt         Op = "gt"
	OpGte        Op = "gte"
	OpContains   Op = "contains"
	OpStartsWith Op = "startswith"
	OpEndsWith   Op = "endswith"
	OpIn         Op = "in"
	OpRange      Op = "range"
	OpIsNull     Op = "isnull"
	OpRegex      Op = "regex"
)

// suffixTable maps the string suffix used in a filter key to its Op, per
// spec §4.1's table.
var suffixTable = map[string]Op{
	"eq":         OpEq,
	"ne":         OpNe,
	"lt":         OpLt,
	"lte":        OpLte,
	"gt":         OpGt,
	"gte":        OpGte,
	"contains":   OpContains,
	"startswith": OpStartsWith,
	"endswith":   OpEndsWith,
	"in":         OpIn,
	"range":      OpRange,
	"isnull":     OpIsNull,
	"regex":      OpRegex,
}

// FilterExpr is the typed AST for one decomposed filter: a dotted column
// path (len > 1 denotes a foreign-key traversal), an operator, and a
// literal or list-of-literals value.
type FilterExpr struct {
	Path  []string
	Op    Op
	Value any
}

// Column renders the dotted column path, e.g. "ages.id" for a
// foreign-key traversal, or the bare column name otherwise.
func (f FilterExpr) Column() string {
	return strings.Join(f.Path, ".")
}

// Decompose splits a "column[__path...]__op" key into a FilterExpr. If
// the trailing token is not a recognized operator suffix, "eq" is
// assumed and the whole key is treated as the column path.
func Decompose(key string, value any) FilterExpr {
	tokens := strings.Split(key, "__")
	op := OpEq
	path := tokens

	if len(tokens) > 1 {
		if candidate, ok := suffixTable[tokens[len(tokens)-1]]; ok {
			op = candidate
			path = tokens[:len(tokens)-1]
		}
	}

	return FilterExpr{Path: path, Op: op, Value: value}
}

// DecomposeMap decomposes a map of filter keys into an ordered,
// deterministic slice of FilterExpr (map keys are sorted first so the
// same input always yields the same ordered output, per spec property 2).
func DecomposeMap(kwargs map[string]any) []FilterExpr {
	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]FilterExpr, 0, len(keys))
	for _, k := range keys {
		out = append(out, Decompose(k, kwargs[k]))
	}
	return out
}

// DecomposeString parses a single "column__op=value" string expression.
func DecomposeString(expr string) (FilterExpr, error) {
	parts := strings.SplitN(expr, "=", 2)
	if len(parts) != 2 {
		return FilterExpr{}, fmt.Errorf("filters: %q is not a valid column__op=value expression", expr)
	}
	return Decompose(parts[0], parts[1]), nil
}

// DecomposeTriples converts a slice of (column, op, value) triples into
// FilterExpr values directly, without suffix parsing.
func DecomposeTriples(triples [][3]any) ([]FilterExpr, error) {
	out := make([]FilterExpr, 0, len(triples))
	for _, t := range triples {
		column, ok := t[0].(string)
		if !ok {
			return nil, fmt.Errorf("filters: column must be a string, got %T", t[0])
		}
		opStr, ok := t[1].(string)
		if !ok {
			return nil, fmt.Errorf("filters: operator must be a string, got %T", t[1])
		}
		op, ok := suffixTable[opStr]
		if !ok {
			// allow raw symbolic operators like "=" to pass through as eq
			op = OpEq
		}
		out = append(out, FilterExpr{Path: strings.Split(column, "__"), Op: op, Value: t[2]})
	}
	return out, nil
}

// BuildFragment renders one FilterExpr into a WHERE-ready SQL fragment.
func BuildFragment(f FilterExpr) (string, error) {
	column := f.Column()

	switch f.Op {
	case OpEq:
		return fmt.Sprintf("%s = %s", column, sqltoken.QuoteValue(f.Value)), nil
	case OpNe:
		return fmt.Sprintf("%s != %s", column, sqltoken.QuoteValue(f.Value)), nil
	case OpLt:
		return fmt.Sprintf("%s < %s", column, sqltoken.QuoteValue(f.Value)), nil
	case OpLte:
		return fmt.Sprintf("%s <= %s", column, sqltoken.QuoteValue(f.Value)), nil
	case OpGt:
		return fmt.Sprintf("%s > %s", column, sqltoken.QuoteValue(f.Value)), nil
	case OpGte:
		return fmt.Sprintf("%s >= %s", column, sqltoken.QuoteValue(f.Value)), nil
	case OpContains:
		return fmt.Sprintf("%s LIKE %s", column, sqltoken.QuoteLike(fmt.Sprint(f.Value))), nil
	case OpStartsWith:
		return fmt.Sprintf("%s LIKE %s", column, sqltoken.QuoteStartsWith(fmt.Sprint(f.Value))), nil
	case OpEndsWith:
		return fmt.Sprintf("%s LIKE %s", column, sqltoken.QuoteEndsWith(fmt.Sprint(f.Value))), nil
	case OpRegex:
		return fmt.Sprintf("regexp(%s, %s)", column, sqltoken.QuoteValue(f.Value)), nil
	case OpIsNull:
		truthy, _ := f.Value.(bool)
		if truthy {
			return fmt.Sprintf("%s IS NULL", column), nil
		}
		return fmt.Sprintf("%s IS NOT NULL", column), nil
	case OpIn:
		values, err := toSlice(f.Value)
		if err != nil {
			return "", fmt.Errorf("filters: IN requires a list/slice value for %q: %w", column, err)
		}
		rendered := make([]string, len(values))
		for i, v := range values {
			rendered[i] = sqltoken.QuoteValue(v)
		}
		return fmt.Sprintf("%s IN (%s)", column, sqltoken.CommaJoin(rendered)), nil
	case OpRange:
		values, err := toSlice(f.Value)
		if err != nil || len(values) != 2 {
			return "", fmt.Errorf("filters: range requires a 2-tuple value for %q", column)
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", column, sqltoken.QuoteValue(values[0]), sqltoken.QuoteValue(values[1])), nil
	default:
		return "", fmt.Errorf("filters: unrecognized operator %q", f.Op)
	}
}

// BuildFragments renders a slice of FilterExpr values in order.
func BuildFragments(exprs []FilterExpr) ([]string, error) {
	out := make([]string, 0, len(exprs))
	for _, f := range exprs {
		fragment, err := BuildFragment(f)
		if err != nil {
			return nil, err
		}
		out = append(out, fragment)
	}
	return out, nil
}

func toSlice(value any) ([]any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case []int:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, nil
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, nil
	case []float64:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value of type %T is not a list/slice", value)
	}
}

// ParseIntLiteral reports whether s is a base-10 int64 literal and
// returns its value. Nothing else in this module calls it.
func ParseIntLiteral(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
