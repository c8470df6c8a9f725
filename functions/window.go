package functions

import (
	"fmt"
	"strings"
)

// windowCore renders a window function's own call fragment, e.g.
// "rank()" or "lag(field, 1)"; Window wraps it with the OVER clause.
type windowCore struct {
	fn            string
	FieldName     any
	requiresField bool
	offset        int
	hasOffset     bool
}

func (f *windowCore) call() (string, error) {
	if !f.requiresField {
		return fmt.Sprintf("%s()", f.fn), nil
	}
	arg, err := fieldArg(f.FieldName)
	if err != nil {
		return "", err
	}
	if f.hasOffset {
		return fmt.Sprintf("%s(%s, %d)", f.fn, arg, f.offset), nil
	}
	return fmt.Sprintf("%s(%s)", f.fn, arg), nil
}

func (f *windowCore) aliasBase() string {
	if !f.requiresField {
		return f.fn
	}
	name, _ := fieldArg(f.FieldName)
	return fmt.Sprintf("%s_%s", f.fn, name)
}

// Rank ranks each row within its partition, with gaps after ties.
type Rank struct{ windowCore }

func NewRank() *Rank { return &Rank{windowCore{fn: "rank"}} }

// DenseRank ranks each row within its partition, without gaps after ties.
type DenseRank struct{ windowCore }

func NewDenseRank() *DenseRank { return &DenseRank{windowCore{fn: "dense_rank"}} }

// PercentRank computes the relative rank of each row within its partition.
type PercentRank struct{ windowCore }

func NewPercentRank() *PercentRank { return &PercentRank{windowCore{fn: "percent_rank"}} }

// CumeDist computes the cumulative distribution of each row's rank.
type CumeDist struct{ windowCore }

func NewCumeDist() *CumeDist { return &CumeDist{windowCore{fn: "cume_dist"}} }

// RowNumber numbers each row within its partition sequentially.
type RowNumber struct{ windowCore }

func NewRowNumber() *RowNumber { return &RowNumber{windowCore{fn: "row_number"}} }

// Ntile distributes rows into a fixed number of roughly equal buckets.
type Ntile struct {
	windowCore
	Buckets int
}

func NewNtile(buckets int) *Ntile {
	return &Ntile{windowCore: windowCore{fn: "ntile"}, Buckets: buckets}
}

func (f *Ntile) call() (string, error) { return fmt.Sprintf("ntile(%d)", f.Buckets), nil }

// FirstValue returns the first value of a column within the window frame.
type FirstValue struct{ windowCore }

func NewFirstValue(field any) *FirstValue {
	return &FirstValue{windowCore{fn: "first_value", FieldName: field, requiresField: true}}
}

// LastValue returns the last value of a column within the window frame.
type LastValue struct{ windowCore }

func NewLastValue(field any) *LastValue {
	return &LastValue{windowCore{fn: "last_value", FieldName: field, requiresField: true}}
}

// NthValue returns the value of a column at the n-th row of the window
// frame.
type NthValue struct{ windowCore }

func NewNthValue(field any, n int) *NthValue {
	return &NthValue{windowCore{fn: "nth_value", FieldName: field, requiresField: true, offset: n, hasOffset: true}}
}

// Lag returns the value of a column offset rows behind the current row.
type Lag struct{ windowCore }

func NewLag(field any, offset int) *Lag {
	return &Lag{windowCore{fn: "lag", FieldName: field, requiresField: true, offset: offset, hasOffset: true}}
}

// Lead returns the value of a column offset rows ahead of the current row.
type Lead struct{ windowCore }

func NewLead(field any, offset int) *Lead {
	return &Lead{windowCore{fn: "lead", FieldName: field, requiresField: true, offset: offset, hasOffset: true}}
}

// windowCaller is implemented by every concrete window function above;
// Ntile overrides call() to ignore FieldName entirely.
type windowCaller interface {
	call() (string, error)
	aliasBase() string
}

// Window wraps a window function with an OVER(...) clause, optionally
// partitioned and ordered (spec §4.6).
//
// Grounded on original_source/lorelie/database/functions/window.py.
type Window struct {
	Function    windowCaller
	PartitionBy string
	OrderBy     string
}

// NewWindow builds a Window wrapping fn, with an optional partition
// field and an optional order_by field. An empty orderBy omits the
// ORDER BY clause; no ordering is derived from fn's own field.
func NewWindow(fn windowCaller, partitionBy, orderBy string) *Window {
	return &Window{Function: fn, PartitionBy: partitionBy, OrderBy: orderBy}
}

func (w *Window) SQL() (string, error) {
	call, err := w.Function.call()
	if err != nil {
		return "", err
	}

	var clauses []string
	if w.PartitionBy != "" {
		clauses = append(clauses, fmt.Sprintf("partition by %s", w.PartitionBy))
	}
	if w.OrderBy != "" {
		clauses = append(clauses, fmt.Sprintf("order by %s", w.OrderBy))
	}

	over := "over ()"
	if len(clauses) > 0 {
		over = fmt.Sprintf("over (%s)", strings.Join(clauses, " "))
	}
	return fmt.Sprintf("%s %s", call, over), nil
}

func (w *Window) Alias() string {
	return fmt.Sprintf("%s__window", w.Function.aliasBase())
}
