package functions

import "fmt"

// mathAgg renders "<name>(field)" for a built-in or UDF-backed
// aggregate; non-builtin aggregates (variance/stdev/
// meanabsdifference/coeffofvariation) are registered as stateful
// driver UDFs by the backend package, so they render identically to
// SQLite's own count/sum/avg/min/max here.
type mathAgg struct {
	FieldName any
	fn        string
}

func (f *mathAgg) SQL() (string, error) {
	arg, err := fieldArg(f.FieldName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", f.fn, arg), nil
}

func (f *mathAgg) Alias() string {
	name, _ := fieldArg(f.FieldName)
	return fmt.Sprintf("%s__%s", name, f.fn)
}

// Count counts rows matching the current filter set.
type Count struct{ mathAgg }

// NewCount builds a Count aggregate over field.
func NewCount(field any) *Count { return &Count{mathAgg{FieldName: field, fn: "count"}} }

// Avg computes the arithmetic mean of a column.
type Avg struct{ mathAgg }

// NewAvg builds an Avg aggregate over field.
func NewAvg(field any) *Avg { return &Avg{mathAgg{FieldName: field, fn: "avg"}} }

// Sum computes the sum of a column.
type Sum struct{ mathAgg }

// NewSum builds a Sum aggregate over field.
func NewSum(field any) *Sum { return &Sum{mathAgg{FieldName: field, fn: "sum"}} }

// Min computes the minimum value of a column.
type Min struct{ mathAgg }

// NewMin builds a Min aggregate over field.
func NewMin(field any) *Min { return &Min{mathAgg{FieldName: field, fn: "min"}} }

// Max computes the maximum value of a column.
type Max struct{ mathAgg }

// NewMax builds a Max aggregate over field.
func NewMax(field any) *Max { return &Max{mathAgg{FieldName: field, fn: "max"}} }

// Variance computes the population variance of a column via the
// backend's registered "variance" aggregate UDF.
type Variance struct{ mathAgg }

// NewVariance builds a Variance aggregate over field.
func NewVariance(field any) *Variance { return &Variance{mathAgg{FieldName: field, fn: "variance"}} }

// StDev computes the population standard deviation of a column via the
// backend's registered "stdev" aggregate UDF.
type StDev struct{ mathAgg }

// NewStDev builds a StDev aggregate over field.
func NewStDev(field any) *StDev { return &StDev{mathAgg{FieldName: field, fn: "stdev"}} }

// MeanAbsDifference computes the mean absolute difference of a column
// via the backend's registered "meanabsdifference" aggregate UDF.
type MeanAbsDifference struct{ mathAgg }

// NewMeanAbsDifference builds a MeanAbsDifference aggregate over field.
func NewMeanAbsDifference(field any) *MeanAbsDifference {
	return &MeanAbsDifference{mathAgg{FieldName: field, fn: "meanabsdifference"}}
}

// CoeffOfVariation computes the coefficient of variation of a column via
// the backend's registered "coeffofvariation" aggregate UDF.
type CoeffOfVariation struct{ mathAgg }

// NewCoeffOfVariation builds a CoeffOfVariation aggregate over field.
func NewCoeffOfVariation(field any) *CoeffOfVariation {
	return &CoeffOfVariation{mathAgg{FieldName: field, fn: "coeffofvariation"}}
}
