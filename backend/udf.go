package backend

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"database/sql"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"sync"

	"modernc.org/sqlite"
)

// registerUDFs installs the scalar and aggregate functions spec §4.6
// requires beyond SQLite's built-ins: hash/sha1../sha512 (text
// functions), regexp (used by the filters package's __regex lookup),
// and the four statistical aggregates (variance/stdev/
// meanabsdifference/coeffofvariation) original_source/lorelie registers
// as Python sqlite3 aggregate classes.
//
// modernc.org/sqlite registers functions process-wide by name before a
// connection is opened, so registration is idempotent and safe to call
// once per process; Open calls it defensively on every connection.
func registerUDFs(db *sql.DB) error {
	registerOnce.Do(func() {
		registerScalarHash("hash", md5Hex)
		registerScalarHash("sha1", sha1Hex)
		registerScalarHash("sha224", sha224Hex)
		registerScalarHash("sha256", sha256Hex)
		registerScalarHash("sha384", sha384Hex)
		registerScalarHash("sha512", sha512Hex)

		sqlite.MustRegisterDeterministicScalarFunction("regexp", 2, func(ctx *sqlite.FunctionContext, args []driverValue) (driverValue, error) {
			pattern, ok1 := args[0].(string)
			subject, ok2 := args[1].(string)
			if !ok1 || !ok2 {
				return int64(0), nil
			}
			matched, err := regexp.MatchString(pattern, subject)
			if err != nil {
				return nil, err
			}
			if matched {
				return int64(1), nil
			}
			return int64(0), nil
		})

		sqlite.MustRegisterAggregateFunction("variance", 1, func() sqlite.AggregateFunction { return &varianceAgg{} })
		sqlite.MustRegisterAggregateFunction("stdev", 1, func() sqlite.AggregateFunction { return &stdevAgg{} })
		sqlite.MustRegisterAggregateFunction("meanabsdifference", 1, func() sqlite.AggregateFunction { return &meanAbsDiffAgg{} })
		sqlite.MustRegisterAggregateFunction("coeffofvariation", 1, func() sqlite.AggregateFunction { return &coeffOfVariationAgg{} })
	})
	return registerErr
}

var (
	registerOnce sync.Once
	registerErr  error
)

// driverValue is a local alias kept for readability at call sites.
type driverValue = any

func registerScalarHash(name string, hashFn func(string) string) {
	sqlite.MustRegisterDeterministicScalarFunction(name, 1, func(ctx *sqlite.FunctionContext, args []driverValue) (driverValue, error) {
		text := fmt.Sprint(args[0])
		return hashFn(text), nil
	})
}

func md5Hex(s string) string    { sum := md5.Sum([]byte(s)); return hex.EncodeToString(sum[:]) }
func sha1Hex(s string) string   { sum := sha1.Sum([]byte(s)); return hex.EncodeToString(sum[:]) }
func sha224Hex(s string) string { sum := sha256.Sum224([]byte(s)); return hex.EncodeToString(sum[:]) }
func sha256Hex(s string) string { sum := sha256.Sum256([]byte(s)); return hex.EncodeToString(sum[:]) }
func sha384Hex(s string) string { sum := sha512.Sum384([]byte(s)); return hex.EncodeToString(sum[:]) }
func sha512Hex(s string) string { sum := sha512.Sum512([]byte(s)); return hex.EncodeToString(sum[:]) }

// varianceAgg computes population variance over a single-column
// aggregate, mirroring original_source/lorelie's MathVariance.
type varianceAgg struct {
	values []float64
}

func (a *varianceAgg) Step(values ...driverValue) error {
	f, ok := toFloat(values[0])
	if ok {
		a.values = append(a.values, f)
	}
	return nil
}

func (a *varianceAgg) WindowInverse(values ...driverValue) error { return nil }
func (a *varianceAgg) WindowValue() (driverValue, error)         { return a.finalize(), nil }

func (a *varianceAgg) Final() (driverValue, error) { return a.finalize(), nil }

func (a *varianceAgg) finalize() float64 {
	if len(a.values) == 0 {
		return 0
	}
	var total float64
	for _, v := range a.values {
		total += v
	}
	average := total / float64(len(a.values))
	var sumSquares float64
	for _, v := range a.values {
		diff := v - average
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(a.values))
}

// stdevAgg computes the population standard deviation as sqrt(variance).
type stdevAgg struct{ varianceAgg }

func (a *stdevAgg) Final() (driverValue, error) { return math.Sqrt(a.finalize()), nil }
func (a *stdevAgg) WindowValue() (driverValue, error) { return math.Sqrt(a.finalize()), nil }

// meanAbsDiffAgg computes the mean absolute difference from the mean.
type meanAbsDiffAgg struct {
	values []float64
}

func (a *meanAbsDiffAgg) Step(values ...driverValue) error {
	f, ok := toFloat(values[0])
	if ok {
		a.values = append(a.values, f)
	}
	return nil
}

func (a *meanAbsDiffAgg) WindowInverse(values ...driverValue) error { return nil }
func (a *meanAbsDiffAgg) WindowValue() (driverValue, error)         { return a.finalize(), nil }
func (a *meanAbsDiffAgg) Final() (driverValue, error)               { return a.finalize(), nil }

func (a *meanAbsDiffAgg) mean() float64 {
	if len(a.values) == 0 {
		return 0
	}
	var total float64
	for _, v := range a.values {
		total += v
	}
	return total / float64(len(a.values))
}

func (a *meanAbsDiffAgg) finalize() float64 {
	if len(a.values) == 0 {
		return 0
	}
	average := a.mean()
	var total float64
	for _, v := range a.values {
		total += math.Abs(v - average)
	}
	return total / float64(len(a.values))
}

// coeffOfVariationAgg divides the mean absolute difference by the mean,
// mirroring original_source/lorelie's MathCoefficientOfVariation.
type coeffOfVariationAgg struct{ meanAbsDiffAgg }

func (a *coeffOfVariationAgg) Final() (driverValue, error) {
	mean := a.mean()
	if mean == 0 {
		return 0.0, nil
	}
	return a.finalize() / mean, nil
}

func (a *coeffOfVariationAgg) WindowValue() (driverValue, error) {
	mean := a.mean()
	if mean == 0 {
		return 0.0, nil
	}
	return a.finalize() / mean, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
