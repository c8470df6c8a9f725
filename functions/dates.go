package functions

import (
	"fmt"

	"github.com/lorelie-orm/lorelie/sqltoken"
)

var datePartFormats = map[string]string{
	"year":   "%Y",
	"month":  "%m",
	"day":    "%d",
	"hour":   "%H",
	"minute": "%M",
	"second": "%S",
}

// Extract renders "strftime('<format>', field)" for the named date
// part, one of year/month/day/hour/minute/second.
type Extract struct {
	FieldName any
	Part      string
	format    string
}

// NewExtract builds an Extract function for the given date part.
func NewExtract(field any, part string) (*Extract, error) {
	format, ok := datePartFormats[part]
	if !ok {
		return nil, fmt.Errorf("functions: %q is not a valid date part", part)
	}
	return &Extract{FieldName: field, Part: part, format: format}, nil
}

func (f *Extract) SQL() (string, error) {
	arg, err := fieldArg(f.FieldName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("strftime(%s, %s)", sqltoken.QuoteValue(f.format), arg), nil
}

func (f *Extract) Alias() string {
	name, _ := fieldArg(f.FieldName)
	return fmt.Sprintf("%s__%s", name, f.Part)
}

// ExtractYear extracts the four-digit year of a date/datetime column.
func ExtractYear(field any) *Extract { e, _ := NewExtract(field, "year"); return e }

// ExtractMonth extracts the two-digit month of a date/datetime column.
func ExtractMonth(field any) *Extract { e, _ := NewExtract(field, "month"); return e }

// ExtractDay extracts the two-digit day of a date/datetime column.
func ExtractDay(field any) *Extract { e, _ := NewExtract(field, "day"); return e }

// ExtractHour extracts the two-digit hour of a datetime column.
func ExtractHour(field any) *Extract { e, _ := NewExtract(field, "hour"); return e }

// ExtractMinute extracts the two-digit minute of a datetime column.
func ExtractMinute(field any) *Extract { e, _ := NewExtract(field, "minute"); return e }
