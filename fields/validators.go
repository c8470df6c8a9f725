package fields

import (
	"fmt"

	"github.com/lorelie-orm/lorelie/errs"
)

// Validator checks a native value before it is handed to ToDatabase,
// raising a ValidationError on failure.
//
// Grounded on original_source/lorelie/validators.py.
type Validator func(name string, value any) error

// MinValueValidator rejects numeric values below limit.
func MinValueValidator(limit float64) Validator {
	return func(name string, value any) error {
		f, ok := toFloat(value)
		if !ok {
			return nil
		}
		if f < limit {
			return &errs.ValidationError{Field: name, Message: fmt.Sprintf("value %v is below the minimum of %v", value, limit)}
		}
		return nil
	}
}

// MaxValueValidator rejects numeric values above limit.
func MaxValueValidator(limit float64) Validator {
	return func(name string, value any) error {
		f, ok := toFloat(value)
		if !ok {
			return nil
		}
		if f > limit {
			return &errs.ValidationError{Field: name, Message: fmt.Sprintf("value %v is above the maximum of %v", value, limit)}
		}
		return nil
	}
}

// MaxLengthValidator rejects strings longer than limit.
func MaxLengthValidator(limit int) Validator {
	return func(name string, value any) error {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		if len(s) > limit {
			return &errs.ValidationError{Field: name, Message: fmt.Sprintf("value exceeds max length of %d", limit)}
		}
		return nil
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}
