// Package functions implements spec §4.6: scalar text/date functions,
// aggregate functions, and window functions, each rendering to the SQL
// fragment an annotate()/aggregate() call needs.
//
// Grounded on
// original_source/lorelie/database/functions/{base,text,dates,aggregation,window}.py.
package functions

import (
	"fmt"

	"github.com/lorelie-orm/lorelie/expr"
)

// Function is the SQL-rendering contract every scalar, aggregate or
// window function implements.
type Function interface {
	expr.Node
	// Alias is the default column alias used when a caller doesn't
	// supply one explicitly in annotate(), e.g. "name__lower" or
	// "id__count".
	Alias() string
}

// fieldArg renders either a bare column name or, when the argument is
// itself a Function (nested calls like Upper(Lower("name"))), that
// function's own SQL.
func fieldArg(arg any) (string, error) {
	switch v := arg.(type) {
	case string:
		return v, nil
	case Function:
		return v.SQL()
	default:
		return "", fmt.Errorf("functions: %v is not a valid function argument", arg)
	}
}
