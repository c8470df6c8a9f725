// Package sqltoken holds the pure, stateless SQL text helpers shared by
// every fragment-producing layer above it: quoting, wrapping values in
// LIKE wildcards, joining with commas or boolean operators, and
// finalizing a statement. A '%' or '_' already inside a value is not
// escaped.
//
// Grounded on original_source/lorelie/backends.py's SQL mixin
// (quote_value, comma_join, operator_join, simple_join, finalize_sql).
package sqltoken

import (
	"fmt"
	"strconv"
	"strings"
)

// QuoteValue renders a Go value as an SQL literal. Integers and floats
// pass through unquoted; nil becomes ''; strings have embedded single
// quotes doubled and are wrapped in single quotes. A value that is
// already single-quoted passes through unchanged.
func QuoteValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "''"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		if strings.HasPrefix(v, "'") && strings.HasSuffix(v, "'") {
			return v
		}
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
	}
}

// QuoteLike wraps a value with '%...%' wildcards for a "contains" filter.
func QuoteLike(value string) string {
	return QuoteValue("%" + value + "%")
}

// QuoteStartsWith wraps a value with a trailing '%' wildcard.
func QuoteStartsWith(value string) string {
	return QuoteValue(value + "%")
}

// QuoteEndsWith wraps a value with a leading '%' wildcard.
func QuoteEndsWith(value string) string {
	return QuoteValue("%" + value)
}

// CommaJoin joins already-rendered fragments with ", ".
func CommaJoin(values []string) string {
	return strings.Join(values, ", ")
}

// OperatorJoin joins fragments with a boolean operator, e.g. "and"/"or".
func OperatorJoin(values []string, operator string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.Join(values, fmt.Sprintf(" %s ", operator))
}

// SimpleJoin joins fragments with single spaces, the generic "glue all
// these SQL bits together" operation used by node rendering.
func SimpleJoin(values []string) string {
	return strings.Join(values, " ")
}

// FinalizeSQL appends a trailing semicolon if the statement lacks one.
func FinalizeSQL(sql string) string {
	sql = strings.TrimSpace(sql)
	if strings.HasSuffix(sql, ";") {
		return sql
	}
	return sql + ";"
}

// DeSQLizeStatement removes a trailing semicolon, if present.
func DeSQLizeStatement(sql string) string {
	return strings.TrimSuffix(strings.TrimSpace(sql), ";")
}

// WrapParens wraps a fragment in parentheses.
func WrapParens(value string) string {
	return "(" + value + ")"
}

// QuoteIdentifier renders a bare SQL identifier. Identifiers are never
// quoted in this dialect (spec §6), this exists only to centralize the
// policy so callers don't hand-roll it.
func QuoteIdentifier(name string) string {
	return name
}
