// Package expr implements the expression algebra of spec §4.2: Q
// (conjunctive filter sets), F (column references), Value (typed
// literals), CombinedExpression (a binary tree over logical/arithmetic
// operators), NegatedExpression, and the Case/When conditional.
//
// Grounded on original_source/lorelie/expressions.py (When/Case) and
// original_source/lorelie/database/expressions/base.py (ExpressionMap,
// the ancestor of filters.FilterExpr these build on).
package expr

import (
	"fmt"
	"strings"

	"github.com/lorelie-orm/lorelie/filters"
	"github.com/lorelie-orm/lorelie/sqltoken"
)

// Node is the uniform rendering contract every member of the algebra
// implements — the Go stand-in for the overloaded operator resolution
// the source language allows and Go does not.
type Node interface {
	SQL() (string, error)
}

// OutputKind says how a Value's literal should be rendered.
type OutputKind int

const (
	OutputText OutputKind = iota
	OutputInteger
	OutputReal
)

// Q holds a conjunction of decomposed filters and composes with other Q
// or Node values via And, Or and Not into a boolean tree.
type Q struct {
	exprs []filters.FilterExpr
}

// NewQ decomposes a map of column__op keys into a conjunctive filter set.
func NewQ(kwargs map[string]any) *Q {
	return &Q{exprs: filters.DecomposeMap(kwargs)}
}

// SQL renders the conjunction of this Q's own filters, ANDed together.
func (q *Q) SQL() (string, error) {
	fragments, err := filters.BuildFragments(q.exprs)
	if err != nil {
		return "", err
	}
	if len(fragments) == 0 {
		return "", nil
	}
	if len(fragments) == 1 {
		return fragments[0], nil
	}
	return sqltoken.WrapParens(sqltoken.OperatorJoin(fragments, "AND")), nil
}

// And combines this Q with another node using logical AND.
func (q *Q) And(other Node) *CombinedExpression {
	return &CombinedExpression{Left: q, Op: "and", Right: other}
}

// Or combines this Q with another node using logical OR.
func (q *Q) Or(other Node) *CombinedExpression {
	return &CombinedExpression{Left: q, Op: "or", Right: other}
}

// Not negates this Q.
func (q *Q) Not() *NegatedExpression {
	return &NegatedExpression{Inner: q}
}

// F is a bare column reference usable inside arithmetic/boolean trees.
type F struct {
	Column string
}

// SQL renders the bare column name.
func (f F) SQL() (string, error) {
	return f.Column, nil
}

// Value is a literal quoted according to its declared output kind.
type Value struct {
	Literal any
	Output  OutputKind
}

// SQL renders the literal. Non-text output kinds still go through
// QuoteValue, which already leaves numeric Go types unquoted; the output
// kind exists so callers can force numeric rendering of a string literal
// that would otherwise be quoted (e.g. a column default coming in as
// text from a migration file).
func (v Value) SQL() (string, error) {
	if v.Output != OutputText {
		if s, ok := v.Literal.(string); ok {
			return s, nil
		}
	}
	return sqltoken.QuoteValue(v.Literal), nil
}

// CombinedExpression is a binary tree over Q/F/Value/CombinedExpression
// operands joined by a logical (and, or) or arithmetic (+, -, *, /)
// operator. Associativity mirrors construction order since each
// CombinedExpression simply nests its left operand.
type CombinedExpression struct {
	Left  Node
	Op    string
	Right Node
}

// SQL renders "(lhs op rhs)". Mixed arithmetic between incompatible
// operands (e.g. F("name") + "x") is not coerced: both sides render
// through their own SQL() and are joined verbatim, which is the
// documented stringification fallback (spec §4.2, §11).
func (c *CombinedExpression) SQL() (string, error) {
	lhs, err := c.Left.SQL()
	if err != nil {
		return "", err
	}
	rhs, err := c.Right.SQL()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", lhs, strings.ToUpper(opKeyword(c.Op)), rhs), nil
}

func opKeyword(op string) string {
	switch op {
	case "and", "or":
		return op
	default:
		return op // arithmetic operators render as-is: +, -, *, /
	}
}

// And combines this expression with another using logical AND.
func (c *CombinedExpression) And(other Node) *CombinedExpression {
	return &CombinedExpression{Left: c, Op: "and", Right: other}
}

// Or combines this expression with another using logical OR.
func (c *CombinedExpression) Or(other Node) *CombinedExpression {
	return &CombinedExpression{Left: c, Op: "or", Right: other}
}

// NegatedExpression renders "not (<inner>)"; produced by Q.Not() or
// built directly to negate any Node.
type NegatedExpression struct {
	Inner Node
}

// SQL renders the negation.
func (n *NegatedExpression) SQL() (string, error) {
	inner, err := n.Inner.SQL()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("not (%s)", inner), nil
}

// When is one WHEN <predicate> THEN <value> branch of a Case expression.
type When struct {
	Predicate Node
	Then      any
}

// SQL renders "WHEN <predicate-sql> THEN <quoted-then>".
func (w When) SQL() (string, error) {
	predicate, err := w.Predicate.SQL()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("WHEN %s THEN %s", predicate, sqltoken.QuoteValue(w.Then)), nil
}

// Case renders a SQL CASE expression. Alias is mandatory when a Case is
// used inside annotate(), per spec §4.2.
type Case struct {
	Whens   []When
	Default any
	Alias   string
}

// SQL renders "CASE <whens...> ELSE <default> END <alias>".
func (c *Case) SQL() (string, error) {
	parts := make([]string, 0, len(c.Whens))
	for _, w := range c.Whens {
		fragment, err := w.SQL()
		if err != nil {
			return "", err
		}
		parts = append(parts, fragment)
	}
	body := fmt.Sprintf("CASE %s ELSE %s END", sqltoken.SimpleJoin(parts), sqltoken.QuoteValue(c.Default))
	if c.Alias != "" {
		return fmt.Sprintf("%s %s", body, c.Alias), nil
	}
	return body, nil
}
