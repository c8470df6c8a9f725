// Package nodes implements the SQL-fragment producers of spec §4.3: a
// small family of types, each owning a fixed slot name and a uniform
// rendering contract, that compose into a complete SELECT/INSERT/UPDATE/
// DELETE statement.
//
// Grounded directly on original_source/lorelie/database/nodes.py
// (SelectMap, BaseNode, SelectNode, WhereNode, OrderByNode, ComplexNode,
// RawSQL); the fixed resolution order mirrors SelectMap.resolve there.
package nodes

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lorelie-orm/lorelie/expr"
	"github.com/lorelie-orm/lorelie/filters"
	"github.com/lorelie-orm/lorelie/sqltoken"
)

// Node is the rendering contract every fragment producer implements. A
// node lowers to an ordered sequence of SQL fragments, not a single
// string, so callers can space-join everything at the end uniformly.
type Node interface {
	NodeName() string
	SQL() ([]string, error)
}

// Combinable is implemented by node kinds that can be merged with
// another node of the same kind rather than replaced outright (WhereNode
// ANDs its predicates together; OrderByNode merges ascending/descending
// field sets).
type Combinable interface {
	Node
	Combine(other Node) (Node, error)
}

// SelectNode renders "select [distinct] <fields> from <table>".
type SelectNode struct {
	Table    string
	Fields   []string
	Distinct bool
}

func (n *SelectNode) NodeName() string { return "select" }

func (n *SelectNode) SQL() ([]string, error) {
	fields := n.Fields
	if len(fields) == 0 {
		fields = []string{"*"}
	}
	keyword := "select"
	if n.Distinct {
		keyword = "select distinct"
	}
	return []string{fmt.Sprintf("%s %s from %s", keyword, sqltoken.CommaJoin(fields), n.Table)}, nil
}

// WhereNode renders "where <predicates joined by AND>". It accepts both
// fully-formed expr.Node predicates (Q, CombinedExpression,
// NegatedExpression) and kwarg-style filters; both are flattened into
// one AND-joined fragment list (spec §4.3).
type WhereNode struct {
	Predicates []expr.Node
	KwFilters  map[string]any
}

// NewWhereNode builds a WhereNode from zero or more expr.Node predicates
// plus kwarg filters.
func NewWhereNode(predicates []expr.Node, kwargs map[string]any) *WhereNode {
	return &WhereNode{Predicates: predicates, KwFilters: kwargs}
}

func (n *WhereNode) NodeName() string { return "where" }

func (n *WhereNode) SQL() ([]string, error) {
	var resolved []string

	for _, p := range n.Predicates {
		fragment, err := p.SQL()
		if err != nil {
			return nil, err
		}
		if fragment != "" {
			resolved = append(resolved, fragment)
		}
	}

	if len(n.KwFilters) > 0 {
		decomposed := filters.DecomposeMap(n.KwFilters)
		built, err := filters.BuildFragments(decomposed)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, built...)
	}

	if len(resolved) == 0 {
		return nil, nil
	}

	return []string{fmt.Sprintf("where %s", sqltoken.OperatorJoin(resolved, "and"))}, nil
}

// Combine ANDs another WhereNode's predicates and filters into this one.
func (n *WhereNode) Combine(other Node) (Node, error) {
	o, ok := other.(*WhereNode)
	if !ok {
		return nil, fmt.Errorf("nodes: cannot combine WhereNode with %T", other)
	}
	merged := &WhereNode{
		Predicates: append(append([]expr.Node{}, n.Predicates...), o.Predicates...),
		KwFilters:  map[string]any{},
	}
	for k, v := range n.KwFilters {
		merged.KwFilters[k] = v
	}
	for k, v := range o.KwFilters {
		merged.KwFilters[k] = v
	}
	return merged, nil
}

// HasPredicate reports whether this WhereNode carries any condition at
// all — used to refuse unconditional UPDATE/DELETE (spec §4.3, §7).
func (n *WhereNode) HasPredicate() bool {
	return len(n.Predicates) > 0 || len(n.KwFilters) > 0
}

var orderFieldPattern = regexp.MustCompile(`^(-)?(\w+)$`)

// OrderByNode renders "order by <fields>", tracking ascending and
// descending field sets separately so two OrderByNodes can merge without
// duplicating a field (spec §4.3, testable property 3).
type OrderByNode struct {
	Ascending  map[string]bool
	Descending map[string]bool
}

// NewOrderByNode parses fields like "name" (ascending) or "-name"
// (descending). A field registered in both directions within the same
// call is an error.
func NewOrderByNode(fields ...string) (*OrderByNode, error) {
	n := &OrderByNode{Ascending: map[string]bool{}, Descending: map[string]bool{}}
	for _, field := range fields {
		m := orderFieldPattern.FindStringSubmatch(field)
		if m == nil {
			return nil, fmt.Errorf("nodes: %q is not a valid order_by field", field)
		}
		sign, name := m[1], m[2]
		if n.Ascending[name] || n.Descending[name] {
			return nil, fmt.Errorf("nodes: field %q registered twice in order_by", name)
		}
		if sign == "-" {
			n.Descending[name] = true
		} else {
			n.Ascending[name] = true
		}
	}
	return n, nil
}

func (n *OrderByNode) NodeName() string { return "order_by" }

func (n *OrderByNode) SQL() ([]string, error) {
	var conditions []string
	for _, name := range sortedKeys(n.Ascending) {
		conditions = append(conditions, fmt.Sprintf("%s asc", name))
	}
	for _, name := range sortedKeys(n.Descending) {
		conditions = append(conditions, fmt.Sprintf("%s desc", name))
	}
	if len(conditions) == 0 {
		return nil, nil
	}
	return []string{fmt.Sprintf("order by %s", sqltoken.CommaJoin(conditions))}, nil
}

// Combine merges two OrderByNodes' field sets, rejecting a field that
// would end up both ascending and descending.
func (n *OrderByNode) Combine(other Node) (Node, error) {
	o, ok := other.(*OrderByNode)
	if !ok {
		return nil, fmt.Errorf("nodes: cannot combine OrderByNode with %T", other)
	}
	merged := &OrderByNode{Ascending: map[string]bool{}, Descending: map[string]bool{}}
	for k := range n.Ascending {
		merged.Ascending[k] = true
	}
	for k := range n.Descending {
		merged.Descending[k] = true
	}
	for k := range o.Ascending {
		if merged.Descending[k] {
			return nil, fmt.Errorf("nodes: field %q is both ascending and descending", k)
		}
		merged.Ascending[k] = true
	}
	for k := range o.Descending {
		if merged.Ascending[k] {
			return nil, fmt.Errorf("nodes: field %q is both ascending and descending", k)
		}
		merged.Descending[k] = true
	}
	return merged, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LimitNode renders "limit <n>".
type LimitNode struct{ N int }

func (n *LimitNode) NodeName() string { return "limit" }
func (n *LimitNode) SQL() ([]string, error) {
	return []string{fmt.Sprintf("limit %d", n.N)}, nil
}

// OffsetNode renders "offset <n>".
type OffsetNode struct{ N int }

func (n *OffsetNode) NodeName() string { return "offset" }
func (n *OffsetNode) SQL() ([]string, error) {
	return []string{fmt.Sprintf("offset %d", n.N)}, nil
}

// GroupByNode renders "group by <fields>".
type GroupByNode struct{ Fields []string }

func (n *GroupByNode) NodeName() string { return "group_by" }
func (n *GroupByNode) SQL() ([]string, error) {
	if len(n.Fields) == 0 {
		return nil, nil
	}
	return []string{fmt.Sprintf("group by %s", sqltoken.CommaJoin(n.Fields))}, nil
}

// HavingNode renders "having <predicate>".
type HavingNode struct{ Predicate expr.Node }

func (n *HavingNode) NodeName() string { return "having" }
func (n *HavingNode) SQL() ([]string, error) {
	fragment, err := n.Predicate.SQL()
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("having %s", fragment)}, nil
}

// JoinNode renders the default inner join form of spec §4.3:
// "inner join <other> on <other>.id = <self>.<other>_id".
type JoinNode struct {
	SelfTable  string
	OtherTable string
}

func (n *JoinNode) NodeName() string { return "join" }
func (n *JoinNode) SQL() ([]string, error) {
	return []string{fmt.Sprintf(
		"inner join %s on %s.id = %s.%s_id",
		n.OtherTable, n.OtherTable, n.SelfTable, n.OtherTable,
	)}, nil
}

// ViewNode renders "create [temporary] view if not exists <name> as
// <inner-select>;".
type ViewNode struct {
	Name        string
	InnerSelect string
	Temporary   bool
}

func (n *ViewNode) NodeName() string { return "view" }
func (n *ViewNode) SQL() ([]string, error) {
	keyword := "view"
	if n.Temporary {
		keyword = "temporary view"
	}
	return []string{fmt.Sprintf("create %s if not exists %s as %s;", keyword, n.Name, n.InnerSelect)}, nil
}

// IntersectNode renders "<a> intersect <b>".
type IntersectNode struct {
	A, B string
}

func (n *IntersectNode) NodeName() string { return "intersect" }
func (n *IntersectNode) SQL() ([]string, error) {
	return []string{fmt.Sprintf("%s intersect %s", n.A, n.B)}, nil
}

// ComplexNode aggregates arbitrary nodes produced by "node + node";
// its fragments are simply every child's fragments concatenated in
// order.
type ComplexNode struct {
	Nodes []Node
}

func (n *ComplexNode) NodeName() string { return "complex" }
func (n *ComplexNode) SQL() ([]string, error) {
	var out []string
	for _, child := range n.Nodes {
		fragments, err := child.SQL()
		if err != nil {
			return nil, err
		}
		out = append(out, fragments...)
	}
	return out, nil
}

// Add implements "node + node", producing (or extending) a ComplexNode.
func Add(a, b Node) *ComplexNode {
	if complex, ok := a.(*ComplexNode); ok {
		return &ComplexNode{Nodes: append(append([]Node{}, complex.Nodes...), b)}
	}
	return &ComplexNode{Nodes: []Node{a, b}}
}

// render is a small helper used (through Render) by the root lorelie
// package's QuerySet.SQL to turn a slice of
// fragments into final SQL text once SelectMap (or insertion order) has
// resolved them.
func render(fragments []string) string {
	return strings.TrimSpace(sqltoken.SimpleJoin(fragments))
}

// Render exposes render for other packages in this module.
func Render(fragments []string) string { return render(fragments) }
