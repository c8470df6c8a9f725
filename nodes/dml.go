package nodes

import (
	"fmt"
	"sort"

	"github.com/lorelie-orm/lorelie/expr"
	"github.com/lorelie-orm/lorelie/sqltoken"
)

// InsertNode renders an INSERT statement for a single record or a batch,
// always appending a RETURNING clause over the full column set (spec
// §4.3).
type InsertNode struct {
	Table     string
	Records   []map[string]any
	AllFields []string // full column set, order-preserving, used for RETURNING
}

func (n *InsertNode) NodeName() string { return "insert" }

func (n *InsertNode) SQL() ([]string, error) {
	if len(n.Records) == 0 {
		return nil, fmt.Errorf("nodes: InsertNode requires at least one record")
	}

	columns := make([]string, 0, len(n.Records[0]))
	for k := range n.Records[0] {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	valueGroups := make([]string, 0, len(n.Records))
	for _, record := range n.Records {
		values := make([]string, len(columns))
		for i, col := range columns {
			values[i] = sqltoken.QuoteValue(record[col])
		}
		valueGroups = append(valueGroups, sqltoken.WrapParens(sqltoken.CommaJoin(values)))
	}

	returning := n.AllFields
	if len(returning) == 0 {
		returning = columns
	}

	sql := fmt.Sprintf(
		"insert into %s (%s) values %s returning %s",
		n.Table,
		sqltoken.CommaJoin(columns),
		sqltoken.CommaJoin(valueGroups),
		sqltoken.CommaJoin(returning),
	)
	return []string{sql}, nil
}

// UpdateNode renders "update <table> set a=v1, b=v2 where <predicate>".
// Execution MUST be refused when no predicate is supplied (spec §4.3,
// §7); SQL() itself returns an error in that case so callers cannot
// accidentally execute an unconditional update.
type UpdateNode struct {
	Table     string
	SetValues map[string]any
	Where     *WhereNode
}

func (n *UpdateNode) NodeName() string { return "update" }

func (n *UpdateNode) SQL() ([]string, error) {
	if n.Where == nil || !n.Where.HasPredicate() {
		return nil, fmt.Errorf("nodes: refusing to run UPDATE without a WHERE predicate")
	}

	columns := make([]string, 0, len(n.SetValues))
	for k := range n.SetValues {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	assignments := make([]string, len(columns))
	for i, col := range columns {
		assignments[i] = fmt.Sprintf("%s=%s", col, sqltoken.QuoteValue(n.SetValues[col]))
	}

	whereFragments, err := n.Where.SQL()
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("update %s set %s %s", n.Table, sqltoken.CommaJoin(assignments), sqltoken.SimpleJoin(whereFragments))
	return []string{sql}, nil
}

// DeleteNode renders "delete from <table> where <predicate>"; execution
// is refused without a predicate, mirroring UpdateNode.
type DeleteNode struct {
	Table string
	Where *WhereNode
}

func (n *DeleteNode) NodeName() string { return "delete" }

func (n *DeleteNode) SQL() ([]string, error) {
	if n.Where == nil || !n.Where.HasPredicate() {
		return nil, fmt.Errorf("nodes: refusing to run DELETE without a WHERE predicate")
	}
	whereFragments, err := n.Where.SQL()
	if err != nil {
		return nil, err
	}
	sql := fmt.Sprintf("delete from %s %s", n.Table, sqltoken.SimpleJoin(whereFragments))
	return []string{sql}, nil
}

// AnnotationNode renders the comma-joined "<function-sql> as <alias>"
// fragments used by annotate(), appended to a SelectNode's field list.
type AnnotationNode struct {
	Aliases map[string]expr.Node
}

func (n *AnnotationNode) NodeName() string { return "annotation" }

func (n *AnnotationNode) SQL() ([]string, error) {
	keys := make([]string, 0, len(n.Aliases))
	for k := range n.Aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, alias := range keys {
		fragment, err := n.Aliases[alias].SQL()
		if err != nil {
			return nil, err
		}
		out = append(out, fmt.Sprintf("%s as %s", fragment, alias))
	}
	return []string{sqltoken.CommaJoin(out)}, nil
}
