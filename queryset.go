package lorelie

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lorelie-orm/lorelie/errs"
	"github.com/lorelie-orm/lorelie/expr"
	"github.com/lorelie-orm/lorelie/nodes"
	"github.com/lorelie-orm/lorelie/table"
	"github.com/lorelie-orm/lorelie/util"
)

// QuerySet is a lazy, chainable query builder: every chain method
// installs a node and returns a QuerySet, and no SQL runs until a
// terminal method (All, First, Last, Count, ...) is called.
//
// Grounded on original_source/lorelie/queries.py:QuerySet — the Go port
// keeps the node-accumulation idiom: each chain method returns a new
// QuerySet value, but that value shares the receiver's SelectMap, so a
// node installed through it is also visible from the receiver. Only the
// annotation map is copied per Annotate call.
type QuerySet struct {
	db       *Database
	table    *table.Table
	selects  *nodes.SelectMap
	annotate map[string]expr.Node
	err      error
}

func newQuerySet(db *Database, t *table.Table) *QuerySet {
	qs := &QuerySet{db: db, table: t, selects: nodes.NewSelectMap()}
	_ = qs.selects.Set(&nodes.SelectNode{Table: t.Name})
	return qs
}

func (qs *QuerySet) clone() *QuerySet {
	cp := *qs
	return &cp
}

// Filter narrows the result set by kwarg filters and/or expr.Node
// predicates (Q/CombinedExpression).
func (qs *QuerySet) Filter(predicates []expr.Node, kwargs map[string]any) *QuerySet {
	if qs.err != nil {
		return qs
	}
	next := qs.clone()
	if err := next.selects.Set(nodes.NewWhereNode(predicates, kwargs)); err != nil {
		next.err = err
	}
	return next
}

// OrderBy sorts the result set by the given fields ("-field" for
// descending).
func (qs *QuerySet) OrderBy(fields ...string) *QuerySet {
	if qs.err != nil {
		return qs
	}
	next := qs.clone()
	ob, err := nodes.NewOrderByNode(fields...)
	if err != nil {
		next.err = err
		return next
	}
	if err := next.selects.Set(ob); err != nil {
		next.err = err
	}
	return next
}

// Distinct marks the SELECT as DISTINCT.
func (qs *QuerySet) Distinct() *QuerySet {
	if qs.err != nil {
		return qs
	}
	next := qs.clone()
	if sel, ok := next.selects.Get("select"); ok {
		if s, ok := sel.(*nodes.SelectNode); ok {
			cp := *s
			cp.Distinct = true
			_ = next.selects.Set(&cp)
		}
	}
	return next
}

// Limit caps the number of rows returned.
func (qs *QuerySet) Limit(n int) *QuerySet {
	if qs.err != nil {
		return qs
	}
	next := qs.clone()
	if err := next.selects.Set(&nodes.LimitNode{N: n}); err != nil {
		next.err = err
	}
	return next
}

// Join attaches the default inner-join form of a foreign key relation
// ("inner join <other> on <other>.id = <self>.<other>_id"), as rendered
// by nodes.JoinNode. The join column is derived from the other table's
// name only; no ForeignKeyField is consulted, so it matches a
// ForeignKeyField's "<relatedname>_id" column only when the related
// name equals the other table's name.
func (qs *QuerySet) Join(otherTable string) *QuerySet {
	if qs.err != nil {
		return qs
	}
	next := qs.clone()
	if err := next.selects.Set(&nodes.JoinNode{SelfTable: qs.table.Name, OtherTable: otherTable}); err != nil {
		next.err = err
	}
	return next
}

// Annotate attaches named function expressions to the SELECT's column
// list.
func (qs *QuerySet) Annotate(aliases map[string]expr.Node) *QuerySet {
	if qs.err != nil {
		return qs
	}
	next := qs.clone()
	next.annotate = map[string]expr.Node{}
	for k, v := range qs.annotate {
		next.annotate[k] = v
	}
	for k, v := range aliases {
		next.annotate[k] = v
	}
	return next
}

// SQL resolves the full statement this QuerySet represents, without
// executing it.
func (qs *QuerySet) SQL() (string, error) {
	if qs.err != nil {
		return "", qs.err
	}
	fragments, err := qs.selects.Resolve()
	if err != nil {
		return "", err
	}

	if len(qs.annotate) > 0 {
		ann := &nodes.AnnotationNode{Aliases: qs.annotate}
		annFragments, err := ann.SQL()
		if err != nil {
			return "", err
		}
		fragments[0] = fragments[0] + ", " + annFragments[0]
	}

	return nodes.Render(fragments), nil
}

// All executes the query and returns every matching row.
func (qs *QuerySet) All(ctx context.Context) ([]*Row, error) {
	sqlText, err := qs.SQL()
	if err != nil {
		return nil, err
	}
	return qs.run(ctx, sqlText)
}

func (qs *QuerySet) run(ctx context.Context, sqlText string) ([]*Row, error) {
	rows, err := qs.db.conn.Query(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("lorelie: executing %q: %w", sqlText, err)
	}
	return scanAll(qs.table.Name, rows)
}

func scanAll(tableName string, rows *sql.Rows) ([]*Row, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []*Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		data := make(map[string]any, len(columns))
		for i, col := range columns {
			data[col] = values[i]
		}
		out = append(out, newRow(tableName, data))
	}
	return out, rows.Err()
}

// First returns the first row in the query's default (or declared)
// ordering, or (nil, nil) if no row matches (spec §7: "get() returns
// None for zero hits").
func (qs *QuerySet) First(ctx context.Context) (*Row, error) {
	ordered := qs
	if _, ok := qs.selects.Get("order_by"); !ok {
		ordered = qs.OrderBy("id")
	}
	rows, err := ordered.Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Last returns the last row in the query's default (or declared)
// ordering, or (nil, nil) if no row matches.
func (qs *QuerySet) Last(ctx context.Context) (*Row, error) {
	ordered := qs
	if _, ok := qs.selects.Get("order_by"); !ok {
		ordered = qs.OrderBy("-id")
	}
	rows, err := ordered.Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Get returns the one matching row, (nil, nil) if zero rows match, or
// an *errs.MultipleRowsError if more than one row matches (spec §4.5,
// §7 testable property).
func (qs *QuerySet) Get(ctx context.Context) (*Row, error) {
	rows, err := qs.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		return nil, &errs.MultipleRowsError{Table: qs.table.Name}
	}
	return rows[0], nil
}

// Count returns the number of matching rows.
func (qs *QuerySet) Count(ctx context.Context) (int64, error) {
	rows, err := qs.All(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

// Values returns every matching row's data as a plain map, matching
// objects.values().
func (qs *QuerySet) Values(ctx context.Context) ([]map[string]any, error) {
	rows, err := qs.All(ctx)
	if err != nil {
		return nil, err
	}
	return util.TransformSlice(rows, (*Row).Map), nil
}
