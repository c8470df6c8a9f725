package lorelie

import (
	"context"

	"github.com/lorelie-orm/lorelie/nodes"
)

// View packages a QuerySet's definition into a named, queryable SQLite
// view: a saved SELECT statement that can be queried with the same
// Manager/QuerySet API as a declared table (spec §5.3).
//
// Grounded on original_source/lorelie/database/views.py:View — the
// Python version is called with a table and returns the queryset bound
// to the freshly created view name; the Go port exposes that as
// Create, which runs the CREATE VIEW statement and returns a QuerySet
// already scoped to the view.
type View struct {
	Name      string
	Temporary bool
	inner     *QuerySet
}

// NewView names a view after the given QuerySet's definition.
func NewView(name string, inner *QuerySet, temporary bool) *View {
	return &View{Name: name, Temporary: temporary, inner: inner}
}

// Create runs "create [temporary] view if not exists <name> as
// <inner-select>" against db and returns a QuerySet selecting from the
// new view by name, reusing the base table's field layout since a view
// exposes the same columns as its defining query.
func (v *View) Create(ctx context.Context, db *Database) (*QuerySet, error) {
	innerSQL, err := v.inner.SQL()
	if err != nil {
		return nil, err
	}

	node := &nodes.ViewNode{Name: v.Name, InnerSelect: innerSQL, Temporary: v.Temporary}
	statements, err := node.SQL()
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(ctx, statements[0]); err != nil {
		return nil, err
	}

	viewTable := *v.inner.table
	viewTable.Name = v.Name
	return newQuerySet(db, &viewTable), nil
}
