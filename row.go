package lorelie

import (
	"context"
	"fmt"
	"sort"
)

// Row is a single query result, addressable by column name, that tracks
// a delta of assignments made through Set and only reaches the
// database when Save is called explicitly.
//
// original_source/lorelie/backends.py's BaseRow writes through to the
// database on every `row[key] = value` assignment
// (__setitem__ -> save_row). Go has no subscript-assignment operator
// overload, so this mutates a local delta and requires an explicit
// Save() call — spec §9 Design Notes calls this out directly as the
// intended Go-idiomatic replacement.
type Row struct {
	table string
	data  map[string]any
	delta map[string]any
}

// newRow builds a Row snapshot from a table name and its column data.
func newRow(table string, data map[string]any) *Row {
	return &Row{table: table, data: data, delta: map[string]any{}}
}

// Get returns the named column's current value — the delta if Set was
// called for that column, otherwise the original snapshot value.
func (r *Row) Get(name string) (any, bool) {
	if v, ok := r.delta[name]; ok {
		return v, true
	}
	v, ok := r.data[name]
	return v, ok
}

// Set stages a column assignment without touching the database. Call
// Save to persist staged assignments.
func (r *Row) Set(name string, value any) {
	r.delta[name] = value
}

// Dirty reports whether any column has a staged, unsaved assignment.
func (r *Row) Dirty() bool { return len(r.delta) > 0 }

// ID returns the row's primary key.
func (r *Row) ID() (int64, error) {
	raw, ok := r.Get("id")
	if !ok {
		return 0, fmt.Errorf("lorelie: row has no id column")
	}
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("lorelie: id column is not an integer: %v", raw)
	}
}

// Save persists every staged assignment to the database in a single
// UPDATE statement, refusing to run with an empty delta and with no
// WHERE predicate per the nodes package's own invariant.
func (r *Row) Save(ctx context.Context, execFn func(ctx context.Context, table string, set map[string]any, id int64) error) error {
	if !r.Dirty() {
		return nil
	}
	id, err := r.ID()
	if err != nil {
		return err
	}
	if err := execFn(ctx, r.table, r.delta, id); err != nil {
		return err
	}
	for k, v := range r.delta {
		r.data[k] = v
	}
	r.delta = map[string]any{}
	return nil
}

// Columns returns the row's original column names in sorted order.
func (r *Row) Columns() []string {
	out := make([]string, 0, len(r.data))
	for k := range r.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Map returns a shallow copy of the row's data merged with any staged
// (unsaved) assignments.
func (r *Row) Map() map[string]any {
	out := make(map[string]any, len(r.data))
	for k, v := range r.data {
		out[k] = v
	}
	for k, v := range r.delta {
		out[k] = v
	}
	return out
}

func (r *Row) String() string {
	if id, ok := r.Get("id"); ok {
		return fmt.Sprintf("<id: %v>", id)
	}
	return "<id: ?>"
}
