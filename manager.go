package lorelie

import (
	"context"
	"fmt"
	"time"

	"github.com/lorelie-orm/lorelie/errs"
	"github.com/lorelie-orm/lorelie/expr"
	"github.com/lorelie-orm/lorelie/nodes"
	"github.com/lorelie-orm/lorelie/table"
	"github.com/lorelie-orm/lorelie/triggers"
)

// Manager is the entry point for every query against one table: All,
// Filter, Get, Create, and the rest of spec §4.5's operation set.
// Manager itself is stateless between calls — every method either runs
// immediately (Create, Update, Delete) or returns a lazy QuerySet
// (All, Filter, Annotate).
//
// Grounded on original_source/lorelie/database/manager.py:DatabaseManager.
type Manager struct {
	db    *Database
	table *table.Table
}

// All returns a QuerySet over every row, applying the table's declared
// default ordering if one was set.
func (m *Manager) All() *QuerySet {
	qs := newQuerySet(m.db, m.table)
	if len(m.table.Ordering) > 0 {
		qs = qs.OrderBy(m.table.Ordering...)
	}
	return qs
}

// Filter returns a QuerySet narrowed by the given predicates/kwargs.
func (m *Manager) Filter(predicates []expr.Node, kwargs map[string]any) *QuerySet {
	return m.All().Filter(predicates, kwargs)
}

// Get returns exactly one row matching the given predicates/kwargs.
func (m *Manager) Get(ctx context.Context, predicates []expr.Node, kwargs map[string]any) (*Row, error) {
	return m.Filter(predicates, kwargs).Get(ctx)
}

// First returns the first row in default ordering.
func (m *Manager) First(ctx context.Context) (*Row, error) { return m.All().First(ctx) }

// Last returns the last row in default ordering.
func (m *Manager) Last(ctx context.Context) (*Row, error) { return m.All().Last(ctx) }

// Annotate returns a QuerySet with function-expression aliases attached
// to its SELECT column list.
func (m *Manager) Annotate(aliases map[string]expr.Node) *QuerySet {
	return m.All().Annotate(aliases)
}

// validateValues runs every declared field's ToDatabase coercion over
// kwargs, rejecting any key that isn't a declared field.
func (m *Manager) validateValues(kwargs map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(kwargs))
	for key, value := range kwargs {
		if key == "id" || key == "rowid" {
			continue
		}
		f, ok := m.table.Field(key)
		if !ok {
			return nil, &errs.FieldExistsError{Table: m.table.Name, Field: key}
		}
		converted, err := f.ToDatabase(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func (m *Manager) stampTimestamps(record map[string]any, isCreate bool) {
	now := time.Now().Format("2006-01-02 15:04:05.000000")
	if isCreate {
		for name := range m.table.AutoAddFields {
			if _, set := record[name]; !set {
				record[name] = now
			}
		}
	}
	for name := range m.table.AutoUpdateFields {
		record[name] = now
	}
}

// Create inserts a new row and returns it, after running the
// before_create/after_create triggers and the field validators.
func (m *Manager) Create(ctx context.Context, kwargs map[string]any) (*Row, error) {
	record, err := m.validateValues(kwargs)
	if err != nil {
		return nil, err
	}
	m.stampTimestamps(record, true)

	m.db.triggers.Run(triggers.BeforeCreate, m.table.Name, record)

	insert := &nodes.InsertNode{
		Table:     m.table.Name,
		Records:   []map[string]any{record},
		AllFields: m.table.SortedFieldNames(),
	}
	statements, err := insert.SQL()
	if err != nil {
		return nil, err
	}

	rows, err := m.All().run(ctx, statements[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("lorelie: insert into %q returned no row", m.table.Name)
	}
	row := rows[0]
	m.db.triggers.Run(triggers.AfterCreate, m.table.Name, row)
	return row, nil
}

// BulkCreate inserts every record in kwargsList in a single statement.
func (m *Manager) BulkCreate(ctx context.Context, kwargsList []map[string]any) ([]*Row, error) {
	records := make([]map[string]any, 0, len(kwargsList))
	for _, kwargs := range kwargsList {
		record, err := m.validateValues(kwargs)
		if err != nil {
			return nil, err
		}
		m.stampTimestamps(record, true)
		records = append(records, record)
	}

	insert := &nodes.InsertNode{
		Table:     m.table.Name,
		Records:   records,
		AllFields: m.table.SortedFieldNames(),
	}
	statements, err := insert.SQL()
	if err != nil {
		return nil, err
	}
	return m.All().run(ctx, statements[0])
}

// GetOrCreate returns the row matching kwargs, creating it first if
// absent.
func (m *Manager) GetOrCreate(ctx context.Context, kwargs map[string]any) (*Row, bool, error) {
	row, err := m.Get(ctx, nil, kwargs)
	if err != nil {
		return nil, false, err
	}
	if row != nil {
		return row, false, nil
	}
	created, err := m.Create(ctx, kwargs)
	return created, true, err
}

// UpdateOrCreate updates the row matching lookup with defaults, or
// creates one from the merge of lookup and defaults if absent.
func (m *Manager) UpdateOrCreate(ctx context.Context, lookup, defaults map[string]any) (*Row, bool, error) {
	row, err := m.Get(ctx, nil, lookup)
	if err != nil {
		return nil, false, err
	}
	if row != nil {
		id, idErr := row.ID()
		if idErr != nil {
			return nil, false, idErr
		}
		if err := m.update(ctx, defaults, id); err != nil {
			return nil, false, err
		}
		updated, err := m.Get(ctx, nil, map[string]any{"id": id})
		return updated, false, err
	}

	merged := make(map[string]any, len(lookup)+len(defaults))
	for k, v := range lookup {
		merged[k] = v
	}
	for k, v := range defaults {
		merged[k] = v
	}
	created, err := m.Create(ctx, merged)
	return created, true, err
}

func (m *Manager) update(ctx context.Context, kwargs map[string]any, id int64) error {
	record, err := m.validateValues(kwargs)
	if err != nil {
		return err
	}
	m.stampTimestamps(record, false)

	m.db.triggers.Run(triggers.BeforeSave, m.table.Name, record)

	where := nodes.NewWhereNode(nil, map[string]any{"id": id})
	update := &nodes.UpdateNode{Table: m.table.Name, SetValues: record, Where: where}
	statements, err := update.SQL()
	if err != nil {
		return err
	}
	if _, err := m.db.conn.Exec(ctx, statements[0]); err != nil {
		return err
	}

	m.db.triggers.Run(triggers.AfterSave, m.table.Name, record)
	return nil
}

// Update applies kwargs to every row matching predicates/kwargsFilter,
// refusing to run with no predicate at all (spec §7).
func (m *Manager) Update(ctx context.Context, predicates []expr.Node, kwargsFilter map[string]any, set map[string]any) error {
	record, err := m.validateValues(set)
	if err != nil {
		return err
	}
	m.stampTimestamps(record, false)

	where := nodes.NewWhereNode(predicates, kwargsFilter)
	if !where.HasPredicate() {
		return &errs.RefusedError{Operation: "update without a where predicate"}
	}

	update := &nodes.UpdateNode{Table: m.table.Name, SetValues: record, Where: where}
	statements, err := update.SQL()
	if err != nil {
		return err
	}
	_, err = m.db.conn.Exec(ctx, statements[0])
	return err
}

// Delete removes every row matching predicates/kwargsFilter, refusing
// to run with no predicate at all (spec §7).
func (m *Manager) Delete(ctx context.Context, predicates []expr.Node, kwargsFilter map[string]any) error {
	where := nodes.NewWhereNode(predicates, kwargsFilter)
	if !where.HasPredicate() {
		return &errs.RefusedError{Operation: "delete without a where predicate"}
	}

	m.db.triggers.Run(triggers.BeforeDelete, m.table.Name, kwargsFilter)

	del := &nodes.DeleteNode{Table: m.table.Name, Where: where}
	statements, err := del.SQL()
	if err != nil {
		return err
	}
	if _, err := m.db.conn.Exec(ctx, statements[0]); err != nil {
		return err
	}

	m.db.triggers.Run(triggers.AfterDelete, m.table.Name, kwargsFilter)
	return nil
}

// Aggregate evaluates a single function expression (Count/Avg/Sum/...)
// over the whole table and returns its scalar result.
func (m *Manager) Aggregate(ctx context.Context, alias string, fn expr.Node) (any, error) {
	fragment, err := fn.SQL()
	if err != nil {
		return nil, err
	}
	sqlText := fmt.Sprintf("select %s as %s from %s", fragment, alias, m.table.Name)
	row := m.db.conn.QueryRow(ctx, sqlText)

	var result any
	if err := row.Scan(&result); err != nil {
		return nil, err
	}
	return result, nil
}
