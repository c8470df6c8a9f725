package lorelie

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorelie-orm/lorelie/errs"
	"github.com/lorelie-orm/lorelie/fields"
	"github.com/lorelie-orm/lorelie/table"
	"github.com/lorelie-orm/lorelie/triggers"
)

func newTestDatabase(t *testing.T, name string) *Database {
	t.Helper()
	users, err := table.New("users", []fields.Field{
		fields.NewCharField("name"),
		fields.NewIntegerField("age"),
	})
	require.NoError(t, err)

	db, err := New(name, "", []*table.Table{users})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func TestDatabaseMigrateIsIdempotent(t *testing.T) {
	db := newTestDatabase(t, "db_idempotent")
	assert.NoError(t, db.Migrate(context.Background()))
}

func TestManagerCreateAndGet(t *testing.T) {
	db := newTestDatabase(t, "db_create_get")
	ctx := context.Background()
	mgr, err := db.Manager("users")
	require.NoError(t, err)

	created, err := mgr.Create(ctx, map[string]any{"name": "alice", "age": 30})
	require.NoError(t, err)
	id, err := created.ID()
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := mgr.Get(ctx, nil, map[string]any{"id": id})
	require.NoError(t, err)
	name, _ := got.Get("name")
	assert.Equal(t, "alice", name)
}

func TestManagerGetReturnsNotFoundWhenNoMatch(t *testing.T) {
	db := newTestDatabase(t, "db_get_missing")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	row, err := mgr.Get(ctx, nil, map[string]any{"name": "nobody"})
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestManagerGetReturnsMultipleRowsError(t *testing.T) {
	db := newTestDatabase(t, "db_get_multi")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	_, err := mgr.Create(ctx, map[string]any{"name": "bob", "age": 20})
	require.NoError(t, err)
	_, err = mgr.Create(ctx, map[string]any{"name": "bob", "age": 25})
	require.NoError(t, err)

	_, err = mgr.Get(ctx, nil, map[string]any{"name": "bob"})
	assert.IsType(t, &errs.MultipleRowsError{}, err)
}

func TestManagerUpdateRefusesWithoutPredicate(t *testing.T) {
	db := newTestDatabase(t, "db_update_refuse")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	err := mgr.Update(ctx, nil, nil, map[string]any{"age": 99})
	assert.IsType(t, &errs.RefusedError{}, err)
}

func TestManagerDeleteRefusesWithoutPredicate(t *testing.T) {
	db := newTestDatabase(t, "db_delete_refuse")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	err := mgr.Delete(ctx, nil, nil)
	assert.IsType(t, &errs.RefusedError{}, err)
}

func TestManagerUpdateAndDeleteWithPredicate(t *testing.T) {
	db := newTestDatabase(t, "db_update_delete")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	created, err := mgr.Create(ctx, map[string]any{"name": "carl", "age": 40})
	require.NoError(t, err)
	id, _ := created.ID()

	require.NoError(t, mgr.Update(ctx, nil, map[string]any{"id": id}, map[string]any{"age": 41}))
	updated, err := mgr.Get(ctx, nil, map[string]any{"id": id})
	require.NoError(t, err)
	age, _ := updated.Get("age")
	assert.Equal(t, int64(41), age)

	require.NoError(t, mgr.Delete(ctx, nil, map[string]any{"id": id}))
	deleted, err := mgr.Get(ctx, nil, map[string]any{"id": id})
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestManagerGetOrCreate(t *testing.T) {
	db := newTestDatabase(t, "db_get_or_create")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	row, created, err := mgr.GetOrCreate(ctx, map[string]any{"name": "dana", "age": 22})
	require.NoError(t, err)
	assert.True(t, created)

	again, created2, err := mgr.GetOrCreate(ctx, map[string]any{"name": "dana", "age": 22})
	require.NoError(t, err)
	assert.False(t, created2)

	id1, _ := row.ID()
	id2, _ := again.ID()
	assert.Equal(t, id1, id2)
}

func TestManagerUpdateOrCreate(t *testing.T) {
	db := newTestDatabase(t, "db_update_or_create")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	row, created, err := mgr.UpdateOrCreate(ctx,
		map[string]any{"name": "erin"},
		map[string]any{"age": 50})
	require.NoError(t, err)
	assert.True(t, created)
	age, _ := row.Get("age")
	assert.Equal(t, int64(50), age)

	updated, created2, err := mgr.UpdateOrCreate(ctx,
		map[string]any{"name": "erin"},
		map[string]any{"age": 51})
	require.NoError(t, err)
	assert.False(t, created2)
	age, _ = updated.Get("age")
	assert.Equal(t, int64(51), age)
}

func TestManagerBulkCreate(t *testing.T) {
	db := newTestDatabase(t, "db_bulk_create")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	rows, err := mgr.BulkCreate(ctx, []map[string]any{
		{"name": "frank", "age": 10},
		{"name": "gina", "age": 11},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestManagerAggregateCount(t *testing.T) {
	db := newTestDatabase(t, "db_aggregate")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	_, err := mgr.BulkCreate(ctx, []map[string]any{
		{"name": "hank", "age": 10},
		{"name": "iris", "age": 20},
	})
	require.NoError(t, err)

	count, err := mgr.All().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestQuerySetFilterOrderByLimit(t *testing.T) {
	db := newTestDatabase(t, "db_queryset_chain")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	_, err := mgr.BulkCreate(ctx, []map[string]any{
		{"name": "amy", "age": 30},
		{"name": "ben", "age": 20},
		{"name": "cid", "age": 40},
	})
	require.NoError(t, err)

	rows, err := mgr.Filter(nil, map[string]any{"age__gte": 20}).
		OrderBy("-age").
		Limit(2).
		All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first, _ := rows[0].Get("age")
	assert.Equal(t, int64(40), first)
}

func TestQuerySetValues(t *testing.T) {
	db := newTestDatabase(t, "db_queryset_values")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	_, err := mgr.Create(ctx, map[string]any{"name": "joy", "age": 33})
	require.NoError(t, err)

	values, err := mgr.All().Values(ctx)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "joy", values[0]["name"])
}

func TestQuerySetJoinSQL(t *testing.T) {
	db := newTestDatabase(t, "db_queryset_join")
	mgr, _ := db.Manager("users")

	sqlText, err := mgr.All().Join("departments").SQL()
	require.NoError(t, err)
	assert.True(t, strings.Contains(sqlText, "inner join departments on departments.id = users.departments_id"))
}

func TestQuerySetDistinctSQL(t *testing.T) {
	db := newTestDatabase(t, "db_queryset_distinct")
	mgr, _ := db.Manager("users")

	sqlText, err := mgr.All().Distinct().SQL()
	require.NoError(t, err)
	assert.True(t, strings.Contains(sqlText, "distinct"))
}

func TestRowSetAndSave(t *testing.T) {
	db := newTestDatabase(t, "db_row_save")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	row, err := mgr.Create(ctx, map[string]any{"name": "kai", "age": 15})
	require.NoError(t, err)
	id, _ := row.ID()

	row.Set("age", 16)
	assert.True(t, row.Dirty())

	err = row.Save(ctx, func(ctx context.Context, table string, set map[string]any, rowID int64) error {
		return mgr.Update(ctx, nil, map[string]any{"id": rowID}, set)
	})
	require.NoError(t, err)
	assert.False(t, row.Dirty())

	reloaded, err := mgr.Get(ctx, nil, map[string]any{"id": id})
	require.NoError(t, err)
	age, _ := reloaded.Get("age")
	assert.Equal(t, int64(16), age)
}

func TestTriggersFireDuringCreate(t *testing.T) {
	db := newTestDatabase(t, "db_triggers")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	var fired []triggers.Event
	db.Triggers().Register(triggers.BeforeCreate, "users", "", func(table string, payload any) {
		fired = append(fired, triggers.BeforeCreate)
	})
	db.Triggers().Register(triggers.AfterCreate, "users", "", func(table string, payload any) {
		fired = append(fired, triggers.AfterCreate)
	})

	_, err := mgr.Create(ctx, map[string]any{"name": "liam", "age": 5})
	require.NoError(t, err)

	assert.Equal(t, []triggers.Event{triggers.BeforeCreate, triggers.AfterCreate}, fired)
}

func TestTriggersFireAroundTableRegistration(t *testing.T) {
	users, err := table.New("users", []fields.Field{
		fields.NewCharField("name"),
	})
	require.NoError(t, err)

	var fired []triggers.Event
	withLifecycleTriggers := func(d *Database) {
		d.Triggers().Register(triggers.PreInit, "users", "", func(table string, payload any) {
			fired = append(fired, triggers.PreInit)
		})
		d.Triggers().Register(triggers.PostInit, "users", "", func(table string, payload any) {
			fired = append(fired, triggers.PostInit)
		})
	}

	db, err := New("db_lifecycle_triggers", "", []*table.Table{users}, withLifecycleTriggers)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Equal(t, []triggers.Event{triggers.PreInit, triggers.PostInit}, fired)
}

func TestManagerCreateRejectsUndeclaredField(t *testing.T) {
	db := newTestDatabase(t, "db_create_bad_field")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	_, err := mgr.Create(ctx, map[string]any{"nonexistent": "x"})
	assert.IsType(t, &errs.FieldExistsError{}, err)
}

func TestDatabaseManagerUnknownTable(t *testing.T) {
	db := newTestDatabase(t, "db_unknown_table")
	_, err := db.Manager("nonexistent")
	assert.Error(t, err)
}
