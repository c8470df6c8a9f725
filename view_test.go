package lorelie

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewCreateIsQueryable(t *testing.T) {
	db := newTestDatabase(t, "db_view")
	ctx := context.Background()
	mgr, err := db.Manager("users")
	require.NoError(t, err)

	_, err = mgr.Create(ctx, map[string]any{"name": "nia", "age": 45})
	require.NoError(t, err)
	_, err = mgr.Create(ctx, map[string]any{"name": "omar", "age": 12})
	require.NoError(t, err)

	adults := mgr.Filter(nil, map[string]any{"age__gte": 18})
	view := NewView("adults", adults, false)

	viewQS, err := view.Create(ctx, db)
	require.NoError(t, err)

	rows, err := viewQS.All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	name, _ := rows[0].Get("name")
	assert.Equal(t, "nia", name)
}

func TestViewCreateIsIdempotent(t *testing.T) {
	db := newTestDatabase(t, "db_view_idempotent")
	ctx := context.Background()
	mgr, _ := db.Manager("users")

	view := NewView("all_users", mgr.All(), false)
	_, err := view.Create(ctx, db)
	require.NoError(t, err)

	_, err = view.Create(ctx, db)
	assert.NoError(t, err)
}
