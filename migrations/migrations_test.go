package migrations

import (
	"context"
	"testing"

	"github.com/lorelie-orm/lorelie/backend"
	"github.com/lorelie-orm/lorelie/fields"
	"github.com/lorelie-orm/lorelie/table"
)

func newTestManager(t *testing.T, name string) (*Manager, *backend.Connection) {
	t.Helper()
	conn, err := backend.Open(name, "")
	if err != nil {
		t.Fatalf("backend.Open error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	mgr, err := NewManager("", conn)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return mgr, conn
}

func TestMigrateCreatesDeclaredTables(t *testing.T) {
	mgr, conn := newTestManager(t, "mig_create")
	ctx := context.Background()

	users, err := table.New("users", []fields.Field{fields.NewCharField("name")})
	if err != nil {
		t.Fatalf("table.New error: %v", err)
	}

	if err := mgr.Migrate(ctx, map[string]*table.Table{"users": users}); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}

	exists, err := conn.TableExists(ctx, "users")
	if err != nil {
		t.Fatalf("TableExists error: %v", err)
	}
	if !exists {
		t.Fatal("expected users table to be created by Migrate")
	}

	bookkeeping, err := conn.TableExists(ctx, "lorelie_migrations")
	if err != nil {
		t.Fatalf("TableExists error: %v", err)
	}
	if !bookkeeping {
		t.Fatal("expected lorelie_migrations bookkeeping table to be created")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	mgr, _ := newTestManager(t, "mig_idempotent")
	ctx := context.Background()

	users, _ := table.New("users", []fields.Field{fields.NewCharField("name")})
	tables := map[string]*table.Table{"users": users}

	if err := mgr.Migrate(ctx, tables); err != nil {
		t.Fatalf("first Migrate error: %v", err)
	}
	if err := mgr.Migrate(ctx, tables); err != nil {
		t.Fatalf("second Migrate error: %v", err)
	}
	if !mgr.migrated {
		t.Fatal("expected migrated flag to be set")
	}
}

func TestReconcileColumnsAddsMissingColumns(t *testing.T) {
	mgr, conn := newTestManager(t, "mig_reconcile")
	ctx := context.Background()

	if err := conn.RunDDLs(ctx, []string{"create table users (id integer primary key autoincrement, name text not null)"}); err != nil {
		t.Fatalf("RunDDLs error: %v", err)
	}

	users, err := table.New("users", []fields.Field{
		fields.NewCharField("name"),
		fields.NewIntegerField("age"),
	})
	if err != nil {
		t.Fatalf("table.New error: %v", err)
	}

	ddls, err := mgr.reconcileColumns(ctx, users)
	if err != nil {
		t.Fatalf("reconcileColumns error: %v", err)
	}
	if len(ddls) != 1 {
		t.Fatalf("expected exactly one ALTER TABLE statement, got %v", ddls)
	}
	if ddls[0] != "alter table users add column age integer not null" {
		t.Errorf("reconcileColumns = %q", ddls[0])
	}
}

func TestMigrateNeverDropsAutomatically(t *testing.T) {
	mgr, conn := newTestManager(t, "mig_never_drop")
	ctx := context.Background()

	if err := conn.RunDDLs(ctx, []string{"create table legacy_table (id integer primary key)"}); err != nil {
		t.Fatalf("RunDDLs error: %v", err)
	}

	// Seed a history file in memory naming only "users", so legacy_table
	// is a live table absent from the declared set.
	mgr.history = &History{ID: "test", Date: "2020-01-01", Number: 1, Tables: []TableSchema{{Name: "users"}}}

	users, _ := table.New("users", []fields.Field{fields.NewCharField("name")})
	if err := mgr.Migrate(ctx, map[string]*table.Table{"users": users}); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}

	exists, err := conn.TableExists(ctx, "legacy_table")
	if err != nil {
		t.Fatalf("TableExists error: %v", err)
	}
	if !exists {
		t.Fatal("expected legacy_table to survive Migrate — drops are never automatic")
	}
}
