// Package lorelie is the façade of spec §4.4/§4.5/§4.8: Database opens
// a file-or-memory SQLite connection, registers a set of declared
// tables, drives migrations, and hands out a lazy, chainable Manager
// per table.
//
// Grounded on original_source/lorelie/database.py and
// database/base.py (Database, DatabaseManager.__get__ descriptor
// wiring) — the Go port replaces the descriptor-based "objects"
// attribute access with an explicit Manager(name) lookup, since Go has
// no attribute-access hook to intercept.
package lorelie

import (
	"context"
	"fmt"

	"github.com/lorelie-orm/lorelie/backend"
	"github.com/lorelie-orm/lorelie/migrations"
	"github.com/lorelie-orm/lorelie/table"
	"github.com/lorelie-orm/lorelie/triggers"
	"github.com/lorelie-orm/lorelie/util"
)

// Database wires a connection, a set of declared tables, a migration
// manager and a trigger registry together. It is the entry point spec
// §4.4 describes as "Database".
type Database struct {
	Name       string
	Path       string
	LogQueries bool

	conn       *backend.Connection
	tables     map[string]*table.Table
	migrations *migrations.Manager
	triggers   *triggers.Registry
}

// Option configures a Database at construction time.
type Option func(*Database)

// WithLogQueries toggles SQL statement logging through the backend
// connection.
func WithLogQueries() Option {
	return func(d *Database) { d.LogQueries = true }
}

// New opens a database — in-memory when path is "" or ":memory:",
// file-backed otherwise — and registers the given tables. It does not
// run migrations; call MakeMigrations/Migrate explicitly, matching the
// original's separation between table declaration and reconciliation.
func New(name, path string, tables []*table.Table, opts ...Option) (*Database, error) {
	util.InitSlog()

	conn, err := backend.Open(name, path)
	if err != nil {
		return nil, fmt.Errorf("lorelie: opening database %q: %w", name, err)
	}

	db := &Database{
		Name:     name,
		Path:     path,
		conn:     conn,
		tables:   map[string]*table.Table{},
		triggers: triggers.NewRegistry(),
	}
	for _, opt := range opts {
		opt(db)
	}
	conn.LogSQL = db.LogQueries

	migrationsDir := ""
	if path != "" && path != ":memory:" {
		migrationsDir = path + ".migrations"
	}
	mgr, err := migrations.NewManager(migrationsDir, conn)
	if err != nil {
		return nil, err
	}
	db.migrations = mgr

	for _, t := range tables {
		db.triggers.Run(triggers.PreInit, t.Name, t)
		t.Database = db
		db.tables[t.Name] = t
		db.triggers.Run(triggers.PostInit, t.Name, t)
	}

	return db, nil
}

// Triggers exposes the database's trigger registry for registration.
func (d *Database) Triggers() *triggers.Registry { return d.triggers }

// Connection exposes the underlying backend connection.
func (d *Database) Connection() *backend.Connection { return d.conn }

// Table returns the named declared table.
func (d *Database) Table(name string) (*table.Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// MakeMigrations snapshots the currently declared tables into a new
// pending migration entry and persists it to the migration history
// file.
func (d *Database) MakeMigrations() error {
	ordered := make([]*table.Table, 0, len(d.tables))
	for _, t := range d.tables {
		ordered = append(ordered, t)
	}
	return d.migrations.MakeMigrations(ordered)
}

// Migrate reconciles the declared tables against the live database
// schema. A second call in the same process is a no-op (spec §4.7
// idempotency invariant).
func (d *Database) Migrate(ctx context.Context) error {
	return d.migrations.Migrate(ctx, d.tables)
}

// Manager returns a lazy query manager bound to the named table.
func (d *Database) Manager(tableName string) (*Manager, error) {
	t, ok := d.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("lorelie: table %q is not registered on database %q", tableName, d.Name)
	}
	return &Manager{db: d, table: t}, nil
}

// Close releases the underlying connection.
func (d *Database) Close() error { return d.conn.Close() }
