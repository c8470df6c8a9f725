// Package migrations implements spec §4.7: the idle -> introspected ->
// reconciled -> executed -> migrated reconciliation state machine, the
// JSON migration history file, and the lorelie_migrations bookkeeping
// table.
//
// Grounded on original_source/lorelie/database/migrations.py
// (Migrations.migrate, check_fields, blank_migration, make_migrations)
// for the algorithm and JSON shape; the Go idiom of diffing a desired
// vs. current schema into an ordered DDL slice and executing it in one
// transaction is grounded on sqldef-sqldef/schema/generator.go's
// GenerateIdempotentDDLs and database/database.go:RunDDLs.
package migrations

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lorelie-orm/lorelie/backend"
	"github.com/lorelie-orm/lorelie/table"
)

// TableSchema is the JSON-serialisable snapshot of one table recorded
// in the migration history file.
type TableSchema struct {
	Name        string   `json:"name"`
	Fields      []string `json:"fields"`
	Indexes     []string `json:"indexes"`
	Constraints []string `json:"constraints"`
	Ordering    []string `json:"ordering"`
	StrField    string   `json:"str_field"`
}

// History is the on-disk shape of migrations.json.
type History struct {
	ID     string        `json:"id"`
	Date   string        `json:"date"`
	Number int           `json:"number"`
	Tables []TableSchema `json:"tables"`
}

// lorelieMigrationsDDL is the bookkeeping table every database carries
// once migrate() has run, matching the column set and constraints
// create_migration_table() declares in the original.
const lorelieMigrationsDDL = `create table if not exists lorelie_migrations (` +
	`id integer primary key autoincrement, ` +
	`name text not null unique, ` +
	`table_name text null, ` +
	`migration json not null, ` +
	`applied datetime null)`

// Manager drives the reconciliation state machine for one database: it
// tracks the migration file, the set of tables the caller declared, and
// whether migrate() has already run once this process (idempotency
// guard, spec testable property).
type Manager struct {
	Dir        string
	Conn       *backend.Connection
	migrated   bool
	history    *History
	toCreate   map[string]bool
	toDrop     map[string]bool
}

// NewManager opens (or blank-initializes) the migration history file
// under dir for the given connection.
func NewManager(dir string, conn *backend.Connection) (*Manager, error) {
	m := &Manager{Dir: dir, Conn: conn, toCreate: map[string]bool{}, toDrop: map[string]bool{}}
	history, err := m.readOrBlank()
	if err != nil {
		return nil, err
	}
	m.history = history
	return m, nil
}

func (m *Manager) historyPath() string {
	return filepath.Join(m.Dir, "migrations.json")
}

func (m *Manager) readOrBlank() (*History, error) {
	if m.Dir == "" {
		return blankHistory(), nil
	}
	data, err := os.ReadFile(m.historyPath())
	if os.IsNotExist(err) {
		blank := blankHistory()
		if writeErr := m.write(blank); writeErr != nil {
			return nil, writeErr
		}
		return blank, nil
	}
	if err != nil {
		return nil, fmt.Errorf("migrations: reading history file: %w", err)
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("migrations: history file is not valid JSON: %w", err)
	}
	return &h, nil
}

func blankHistory() *History {
	return &History{ID: randomID(), Date: stampNow(), Number: 1, Tables: nil}
}

func (m *Manager) write(h *History) error {
	if m.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return fmt.Errorf("migrations: creating %q: %w", m.Dir, err)
	}
	data, err := json.MarshalIndent(h, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.historyPath(), data, 0o644)
}

func randomID() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "0000000000"
	}
	return hex.EncodeToString(buf)
}

// stampNow returns the current time in the history file's date format.
// It is a package variable so that the clock can be replaced.
var stampNow = func() string { return time.Now().Format("2006-01-02 15:04:05.000000") }

// MakeMigrations snapshots the declared tables into a new pending
// History entry and persists it to disk, mirroring make_migrations.
func (m *Manager) MakeMigrations(tables []*table.Table) error {
	h := &History{ID: randomID(), Date: stampNow(), Number: m.history.Number + 1}
	for _, t := range tables {
		schema := TableSchema{
			Name:     t.Name,
			Fields:   t.FieldNames(),
			Ordering: t.Ordering,
			StrField: t.StrField,
		}
		for _, idx := range t.Indexes {
			schema.Indexes = append(schema.Indexes, idx.Name)
		}
		for _, c := range t.TableConstraints {
			schema.Constraints = append(schema.Constraints, c.Name())
		}
		h.Tables = append(h.Tables, schema)
	}
	if err := m.write(h); err != nil {
		return err
	}
	m.history = h
	return nil
}

// declaredTableNames returns the names named in the current history
// file — the "migration_table_map" of the original.
func (m *Manager) declaredTableNames() map[string]bool {
	out := map[string]bool{}
	for _, t := range m.history.Tables {
		out[t.Name] = true
	}
	return out
}

// Migrate reconciles the declared tables against the live database:
// tables present in the history file but missing live are created,
// tables present live but absent from the declared set are recorded as
// drop candidates (computed only — never executed automatically, per
// spec §4.7's safety invariant), and existing tables have their missing
// columns added via ALTER TABLE. A second call in the same process is a
// no-op.
func (m *Manager) Migrate(ctx context.Context, tables map[string]*table.Table) error {
	if m.migrated {
		return nil
	}

	liveTables, err := m.Conn.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("migrations: listing live tables: %w", err)
	}
	liveSet := map[string]bool{}
	for _, name := range liveTables {
		liveSet[name] = true
	}

	declared := m.declaredTableNames()
	if len(declared) == 0 {
		for name := range tables {
			declared[name] = true
		}
	}

	for name := range declared {
		if !liveSet[name] {
			m.toCreate[name] = true
		}
	}
	for name := range liveSet {
		if !declared[name] {
			m.toDrop[name] = true
		}
	}

	var ddls []string
	if !liveSet["lorelie_migrations"] || !declared["lorelie_migrations"] {
		ddls = append(ddls, lorelieMigrationsDDL)
		m.toCreate["lorelie_migrations"] = true
	}

	for name := range m.toCreate {
		t, ok := tables[name]
		if !ok || liveSet[name] {
			continue
		}
		ddls = append(ddls, t.CreateSQL())
		indexSQL, err := t.IndexSQL()
		if err != nil {
			return err
		}
		ddls = append(ddls, indexSQL...)
	}

	for name, t := range tables {
		if m.toCreate[name] || m.toDrop[name] {
			continue
		}
		alters, err := m.reconcileColumns(ctx, t)
		if err != nil {
			return err
		}
		ddls = append(ddls, alters...)
	}

	if len(ddls) > 0 {
		if err := m.Conn.RunDDLs(ctx, ddls); err != nil {
			return err
		}
	}

	if err := m.recordApplied(ctx); err != nil {
		return err
	}

	m.toCreate = map[string]bool{}
	m.toDrop = map[string]bool{}
	m.migrated = true
	return nil
}

// reconcileColumns diffs a declared table's fields against its live
// columns and emits ALTER TABLE ADD COLUMN statements for whatever is
// missing, mirroring check_fields.
func (m *Manager) reconcileColumns(ctx context.Context, t *table.Table) ([]string, error) {
	liveColumns, err := m.Conn.ListColumns(ctx, t.Name)
	if err != nil {
		return nil, err
	}
	live := map[string]bool{}
	for _, c := range liveColumns {
		live[c.Name] = true
	}

	var ddls []string
	for _, name := range t.FieldNames() {
		if live[name] {
			continue
		}
		f, ok := t.Field(name)
		if !ok {
			continue
		}
		ddls = append(ddls, t.AddColumnSQL(f))
	}
	sort.Strings(ddls)
	return ddls, nil
}

func (m *Manager) recordApplied(ctx context.Context) error {
	if m.Dir == "" {
		return nil
	}
	encoded, err := json.Marshal(m.history)
	if err != nil {
		return err
	}
	_, err = m.Conn.Exec(ctx,
		`insert into lorelie_migrations (name, table_name, migration, applied) values (?, null, ?, ?)`,
		fmt.Sprintf("mig_%s", randomID()), string(encoded), stampNow(),
	)
	return err
}

// ToCreate returns the table names computed as creation candidates by
// the most recent Migrate call.
func (m *Manager) ToCreate() []string { return sortedKeys(m.toCreate) }

// ToDrop returns the table names computed as drop candidates by the
// most recent Migrate call. These are never executed automatically
// (spec §4.7) — dropping a table is always an explicit, separate
// operation.
func (m *Manager) ToDrop() []string { return sortedKeys(m.toDrop) }

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
