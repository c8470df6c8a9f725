// Package table implements spec §3's Table: an ordered field map, the
// invariants every table carries (exactly one AutoField primary key
// named "id", the auto-add/auto-update timestamp bookkeeping, default
// ordering, the recorded str_field), and the
// DDL it emits for CREATE/DROP/ALTER.
//
// Grounded on original_source/lorelie/tables.py and
// original_source/lorelie/database/tables/columns.py.
package table

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lorelie-orm/lorelie/errs"
	"github.com/lorelie-orm/lorelie/fields"
	"github.com/lorelie-orm/lorelie/util"
)

var validTableName = regexp.MustCompile(`^(\w+_?)+$`)

var reservedFieldNames = map[string]bool{"rowid": true, "id": true}

var reservedTableNames = map[string]bool{"objects": true}

// Table owns the fields, indexes and constraints declared for one
// database table and renders the DDL for them.
type Table struct {
	Name       string
	fieldOrder []string
	fieldMap   map[string]fields.Field

	Indexes           []*fields.Index
	TableConstraints  []fields.Constraint
	Ordering          []string
	StrField          string
	AutoAddFields     map[string]bool
	AutoUpdateFields  map[string]bool
	IsPrepared        bool

	// Database is a weak back-reference set once the table is attached
	// to a Database, never owned by Table itself (spec §9 Design Notes).
	Database any
}

// Option configures a Table at construction time.
type Option func(*Table)

// WithIndex attaches a declared index.
func WithIndex(idx *fields.Index) Option {
	return func(t *Table) { t.Indexes = append(t.Indexes, idx) }
}

// WithConstraint attaches a table-level constraint.
func WithConstraint(c fields.Constraint) Option {
	return func(t *Table) { t.TableConstraints = append(t.TableConstraints, c) }
}

// WithOrdering sets the table's default ordering, in order_by syntax
// ("-field" for descending).
func WithOrdering(fieldNames ...string) Option {
	return func(t *Table) { t.Ordering = fieldNames }
}

// WithStrField overrides the table's recorded str_field (default:
// "id"), which is written to the migration history. A Row's string form
// does not use it; it always shows the row's id.
func WithStrField(name string) Option {
	return func(t *Table) { t.StrField = name }
}

// New validates the table name, registers the declared fields in order,
// and appends the reserved autoincrement "id" primary key every table
// carries (spec §3 invariants).
func New(name string, declared []fields.Field, opts ...Option) (*Table, error) {
	lower, err := validateTableName(name)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Name:             lower,
		fieldMap:         map[string]fields.Field{},
		StrField:         "id",
		AutoAddFields:    map[string]bool{},
		AutoUpdateFields: map[string]bool{},
	}
	for _, opt := range opts {
		opt(t)
	}

	for i, f := range declared {
		if reservedFieldNames[f.Name()] {
			return nil, &errs.ValidationError{Field: f.Name(), Message: "is a reserved field name"}
		}
		if _, exists := t.fieldMap[f.Name()]; exists {
			return nil, &errs.FieldExistsError{Table: t.Name, Field: f.Name()}
		}
		f.SetDeclIndex(i)

		switch ff := f.(type) {
		case *fields.DateTimeField:
			if ff.AutoAdd {
				t.AutoAddFields[f.Name()] = true
			}
		}

		t.fieldMap[f.Name()] = f
		t.fieldOrder = append(t.fieldOrder, f.Name())
	}

	idField := fields.NewAutoField()
	t.fieldMap["id"] = idField
	t.fieldOrder = append(t.fieldOrder, "id")

	for _, idx := range t.Indexes {
		if err := idx.Validate(t.declaredFieldSet()); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func validateTableName(name string) (string, error) {
	if !validTableName.MatchString(name) {
		return "", fmt.Errorf("table: %q is not a valid table name", name)
	}
	if strings.ContainsAny(name, " \t\n") {
		return "", fmt.Errorf("table: %q must not contain spaces", name)
	}
	lowered := strings.ToLower(name)
	if reservedTableNames[lowered] {
		return "", fmt.Errorf("table: %q is a reserved table name", name)
	}
	return lowered, nil
}

func (t *Table) declaredFieldSet() map[string]bool {
	out := make(map[string]bool, len(t.fieldOrder))
	for _, name := range t.fieldOrder {
		out[name] = true
	}
	return out
}

// FieldNames returns the declared field names in the order they were
// registered, "id" last, mirroring the Python field_names list.
func (t *Table) FieldNames() []string {
	return append([]string{}, t.fieldOrder...)
}

// Field returns the named field descriptor, or (nil, false).
func (t *Table) Field(name string) (fields.Field, bool) {
	f, ok := t.fieldMap[name]
	return f, ok
}

// HasField reports whether name is a declared (or reserved) field.
func (t *Table) HasField(name string) bool {
	_, ok := t.fieldMap[name]
	return ok
}

// CreateSQL renders "create table if not exists <name> (<fields>,
// <constraints>)".
func (t *Table) CreateSQL() string {
	var parts []string
	for _, name := range t.fieldOrder {
		parts = append(parts, columnDefinition(t.fieldMap[name]))
	}
	for _, c := range t.TableConstraints {
		sql, err := c.SQL()
		if err == nil {
			parts = append(parts, sql)
		}
	}
	// Constraints auto-attached to fields (e.g. MaxLength's CHECK) are
	// walked in sorted field-name order so CreateSQL's output is stable
	// across runs regardless of Go's randomized map iteration.
	for _, f := range util.CanonicalMapIter(t.fieldMap) {
		for _, c := range f.Constraints() {
			sql, err := c.SQL()
			if err == nil {
				parts = append(parts, sql)
			}
		}
	}
	return fmt.Sprintf("create table if not exists %s (%s)", t.Name, strings.Join(parts, ", "))
}

// DropSQL renders "drop table if exists <name>".
func (t *Table) DropSQL() string {
	return fmt.Sprintf("drop table if exists %s", t.Name)
}

// AddColumnSQL renders "alter table <name> add column <definition>" for
// a field being added by a migration after the table already exists.
func (t *Table) AddColumnSQL(f fields.Field) string {
	return fmt.Sprintf("alter table %s add column %s", t.Name, columnDefinition(f))
}

// IndexSQL renders every declared index's CREATE INDEX statement.
func (t *Table) IndexSQL() ([]string, error) {
	var out []string
	for _, idx := range t.Indexes {
		sql, err := idx.SQL()
		if err != nil {
			return nil, err
		}
		out = append(out, sql)
	}
	return out, nil
}

func columnDefinition(f fields.Field) string {
	parts := []string{f.Name(), f.ColumnType()}
	if f.PrimaryKey() {
		parts = append(parts, "primary key", "autoincrement")
	}
	if !f.Nullable() && !f.PrimaryKey() {
		parts = append(parts, "not null")
	} else if f.Nullable() {
		parts = append(parts, "null")
	}
	if f.Unique() && !f.PrimaryKey() {
		parts = append(parts, "unique")
	}
	if fk, ok := f.(interface{ ReferencesSQL() string }); ok {
		parts = append(parts, fk.ReferencesSQL())
	}
	return strings.Join(parts, " ")
}

// Column is a read-only projection of a field that describes a declared
// column without exposing the full Field interface.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	Unique     bool
}

// Columns returns the table's declared fields as Column views, in
// declaration order.
func (t *Table) Columns() []Column {
	out := make([]Column, 0, len(t.fieldOrder))
	for _, name := range t.fieldOrder {
		f := t.fieldMap[name]
		out = append(out, Column{
			Name:       f.Name(),
			Type:       f.ColumnType(),
			Nullable:   f.Nullable(),
			PrimaryKey: f.PrimaryKey(),
			Unique:     f.Unique(),
		})
	}
	return out
}

// SortedFieldNames returns the declared field names sorted
// lexicographically, used wherever deterministic (not declaration)
// order is required, e.g. the RETURNING column list of an insert.
func (t *Table) SortedFieldNames() []string {
	out := append([]string{}, t.fieldOrder...)
	sort.Strings(out)
	return out
}
