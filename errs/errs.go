// Package errs defines the error taxonomy raised across the query engine.
//
// Each kind is a distinct type so callers can discriminate with errors.As
// instead of string matching, the idiomatic Go analogue of a Python
// exception hierarchy.
package errs

import "fmt"

// ValidationError is raised when a value does not pass a field's
// type/range/format rule, before any SQL is sent to the driver.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldExistsError is raised when code references a column that is not
// declared on the table.
type FieldExistsError struct {
	Table string
	Field string
}

func (e *FieldExistsError) Error() string {
	return fmt.Sprintf("table %q has no field named %q", e.Table, e.Field)
}

// TableExistsError is raised when code references a table that is not
// registered on the database.
type TableExistsError struct {
	Table string
}

func (e *TableExistsError) Error() string {
	return fmt.Sprintf("no table named %q is registered on this database", e.Table)
}

// MigrationsExistsError is raised when an operation that requires a
// migrated schema runs before Migrate() has completed.
type MigrationsExistsError struct {
	Table string
}

func (e *MigrationsExistsError) Error() string {
	if e.Table == "" {
		return "migrate() must run before querying this database"
	}
	return fmt.Sprintf("migrate() must run before querying table %q", e.Table)
}

// ImproperlyConfiguredError is raised when an operation is attempted on a
// table that has not been bound to a Database.
type ImproperlyConfiguredError struct {
	Table string
}

func (e *ImproperlyConfiguredError) Error() string {
	return fmt.Sprintf("table %q is not bound to a database", e.Table)
}

// ConnectionExistsError is raised when no connection is found in the
// process-wide connection registry.
type ConnectionExistsError struct {
	Name string
}

func (e *ConnectionExistsError) Error() string {
	return fmt.Sprintf("no open connection named %q", e.Name)
}

// NoDatabaseError is raised when a table is created or used without a
// database context when one was required.
type NoDatabaseError struct {
	Table string
}

func (e *NoDatabaseError) Error() string {
	return fmt.Sprintf("table %q requires a database context", e.Table)
}

// RefusedError is raised when an UPDATE or DELETE is attempted without a
// predicate, per the engine's refusal policy (spec §4.3, §7).
type RefusedError struct {
	Operation string
}

func (e *RefusedError) Error() string {
	return fmt.Sprintf("refusing to run unconditional %s: no WHERE predicate given", e.Operation)
}

// MultipleRowsError is raised by Get() when more than one row matches.
type MultipleRowsError struct {
	Table string
}

func (e *MultipleRowsError) Error() string {
	return fmt.Sprintf("get() on %q returned more than one row", e.Table)
}
