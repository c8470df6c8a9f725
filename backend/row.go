package backend

import "fmt"

// Row is the attribute+index-addressable result row spec §4.4
// requires, mirroring original_source/lorelie/backends.py's BaseRow: a
// snapshot of one query result that can be addressed by column name or
// position, with equality and membership testing over its values.
type Row struct {
	Fields []string
	Data   map[string]any
	Conn   *Connection
}

// NewRow builds a Row from parallel column-name/value slices, as
// produced by a *sql.Rows scan.
func NewRow(fields []string, values []any, conn *Connection) *Row {
	data := make(map[string]any, len(fields))
	for i, f := range fields {
		data[f] = values[i]
	}
	return &Row{Fields: fields, Data: data, Conn: conn}
}

// Get returns the named column's value, or (nil, false) if absent.
func (r *Row) Get(name string) (any, bool) {
	v, ok := r.Data[name]
	return v, ok
}

// At returns the value at the given positional index into Fields.
func (r *Row) At(index int) (any, error) {
	if index < 0 || index >= len(r.Fields) {
		return nil, fmt.Errorf("backend: row index %d out of range", index)
	}
	return r.Data[r.Fields[index]], nil
}

// String renders "<id: N>" the way BaseRow.__repr__ does, preferring
// "id" and falling back to "rowid".
func (r *Row) String() string {
	if id, ok := r.Data["id"]; ok {
		return fmt.Sprintf("<id: %v>", id)
	}
	if id, ok := r.Data["rowid"]; ok {
		return fmt.Sprintf("<id: %v>", id)
	}
	return "<id: ?>"
}

// Contains reports whether value appears, stringified, in any of the
// row's non-nil column values — BaseRow.__contains__'s membership test.
func (r *Row) Contains(value string) bool {
	for _, v := range r.Data {
		if v == nil {
			continue
		}
		if fmt.Sprint(v) == value {
			return true
		}
	}
	return false
}

// ScanRows consumes an open *sql.Rows cursor into a slice of Row
// snapshots, closing the cursor before returning.
func (c *Connection) ScanRows(cursor interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}) ([]*Row, error) {
	defer cursor.Close()

	columns, err := cursor.Columns()
	if err != nil {
		return nil, err
	}

	var out []*Row
	for cursor.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := cursor.Scan(pointers...); err != nil {
			return nil, err
		}
		out = append(out, NewRow(columns, values, c))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
