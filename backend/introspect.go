package backend

import (
	"context"
	"fmt"
)

// ListTables returns every user-defined table name, excluding SQLite's
// own sqlite_% bookkeeping tables, mirroring
// original_source/lorelie/backends.py:list_tables_sql.
func (c *Connection) ListTables(ctx context.Context) ([]string, error) {
	rows, err := c.Query(ctx, `select name from sqlite_schema where type = 'table' and name not like 'sqlite_%'`)
	if err != nil {
		return nil, fmt.Errorf("backend: listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ColumnInfo mirrors one row of "pragma table_info(<table>)".
type ColumnInfo struct {
	CID        int
	Name       string
	Type       string
	NotNull    bool
	Default    any
	PrimaryKey bool
}

// ListColumns introspects a table's live column set via
// "pragma table_info", used by the migration reconciler to diff
// declared fields against what actually exists.
func (c *Connection) ListColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := c.Query(ctx, fmt.Sprintf("pragma table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("backend: listing columns of %q: %w", table, err)
	}
	defer rows.Close()

	var out []ColumnInfo
	for rows.Next() {
		var (
			info       ColumnInfo
			notNull    int
			primaryKey int
			defaultVal any
		)
		if err := rows.Scan(&info.CID, &info.Name, &info.Type, &notNull, &defaultVal, &primaryKey); err != nil {
			return nil, err
		}
		info.NotNull = notNull != 0
		info.PrimaryKey = primaryKey != 0
		info.Default = defaultVal
		out = append(out, info)
	}
	return out, rows.Err()
}

// IndexInfo mirrors one row of "pragma index_list(<table>)".
type IndexInfo struct {
	Name   string
	Unique bool
}

// ListIndexes introspects a table's live indexes via
// "pragma index_list", mirroring
// original_source/lorelie/backends.py:list_table_indexes.
func (c *Connection) ListIndexes(ctx context.Context, table string) ([]IndexInfo, error) {
	rows, err := c.Query(ctx, fmt.Sprintf("pragma index_list(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("backend: listing indexes of %q: %w", table, err)
	}
	defer rows.Close()

	var out []IndexInfo
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		out = append(out, IndexInfo{Name: name, Unique: unique != 0})
	}
	return out, rows.Err()
}

// ListViews returns every view's defining SQL, mirroring
// sqldef-sqldef/database/sqlite3/sqlite3.go:Views.
func (c *Connection) ListViews(ctx context.Context) ([]string, error) {
	rows, err := c.Query(ctx, `select sql from sqlite_master where type = 'view'`)
	if err != nil {
		return nil, fmt.Errorf("backend: listing views: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sql string
		if err := rows.Scan(&sql); err != nil {
			return nil, err
		}
		out = append(out, sql)
	}
	return out, rows.Err()
}

// TableExists reports whether a table by that name already exists.
func (c *Connection) TableExists(ctx context.Context, table string) (bool, error) {
	var count int
	row := c.QueryRow(ctx, `select count(*) from sqlite_schema where type = 'table' and name = ?`, table)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
