package backend

import (
	"context"
	"testing"
)

func TestRowGetAndAt(t *testing.T) {
	r := NewRow([]string{"id", "name"}, []any{int64(1), "bob"}, nil)
	if v, ok := r.Get("name"); !ok || v != "bob" {
		t.Fatalf("Get(name) = %v, %v", v, ok)
	}
	if v, err := r.At(0); err != nil || v != int64(1) {
		t.Fatalf("At(0) = %v, %v", v, err)
	}
	if _, err := r.At(5); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestRowString(t *testing.T) {
	r := NewRow([]string{"id"}, []any{int64(7)}, nil)
	if r.String() != "<id: 7>" {
		t.Errorf("String() = %q", r.String())
	}
	empty := NewRow(nil, nil, nil)
	if empty.String() != "<id: ?>" {
		t.Errorf("String() on empty row = %q", empty.String())
	}
}

func TestRowContains(t *testing.T) {
	r := NewRow([]string{"id", "name"}, []any{int64(1), "bob"}, nil)
	if !r.Contains("bob") {
		t.Error("expected Contains(bob) == true")
	}
	if r.Contains("nobody") {
		t.Error("expected Contains(nobody) == false")
	}
}

func TestScanRowsFromLiveQuery(t *testing.T) {
	conn := openTestConnection(t, "conn_scan_rows")
	ctx := context.Background()

	if err := conn.RunDDLs(ctx, []string{"create table items (id integer primary key, name text)"}); err != nil {
		t.Fatalf("RunDDLs error: %v", err)
	}
	if _, err := conn.Exec(ctx, "insert into items (name) values ('widget')"); err != nil {
		t.Fatalf("insert error: %v", err)
	}

	cursor, err := conn.Query(ctx, "select id, name from items")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	rows, err := conn.ScanRows(cursor)
	if err != nil {
		t.Fatalf("ScanRows error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	name, ok := rows[0].Get("name")
	if !ok || name != "widget" {
		t.Errorf("row name = %v, %v", name, ok)
	}
}
