package triggers

import "testing"

func TestRunFiresMatchingTableOnly(t *testing.T) {
	reg := NewRegistry()
	var fired []string
	reg.Register(BeforeCreate, "users", "stamp", func(table string, payload any) {
		fired = append(fired, table)
	})

	reg.Run(BeforeCreate, "users", nil)
	reg.Run(BeforeCreate, "orders", nil)

	if len(fired) != 1 || fired[0] != "users" {
		t.Fatalf("fired = %v, want exactly one call for users", fired)
	}
}

func TestRunFiresGlobalRegistrationForEveryTable(t *testing.T) {
	reg := NewRegistry()
	var count int
	reg.Register(AfterSave, "", "audit", func(table string, payload any) {
		count++
	})

	reg.Run(AfterSave, "users", nil)
	reg.Run(AfterSave, "orders", nil)

	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestRunPassesPayloadThrough(t *testing.T) {
	reg := NewRegistry()
	var got any
	reg.Register(AfterCreate, "users", "", func(table string, payload any) {
		got = payload
	})

	reg.Run(AfterCreate, "users", map[string]any{"id": 1})

	m, ok := got.(map[string]any)
	if !ok || m["id"] != 1 {
		t.Fatalf("got = %v", got)
	}
}

func TestRunWithNoRegistrationsIsNoop(t *testing.T) {
	reg := NewRegistry()
	reg.Run(BeforeDelete, "users", nil) // must not panic
}
