package fields

import (
	"testing"

	"github.com/lorelie-orm/lorelie/expr"
)

func TestCheckConstraintSQL(t *testing.T) {
	c := NewCheckConstraint("age_positive", expr.F{Column: "age > 0"})
	got, err := c.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if got != "constraint age_positive check age > 0" {
		t.Errorf("SQL = %q", got)
	}
}

func TestUniqueConstraintSQL(t *testing.T) {
	c := NewUniqueConstraint("uq_name_email", "name", "email")
	got, err := c.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if got != "constraint uq_name_email unique (name, email)" {
		t.Errorf("SQL = %q", got)
	}
}

func TestUniqueConstraintRequiresFields(t *testing.T) {
	c := NewUniqueConstraint("uq_empty")
	if _, err := c.SQL(); err == nil {
		t.Fatal("expected error for unique constraint with no fields")
	}
}

func TestMinMaxValueConstraintSQL(t *testing.T) {
	min := NewMinValueConstraint("age", 0)
	got, err := min.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if got != "constraint age_minvalue check (age >= 0)" {
		t.Errorf("min SQL = %q", got)
	}

	max := NewMaxValueConstraint("age", 120)
	got2, err := max.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if got2 != "constraint age_maxvalue check (age <= 120)" {
		t.Errorf("max SQL = %q", got2)
	}
}
