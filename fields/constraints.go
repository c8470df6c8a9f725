package fields

import (
	"fmt"

	"github.com/lorelie-orm/lorelie/expr"
)

// Constraint is the contract every table- or field-level constraint
// implements: a name and the DDL fragment it contributes to CREATE
// TABLE. Names are never suffixed: an explicitly given name is used
// verbatim.
//
// Grounded on original_source/lorelie/constraints.py.
type Constraint interface {
	Name() string
	SQL() (string, error)
}

// BaseConstraint carries the constraint name shared by every kind.
// CHECK and UNIQUE constraints keep the name they are built with, even
// when it is empty; MinValue and MaxValue constraints are named
// "<field>_minvalue" / "<field>_maxvalue", and a MaxLength constraint
// named "" or "maxlen" becomes "<field>_maxlen". No random or
// table-based suffix is generated.
type BaseConstraint struct {
	name string
}

// Name returns the constraint's name.
func (c *BaseConstraint) Name() string { return c.name }

// CheckConstraint wraps a boolean expr.Node predicate as a table-level
// CHECK constraint.
type CheckConstraint struct {
	BaseConstraint
	Predicate expr.Node
}

// NewCheckConstraint builds a named CHECK constraint over predicate.
func NewCheckConstraint(name string, predicate expr.Node) *CheckConstraint {
	return &CheckConstraint{BaseConstraint: BaseConstraint{name: name}, Predicate: predicate}
}

func (c *CheckConstraint) SQL() (string, error) {
	fragment, err := c.Predicate.SQL()
	if err != nil {
		return "", fmt.Errorf("fields: building check constraint %q: %w", c.name, err)
	}
	return fmt.Sprintf("constraint %s check %s", c.name, fragment), nil
}

// UniqueConstraint declares a composite uniqueness requirement across
// one or more fields.
type UniqueConstraint struct {
	BaseConstraint
	Fields []string
}

// NewUniqueConstraint builds a named UNIQUE constraint over fields.
func NewUniqueConstraint(name string, fields ...string) *UniqueConstraint {
	return &UniqueConstraint{BaseConstraint: BaseConstraint{name: name}, Fields: fields}
}

func (c *UniqueConstraint) SQL() (string, error) {
	if len(c.Fields) == 0 {
		return "", fmt.Errorf("fields: unique constraint %q has no fields", c.name)
	}
	cols := ""
	for i, f := range c.Fields {
		if i > 0 {
			cols += ", "
		}
		cols += f
	}
	return fmt.Sprintf("constraint %s unique (%s)", c.name, cols), nil
}

// MaxLengthConstraint is auto-attached by the MaxLength field option and
// renders as a CHECK(length(field) <= limit).
type MaxLengthConstraint struct {
	BaseConstraint
	Limit     int
	FieldName string
}

func (c *MaxLengthConstraint) SQL() (string, error) {
	name := c.name
	if name == "" || name == "maxlen" {
		name = fmt.Sprintf("%s_maxlen", c.FieldName)
	}
	return fmt.Sprintf("constraint %s check (length(%s) <= %d)", name, c.FieldName, c.Limit), nil
}

// MinValueConstraint renders a table-level CHECK(field >= limit).
type MinValueConstraint struct {
	BaseConstraint
	Limit     float64
	FieldName string
}

// NewMinValueConstraint builds a named minimum-value CHECK constraint.
func NewMinValueConstraint(fieldName string, limit float64) *MinValueConstraint {
	return &MinValueConstraint{
		BaseConstraint: BaseConstraint{name: fmt.Sprintf("%s_minvalue", fieldName)},
		Limit:          limit,
		FieldName:      fieldName,
	}
}

func (c *MinValueConstraint) SQL() (string, error) {
	return fmt.Sprintf("constraint %s check (%s >= %v)", c.name, c.FieldName, c.Limit), nil
}

// MaxValueConstraint renders a table-level CHECK(field <= limit).
type MaxValueConstraint struct {
	BaseConstraint
	Limit     float64
	FieldName string
}

// NewMaxValueConstraint builds a named maximum-value CHECK constraint.
func NewMaxValueConstraint(fieldName string, limit float64) *MaxValueConstraint {
	return &MaxValueConstraint{
		BaseConstraint: BaseConstraint{name: fmt.Sprintf("%s_maxvalue", fieldName)},
		Limit:          limit,
		FieldName:      fieldName,
	}
}

func (c *MaxValueConstraint) SQL() (string, error) {
	return fmt.Sprintf("constraint %s check (%s <= %v)", c.name, c.FieldName, c.Limit), nil
}
