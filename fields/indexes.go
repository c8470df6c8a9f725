package fields

import (
	"fmt"
	"strings"

	"github.com/lorelie-orm/lorelie/expr"
)

// maxIndexNameLength is SQLite's practical convention for index names in
// this driver layer; longer names are rejected rather than silently
// truncated so the failure surfaces at declaration time, not at DDL
// execution time.
const maxIndexNameLength = 30

// Index declares a (optionally partial) index over one or more fields of
// a table.
//
// Grounded on original_source/lorelie/indexes.py.
type Index struct {
	Name      string
	Table     string
	Fields    []string
	Predicate expr.Node // nil for a non-partial index
}

// NewIndex constructs an index, validating the name length up front.
func NewIndex(name, table string, fields ...string) (*Index, error) {
	if len(name) > maxIndexNameLength {
		return nil, fmt.Errorf("fields: index name %q exceeds %d characters", name, maxIndexNameLength)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("fields: index %q declares no fields", name)
	}
	return &Index{Name: name, Table: table, Fields: fields}, nil
}

// WithPredicate attaches a partial-index predicate.
func (idx *Index) WithPredicate(predicate expr.Node) *Index {
	idx.Predicate = predicate
	return idx
}

// Validate checks that every field the index references is declared on
// the given table's field set.
func (idx *Index) Validate(declaredFields map[string]bool) error {
	for _, f := range idx.Fields {
		if !declaredFields[f] {
			return fmt.Errorf("fields: index %q references undeclared field %q", idx.Name, f)
		}
	}
	return nil
}

// SQL renders "create index if not exists <name> on <table> (<fields>)
// [where <predicate>]".
func (idx *Index) SQL() (string, error) {
	base := fmt.Sprintf(
		"create index if not exists %s on %s (%s)",
		idx.Name, idx.Table, strings.Join(idx.Fields, ", "),
	)
	if idx.Predicate == nil {
		return base, nil
	}
	fragment, err := idx.Predicate.SQL()
	if err != nil {
		return "", fmt.Errorf("fields: building partial index %q predicate: %w", idx.Name, err)
	}
	return fmt.Sprintf("%s where %s", base, fragment), nil
}
