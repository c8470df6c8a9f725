package nodes

import "fmt"

// slotOrder is the fixed resolution order of spec §4.3, independent of
// the order builder calls installed each slot:
// select -> join -> where -> group_by -> having -> order_by -> limit -> offset.
var slotOrder = []string{"select", "join", "where", "group_by", "having", "order_by", "limit", "offset"}

// SelectMap slots at-most-one node of each canonical kind and resolves
// them in the fixed order above, regardless of insertion order. Adding a
// second WhereNode or OrderByNode combines it with the one already
// present via the node's own Combine algebra.
//
// Grounded on original_source/lorelie/database/nodes.py:SelectMap.
type SelectMap struct {
	slots map[string]Node
}

// NewSelectMap returns an empty SelectMap.
func NewSelectMap() *SelectMap {
	return &SelectMap{slots: map[string]Node{}}
}

// Set installs a node in its canonical slot. If a node of the same kind
// is already present and both implement Combinable, the two are merged;
// otherwise the new node replaces the old one.
func (m *SelectMap) Set(n Node) error {
	name := n.NodeName()
	if existing, ok := m.slots[name]; ok {
		if combinable, ok := existing.(Combinable); ok {
			merged, err := combinable.Combine(n)
			if err != nil {
				return err
			}
			m.slots[name] = merged
			return nil
		}
	}
	m.slots[name] = n
	return nil
}

// Get returns the node installed in the given canonical slot, if any.
func (m *SelectMap) Get(name string) (Node, bool) {
	n, ok := m.slots[name]
	return n, ok
}

// ShouldResolve reports whether a select node is present, the signal
// that this map represents a full SELECT statement rather than a bare
// statement list.
func (m *SelectMap) ShouldResolve() bool {
	_, ok := m.slots["select"]
	return ok
}

// Resolve renders every installed slot's fragments in canonical order.
func (m *SelectMap) Resolve() ([]string, error) {
	var out []string
	for _, slot := range slotOrder {
		node, ok := m.slots[slot]
		if !ok {
			continue
		}
		fragments, err := node.SQL()
		if err != nil {
			return nil, fmt.Errorf("nodes: resolving %q slot: %w", slot, err)
		}
		out = append(out, fragments...)
	}
	return out, nil
}
