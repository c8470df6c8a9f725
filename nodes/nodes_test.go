package nodes

import (
	"testing"

	"github.com/lorelie-orm/lorelie/expr"
)

func TestSelectNodeDefaultsToStar(t *testing.T) {
	n := &SelectNode{Table: "users"}
	frags, err := n.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if len(frags) != 1 || frags[0] != "select * from users" {
		t.Errorf("SelectNode.SQL = %v", frags)
	}
}

func TestSelectNodeDistinct(t *testing.T) {
	n := &SelectNode{Table: "users", Fields: []string{"name"}, Distinct: true}
	frags, _ := n.SQL()
	if frags[0] != "select distinct name from users" {
		t.Errorf("SelectNode.SQL(distinct) = %v", frags)
	}
}

func TestWhereNodeCombinesKwargsAndPredicates(t *testing.T) {
	q := expr.NewQ(map[string]any{"age__gte": 18})
	w := NewWhereNode([]expr.Node{q}, map[string]any{"name": "bob"})
	frags, err := w.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	want := "where age >= 18 and name = 'bob'"
	if frags[0] != want {
		t.Errorf("WhereNode.SQL = %q, want %q", frags[0], want)
	}
}

func TestWhereNodeEmptyYieldsNoFragment(t *testing.T) {
	w := NewWhereNode(nil, nil)
	frags, err := w.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if len(frags) != 0 {
		t.Errorf("expected no fragments, got %v", frags)
	}
	if w.HasPredicate() {
		t.Error("empty WhereNode should report HasPredicate() == false")
	}
}

func TestWhereNodeCombine(t *testing.T) {
	a := NewWhereNode(nil, map[string]any{"name": "bob"})
	b := NewWhereNode(nil, map[string]any{"age__gte": 18})
	merged, err := a.Combine(b)
	if err != nil {
		t.Fatalf("Combine error: %v", err)
	}
	frags, err := merged.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if frags[0] != "where age >= 18 and name = 'bob'" {
		t.Errorf("merged WhereNode.SQL = %q", frags[0])
	}
}

func TestOrderByNodeAscendingAndDescending(t *testing.T) {
	n, err := NewOrderByNode("name", "-age")
	if err != nil {
		t.Fatalf("NewOrderByNode error: %v", err)
	}
	frags, err := n.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if frags[0] != "order by name asc, age desc" {
		t.Errorf("OrderByNode.SQL = %q", frags[0])
	}
}

func TestOrderByNodeRejectsConflictingDirection(t *testing.T) {
	_, err := NewOrderByNode("name", "-name")
	if err == nil {
		t.Fatal("expected error for field ordered both ways in one call")
	}
}

func TestOrderByNodeCombineRejectsConflict(t *testing.T) {
	a, _ := NewOrderByNode("name")
	b, _ := NewOrderByNode("-name")
	if _, err := a.Combine(b); err == nil {
		t.Fatal("expected error combining conflicting OrderByNodes")
	}
}

func TestSelectMapResolvesInCanonicalOrder(t *testing.T) {
	m := NewSelectMap()
	lim := &LimitNode{N: 5}
	where := NewWhereNode(nil, map[string]any{"age__gte": 18})
	sel := &SelectNode{Table: "users"}

	// Install out of canonical order to prove Resolve fixes it.
	if err := m.Set(lim); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(where); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(sel); err != nil {
		t.Fatal(err)
	}

	frags, err := m.Resolve()
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	want := []string{"select * from users", "where age >= 18", "limit 5"}
	if len(frags) != len(want) {
		t.Fatalf("Resolve() = %v, want %v", frags, want)
	}
	for i := range want {
		if frags[i] != want[i] {
			t.Errorf("Resolve()[%d] = %q, want %q", i, frags[i], want[i])
		}
	}
}

func TestSelectMapSecondWhereNodeMerges(t *testing.T) {
	m := NewSelectMap()
	_ = m.Set(NewWhereNode(nil, map[string]any{"name": "bob"}))
	_ = m.Set(NewWhereNode(nil, map[string]any{"age__gte": 18}))

	node, ok := m.Get("where")
	if !ok {
		t.Fatal("expected where node present")
	}
	frags, err := node.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if frags[0] != "where age >= 18 and name = 'bob'" {
		t.Errorf("merged where fragment = %q", frags[0])
	}
}

func TestInsertNodeRendersReturning(t *testing.T) {
	n := &InsertNode{
		Table:     "users",
		Records:   []map[string]any{{"name": "bob", "age": 18}},
		AllFields: []string{"id", "age", "name"},
	}
	frags, err := n.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	want := "insert into users (age, name) values (18, 'bob') returning id, age, name"
	if frags[0] != want {
		t.Errorf("InsertNode.SQL = %q, want %q", frags[0], want)
	}
}

func TestInsertNodeRequiresRecord(t *testing.T) {
	n := &InsertNode{Table: "users"}
	if _, err := n.SQL(); err == nil {
		t.Fatal("expected error for InsertNode with no records")
	}
}

func TestUpdateNodeRefusesWithoutPredicate(t *testing.T) {
	n := &UpdateNode{Table: "users", SetValues: map[string]any{"age": 19}, Where: NewWhereNode(nil, nil)}
	if _, err := n.SQL(); err == nil {
		t.Fatal("expected UpdateNode to refuse an unconditional update")
	}
}

func TestUpdateNodeSQL(t *testing.T) {
	where := NewWhereNode(nil, map[string]any{"id": 1})
	n := &UpdateNode{Table: "users", SetValues: map[string]any{"age": 19}, Where: where}
	frags, err := n.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	want := "update users set age=19 where id = 1"
	if frags[0] != want {
		t.Errorf("UpdateNode.SQL = %q, want %q", frags[0], want)
	}
}

func TestDeleteNodeRefusesWithoutPredicate(t *testing.T) {
	n := &DeleteNode{Table: "users", Where: NewWhereNode(nil, nil)}
	if _, err := n.SQL(); err == nil {
		t.Fatal("expected DeleteNode to refuse an unconditional delete")
	}
}

func TestAnnotationNodeSortsAliases(t *testing.T) {
	n := &AnnotationNode{Aliases: map[string]expr.Node{
		"b_alias": expr.F{Column: "b"},
		"a_alias": expr.F{Column: "a"},
	}}
	frags, err := n.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	want := "a as a_alias, b as b_alias"
	if frags[0] != want {
		t.Errorf("AnnotationNode.SQL = %q, want %q", frags[0], want)
	}
}
