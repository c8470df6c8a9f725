package functions

import "testing"

func TestLowerSQLAndAlias(t *testing.T) {
	f := NewLower("name")
	sql, err := f.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if sql != "lower(name)" {
		t.Errorf("SQL = %q", sql)
	}
	if f.Alias() != "name__lower" {
		t.Errorf("Alias = %q", f.Alias())
	}
}

func TestNestedFunctionArgument(t *testing.T) {
	inner := NewLower("name")
	outer := NewUpper(inner)
	sql, err := outer.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if sql != "upper(lower(name))" {
		t.Errorf("SQL = %q", sql)
	}
}

func TestSubstrSQL(t *testing.T) {
	f := NewSubstr("name", 1, 3)
	sql, err := f.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if sql != "substr(name, 1, 3)" {
		t.Errorf("SQL = %q", sql)
	}
}

func TestHashFunctionsRenderUDFCalls(t *testing.T) {
	cases := []struct {
		f    Function
		want string
	}{
		{NewHash("name"), "hash(name)"},
		{NewSHA1("name"), "sha1(name)"},
		{NewSHA256("name"), "sha256(name)"},
	}
	for _, c := range cases {
		got, err := c.f.SQL()
		if err != nil {
			t.Fatalf("SQL error: %v", err)
		}
		if got != c.want {
			t.Errorf("SQL = %q, want %q", got, c.want)
		}
	}
}

func TestExtractSQL(t *testing.T) {
	f := ExtractYear("birthday")
	sql, err := f.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if sql != "strftime('%Y', birthday)" {
		t.Errorf("SQL = %q", sql)
	}
	if f.Alias() != "birthday__year" {
		t.Errorf("Alias = %q", f.Alias())
	}
}

func TestNewExtractRejectsUnknownPart(t *testing.T) {
	if _, err := NewExtract("birthday", "century"); err == nil {
		t.Fatal("expected error for unrecognized date part")
	}
}

func TestAggregatesSQL(t *testing.T) {
	cases := []struct {
		f    Function
		want string
	}{
		{NewCount("id"), "count(id)"},
		{NewAvg("age"), "avg(age)"},
		{NewSum("age"), "sum(age)"},
		{NewMin("age"), "min(age)"},
		{NewMax("age"), "max(age)"},
		{NewVariance("age"), "variance(age)"},
		{NewStDev("age"), "stdev(age)"},
	}
	for _, c := range cases {
		got, err := c.f.SQL()
		if err != nil {
			t.Fatalf("SQL error: %v", err)
		}
		if got != c.want {
			t.Errorf("SQL = %q, want %q", got, c.want)
		}
	}
	if NewCount("id").Alias() != "id__count" {
		t.Errorf("Count.Alias = %q", NewCount("id").Alias())
	}
}

func TestWindowRankNoPartitionOrOrder(t *testing.T) {
	w := NewWindow(NewRank(), "", "")
	got, err := w.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if got != "rank() over ()" {
		t.Errorf("SQL = %q", got)
	}
}

func TestWindowWithPartitionAndOrder(t *testing.T) {
	w := NewWindow(NewLag("age", 1), "department", "age")
	got, err := w.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	want := "lag(age, 1) over (partition by department order by age)"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
	if w.Alias() != "lag_age__window" {
		t.Errorf("Alias = %q", w.Alias())
	}
}

func TestNtileIgnoresFieldName(t *testing.T) {
	w := NewWindow(NewNtile(4), "", "")
	got, err := w.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	if got != "ntile(4) over ()" {
		t.Errorf("SQL = %q", got)
	}
}

func TestNthValueWithPartitionAndOrder(t *testing.T) {
	w := NewWindow(NewNthValue("age", 2), "department", "age")
	got, err := w.SQL()
	if err != nil {
		t.Fatalf("SQL error: %v", err)
	}
	want := "nth_value(age, 2) over (partition by department order by age)"
	if got != want {
		t.Errorf("SQL = %q, want %q", got, want)
	}
	if w.Alias() != "nth_value_age__window" {
		t.Errorf("Alias = %q", w.Alias())
	}
}
