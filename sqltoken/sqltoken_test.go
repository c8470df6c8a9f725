package sqltoken

import "testing"

func TestQuoteValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "''"},
		{42, "42"},
		{int64(42), "42"},
		{3.5, "3.5"},
		{true, "1"},
		{false, "0"},
		{"hi", "'hi'"},
		{"it's", "'it''s'"},
		{"'already'", "'already'"},
	}
	for _, c := range cases {
		if got := QuoteValue(c.in); got != c.want {
			t.Errorf("QuoteValue(%#v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestQuoteLikeVariants(t *testing.T) {
	if got := QuoteLike("abc"); got != "'%abc%'" {
		t.Errorf("QuoteLike = %q", got)
	}
	if got := QuoteStartsWith("abc"); got != "'abc%'" {
		t.Errorf("QuoteStartsWith = %q", got)
	}
	if got := QuoteEndsWith("abc"); got != "'%abc'" {
		t.Errorf("QuoteEndsWith = %q", got)
	}
}

func TestCommaAndOperatorJoin(t *testing.T) {
	if got := CommaJoin([]string{"a", "b", "c"}); got != "a, b, c" {
		t.Errorf("CommaJoin = %q", got)
	}
	if got := OperatorJoin([]string{"a = 1", "b = 2"}, "and"); got != "a = 1 and b = 2" {
		t.Errorf("OperatorJoin = %q", got)
	}
	if got := OperatorJoin(nil, "and"); got != "" {
		t.Errorf("OperatorJoin(nil) = %q, want empty", got)
	}
}

func TestFinalizeSQL(t *testing.T) {
	if got := FinalizeSQL("select 1"); got != "select 1;" {
		t.Errorf("FinalizeSQL = %q", got)
	}
	if got := FinalizeSQL("select 1;"); got != "select 1;" {
		t.Errorf("FinalizeSQL(already terminated) = %q", got)
	}
}

func TestDeSQLizeStatement(t *testing.T) {
	if got := DeSQLizeStatement("select 1;"); got != "select 1" {
		t.Errorf("DeSQLizeStatement = %q", got)
	}
}

func TestWrapParens(t *testing.T) {
	if got := WrapParens("a and b"); got != "(a and b)" {
		t.Errorf("WrapParens = %q", got)
	}
}
