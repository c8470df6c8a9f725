package errs

import "testing"

func TestValidationErrorFormatting(t *testing.T) {
	withField := &ValidationError{Field: "age", Message: "must be positive"}
	if withField.Error() != "age: must be positive" {
		t.Errorf("Error() = %q", withField.Error())
	}

	bare := &ValidationError{Message: "no matching row"}
	if bare.Error() != "no matching row" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestFieldExistsErrorFormatting(t *testing.T) {
	err := &FieldExistsError{Table: "users", Field: "nickname"}
	want := `table "users" has no field named "nickname"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestRefusedErrorFormatting(t *testing.T) {
	err := &RefusedError{Operation: "delete"}
	want := "refusing to run unconditional delete: no WHERE predicate given"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestMultipleRowsErrorFormatting(t *testing.T) {
	err := &MultipleRowsError{Table: "users"}
	want := `get() on "users" returned more than one row`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestMigrationsExistsErrorFormatting(t *testing.T) {
	withTable := &MigrationsExistsError{Table: "users"}
	if withTable.Error() != `migrate() must run before querying table "users"` {
		t.Errorf("Error() = %q", withTable.Error())
	}

	bare := &MigrationsExistsError{}
	if bare.Error() != "migrate() must run before querying this database" {
		t.Errorf("Error() = %q", bare.Error())
	}
}
