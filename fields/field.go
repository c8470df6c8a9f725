// Package fields implements the typed field descriptors, constraints and
// indexes of spec §3: value coercion between native Go values and their
// SQL representation, field-level validators, and the CHECK/UNIQUE/
// MIN/MAX constraints a Table can carry.
//
// Grounded on original_source/lorelie/fields/base.py and fields.py.
package fields

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lorelie-orm/lorelie/errs"
)

// Field is the common descriptor contract every field kind implements.
type Field interface {
	Name() string
	ColumnType() string
	Nullable() bool
	PrimaryKey() bool
	Unique() bool
	MaxLength() *int
	Default() any
	Validators() []Validator
	Constraints() []*MaxLengthConstraint
	DeclIndex() int
	SetDeclIndex(i int)

	// ToDatabase validates and converts a native value into its SQL-ready
	// representation, running validators and returning a ValidationError
	// on mismatch.
	ToDatabase(value any) (any, error)
	// ToPython converts a value read back from SQLite into its native Go
	// representation.
	ToPython(value any) (any, error)
}

// BaseField carries the attributes and behavior shared by every field
// kind; concrete kinds embed it and override ToDatabase/ToPython/
// ColumnType as needed.
type BaseField struct {
	name         string
	nullable     bool
	primaryKey   bool
	unique       bool
	maxLength    *int
	defaultValue any
	validators   []Validator
	constraints  []*MaxLengthConstraint
	declIndex    int
}

// Option configures a field at construction time.
type Option func(*BaseField)

// Null marks the field nullable.
func Null() Option { return func(f *BaseField) { f.nullable = true } }

// PrimaryKey marks the field as the table's primary key.
func PrimaryKey() Option { return func(f *BaseField) { f.primaryKey = true } }

// Unique marks the field as unique.
func Unique() Option { return func(f *BaseField) { f.unique = true } }

// MaxLength bounds a text field's length and attaches a
// MaxLengthConstraint, mirroring the Python field's automatic behavior.
func MaxLength(n int) Option {
	return func(f *BaseField) {
		f.maxLength = &n
		f.constraints = append(f.constraints, &MaxLengthConstraint{BaseConstraint: BaseConstraint{name: "maxlen"}, Limit: n, FieldName: f.name})
	}
}

// Default sets the field's default value, which may be a literal or a
// zero-argument func() any evaluated lazily at insert time.
func Default(v any) Option { return func(f *BaseField) { f.defaultValue = v } }

// WithValidators attaches additional validators.
func WithValidators(v ...Validator) Option {
	return func(f *BaseField) { f.validators = append(f.validators, v...) }
}

func newBase(name string, opts ...Option) BaseField {
	f := BaseField{name: name}
	for _, opt := range opts {
		opt(&f)
	}
	// constraints built in MaxLength() captured f.name before opts applied
	// in caller order; re-stamp to be safe.
	for _, c := range f.constraints {
		c.FieldName = f.name
	}
	return f
}

func (f *BaseField) Name() string                       { return f.name }
func (f *BaseField) Nullable() bool                      { return f.nullable }
func (f *BaseField) PrimaryKey() bool                     { return f.primaryKey }
func (f *BaseField) Unique() bool                         { return f.unique }
func (f *BaseField) MaxLength() *int                      { return f.maxLength }
func (f *BaseField) Default() any                         { return f.defaultValue }
func (f *BaseField) Validators() []Validator              { return f.validators }
func (f *BaseField) Constraints() []*MaxLengthConstraint  { return f.constraints }
func (f *BaseField) DeclIndex() int                       { return f.declIndex }
func (f *BaseField) SetDeclIndex(i int)                   { f.declIndex = i }

func (f *BaseField) runValidators(value any) error {
	for _, v := range f.validators {
		if err := v(f.name, value); err != nil {
			return err
		}
	}
	return nil
}

// CharField stores text.
type CharField struct{ BaseField }

// NewCharField constructs a text field.
func NewCharField(name string, opts ...Option) *CharField {
	return &CharField{BaseField: newBase(name, opts...)}
}

func (f *CharField) ColumnType() string { return "text" }

func (f *CharField) ToDatabase(value any) (any, error) {
	if value == nil {
		if f.nullable {
			return nil, nil
		}
		return nil, &errs.ValidationError{Field: f.name, Message: "value cannot be null"}
	}
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprint(value)
	}
	if err := f.runValidators(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (f *CharField) ToPython(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return fmt.Sprint(value), nil
}

// IntegerField stores a 64-bit integer.
type IntegerField struct {
	BaseField
	min, max *int64
}

// NewIntegerField constructs an integer field, optionally bounded.
func NewIntegerField(name string, opts ...Option) *IntegerField {
	return &IntegerField{BaseField: newBase(name, opts...)}
}

// WithRange attaches min/max value validators to an already-built field.
func (f *IntegerField) WithRange(min, max *int64) *IntegerField {
	f.min, f.max = min, max
	if min != nil {
		f.validators = append(f.validators, MinValueValidator(float64(*min)))
	}
	if max != nil {
		f.validators = append(f.validators, MaxValueValidator(float64(*max)))
	}
	return f
}

func (f *IntegerField) ColumnType() string { return "integer" }

func (f *IntegerField) ToDatabase(value any) (any, error) {
	if value == nil {
		if f.nullable {
			return nil, nil
		}
		return nil, &errs.ValidationError{Field: f.name, Message: "value cannot be null"}
	}
	n, err := coerceInt(value)
	if err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: err.Error()}
	}
	if err := f.runValidators(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (f *IntegerField) ToPython(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	n, err := coerceInt(value)
	if err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: err.Error()}
	}
	return n, nil
}

func coerceInt(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a valid integer", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%v of type %T is not a valid integer", value, value)
	}
}

// AutoField is the reserved, autoincrement integer primary key every
// table carries exactly one of, named "id" (spec §3 invariants).
type AutoField struct{ IntegerField }

// NewAutoField constructs the reserved "id" primary key field.
func NewAutoField() *AutoField {
	f := &AutoField{IntegerField: *NewIntegerField("id", PrimaryKey())}
	return f
}

func (f *AutoField) ColumnType() string { return "integer" }

// FloatField stores a real number.
type FloatField struct{ BaseField }

// NewFloatField constructs a real-valued field.
func NewFloatField(name string, opts ...Option) *FloatField {
	return &FloatField{BaseField: newBase(name, opts...)}
}

func (f *FloatField) ColumnType() string { return "real" }

func (f *FloatField) ToDatabase(value any) (any, error) {
	if value == nil {
		if f.nullable {
			return nil, nil
		}
		return nil, &errs.ValidationError{Field: f.name, Message: "value cannot be null"}
	}
	fl, ok := toFloat(value)
	if !ok {
		if s, ok := value.(string); ok {
			parsed, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &errs.ValidationError{Field: f.name, Message: "not a valid real number"}
			}
			fl = parsed
		} else {
			return nil, &errs.ValidationError{Field: f.name, Message: "not a valid real number"}
		}
	}
	if err := f.runValidators(fl); err != nil {
		return nil, err
	}
	return fl, nil
}

func (f *FloatField) ToPython(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	fl, ok := toFloat(value)
	if !ok {
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid real number"}
	}
	return fl, nil
}

// booleanLiterals is the recognized set of truthy/falsy encodings spec
// §3 names.
var booleanLiterals = map[string]bool{
	"true": true, "false": false,
	"1": true, "0": false,
	"t": true, "f": false,
}

// BooleanField stores 0/1, accepting a small set of recognized literal
// encodings on the way in.
type BooleanField struct{ BaseField }

// NewBooleanField constructs a boolean field.
func NewBooleanField(name string, opts ...Option) *BooleanField {
	return &BooleanField{BaseField: newBase(name, opts...)}
}

func (f *BooleanField) ColumnType() string { return "integer" }

func (f *BooleanField) ToDatabase(value any) (any, error) {
	if value == nil {
		if f.nullable {
			return nil, nil
		}
		return nil, &errs.ValidationError{Field: f.name, Message: "value cannot be null"}
	}
	b, err := coerceBool(value)
	if err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: err.Error()}
	}
	if b {
		return int64(1), nil
	}
	return int64(0), nil
}

func (f *BooleanField) ToPython(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	b, err := coerceBool(value)
	if err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: err.Error()}
	}
	return b, nil
}

func coerceBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case string:
		b, ok := booleanLiterals[strings.ToLower(v)]
		if !ok {
			return false, fmt.Errorf("%q is not a recognized boolean literal", v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%v of type %T is not a valid boolean", value, value)
	}
}

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
	datetimeLayout = "2006-01-02 15:04:05.000000"
)

// DateField stores an ISO date string (spec §6).
type DateField struct{ BaseField }

// NewDateField constructs a date field.
func NewDateField(name string, opts ...Option) *DateField {
	return &DateField{BaseField: newBase(name, opts...)}
}

func (f *DateField) ColumnType() string { return "date" }

func (f *DateField) ToDatabase(value any) (any, error) {
	t, err := parseDateLike(value, f.nullable)
	if err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: err.Error()}
	}
	if t == nil {
		return nil, nil
	}
	return t.Format(dateLayout), nil
}

func (f *DateField) ToPython(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid date"}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid date"}
	}
	return t, nil
}

// DateTimeField stores an ISO-ish "YYYY-MM-DD HH:MM:SS.ffffff" string,
// optionally with a "±HH:MM" offset (spec §6).
type DateTimeField struct {
	BaseField
	AutoAdd bool
}

// NewDateTimeField constructs a datetime field.
func NewDateTimeField(name string, opts ...Option) *DateTimeField {
	return &DateTimeField{BaseField: newBase(name, opts...)}
}

func (f *DateTimeField) ColumnType() string { return "timestamp" }

func (f *DateTimeField) ToDatabase(value any) (any, error) {
	t, err := parseDateTimeLike(value, f.nullable)
	if err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: err.Error()}
	}
	if t == nil {
		return nil, nil
	}
	return t.Format(datetimeLayout), nil
}

func (f *DateTimeField) ToPython(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid datetime"}
	}
	t, err := parseDateTimeString(s)
	if err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid datetime"}
	}
	return t, nil
}

func parseDateLike(value any, nullable bool) (*time.Time, error) {
	if value == nil {
		if nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("value cannot be null")
	}
	switch v := value.(type) {
	case time.Time:
		return &v, nil
	case string:
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("not a valid date: %w", err)
		}
		return &t, nil
	default:
		return nil, fmt.Errorf("%T is not a valid date value", value)
	}
}

func parseDateTimeLike(value any, nullable bool) (*time.Time, error) {
	if value == nil {
		if nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("value cannot be null")
	}
	switch v := value.(type) {
	case time.Time:
		return &v, nil
	case string:
		t, err := parseDateTimeString(v)
		if err != nil {
			return nil, err
		}
		return &t, nil
	default:
		return nil, fmt.Errorf("%T is not a valid datetime value", value)
	}
}

func parseDateTimeString(s string) (time.Time, error) {
	layouts := []string{
		datetimeLayout,
		"2006-01-02 15:04:05.000000-07:00",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

// TimeField stores a "HH:MM:SS" string.
type TimeField struct{ BaseField }

// NewTimeField constructs a time field.
func NewTimeField(name string, opts ...Option) *TimeField {
	return &TimeField{BaseField: newBase(name, opts...)}
}

func (f *TimeField) ColumnType() string { return "text" }

func (f *TimeField) ToDatabase(value any) (any, error) {
	if value == nil {
		if f.nullable {
			return nil, nil
		}
		return nil, &errs.ValidationError{Field: f.name, Message: "value cannot be null"}
	}
	s, ok := value.(string)
	if !ok {
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid time"}
	}
	if _, err := time.Parse(timeLayout, s); err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid time"}
	}
	return s, nil
}

func (f *TimeField) ToPython(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return fmt.Sprint(value), nil
}

// JSONField round-trips through canonical encoding: sorted keys, UTF-8.
// Go's encoding/json already renders map[string]any keys in sorted
// order, so canonical encoding falls out of the standard marshaler.
type JSONField struct{ BaseField }

// NewJSONField constructs a JSON field.
func NewJSONField(name string, opts ...Option) *JSONField {
	return &JSONField{BaseField: newBase(name, opts...)}
}

func (f *JSONField) ColumnType() string { return "text" }

func (f *JSONField) ToDatabase(value any) (any, error) {
	if value == nil {
		if f.nullable {
			return nil, nil
		}
		return nil, &errs.ValidationError{Field: f.name, Message: "value cannot be null"}
	}
	if s, ok := value.(string); ok {
		// Already-encoded JSON text: re-encode to canonicalize key order.
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, &errs.ValidationError{Field: f.name, Message: "not valid JSON"}
		}
		value = decoded
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: "value is not JSON-serialisable"}
	}
	return string(encoded), nil
}

func (f *JSONField) ToPython(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, &errs.ValidationError{Field: f.name, Message: "not valid JSON"}
	}
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: "not valid JSON"}
	}
	return decoded, nil
}

// UUIDField round-trips as canonical 36-char text.
type UUIDField struct{ BaseField }

// NewUUIDField constructs a UUID field.
func NewUUIDField(name string, opts ...Option) *UUIDField {
	return &UUIDField{BaseField: newBase(name, opts...)}
}

func (f *UUIDField) ColumnType() string { return "text" }

func (f *UUIDField) ToDatabase(value any) (any, error) {
	if value == nil {
		if f.nullable {
			return nil, nil
		}
		return nil, &errs.ValidationError{Field: f.name, Message: "value cannot be null"}
	}
	switch v := value.(type) {
	case uuid.UUID:
		return v.String(), nil
	case string:
		parsed, err := uuid.Parse(v)
		if err != nil {
			return nil, &errs.ValidationError{Field: f.name, Message: "not a valid UUID"}
		}
		return parsed.String(), nil
	default:
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid UUID"}
	}
}

func (f *UUIDField) ToPython(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid UUID"}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid UUID"}
	}
	return parsed, nil
}

// BlobField stores raw bytes.
type BlobField struct{ BaseField }

// NewBlobField constructs a blob field.
func NewBlobField(name string, opts ...Option) *BlobField {
	return &BlobField{BaseField: newBase(name, opts...)}
}

func (f *BlobField) ColumnType() string { return "blob" }

func (f *BlobField) ToDatabase(value any) (any, error) {
	if value == nil {
		if f.nullable {
			return nil, nil
		}
		return nil, &errs.ValidationError{Field: f.name, Message: "value cannot be null"}
	}
	b, ok := value.([]byte)
	if !ok {
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid blob"}
	}
	return b, nil
}

func (f *BlobField) ToPython(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil, &errs.ValidationError{Field: f.name, Message: "not a valid blob"}
	}
	return b, nil
}

// ForeignKeyField is a forward reference to another table's row: it
// renders as an integer column named "<relatedName>_id" and carries
// enough information for nodes.JoinNode to target the related table.
// Reverse access (a related_name-style manager on the referenced table)
// is left unimplemented, matching the upstream project's own
// not-yet-supported relationship fields.
//
// Grounded on original_source/lorelie/fields/relationships.py's
// BaseRelationshipField/ForeignKeyField — that implementation is itself
// marked unsupported there; this port keeps only the part it actually
// exercises: the "<relatedname>_id" forward column and an "on delete"
// clause, dropping the deferred relationship_map machinery.
type ForeignKeyField struct {
	IntegerField
	RelatedTable string
	RelatedName  string
	OnDelete     string
}

// NewForeignKeyField constructs a nullable integer column named
// "<relatedName>_id" pointing at relatedTable. onDelete is rendered
// verbatim into the column's "references" clause (e.g. "cascade",
// "set null", "no action"); an empty string omits it.
func NewForeignKeyField(relatedTable, relatedName, onDelete string, opts ...Option) *ForeignKeyField {
	columnName := relatedName + "_id"
	allOpts := append([]Option{Null()}, opts...)
	return &ForeignKeyField{
		IntegerField: *NewIntegerField(columnName, allOpts...),
		RelatedTable: relatedTable,
		RelatedName:  relatedName,
		OnDelete:     onDelete,
	}
}

// ReferencesSQL renders the column's "references <table>(id) [on delete
// <action>]" clause, appended to its CREATE TABLE column definition by
// the table package.
func (f *ForeignKeyField) ReferencesSQL() string {
	sql := fmt.Sprintf("references %s(id)", f.RelatedTable)
	if f.OnDelete != "" {
		sql += fmt.Sprintf(" on delete %s", f.OnDelete)
	}
	return sql
}

// AliasField infers its type from the runtime value handed back by a
// row that has no declared Field backing it — the column produced by an
// annotate()/aggregate() expression. Integer-looking strings become
// integers, ISO date strings become dates, maps become JSON, everything
// else stays text (spec §4.4).
//
// Grounded on original_source/lorelie/fields/base.py:AliasField.
type AliasField struct {
	BaseField
}

// NewAliasField constructs an alias field for the given column name.
func NewAliasField(name string) *AliasField {
	return &AliasField{BaseField: newBase(name)}
}

func (f *AliasField) ColumnType() string { return "text" }

func (f *AliasField) ToDatabase(value any) (any, error) { return value, nil }

func (f *AliasField) ToPython(value any) (any, error) {
	switch v := value.(type) {
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, nil
		}
		if t, err := time.Parse(dateLayout, v); err == nil {
			return t, nil
		}
		return v, nil
	case map[string]any:
		return v, nil
	default:
		return value, nil
	}
}
