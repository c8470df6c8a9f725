package functions

import "fmt"

// simpleText renders "<name>(<field>)" and is embedded by every
// single-argument scalar text/hash function.
type simpleText struct {
	FieldName any
	fn        string
}

func (f *simpleText) SQL() (string, error) {
	arg, err := fieldArg(f.FieldName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", f.fn, arg), nil
}

func (f *simpleText) Alias() string {
	name, _ := fieldArg(f.FieldName)
	return fmt.Sprintf("%s__%s", name, f.fn)
}

// Lower lowercases a column's text.
type Lower struct{ simpleText }

// NewLower builds a Lower function over field.
func NewLower(field any) *Lower { return &Lower{simpleText{FieldName: field, fn: "lower"}} }

// Upper uppercases a column's text.
type Upper struct{ simpleText }

// NewUpper builds an Upper function over field.
func NewUpper(field any) *Upper { return &Upper{simpleText{FieldName: field, fn: "upper"}} }

// Length returns the character length of a column's text.
type Length struct{ simpleText }

// NewLength builds a Length function over field.
func NewLength(field any) *Length { return &Length{simpleText{FieldName: field, fn: "length"}} }

// Trim strips leading/trailing whitespace from a column's text.
type Trim struct{ simpleText }

// NewTrim builds a Trim function over field.
func NewTrim(field any) *Trim { return &Trim{simpleText{FieldName: field, fn: "trim"}} }

// Substr extracts a substring via SQLite's substr(field, start, length).
type Substr struct {
	FieldName     any
	Start, Length int
}

// NewSubstr builds a Substr function.
func NewSubstr(field any, start, length int) *Substr {
	return &Substr{FieldName: field, Start: start, Length: length}
}

func (f *Substr) SQL() (string, error) {
	arg, err := fieldArg(f.FieldName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("substr(%s, %d, %d)", arg, f.Start, f.Length), nil
}

func (f *Substr) Alias() string {
	name, _ := fieldArg(f.FieldName)
	return fmt.Sprintf("%s__substr", name)
}

// hashFunctions are registered as driver UDFs by the backend package
// (Hash -> md5, SHA1..SHA512) and simply render "<name>(field)" here.
type Hash struct{ simpleText }

// NewHash builds an MD5 hash function over field, backed by the
// driver-registered "hash" UDF.
func NewHash(field any) *Hash { return &Hash{simpleText{FieldName: field, fn: "hash"}} }

// SHA1 hashes a column's text using the driver-registered "sha1" UDF.
type SHA1 struct{ simpleText }

func NewSHA1(field any) *SHA1 { return &SHA1{simpleText{FieldName: field, fn: "sha1"}} }

// SHA224 hashes a column's text using the driver-registered "sha224" UDF.
type SHA224 struct{ simpleText }

func NewSHA224(field any) *SHA224 { return &SHA224{simpleText{FieldName: field, fn: "sha224"}} }

// SHA256 hashes a column's text using the driver-registered "sha256" UDF.
type SHA256 struct{ simpleText }

func NewSHA256(field any) *SHA256 { return &SHA256{simpleText{FieldName: field, fn: "sha256"}} }

// SHA384 hashes a column's text using the driver-registered "sha384" UDF.
type SHA384 struct{ simpleText }

func NewSHA384(field any) *SHA384 { return &SHA384{simpleText{FieldName: field, fn: "sha384"}} }

// SHA512 hashes a column's text using the driver-registered "sha512" UDF.
type SHA512 struct{ simpleText }

func NewSHA512(field any) *SHA512 { return &SHA512{simpleText{FieldName: field, fn: "sha512"}} }
