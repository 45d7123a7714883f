// internal/form/definition.go
//
// lincms – Forms subsystem: definitions.
//
// Context
//   Each admin operation declares its input contract as a Definition: an
//   ordered list of uniquely named fields, each with ordered Rules and Hooks.
//   Definitions are package-level values built once at init and shared
//   read-only by every request, so they carry no mutable state.
//
// Workflow
//   •  Field constructors (String, Integer, List, DateTime) pick the coercion.
//   •  FieldSet is the unit of reuse.  A derived form extends a base set
//      instead of inheriting from it.
//   •  MustDefine checks structural rules and panics on programmer error.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"time"
)

// FieldKind selects how the raw input of a field is coerced.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInteger
	KindList
	KindDateTime
)

// DateTimeLayout is the only accepted date-time format.
const DateTimeLayout = "2006-01-02 15:04:05"

// Field describes one input of a form.
type Field struct {
	Name  string
	Label string
	Kind  FieldKind
	Rules []Rule
	Hooks []Hook
}

// String declares a free-text field.
func String(name, label string, rules ...Rule) Field {
	return Field{Name: name, Label: label, Kind: KindString, Rules: rules}
}

// Integer declares a field coerced to int64 before its rules run.
func Integer(name, label string, rules ...Rule) Field {
	return Field{Name: name, Label: label, Kind: KindInteger, Rules: rules}
}

// List declares a repeated string field.  Rules apply to every entry.
func List(name, label string, rules ...Rule) Field {
	return Field{Name: name, Label: label, Kind: KindList, Rules: rules}
}

// DateTime declares a field coerced to time.Time using DateTimeLayout.
func DateTime(name, label string, rules ...Rule) Field {
	return Field{Name: name, Label: label, Kind: KindDateTime, Rules: rules}
}

// With returns a copy of f with hooks appended.
func (f Field) With(hooks ...Hook) Field {
	out := f
	out.Hooks = append(append([]Hook(nil), f.Hooks...), hooks...)
	return out
}

// optional reports whether a blank value is acceptable at all.
func (f Field) optional() bool {
	for _, r := range f.Rules {
		if r.Optional {
			return true
		}
	}
	return false
}

// FieldSet is an ordered bundle of fields shared between definitions.
type FieldSet []Field

// Extend returns a new set holding fs followed by more.  fs is not modified.
func (fs FieldSet) Extend(more ...Field) FieldSet {
	out := make(FieldSet, 0, len(fs)+len(more))
	out = append(out, fs...)
	return append(out, more...)
}

// Definition is the immutable contract of one operation.
type Definition struct {
	ID     string
	Fields FieldSet
}

// Define validates structure and returns the definition.
func Define(id string, fields ...Field) (*Definition, error) {
	if id == "" {
		return nil, fmt.Errorf("form definition: missing id")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("form %s: no fields", id)
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("form %s: field missing name", id)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("form %s: duplicate field name '%s'", id, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return &Definition{ID: id, Fields: append(FieldSet(nil), fields...)}, nil
}

// MustDefine is Define for package-level declarations.
func MustDefine(id string, fields ...Field) *Definition {
	d, err := Define(id, fields...)
	if err != nil {
		panic(err)
	}
	return d
}

// Field returns the field called name.
func (d *Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// -----------------------------------------------------------------------------
// Values
// -----------------------------------------------------------------------------

// Value is one field's input as seen by rules and hooks.  Only the member
// matching the field kind is populated; Raw is always set for scalar kinds.
type Value struct {
	Raw   string
	Int   int64
	Items []string
	Time  time.Time
}

// Blank reports whether the value carries no data.
func (v Value) Blank() bool { return blank(v.Raw) && len(v.Items) == 0 }

// Values is the typed output of a successful pass.  Blank optional fields are
// absent.
type Values map[string]any

// Has reports whether name was supplied.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// String returns the string value of name, or "".
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Int returns the integer value of name, or 0.
func (v Values) Int(name string) int64 {
	n, _ := v[name].(int64)
	return n
}

// Strings returns the list value of name, or nil.
func (v Values) Strings(name string) []string {
	s, _ := v[name].([]string)
	return s
}

// Time returns the date-time value of name and whether it was supplied.
func (v Values) Time(name string) (time.Time, bool) {
	t, ok := v[name].(time.Time)
	return t, ok
}
