// internal/form/rules.go
//
// lincms – Forms subsystem: atomic field rules.
//
// Context
//   A Rule is one pure predicate plus the message reported when it fails.
//   Rules never touch persistence; anything that does belongs in a Hook.
//
//   Length and NumberRange delegate to go-playground/validator so character
//   counting (runes, not bytes) and numeric bounds match the rest of the
//   codebase.  Regexp compiles once at definition time and always matches the
//   whole value.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Rule is immutable once built.  When Optional is set the rule has no
// predicate: a blank value stops evaluation of the remaining rules and the
// field is accepted.
type Rule struct {
	Name     string
	Message  string
	Optional bool

	check func(v Value, in Payload) bool
}

// passes evaluates the predicate.  Optional rules always pass.
func (r Rule) passes(v Value, in Payload) bool {
	if r.check == nil {
		return true
	}
	return r.check(v, in)
}

// blank mirrors the "no data" test used by both Required and Optional:
// whitespace-only input counts as absent.
func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Required fails on an empty or whitespace-only value.
func Required(msg string) Rule {
	return Rule{
		Name:    "required",
		Message: msg,
		check:   func(v Value, _ Payload) bool { return !blank(v.Raw) },
	}
}

// Optional accepts a blank value and skips every rule after it.
func Optional() Rule {
	return Rule{Name: "optional", Optional: true}
}

// Regexp fails unless the whole value matches pattern.  It panics on an
// invalid pattern, as definitions are package-level values built at init.
func Regexp(pattern, msg string) Rule {
	re := regexp.MustCompile(`^(?:` + pattern + `)$`)
	return Rule{
		Name:    "regexp",
		Message: msg,
		check:   func(v Value, _ Payload) bool { return re.MatchString(v.Raw) },
	}
}

// Length fails when the character count falls outside [min, max].
func Length(min, max int, msg string) Rule {
	tag := fmt.Sprintf("min=%d,max=%d", min, max)
	return Rule{
		Name:    "length",
		Message: msg,
		check:   func(v Value, _ Payload) bool { return validate.Var(v.Raw, tag) == nil },
	}
}

// NumberRange fails when the coerced integer is below min.
func NumberRange(min int64, msg string) Rule {
	tag := fmt.Sprintf("gte=%d", min)
	return Rule{
		Name:    "number_range",
		Message: msg,
		check:   func(v Value, _ Payload) bool { return validate.Var(v.Int, tag) == nil },
	}
}

// EqualTo fails unless the value equals the raw value of the sibling field.
func EqualTo(other, msg string) Rule {
	return Rule{
		Name:    "equal_to",
		Message: msg,
		check: func(v Value, in Payload) bool {
			sib, _ := in.Text(other)
			return v.Raw == sib
		},
	}
}
