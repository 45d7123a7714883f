// internal/form/errors.go
//
// lincms – Forms subsystem: validation error shapes.
//
// Context
//   A validation pass reports at most one message per field.  Two kinds of
//   failure share the same channel: intrinsic rule violations (KindInvalid) and
//   post-validation conflicts found in persistence (KindConflict).  Handlers
//   only ever see *ValidationError, so the HTTP envelope stays uniform.
//
//   Infrastructure failures (a lookup that cannot reach the database) are NOT
//   validation errors.  Validate returns them wrapped, and callers treat them
//   as a 500.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"strings"
)

// ErrorKind classifies a FieldError.
type ErrorKind int

const (
	// KindInvalid marks an intrinsic rule violation or a failed reference check.
	KindInvalid ErrorKind = iota
	// KindConflict marks a uniqueness violation against live records.
	KindConflict
)

func (k ErrorKind) String() string {
	if k == KindConflict {
		return "conflict"
	}
	return "invalid"
}

// FieldError describes a single failure so the caller can report it against
// the offending field.
type FieldError struct {
	Field   string    // field name
	Message string    // user-facing message
	Kind    ErrorKind // invalid or conflict
}

// ValidationError wraps the failed fields of one pass, in declaration order.
type ValidationError struct {
	Form   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("form ")
	b.WriteString(e.Form)
	b.WriteString(": ")
	for i, f := range e.Fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Field)
		b.WriteString(": ")
		b.WriteString(f.Message)
	}
	return b.String()
}

// Messages maps field name to its message, ready for a JSON envelope.
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// Conflict reports whether any field failed a uniqueness check.
func (e *ValidationError) Conflict() bool {
	for _, f := range e.Fields {
		if f.Kind == KindConflict {
			return true
		}
	}
	return false
}

// Field returns the error recorded for name, if any.
func (e *ValidationError) Field(name string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldError{}, false
}

// IsValidationError reports whether err came from a failed Validate.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// -----------------------------------------------------------------------------
// Hook outcomes
// -----------------------------------------------------------------------------

// hookError is what a Hook returns to reject a value.  Anything else a hook
// returns is an infrastructure failure.
type hookError struct {
	kind ErrorKind
	msg  string
}

func (e *hookError) Error() string { return e.msg }

// Invalid rejects the hooked field with msg.
func Invalid(msg string) error { return &hookError{kind: KindInvalid, msg: msg} }

// Conflict rejects the hooked field because a live record already owns it.
func Conflict(msg string) error { return &hookError{kind: KindConflict, msg: msg} }
