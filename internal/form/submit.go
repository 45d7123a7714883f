// internal/form/submit.go
//
// lincms – Forms subsystem: consolidated Submit helper.
//
// Context
//   Most handlers want one call that reads the request payload, validates it,
//   and returns typed Values or an error the api envelope understands.
//   HandleSubmit provides that convenience so component code stays terse.
//
//------------------------------------------------------------------------------

package form

import (
	"net/http"

	"github.com/yanizio/lincms/internal/api"
)

// HandleSubmit reads r and validates it against def.  On failure the error is
// a *ValidationError, an *api.BadRequest for an undecodable body, or an
// infrastructure error; api.Error renders all three.
func HandleSubmit(r *http.Request, def *Definition, look Lookup, opts ...Option) (Values, error) {
	in, err := api.Payload(r)
	if err != nil {
		return nil, err
	}
	return Validate(r.Context(), def, in, look, opts...)
}

// ConflictOn builds the error a pre-check would have produced when the
// database rejects a value it let through.  Two requests can pass the same
// uniqueness check before either inserts; the loser reports this.
func ConflictOn(def *Definition, field, msg string) *ValidationError {
	return &ValidationError{
		Form:   def.ID,
		Fields: []FieldError{{Field: field, Message: msg, Kind: KindConflict}},
	}
}
