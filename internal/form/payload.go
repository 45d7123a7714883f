// internal/form/payload.go
//
// lincms – Forms subsystem: raw request payload.
//
// Context
//   Handlers hand the pipeline a Payload: the merged query string and JSON
//   body (decoded with UseNumber) of the request.  Accessors
//   render scalars as text so every rule sees a string, whatever the wire type.
//
//------------------------------------------------------------------------------

package form

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Payload maps field name to raw string, number, or list.
type Payload map[string]any

// Text returns the scalar text of name.  A list yields its first entry.
func (p Payload) Text(name string) (string, bool) {
	raw, ok := p[name]
	if !ok || raw == nil {
		return "", false
	}
	switch x := raw.(type) {
	case []any:
		if len(x) == 0 {
			return "", false
		}
		return scalarText(x[0]), true
	case []string:
		if len(x) == 0 {
			return "", false
		}
		return x[0], true
	default:
		return scalarText(x), true
	}
}

// List returns every entry of name as text.  A scalar yields one entry.
func (p Payload) List(name string) []string {
	raw, ok := p[name]
	if !ok || raw == nil {
		return nil
	}
	switch x := raw.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, scalarText(e))
		}
		return out
	case []string:
		return append([]string(nil), x...)
	default:
		return []string{scalarText(x)}
	}
}

func scalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
