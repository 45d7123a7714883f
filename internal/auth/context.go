// internal/auth/context.go
//
// Caller identity helpers.
//
// lincms does not authenticate anyone itself.  An upstream gateway verifies
// the caller and forwards the user id in the X-User-ID header; FromHeader
// moves it into the request context, and everything downstream (ACL
// middleware, handlers) reads it back through UserID.
//
// Usage
// -----
//     r.Use(auth.FromHeader)
//
//     // Downstream code retrieves the ID.
//     id, ok := auth.UserID(ctx)   // 123, true
//
// Notes
// -----
// • Stores an int64 directly in context.
// • Oxford commas, two spaces after periods.

package auth

import (
	"context"
	"net/http"
	"strconv"
)

// Header carries the verified user id.
const Header = "X-User-ID"

// userKey is unexported to avoid context-key collisions.
type userKey struct{}

// WithUser returns a new context carrying the given userID.
func WithUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID extracts the userID from ctx.  It returns (0, false) if no user is set
// or if the stored value is not an int64.
func UserID(ctx context.Context) (int64, bool) {
	v := ctx.Value(userKey{})
	id, ok := v.(int64)
	return id, ok
}

// FromHeader attaches the gateway-supplied user id, when it parses as a
// positive integer, and passes every request on.
func FromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(Header); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				r = r.WithContext(WithUser(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}
