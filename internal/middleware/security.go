// internal/middleware/security.go
//
// Security-header middleware for JSON responses.
//
// Injects on every response:
//
//   • X-Content-Type-Options  nosniff, so browsers never guess a type
//   • X-Frame-Options         DENY, nothing here is meant to be framed
//   • Referrer-Policy         no-referrer
//   • Cache-Control           no-store, admin data must not sit in caches
//
// Notes
// -----
// • Headers are set before next.ServeHTTP runs, because a handler that has
//   written its body has already flushed the header map.
// • A handler may still override any of them.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
