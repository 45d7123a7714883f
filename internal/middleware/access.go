// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/lincms/internal/metrics"
)

// Blueprints is the set of mounted sub-API names.  Only these become
// metric labels; any other path counts as "other".
type Blueprints map[string]struct{}

// NewBlueprints builds the set from names.
func NewBlueprints(names ...string) Blueprints {
	b := make(Blueprints, len(names))
	for _, n := range names {
		b[n] = struct{}{}
	}
	return b
}

// AccessLog logs one line per request and counts it per blueprint.  Place it
// after chi's RequestID so the id is available.
func AccessLog(known Blueprints) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.HTTPRequestsTotal.WithLabelValues(known.Of(r.URL.Path), strconv.Itoa(status)).Inc()
			zap.L().Info("request",
				zap.String("id", chimw.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)))
		})
	}
}

// Of returns the blueprint a /cms path belongs to, or "other".
//
//	/cms/member/12  → member
//	/cms/junk/x     → other
//	/metrics        → other
func (b Blueprints) Of(path string) string {
	rest, ok := strings.CutPrefix(path, "/cms/")
	if !ok {
		return "other"
	}
	name, _, _ := strings.Cut(rest, "/")
	if _, ok := b[name]; !ok {
		return "other"
	}
	return name
}
