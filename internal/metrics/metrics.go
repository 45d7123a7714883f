// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FormValidationsTotal counts validation passes by form id and outcome
	// (ok, invalid, conflict, error).
	FormValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lincms_form_validations_total",
			Help: "Cumulative number of form validation passes.",
		}, []string{"form", "outcome"})

	// FormConflictsTotal counts uniqueness rejections per field.
	FormConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lincms_form_conflicts_total",
			Help: "Cumulative number of values rejected as already taken.",
		}, []string{"form", "field"})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lincms_http_requests_total",
			Help: "Cumulative number of HTTP requests by blueprint and status.",
		}, []string{"blueprint", "status"})
)

func init() {
	prometheus.MustRegister(
		FormValidationsTotal,
		FormConflictsTotal,
		HTTPRequestsTotal,
	)
}
