// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcomment_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkcomment_http_request_duration_seconds",
		Help:    "Time from request receipt to response.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"route"})

	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcomment_auth_failures_total",
		Help: "Rejected requests by auth error kind.",
	}, []string{"kind"})

	JWKSFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcomment_jwks_fetches_total",
		Help: "Key-discovery document fetches by result.",
	}, []string{"result"})

	StoreOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcomment_store_operations_total",
		Help: "Record store statements by operation and result.",
	}, []string{"op", "result"})
)

// Result labels a success or failure.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
