// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts calls to the scheduling API by endpoint,
	// method and response status ("error" when no response was received).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calcom_upstream_requests_total",
		Help: "Total number of requests forwarded to the Cal.com API",
	}, []string{"endpoint", "method", "status"})

	// UpstreamDuration tracks scheduling API latency.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "calcom_upstream_request_duration_seconds",
		Help:    "Histogram of Cal.com API request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// HTTPRequests counts inbound API requests by route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calcom_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"route", "status"})

	// CredentialMigrations counts legacy credentials moved to the current store.
	CredentialMigrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calcom_credential_migrations_total",
		Help: "Total number of legacy credentials migrated on read",
	})
)
