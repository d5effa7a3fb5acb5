package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "histotrails_backend_requests_total",
			Help: "Requests sent to the HistoTrails REST API",
		},
		[]string{"method", "route", "status"}, // status is "error" when no response arrived
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "histotrails_backend_request_duration_seconds",
			Help:    "Latency of requests to the HistoTrails REST API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BackendTokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "histotrails_backend_token_refreshes_total",
			Help: "Access token refresh attempts",
		},
		[]string{"outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "histotrails_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	AuthoringRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "histotrails_authoring_runs_total",
			Help: "Event authoring runs by outcome and the step they ended at",
		},
		[]string{"outcome", "step"},
	)

	AuthoringStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "histotrails_authoring_step_duration_seconds",
			Help:    "Duration of each authoring step",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "histotrails_media_uploads_total",
			Help: "Media files uploaded while authoring events",
		},
		[]string{"outcome"},
	)

	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "histotrails_catalog_refreshes_total",
			Help: "Reference data refreshes",
		},
		[]string{"outcome"},
	)

	CatalogLastRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "histotrails_catalog_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful reference data refresh",
		},
	)

	ProgressSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "histotrails_progress_subscribers",
			Help: "Clients streaming authoring progress",
		},
	)

	RateLimitedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "histotrails_rate_limited_requests_total",
			Help: "Requests rejected by the per-client rate limit",
		},
	)

	RateLimitClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "histotrails_rate_limit_clients",
			Help: "Client addresses currently holding a token bucket",
		},
	)
)
