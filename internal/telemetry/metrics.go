package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "abaplens_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// AnalysesTotal counts /analyze outcomes.
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abaplens_analyses_total",
			Help: "Total number of analyses by outcome and error kind",
		},
		[]string{"outcome", "kind"}, // outcome: ok, fallback, error
	)

	// UpstreamDuration tracks completion-service latency.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "abaplens_upstream_duration_seconds",
			Help:    "Completion service call duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		},
		[]string{"provider"},
	)

	// CacheLookupsTotal counts analysis cache lookups.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abaplens_cache_lookups_total",
			Help: "Analysis cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)
)
