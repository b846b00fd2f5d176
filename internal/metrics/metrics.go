package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ── HTTP request metrics (RED method) ──────────────────────────────────

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "protocol_dashboard",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "protocol_dashboard",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "protocol_dashboard",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being processed.",
	})
)

// ── Upstream fetch metrics ─────────────────────────────────────────────

var (
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "protocol_dashboard",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Upstream API requests per query kind and outcome.",
	}, []string{"query", "status"})

	UpstreamRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "protocol_dashboard",
		Subsystem: "upstream",
		Name:      "retries_total",
		Help:      "Retries performed against the upstream API per reason.",
	}, []string{"query", "reason"})

	UpstreamFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "protocol_dashboard",
		Subsystem: "upstream",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of one upstream fetch including retries.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"query"})
)

// ── Cache metrics ──────────────────────────────────────────────────────

var (
	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "protocol_dashboard",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Durable cache lookups per query kind and result (hit, miss, error).",
	}, []string{"query", "result"})

	CacheWriteFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "protocol_dashboard",
		Subsystem: "cache",
		Name:      "write_failures_total",
		Help:      "Durable cache writes that failed and were swallowed.",
	}, []string{"query"})

	SnapshotCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "protocol_dashboard",
		Subsystem: "snapshot_cache",
		Name:      "requests_total",
		Help:      "Presentation-boundary snapshot cache lookups per result.",
	}, []string{"key", "result"})
)
