package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ── HTTP request metrics (RED method) ──────────────────────────────────

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workingcrypto",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workingcrypto",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "workingcrypto",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being processed.",
	})
)

// ── Dispatch metrics ───────────────────────────────────────────────────

var (
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workingcrypto",
		Subsystem: "fetch",
		Name:      "total",
		Help:      "Completed logical fetches by query type and serving source.",
	}, []string{"query", "source", "status"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workingcrypto",
		Subsystem: "fetch",
		Name:      "duration_seconds",
		Help:      "End-to-end duration of a logical fetch in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"query"})

	AttemptTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workingcrypto",
		Subsystem: "fetch",
		Name:      "attempts_total",
		Help:      "Per-provider network attempts by outcome.",
	}, []string{"provider", "outcome"})

	RateLimitSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workingcrypto",
		Subsystem: "fetch",
		Name:      "rate_limit_skips_total",
		Help:      "Candidates skipped because their rate window was full.",
	}, []string{"provider"})
)

// ── Cache metrics ──────────────────────────────────────────────────────

var (
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workingcrypto",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Cache hits by query type.",
	}, []string{"query"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workingcrypto",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Cache misses by query type.",
	}, []string{"query"})
)

// ── Provider state metrics ─────────────────────────────────────────────

var (
	ProviderOperational = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "workingcrypto",
		Subsystem: "provider",
		Name:      "operational",
		Help:      "1 when the provider is marked operational, 0 otherwise.",
	}, []string{"provider"})

	ProviderRateLimited = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "workingcrypto",
		Subsystem: "provider",
		Name:      "rate_limited",
		Help:      "1 when the provider's rate window is currently full.",
	}, []string{"provider"})

	MockServes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workingcrypto",
		Subsystem: "provider",
		Name:      "mock_serves_total",
		Help:      "Responses manufactured by the mock generator, by query type.",
	}, []string{"query"})
)
