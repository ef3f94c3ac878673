// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package metrics registers the Prometheus instrumentation for the
// circulation backend: database query performance, API latency and
// throughput, circulation outcomes, oracle calls, and cache efficiency.
// All collectors register on the default registry via promauto.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Circulation metrics
	BorrowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circulation_borrows_total",
			Help: "Total number of borrow attempts",
		},
		[]string{"result"}, // "success", "unavailable", "not_found", "error"
	)

	ReturnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circulation_returns_total",
			Help: "Total number of return attempts",
		},
		[]string{"result"}, // "success", "already_returned", "not_found", "error"
	)

	OverdueLoans = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "circulation_overdue_loans",
			Help: "Number of overdue loans observed by the last records listing",
		},
	)

	// Oracle (external model) metrics
	OracleRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_requests_total",
			Help: "Total number of oracle API requests",
		},
		[]string{"operation", "result"}, // operation: "score", "generate"; result: "success", "failure", "rejected"
	)

	OracleRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_request_duration_seconds",
			Help:    "Duration of oracle API calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "summary"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (LRU or TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// Search metrics
	SearchQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Total number of catalog search queries",
		},
	)

	SearchResultCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_result_count",
			Help:    "Number of books matched per search query",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	// System metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBorrow records the outcome of a borrow attempt.
func RecordBorrow(result string) {
	BorrowsTotal.WithLabelValues(result).Inc()
}

// RecordReturn records the outcome of a return attempt.
func RecordReturn(result string) {
	ReturnsTotal.WithLabelValues(result).Inc()
}

// RecordOracleRequest records an oracle call and its outcome.
func RecordOracleRequest(operation, result string, duration time.Duration) {
	OracleRequestsTotal.WithLabelValues(operation, result).Inc()
	OracleRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit for the named cache.
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss for the named cache.
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordSearch records one search query and its result size.
func RecordSearch(results int) {
	SearchQueriesTotal.Inc()
	SearchResultCount.Observe(float64(results))
}
