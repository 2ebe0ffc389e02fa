// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Aggregation metrics track the dynamics pipeline
var (
	// AggregationsTotal counts aggregation requests by scope (entity/global) and outcome
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregations_total",
			Help: "Total number of aggregation requests",
		},
		[]string{"scope", "outcome"},
	)

	// AggregationDuration measures end-to-end aggregation duration
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregation_duration_seconds",
			Help:    "End-to-end aggregation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"scope"},
	)

	// FeedFetchesTotal counts per-feed fetch attempts by source label and result
	FeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Total number of feed fetch attempts",
		},
		[]string{"source", "result"}, // result: ok, empty, failed
	)

	// FeedFetchDuration measures time to fetch and parse one feed
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Time taken to fetch and parse one feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		},
		[]string{"source"},
	)

	// RelayFallbacksTotal counts uses of each fetch strategy in the fallback chain
	RelayFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_fallbacks_total",
			Help: "Total number of fetch strategy attempts in the fallback chain",
		},
		[]string{"strategy", "result"},
	)

	// ItemsDedupedTotal counts raw items collapsed by deduplication
	ItemsDedupedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "items_deduped_total",
			Help: "Total number of raw items removed as duplicates",
		},
	)

	// ItemsEmittedTotal counts items returned to callers by kind
	ItemsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_emitted_total",
			Help: "Total number of items returned to callers",
		},
		[]string{"kind"},
	)
)

// Ingest worker metrics
var (
	// SignalsIngestedTotal counts signals written to the store by result
	SignalsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_ingested_total",
			Help: "Total number of signals processed by the ingest worker",
		},
		[]string{"result"}, // result: inserted, duplicate, error
	)

	// IngestRunDuration measures one full ingest cycle
	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Duration of one ingest worker cycle",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// SentimentClassificationsTotal counts sentiment lookups by provider and result
	SentimentClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_classifications_total",
			Help: "Total number of sentiment classifications",
		},
		[]string{"provider", "result"},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAggregation records one aggregation request with its scope and outcome.
func RecordAggregation(scope, outcome string, duration time.Duration) {
	AggregationsTotal.WithLabelValues(scope, outcome).Inc()
	AggregationDuration.WithLabelValues(scope).Observe(duration.Seconds())
}

// RecordFeedFetch records one per-feed fetch attempt.
func RecordFeedFetch(source, result string, duration time.Duration) {
	FeedFetchesTotal.WithLabelValues(source, result).Inc()
	FeedFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordDBQuery records the duration of a named database operation.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
