// Package observability groups the cross-cutting instrumentation used
// by the API and the ingest worker.
//
// Subpackages:
//   - logging: slog construction and request-scoped enrichment
//   - metrics: the Prometheus registry for aggregation, ingest, feed
//     fetch and HTTP series
//   - tracing: OpenTelemetry setup and the HTTP span middleware
//
// Handlers and usecases import the subpackages directly; this package
// holds no code of its own.
package observability
