// Package metrics documents the Prometheus metrics exposed by the
// enrichment client. Metrics are defined in their owning packages (client,
// ratelimit, cache) via promauto to keep registration local and avoid
// circular dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics register automatically via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Reference
//
// Request metrics (pkg/client):
//   - enrich_requests_total{status} (Counter): requests by HTTP status
//   - enrich_request_duration_seconds (Histogram): end-to-end request duration
//   - enrich_failures_total{kind} (Counter): failures by kind
//     (rate_limited, authentication_error, insufficient_credits, timeout,
//     request_error, max_retries_exceeded)
//
// Retry metrics (pkg/client):
//   - enrich_retries_total (Counter): retry attempts after 429 responses
//   - enrich_retry_backoff_seconds (Histogram): backoff before retries
//   - enrich_retry_exhausted_total (Counter): items that ran out of attempts
//
// Rate limit metrics (pkg/ratelimit):
//   - enrich_rate_limit_remaining (Gauge): requests left in the window
//   - enrich_rate_limit_exhausted_total (Counter): responses reporting an
//     empty window
//   - enrich_pacing_reset_waits_total (Counter): dispatches held for a
//     window reset
//   - enrich_pacing_spacing_waits_total (Counter): dispatches held by the
//     minimum inter-request spacing
//
// Cache metrics (pkg/cache):
//   - enrich_cache_hits_total (Counter)
//   - enrich_cache_misses_total (Counter)
//   - enrich_cache_errors_total{operation} (Counter)
//
// Example queries:
//
//   # Cache hit rate
//   rate(enrich_cache_hits_total[5m]) /
//   (rate(enrich_cache_hits_total[5m]) + rate(enrich_cache_misses_total[5m]))
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(enrich_request_duration_seconds_bucket[5m]))
//
//   # Remaining quota
//   enrich_rate_limit_remaining
