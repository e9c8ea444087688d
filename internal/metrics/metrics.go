// Package metrics holds the Prometheus collectors for upstream traffic and
// the /challengeapi endpoint. Collectors register on the default registry
// via promauto and are exposed by promhttp at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts page fetches by HTTP status ("error" for transport failures).
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_upstream_requests_total",
			Help: "Total number of upstream character page requests",
		},
		[]string{"status"},
	)

	UpstreamRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "challenge_upstream_request_duration_seconds",
			Help:    "Duration of upstream character page requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	PageCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "challenge_page_cache_hits_total",
			Help: "Upstream pages served from Redis",
		},
	)

	PageCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "challenge_page_cache_misses_total",
			Help: "Upstream pages not found in Redis",
		},
	)

	// Responses counts /challengeapi outcomes by result kind (success, empty, failure).
	Responses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_responses_total",
			Help: "Total /challengeapi responses by outcome",
		},
		[]string{"outcome"},
	)

	CharactersReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "challenge_characters_returned",
			Help:    "Number of characters returned per successful aggregation",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)
)

// ObserveUpstream records one page fetch. status is 0 when the request never got a response.
func ObserveUpstream(status int, started time.Time) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequests.WithLabelValues(label).Inc()
	UpstreamRequestDuration.Observe(time.Since(started).Seconds())
}
