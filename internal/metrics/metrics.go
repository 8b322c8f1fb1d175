package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postmint_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postmint_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GeneratorCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postmint_generator_calls_total",
			Help: "External generator calls by outcome.",
		},
		[]string{"outcome"},
	)

	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "postmint_cache_hits_total",
			Help: "Submissions served from the cached post pool.",
		},
	)

	PostsRevealedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "postmint_posts_revealed_total",
			Help: "Posts revealed to users across all submissions.",
		},
	)

	PurchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postmint_purchases_total",
			Help: "Addon purchases processed by addon type and final status.",
		},
		[]string{"addon_type", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		GeneratorCallsTotal,
		CacheHitsTotal,
		PostsRevealedTotal,
		PurchasesTotal,
	)
}
