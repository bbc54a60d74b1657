package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_http_requests_total",
			Help: "Total HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesdash_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesdash_cache_lookups_total",
			Help: "Aggregate cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
	SeededTransactions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salesdash_seeded_transactions_total",
			Help: "Transactions written by the seed loader",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
	prometheus.MustRegister(CacheLookups)
	prometheus.MustRegister(SeededTransactions)
}
