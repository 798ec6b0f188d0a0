package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "venue_discovery", Name: "searches_total", Help: "Total nearby venue searches"})
	ProviderFailures  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "venue_discovery", Name: "provider_failures_total", Help: "Places provider calls that failed and degraded to empty results"})
	MigrationsTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "venue_discovery", Name: "migrations_total", Help: "Successful local-to-remote collection migrations"})
	MigrationFailures = promauto.NewCounter(prometheus.CounterOpts{Namespace: "venue_discovery", Name: "migration_failures_total", Help: "Abandoned collection migrations kept for retry"})
	OrdersPlaced      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "venue_discovery", Name: "orders_placed_total", Help: "Orders placed with a successful payment hold"})
	CheckinsTotal     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "venue_discovery", Name: "checkins_total", Help: "Presence check-ins broadcast"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "venue_discovery", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "venue_discovery",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
