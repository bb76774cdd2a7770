package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GateProbes counts connection-gate probes by outcome (ok, unavailable, misconfigured)
	GateProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_gate_probes_total",
			Help: "Total number of data store readiness probes",
		},
		[]string{"target", "result"},
	)

	// GateReady is 1 once a target passed its gate
	GateReady = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fintrack_gate_ready",
			Help: "Whether the data store passed the startup gate",
		},
		[]string{"target"},
	)

	// GateWaitSeconds tracks how long startup waited for a target
	GateWaitSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fintrack_gate_wait_seconds",
			Help:    "Time spent waiting for a data store to become ready",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"target"},
	)

	// HTTPRequests tracks API requests
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "code"},
	)

	// HTTPLatency tracks API latency
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fintrack_http_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// DBConnectionPoolUsage tracks open connections as a percentage of the pool size
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fintrack_db_connection_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)

	// CacheRequests tracks reference cache lookups
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fintrack_cache_requests_total",
			Help: "Reference cache lookups by result (hit, miss, error)",
		},
		[]string{"resource", "result"},
	)
)
