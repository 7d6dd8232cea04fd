package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal - HTTP requests by route template, method and status
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sample_app_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration - HTTP request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sample_app_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// DBOperations - store operations by outcome
	DBOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sample_app_db_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"operation", "status"},
	)

	// DBOperationDuration - store operation latency, including connection acquisition
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sample_app_db_operation_duration_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// DBHealthUp - result of the last /health/db probe (1 reachable, 0 not)
	DBHealthUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sample_app_db_health_up",
			Help: "Whether the last store health check succeeded",
		},
	)

	// ItemsCreated - items inserted through the API
	ItemsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sample_app_items_created_total",
			Help: "Total number of items created",
		},
	)

	// CacheRequests - list cache lookups by result (hit/miss/error)
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sample_app_cache_requests_total",
			Help: "Total number of item list cache lookups",
		},
		[]string{"result"},
	)

	// EventsPublished - item events by outcome
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sample_app_events_published_total",
			Help: "Total number of item events published",
		},
		[]string{"status"},
	)

	// Exports - snapshot exports by outcome
	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sample_app_exports_total",
			Help: "Total number of item snapshot exports",
		},
		[]string{"status"},
	)

	// ExportSize - size of the last exported snapshot
	ExportSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sample_app_export_size_bytes",
			Help: "Size in bytes of the last exported item snapshot",
		},
	)
)

const (
	// StatusSuccess labels a successful operation
	StatusSuccess = "success"
	// StatusError labels a failed operation
	StatusError = "error"
)
