package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediacat_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediacat_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediacat_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBItemsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediacat_db_items",
			Help: "Number of items in the catalog at the last stats refresh",
		},
	)
)

// Ingestion metrics
var (
	IngestBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediacat_ingest_batches_total",
			Help: "Total number of add-items batches processed",
		},
	)

	// IngestPathsTotal counts paths by outcome: "added", "duplicate" or "error".
	IngestPathsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediacat_ingest_paths_total",
			Help: "Total number of candidate paths by ingestion outcome",
		},
		[]string{"outcome"},
	)
)

// Raw query gateway metrics
var (
	RawQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediacat_raw_queries_total",
			Help: "Total number of raw statements by result: read, write, rejected or error",
		},
		[]string{"result"},
	)
)

// MCP tool metrics
var (
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediacat_mcp_tool_calls_total",
			Help: "Total number of MCP tool invocations",
		},
		[]string{"tool", "status"},
	)
)
