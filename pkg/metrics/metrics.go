package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// 1. HTTP Requests Total (Counter)
	// Counts how many requests arrive, labeled by method, path, and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threshdb_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"}, // Labels
	)

	// 2. HTTP Request Duration (Histogram)
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "threshdb_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			// Custom buckets covering from microseconds (k=1 lookups) to minutes (large joins)
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// 3. Queries Total (Counter)
	// Every Driver.Evaluate call, labeled by query class, method, and outcome.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threshdb_queries_total",
			Help: "Total number of threshold queries evaluated",
		},
		[]string{"class", "method", "status"},
	)

	// 4. Query Duration (Histogram)
	// Evaluation time per query. Naive joins on dense graphs reach minutes,
	// windowed advances on indexed graphs sit in the sub-millisecond buckets.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threshdb_query_duration_seconds",
			Help:    "Duration of query evaluation in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5, 30, 60, 300},
		},
		[]string{"class", "method"},
	)

	// 5. Matches Found (Counter)
	MatchesFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threshdb_matches_found_total",
			Help: "Total number of matches returned by query evaluation",
		},
		[]string{"class", "method"},
	)

	// 6. Window Size (Gauge)
	// Admitted edge count of the most recently advanced windowed session.
	WindowEdges = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "threshdb_window_edges",
			Help: "Edges admitted in the current evaluation window",
		},
		[]string{"class"},
	)

	// 7. Loaded Graphs (Gauge)
	// Tracks how many graphs the server currently holds in memory.
	LoadedGraphs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threshdb_graphs_loaded",
			Help: "Number of graphs currently loaded",
		},
	)
)
