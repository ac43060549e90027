// Package metrics defines the Prometheus collectors of the search service
// and the HTTP handler that exposes them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "moviesearch"

// Search outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeZeroResult = "zero_result"
	OutcomeError      = "error"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SearchQueriesTotal  *prometheus.CounterVec
	SearchLatency       *prometheus.HistogramVec
	SearchResultsCount  prometheus.Histogram
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	IndexDocuments      prometheus.Gauge
	IndexTerms          prometheus.Gauge
	IndexBuildsTotal    *prometheus.CounterVec
	SnapshotOpsTotal    *prometheus.CounterVec
	JobsTotal           *prometheus.CounterVec
	JobDuration         *prometheus.HistogramVec
	JobsRunning         prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them on reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the global registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_queries_total",
				Help:      "Total ranked searches by outcome (ok, zero_result, error).",
			},
			[]string{"outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_latency_seconds",
				Help:      "Ranked search latency in seconds.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_results_count",
				Help:      "Number of hits returned per search.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of search cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of search cache misses.",
			},
		),
		IndexDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "index_documents",
				Help:      "Documents in the published index.",
			},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "index_terms",
				Help:      "Vocabulary size of the published index.",
			},
		),
		IndexBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "index_builds_total",
				Help:      "Index builds by status.",
			},
			[]string{"status"},
		),
		SnapshotOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_operations_total",
				Help:      "Snapshot saves and loads by status.",
			},
			[]string{"operation", "status"},
		),
		JobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobs_total",
				Help:      "Background jobs by type and final status.",
			},
			[]string{"type", "status"},
		),
		JobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "Background job execution time in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"type"},
		),
		JobsRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "jobs_running",
				Help:      "Background jobs currently holding a worker slot.",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.IndexDocuments,
		m.IndexTerms,
		m.IndexBuildsTotal,
		m.SnapshotOpsTotal,
		m.JobsTotal,
		m.JobDuration,
		m.JobsRunning,
	)
	return m
}

// Handler returns the scrape handler for the registry the metrics live on.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveSearch records one ranked search.
func (m *Metrics) ObserveSearch(outcome, cacheStatus string, took time.Duration, hits int) {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	m.SearchLatency.WithLabelValues(cacheStatus).Observe(took.Seconds())
	if outcome != OutcomeError {
		m.SearchResultsCount.Observe(float64(hits))
	}
}

// CacheHit counts a search served from the cache.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// CacheMiss counts a search that had to be computed.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// IndexPublished records the size of a newly published index.
func (m *Metrics) IndexPublished(documents, terms int) {
	if m == nil {
		return
	}
	m.IndexDocuments.Set(float64(documents))
	m.IndexTerms.Set(float64(terms))
}

// IndexBuild counts a build attempt.
func (m *Metrics) IndexBuild(err error) {
	if m == nil {
		return
	}
	m.IndexBuildsTotal.WithLabelValues(status(err)).Inc()
}

// SnapshotOp counts a snapshot "save" or "load".
func (m *Metrics) SnapshotOp(operation string, err error) {
	if m == nil {
		return
	}
	m.SnapshotOpsTotal.WithLabelValues(operation, status(err)).Inc()
}

// JobStarted marks a job as holding a worker slot.
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.JobsRunning.Inc()
}

// JobFinished records a job's final status and execution time.
func (m *Metrics) JobFinished(jobType, jobStatus string, took time.Duration) {
	if m == nil {
		return
	}
	m.JobsRunning.Dec()
	m.JobsTotal.WithLabelValues(jobType, jobStatus).Inc()
	m.JobDuration.WithLabelValues(jobType).Observe(took.Seconds())
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, code int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
