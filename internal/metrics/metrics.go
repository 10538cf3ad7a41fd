// Package metrics provides Prometheus metrics for the discovery engine
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the discovery engine
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Search metrics
	SearchQueriesTotal  prometheus.Counter
	SearchResultsTotal  prometheus.Counter
	IndexBuildsTotal    *prometheus.CounterVec
	IndexBuildDuration  prometheus.Histogram
	IndexEntriesTotal   prometheus.Gauge

	// Resolver metrics
	ResolveCallsTotal  prometheus.Counter
	LinkSegmentsTotal  prometheus.Counter

	// Matcher metrics
	SuggestionRunsTotal  prometheus.Counter
	SuggestionsTotal     *prometheus.CounterVec

	// Corpus metrics
	CorpusChaptersTotal prometheus.Gauge
	CorpusReloadsTotal  prometheus.Counter

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	// HTTP request metrics
	m.HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copengine_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	m.HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copengine_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "copengine_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Search metrics
	m.SearchQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copengine_search_queries_total",
			Help: "Total number of search queries",
		},
	)

	m.SearchResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copengine_search_results_total",
			Help: "Total number of search results returned",
		},
	)

	m.IndexBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copengine_index_builds_total",
			Help: "Total number of search index builds",
		},
		[]string{"status"},
	)

	m.IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "copengine_index_build_duration_seconds",
			Help:    "Duration of search index builds in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	m.IndexEntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "copengine_index_entries_total",
			Help: "Number of entries in the built search index",
		},
	)

	// Resolver metrics
	m.ResolveCallsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copengine_resolve_calls_total",
			Help: "Total number of reference resolution calls",
		},
	)

	m.LinkSegmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copengine_link_segments_total",
			Help: "Total number of link segments emitted by the resolver",
		},
	)

	// Matcher metrics
	m.SuggestionRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copengine_suggestion_runs_total",
			Help: "Total number of link suggestion runs",
		},
	)

	m.SuggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copengine_suggestions_total",
			Help: "Total number of link suggestions produced",
		},
		[]string{"confidence"},
	)

	// Corpus metrics
	m.CorpusChaptersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "copengine_corpus_chapters_total",
			Help: "Number of chapters in the loaded corpus",
		},
	)

	m.CorpusReloadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "copengine_corpus_reloads_total",
			Help: "Total number of corpus invalidations",
		},
	)

	// Server metrics
	m.ServerUptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "copengine_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime periodically updates the server uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request with its status
func (m *Metrics) RecordHTTPRequest(route string, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordIndexBuild records a search index build attempt
func (m *Metrics) RecordIndexBuild(status string, entries int, duration time.Duration) {
	m.IndexBuildsTotal.WithLabelValues(status).Inc()
	m.IndexBuildDuration.Observe(duration.Seconds())
	if status == "success" {
		m.IndexEntriesTotal.Set(float64(entries))
	}
}

// RecordSearch records one search query and its result count
func (m *Metrics) RecordSearch(results int) {
	m.SearchQueriesTotal.Inc()
	m.SearchResultsTotal.Add(float64(results))
}

// RecordResolve records one resolution call and its link count
func (m *Metrics) RecordResolve(links int) {
	m.ResolveCallsTotal.Inc()
	m.LinkSegmentsTotal.Add(float64(links))
}

// RecordSuggestions records a matcher run and its per-tier output
func (m *Metrics) RecordSuggestions(byConfidence map[string]int) {
	m.SuggestionRunsTotal.Inc()
	for confidence, count := range byConfidence {
		m.SuggestionsTotal.WithLabelValues(confidence).Add(float64(count))
	}
}
