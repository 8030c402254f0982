// Package metrics exposes Prometheus instrumentation for analysis runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stock_oracle"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	// Analysis metrics
	AnalysisRuns     *prometheus.CounterVec // labels: status
	AnalysisDuration prometheus.Histogram

	// Model metrics
	ModelCalls   prometheus.Counter
	ModelErrors  prometheus.Counter
	ModelLatency prometheus.Histogram

	// Data metrics
	FetchErrors *prometheus.CounterVec // labels: provider
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// New registers every metric on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		AnalysisRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_runs_total",
			Help:      "Analysis runs by final status",
		}, []string{"status"}),
		AnalysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one analysis run",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		ModelCalls: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Calls made to the sequence model",
		}),
		ModelErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_errors_total",
			Help:      "Failed sequence model calls",
		}),
		ModelLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_latency_seconds",
			Help:      "Latency of one sequence model call",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Market data fetch failures by provider",
		}, []string{"provider"}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_cache_hits_total",
			Help:      "Price series served from cache",
		}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_cache_misses_total",
			Help:      "Price series fetched from the provider",
		}),
	}
}

// ObserveRun records one finished analysis run.
func (m *Metrics) ObserveRun(status string, elapsed time.Duration) {
	m.AnalysisRuns.WithLabelValues(status).Inc()
	m.AnalysisDuration.Observe(elapsed.Seconds())
}

// ObserveModelCall records one model call.
func (m *Metrics) ObserveModelCall(elapsed time.Duration, err error) {
	m.ModelCalls.Inc()
	m.ModelLatency.Observe(elapsed.Seconds())
	if err != nil {
		m.ModelErrors.Inc()
	}
}

// ObserveCache records one series cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// FetchFailed counts a failed fetch from provider.
func (m *Metrics) FetchFailed(provider string) {
	m.FetchErrors.WithLabelValues(provider).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
