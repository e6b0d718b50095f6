// Package metrics exposes the process-wide Prometheus registry and the
// engine's counters. Call Handler() to mount /metrics on an ops server
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry
	once     sync.Once

	// PostsRead counts collector records read per channel
	PostsRead *prometheus.CounterVec

	// PostsSkipped counts malformed collector records skipped per channel
	PostsSkipped *prometheus.CounterVec

	// HitsMapped counts (category, keyword) hits per category
	HitsMapped *prometheus.CounterVec

	// AggregateRows counts emitted aggregate rows per level (category|keyword)
	AggregateRows *prometheus.CounterVec

	// MetricRecords counts metric records written to the warehouse
	MetricRecords prometheus.Counter

	// AlertsFlagged counts alertable records per category
	AlertsFlagged *prometheus.CounterVec

	// PersistRetries counts sink write retries per sink
	PersistRetries *prometheus.CounterVec

	// PersistFailures counts sink writes abandoned after retries per sink
	PersistFailures *prometheus.CounterVec

	// RunDuration observes whole window-pass duration in seconds
	RunDuration prometheus.Histogram

	// RunsActive gauges window passes currently holding a lease
	RunsActive prometheus.Gauge
)

func init() { ensure() }

func ensure() {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		PostsRead = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buzzwatch", Name: "posts_read_total",
			Help: "Collector records read",
		}, []string{"channel"})

		PostsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buzzwatch", Name: "posts_skipped_total",
			Help: "Malformed collector records skipped",
		}, []string{"channel"})

		HitsMapped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buzzwatch", Name: "hits_mapped_total",
			Help: "Category keyword hits mapped from posts",
		}, []string{"category"})

		AggregateRows = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buzzwatch", Name: "aggregate_rows_total",
			Help: "Aggregate rows produced",
		}, []string{"level"})

		MetricRecords = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "buzzwatch", Name: "metric_records_total",
			Help: "Metric records written to the warehouse",
		})

		AlertsFlagged = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buzzwatch", Name: "alerts_flagged_total",
			Help: "Metric records at or above the score threshold",
		}, []string{"category"})

		PersistRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buzzwatch", Name: "persist_retries_total",
			Help: "Sink write retries",
		}, []string{"sink"})

		PersistFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "buzzwatch", Name: "persist_failures_total",
			Help: "Sink writes abandoned after bounded retries",
		}, []string{"sink"})

		RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "buzzwatch", Name: "run_duration_seconds",
			Help:    "Window pass duration",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		})

		RunsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "buzzwatch", Name: "runs_active",
			Help: "Window passes currently holding a lease",
		})

		registry.MustRegister(
			PostsRead, PostsSkipped, HitsMapped, AggregateRows,
			MetricRecords, AlertsFlagged, PersistRetries, PersistFailures,
			RunDuration, RunsActive,
		)
	})
}

// Registry returns the process-wide registry, building it on first use
func Registry() *prometheus.Registry {
	ensure()
	return registry
}

// Handler returns the /metrics HTTP handler for the registry
func Handler() http.Handler {
	ensure()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
