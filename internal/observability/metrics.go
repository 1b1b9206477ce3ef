package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_alert"

// Metrics holds the Prometheus counters, histograms, and gauges for one run.
// Each Metrics owns its registry so a short-lived run can push exactly what
// it recorded.
type Metrics struct {
	Registry *prometheus.Registry

	EventsFetched prometheus.Counter
	EventsDropped prometheus.Counter
	FeedErrors    prometheus.Counter
	AlertsMatched prometheus.Counter
	AlertOverflow prometheus.Counter
	DailyReports  prometheus.Counter

	Notifications *prometheus.CounterVec // labels: kind={alert,overflow,daily_report,feed_error}, outcome={sent,failed}
	MapImages     *prometheus.CounterVec // labels: outcome={success,error,empty,disabled}

	FeedDuration     prometheus.Histogram
	RunDuration      prometheus.Histogram
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates the run metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		EventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_fetched_total",
			Help:      "Raw records returned by the earthquake feed.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Feed records discarded by validation.",
		}),
		FeedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_errors_total",
			Help:      "Runs in which the feed could not be fetched.",
		}),
		AlertsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_matched_total",
			Help:      "Events that passed the alert filter.",
		}),
		AlertOverflow: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_overflow_total",
			Help:      "Matched events summarised instead of sent individually.",
		}),
		DailyReports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_reports_total",
			Help:      "Daily rollups computed inside the report window.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Chat notifications by kind and delivery outcome.",
		}, []string{"kind", "outcome"}),
		MapImages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_images_total",
			Help:      "Static map image lookups by outcome.",
		}, []string{"outcome"}),
		FeedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_request_duration_seconds",
			Help:      "Duration of the feed GET request.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-evaluate-dispatch pass.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished.",
		}),
	}

	m.Registry.MustRegister(
		m.EventsFetched,
		m.EventsDropped,
		m.FeedErrors,
		m.AlertsMatched,
		m.AlertOverflow,
		m.DailyReports,
		m.Notifications,
		m.MapImages,
		m.FeedDuration,
		m.RunDuration,
		m.LastRunTimestamp,
	)

	return m
}
