// Package observability defines the dashboard's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aq_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Dataset metrics.
	DatasetRecords      prometheus.Gauge
	DatasetSkippedRows  prometheus.Gauge
	DatasetLoadDuration prometheus.Histogram
	DatasetReady        prometheus.Gauge

	// Chart callbacks.
	CallbackDuration *prometheus.HistogramVec // labels: callback={overview,detail,hover,initial}
	Events           *prometheus.CounterVec   // labels: kind, outcome={update,no_update,rejected,rate_limited}

	// Figure store.
	FigureStore     *prometheus.CounterVec // labels: result={hit,miss,expired,evicted}
	FigureStoreSize prometheus.Gauge
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      help("Observations held in the loaded dataset."),
		}),
		DatasetSkippedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_skipped_rows",
			Help:      help("Source rows dropped for an unusable data_value."),
		}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      help("Time to fetch and parse the dataset, retries included."),
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_ready",
			Help:      help("1 once the dataset is loaded and charts can be served."),
		}),
		CallbackDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "callback_duration_seconds",
			Help:      help("Chart callback duration by callback."),
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"callback"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      help("Dashboard events by kind and outcome."),
		}, []string{"kind", "outcome"}),
		FigureStore: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "figure_store_total",
			Help:      help("Figure store lookups and removals by result."),
		}, []string{"result"}),
		FigureStoreSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "figure_store_entries",
			Help:      help("Detail figures currently retained."),
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DatasetRecords,
		m.DatasetSkippedRows,
		m.DatasetLoadDuration,
		m.DatasetReady,
		m.CallbackDuration,
		m.Events,
		m.FigureStore,
		m.FigureStoreSize,
	}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsWithRegistry creates metrics registered on reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics(true)
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}
