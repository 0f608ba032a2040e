package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climate_catalog"

// Metrics holds the Prometheus counters, histograms, and gauges for catalog generation.
type Metrics struct {
	Runs            *prometheus.CounterVec // labels: outcome={success,error}
	RunDuration     prometheus.Histogram
	LastSuccess     prometheus.Gauge
	IndicatorsTotal prometheus.Gauge
	CICsTotal       prometheus.Gauge

	// Per-table metrics.
	FetchDuration *prometheus.HistogramVec // labels: table
	FetchErrors   *prometheus.CounterVec   // labels: table
	RowsParsed    *prometheus.CounterVec   // labels: table
	RowsDropped   *prometheus.CounterVec   // labels: table

	UnknownDatasetLinks prometheus.Counter
	SinkWrites          *prometheus.CounterVec // labels: sink, outcome={success,error}

	registry *prometheus.Registry
}

// NewMetrics creates all generator metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(m.collectors()...)
	return m
}

// Gatherer returns the registry the metrics were registered with.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m.registry != nil {
		return m.registry
	}
	return prometheus.DefaultGatherer
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Gatherer())
}

func newMetrics() *Metrics {
	return &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Catalog generation runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-join-write run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		IndicatorsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indicators",
			Help:      "Indicators in the last generated catalog.",
		}),
		CICsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cics",
			Help:      "Climate Impact Chains in the last generated catalog.",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Table retrieval duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"table"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Table retrieval failures.",
		}, []string{"table"}),
		RowsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_parsed_total",
			Help:      "CSV data rows read per table.",
		}, []string{"table"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "CSV rows discarded for missing ids, per table.",
		}, []string{"table"}),
		UnknownDatasetLinks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_dataset_links_total",
			Help:      "Indicator-dataset links naming a dataset that does not exist.",
		}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_writes_total",
			Help:      "Catalog deliveries per sink by outcome.",
		}, []string{"sink", "outcome"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Runs,
		m.RunDuration,
		m.LastSuccess,
		m.IndicatorsTotal,
		m.CICsTotal,
		m.FetchDuration,
		m.FetchErrors,
		m.RowsParsed,
		m.RowsDropped,
		m.UnknownDatasetLinks,
		m.SinkWrites,
	}
}
