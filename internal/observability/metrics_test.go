package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Isolated(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.RowsParsed.WithLabelValues("indicators").Add(3)

	assert.InDelta(t, 3, testutil.ToFloat64(a.RowsParsed.WithLabelValues("indicators")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.RowsParsed.WithLabelValues("indicators")), 0)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetricsForTesting()
	m.Runs.WithLabelValues("success").Inc()
	m.IndicatorsTotal.Set(12)

	path := filepath.Join(t.TempDir(), "catalog.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `climate_catalog_runs_total{outcome="success"} 1`)
	assert.Contains(t, string(data), "climate_catalog_indicators 12")
}

func TestMetrics_GathererExposesAllFamilies(t *testing.T) {
	m := NewMetricsForTesting()
	m.Runs.WithLabelValues("success").Inc()
	m.FetchDuration.WithLabelValues("indicators").Observe(0.2)
	m.FetchErrors.WithLabelValues("cics").Inc()
	m.RowsParsed.WithLabelValues("indicators").Inc()
	m.RowsDropped.WithLabelValues("indicators").Inc()
	m.SinkWrites.WithLabelValues("file", "success").Inc()

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}

	for _, name := range []string{
		"climate_catalog_runs_total",
		"climate_catalog_run_duration_seconds",
		"climate_catalog_last_success_timestamp_seconds",
		"climate_catalog_indicators",
		"climate_catalog_cics",
		"climate_catalog_fetch_duration_seconds",
		"climate_catalog_fetch_errors_total",
		"climate_catalog_rows_parsed_total",
		"climate_catalog_rows_dropped_total",
		"climate_catalog_unknown_dataset_links_total",
		"climate_catalog_sink_writes_total",
	} {
		assert.Contains(t, byName, name)
	}

	fetch := byName["climate_catalog_fetch_duration_seconds"]
	require.Len(t, fetch.GetMetric(), 1)
	assert.Equal(t, dto.MetricType_HISTOGRAM, fetch.GetType())
	assert.Equal(t, uint64(1), fetch.GetMetric()[0].GetHistogram().GetSampleCount())
}
