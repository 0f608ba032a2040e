package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/climate-catalog-etl/internal/adapter/file"
	"github.com/couchcryptid/climate-catalog-etl/internal/domain"
	"github.com/couchcryptid/climate-catalog-etl/internal/observability"
	"github.com/couchcryptid/climate-catalog-etl/internal/pipeline"
	"github.com/couchcryptid/climate-catalog-etl/internal/source"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockFetcher struct {
	tables map[string]string
	errs   map[string]error
	calls  []string
}

func (m *mockFetcher) Fetch(_ context.Context, t source.Table) (string, error) {
	m.calls = append(m.calls, t.Name)
	if err := m.errs[t.Name]; err != nil {
		return "", err
	}
	return m.tables[t.Name], nil
}

type mockLoader struct {
	name   string
	err    error
	loaded []domain.Catalog
	order  *[]string
}

func (m *mockLoader) Name() string { return m.name }

func (m *mockLoader) Load(_ context.Context, c domain.Catalog) error {
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, c)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2025, time.November, 12, 12, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(fixedNow))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func exampleTables() map[string]string {
	return map[string]string{
		"indicators": "indicator_id,category,name,source,description\nI1,Exposure,Drought HH,src,desc\n",
		"datasets":   "dataset_id,name,description,source,citation,license\nD1,Drought areas,d-desc,d-src,cite,CC-BY\n",
		"links_data": "indicator_id,dataset_id\nI1,D1\n",
		"cics":       "",
		"links_cic":  "",
	}
}

// --- tests ---

func TestPipeline_Run_EndToEndExample(t *testing.T) {
	freezeClock(t)
	f := &mockFetcher{tables: exampleTables()}
	ldr := &mockLoader{name: "mock"}

	p := pipeline.New(f, []pipeline.Loader{ldr}, discardLogger(), observability.NewMetricsForTesting())
	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, ldr.loaded, 1)
	want := domain.Catalog{
		GeneratedAt: "2025-11-12T12:00:00Z",
		Indicators: []domain.Indicator{{
			ID: "I1", Indicator: "Drought HH", Category: "Exposure", Source: "src", Description: "desc",
			Datasets: []domain.Dataset{{
				ID: "D1", Name: "Drought areas", Description: "d-desc",
				Source: "d-src", Citation: "cite", License: "CC-BY",
			}},
		}},
		CICs: []domain.CIC{},
	}
	if diff := cmp.Diff(want, ldr.loaded[0]); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1, sum.Indicators)
	assert.Zero(t, sum.CICs)
	assert.Equal(t, 1, sum.Datasets)
	assert.Equal(t, []string{"indicators", "datasets", "links_data", "cics", "links_cic"}, f.calls)
}

func TestPipeline_Run_TableStats(t *testing.T) {
	tables := exampleTables()
	tables["indicators"] += ",Exposure,No id,src,desc\n"
	tables["links_cic"] = "indicator_id,cic_id\nI1,\n"

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(&mockFetcher{tables: tables}, nil, discardLogger(), metrics)

	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	want := []pipeline.TableStats{
		{Table: "indicators", Parsed: 2, Dropped: 1},
		{Table: "datasets", Parsed: 1},
		{Table: "links_data", Parsed: 1},
		{Table: "cics"},
		{Table: "links_cic", Parsed: 1, Dropped: 1},
	}
	if diff := cmp.Diff(want, sum.Tables); diff != "" {
		t.Fatalf("table stats mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RowsDropped.WithLabelValues("indicators")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RowsParsed.WithLabelValues("indicators")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Runs.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.IndicatorsTotal), 0)
}

func TestPipeline_Run_FetchErrorAbortsBeforeLoad(t *testing.T) {
	boom := errors.New("fetch links_data: connection refused")
	f := &mockFetcher{tables: exampleTables(), errs: map[string]error{"links_data": boom}}
	ldr := &mockLoader{name: "mock"}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(f, []pipeline.Loader{ldr}, discardLogger(), metrics)
	_, err := p.Run(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Empty(t, ldr.loaded)
	assert.Equal(t, []string{"indicators", "datasets", "links_data"}, f.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchErrors.WithLabelValues("links_data")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Runs.WithLabelValues("error")), 0)
}

func TestPipeline_Run_LoadersInOrder(t *testing.T) {
	var order []string
	first := &mockLoader{name: "file", order: &order}
	second := &mockLoader{name: "kafka", order: &order}

	p := pipeline.New(&mockFetcher{tables: exampleTables()}, []pipeline.Loader{first, second}, discardLogger(), observability.NewMetricsForTesting())
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"file", "kafka"}, order)
}

func TestPipeline_Run_LoaderErrorIsFatal(t *testing.T) {
	var order []string
	first := &mockLoader{name: "file", err: errors.New("disk full"), order: &order}
	second := &mockLoader{name: "kafka", order: &order}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(&mockFetcher{tables: exampleTables()}, []pipeline.Loader{first, second}, discardLogger(), metrics)
	_, err := p.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load file")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{"file"}, order)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SinkWrites.WithLabelValues("file", "error")), 0)
}

func TestPipeline_Run_UnknownDatasetCounted(t *testing.T) {
	tables := exampleTables()
	tables["links_data"] += "I1,D404\n"
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(&mockFetcher{tables: tables}, nil, discardLogger(), metrics)
	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.UnknownDatasets)
	require.Len(t, sum.Catalog.Indicators, 1)
	assert.Len(t, sum.Catalog.Indicators[0].Datasets, 1)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.UnknownDatasetLinks), 0)
}

func TestPipeline_Run_DirectoryToFile(t *testing.T) {
	freezeClock(t)
	out := filepath.Join(t.TempDir(), "docs", "catalog.json")

	p := pipeline.New(
		source.NewDirFetcher(filepath.Join("testdata", "data")),
		[]pipeline.Loader{file.NewWriter(out, discardLogger())},
		discardLogger(),
		observability.NewMetricsForTesting(),
	)
	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Indicators)
	assert.Equal(t, 1, sum.CICs)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var got domain.Catalog
	require.NoError(t, json.Unmarshal(data, &got))

	want := domain.Catalog{
		GeneratedAt: "2025-11-12T12:00:00Z",
		Indicators: []domain.Indicator{
			{
				ID: "I1001", Indicator: "Number of households affected by drought", Category: "Exposure",
				Source: "EEA", Description: "Households located in\ndrought-prone areas",
				Datasets: []domain.Dataset{{
					ID: "D0005", Name: "Drought areas", Description: "Drought-prone zones",
					Source: "EEA", Citation: "EEA 2020", License: "CC-BY-4.0",
				}},
				CICIDs: []string{"CIC01"},
			},
			{
				ID: "I1002", Indicator: "Days above 35°C", Category: "Hazard",
				Source: "Copernicus", Description: "Annual count of hot days",
				Datasets: []domain.Dataset{{
					ID: "D0007", Name: "Heat index", Description: "Daily heat index",
					Source: "C3S", Citation: "C3S 2021", License: "CC-BY-4.0",
				}},
				CICIDs: []string{"CIC01"},
			},
		},
		CICs: []domain.CIC{{
			ID: "CIC01", Name: "Heatwave health impacts", Area: "Health", Impact: "Heatwave health impacts",
			Description: "Heat stress on vulnerable groups", IndicatorIDs: []string{"I1001", "I1002"}, IndicatorCount: 2,
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, string(data), "35°C")
}

func TestPipeline_Run_Deterministic(t *testing.T) {
	freezeClock(t)
	run := func() []byte {
		p := pipeline.New(source.NewDirFetcher(filepath.Join("testdata", "data")), nil, discardLogger(), observability.NewMetricsForTesting())
		sum, err := p.Run(context.Background())
		require.NoError(t, err)
		data, err := domain.MarshalCatalog(sum.Catalog)
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, run(), run())
}
