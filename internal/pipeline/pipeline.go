package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/climate-catalog-etl/internal/csvtable"
	"github.com/couchcryptid/climate-catalog-etl/internal/domain"
	"github.com/couchcryptid/climate-catalog-etl/internal/observability"
	"github.com/couchcryptid/climate-catalog-etl/internal/source"
)

// Fetcher retrieves the decoded text of one source table.
type Fetcher interface {
	Fetch(ctx context.Context, t source.Table) (string, error)
}

// Loader delivers a finished catalog to a destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, c domain.Catalog) error
}

// TableStats counts the rows read from one table and the rows discarded
// for missing ids.
type TableStats struct {
	Table   string
	Parsed  int
	Dropped int
}

// Summary describes a completed run.
type Summary struct {
	Catalog         domain.Catalog
	Indicators      int
	CICs            int
	Datasets        int
	UnknownDatasets int
	Tables          []TableStats
}

// Pipeline orchestrates the fetch-parse-join-load sequence.
type Pipeline struct {
	fetcher Fetcher
	loaders []Loader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline. Loaders run in the order given.
func New(f Fetcher, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher: f,
		loaders: loaders,
		logger:  logger,
		metrics: metrics,
	}
}

// Run generates the catalog once. Every table is fetched and parsed before
// any loader is called; the first error aborts the run.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	sum, err := p.run(ctx)
	if err != nil {
		p.metrics.Runs.WithLabelValues("error").Inc()
		return Summary{}, err
	}

	p.metrics.Runs.WithLabelValues("success").Inc()
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.metrics.LastSuccess.SetToCurrentTime()
	p.metrics.IndicatorsTotal.Set(float64(sum.Indicators))
	p.metrics.CICsTotal.Set(float64(sum.CICs))

	p.logger.Info("catalog generated",
		"indicators", sum.Indicators,
		"cics", sum.CICs,
		"datasets", sum.Datasets,
		"duration", time.Since(start),
	)
	return sum, nil
}

func (p *Pipeline) run(ctx context.Context) (Summary, error) {
	records := make(map[string][]csvtable.Record, len(source.Tables))
	for _, t := range source.Tables {
		recs, err := p.extract(ctx, t)
		if err != nil {
			return Summary{}, err
		}
		records[t.Name] = recs
	}

	tables, stats := p.typedRows(records)
	catalog, join := domain.BuildCatalog(tables)
	if join.UnknownDatasets > 0 {
		p.metrics.UnknownDatasetLinks.Add(float64(join.UnknownDatasets))
		p.logger.Debug("dataset links without a dataset row", "links", join.UnknownDatasets)
	}

	for _, l := range p.loaders {
		if err := l.Load(ctx, catalog); err != nil {
			p.metrics.SinkWrites.WithLabelValues(l.Name(), "error").Inc()
			return Summary{}, fmt.Errorf("load %s: %w", l.Name(), err)
		}
		p.metrics.SinkWrites.WithLabelValues(l.Name(), "success").Inc()
	}

	return Summary{
		Catalog:         catalog,
		Indicators:      len(catalog.Indicators),
		CICs:            len(catalog.CICs),
		Datasets:        len(tables.Datasets),
		UnknownDatasets: join.UnknownDatasets,
		Tables:          stats,
	}, nil
}

// extract fetches and parses one table.
func (p *Pipeline) extract(ctx context.Context, t source.Table) ([]csvtable.Record, error) {
	start := time.Now()
	text, err := p.fetcher.Fetch(ctx, t)
	p.metrics.FetchDuration.WithLabelValues(t.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.FetchErrors.WithLabelValues(t.Name).Inc()
		return nil, err
	}

	recs, err := csvtable.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", t.Name, err)
	}
	p.metrics.RowsParsed.WithLabelValues(t.Name).Add(float64(len(recs)))
	p.logger.Debug("table parsed", "table", t.Name, "rows", len(recs), "duration", time.Since(start))
	return recs, nil
}

// typedRows converts parsed records into join inputs, recording per-table
// drop counts.
func (p *Pipeline) typedRows(records map[string][]csvtable.Record) (domain.Tables, []TableStats) {
	var (
		tables  domain.Tables
		dropped = make(map[string]int, len(source.Tables))
	)
	tables.Indicators, dropped[source.Indicators.Name] = domain.IndicatorRows(records[source.Indicators.Name])
	tables.Datasets, dropped[source.Datasets.Name] = domain.DatasetRows(records[source.Datasets.Name])
	tables.DatasetLinks, dropped[source.DatasetLinks.Name] = domain.DatasetLinks(records[source.DatasetLinks.Name])
	tables.CICs, dropped[source.CICs.Name] = domain.CICRows(records[source.CICs.Name])
	tables.CICLinks, dropped[source.CICLinks.Name] = domain.CICLinks(records[source.CICLinks.Name])

	stats := make([]TableStats, 0, len(source.Tables))
	for _, t := range source.Tables {
		st := TableStats{Table: t.Name, Parsed: len(records[t.Name]), Dropped: dropped[t.Name]}
		if st.Dropped > 0 {
			p.metrics.RowsDropped.WithLabelValues(t.Name).Add(float64(st.Dropped))
		}
		p.logger.Info("table loaded", "table", st.Table, "rows", st.Parsed, "dropped", st.Dropped)
		stats = append(stats, st)
	}
	return tables, stats
}
