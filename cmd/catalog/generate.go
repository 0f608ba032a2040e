package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/climate-catalog-etl/internal/adapter/file"
	kafkaadapter "github.com/couchcryptid/climate-catalog-etl/internal/adapter/kafka"
	"github.com/couchcryptid/climate-catalog-etl/internal/config"
	"github.com/couchcryptid/climate-catalog-etl/internal/observability"
	"github.com/couchcryptid/climate-catalog-etl/internal/pipeline"
	"github.com/couchcryptid/climate-catalog-etl/internal/source"
)

// runGenerate performs one catalog run and prints the summary line to out.
func runGenerate(ctx context.Context, out io.Writer, cfg *config.Config) error {
	logger := observability.NewLogger(cfg)
	metrics := newMetrics()

	p, closeSinks := newPipeline(cfg, logger, metrics)
	defer closeSinks()

	sum, err := p.Run(ctx)
	if cfg.MetricsTextfile != "" {
		if werr := metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			logger.Warn("metrics textfile write failed", "path", cfg.MetricsTextfile, "error", werr)
		}
	}
	if err != nil {
		return err
	}

	path, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		path = cfg.OutputPath
	}
	fmt.Fprintf(out, "Wrote %s with %d indicators and %d CICs.\n", path, sum.Indicators, sum.CICs)
	return nil
}

// newPipeline wires the fetcher and sinks selected by cfg. The returned func
// releases sink connections.
func newPipeline(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Pipeline, func()) {
	var fetcher pipeline.Fetcher
	if cfg.SourceDir != "" {
		fetcher = source.NewDirFetcher(cfg.SourceDir)
		logger.Info("reading tables from directory", "dir", cfg.SourceDir)
	} else {
		fetcher = source.NewHTTPFetcher(cfg.SourceBaseURL, cfg.FetchTimeout, logger)
		logger.Info("fetching tables", "base_url", cfg.SourceBaseURL)
	}

	loaders := []pipeline.Loader{file.NewWriter(cfg.OutputPath, logger)}
	closeSinks := func() {}

	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, writer)
		closeSinks = func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	return pipeline.New(fetcher, loaders, logger, metrics), closeSinks
}
