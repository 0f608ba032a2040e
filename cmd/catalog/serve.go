package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	httpadapter "github.com/couchcryptid/climate-catalog-etl/internal/adapter/http"
	"github.com/couchcryptid/climate-catalog-etl/internal/config"
	"github.com/couchcryptid/climate-catalog-etl/internal/observability"
	"github.com/couchcryptid/climate-catalog-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func serveCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Generate the catalog and serve it with the dashboard over HTTP",
		Long: `serve generates the catalog, then serves /catalog.json, the files next to
the output path (or CATALOG_STATIC_DIR), and /healthz, /readyz, and /metrics on HTTP_ADDR.
When CATALOG_REFRESH_INTERVAL is set the catalog is regenerated on that
interval.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := observability.NewServiceLogger(cfg)
	metrics := newMetrics()

	p, closeSinks := newPipeline(cfg, logger, metrics)
	defer closeSinks()

	refresher := pipeline.NewRefresher(p, cfg.RefreshInterval, clockwork.NewRealClock(), logger)
	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:      cfg.HTTPAddr,
		Catalog:   refresher,
		Ready:     refresher,
		Gatherer:  metrics.Gatherer(),
		StaticDir: staticDir(cfg),
	}, logger)

	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	refreshDone := make(chan struct{})
	go func() {
		defer close(refreshDone)
		refresher.Run(refreshCtx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-srvErr:
		runErr = fmt.Errorf("http server: %w", err)
	}
	logger.Info("shutting down")

	stopRefresh()
	<-refreshDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return runErr
}

// staticDir picks the directory served at "/": CATALOG_STATIC_DIR when set,
// otherwise the output file's directory. An output in the working directory
// serves no files.
func staticDir(cfg *config.Config) string {
	if cfg.StaticDir != "" {
		return cfg.StaticDir
	}
	dir := filepath.Dir(cfg.OutputPath)
	if dir == "." {
		return ""
	}
	return dir
}
