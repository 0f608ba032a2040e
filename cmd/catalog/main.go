// Command catalog builds the climate-risk catalog document from the
// catalog's CSV tables.
//
// With no arguments it fetches the five tables, joins them, writes the JSON
// document, and prints a one-line summary:
//
//	catalog
//	catalog --source-dir ./data --output docs/catalog.json
//	catalog serve
//	catalog validate docs/catalog.json
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climate-catalog-etl/internal/config"
	"github.com/couchcryptid/climate-catalog-etl/internal/observability"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const appName = "catalog"

// newMetrics is swapped in tests to avoid default-registry collisions.
var newMetrics = observability.NewMetrics

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flags overrides the environment configuration for a single invocation.
type flags struct {
	sourceDir string
	output    string
	logLevel  string
}

func (f *flags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.sourceDir, "source-dir", "", "Read tables from this directory instead of the remote repository")
	cmd.PersistentFlags().StringVarP(&f.output, "output", "o", "", "Catalog output path (default from CATALOG_OUTPUT_PATH)")
	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// load reads the environment configuration and applies flag overrides.
func (f *flags) load() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if f.sourceDir != "" {
		cfg.SourceDir = f.sourceDir
	}
	if f.output != "" {
		cfg.OutputPath = f.output
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	return cfg, nil
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Generate the climate-risk catalog document",
		Long: `catalog fetches the indicator, dataset, and Climate Impact Chain tables,
joins them, and writes a single JSON document for the catalog dashboard.

Settings come from environment variables (CATALOG_SOURCE_BASE_URL,
CATALOG_OUTPUT_PATH, KAFKA_BROKERS, ...); flags override them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
	f.register(cmd)

	cmd.AddCommand(serveCmd(&f))
	cmd.AddCommand(validateCmd(&f))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}
