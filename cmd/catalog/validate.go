package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/climate-catalog-etl/internal/domain"
	"github.com/spf13/cobra"
)

// errValidationFailed is returned when at least one check fails.
var errValidationFailed = errors.New("validation failed")

func validateCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Check a generated catalog document for ordering and consistency",
		Long: `validate reads a catalog document (default --output or CATALOG_OUTPUT_PATH) and checks
the generated_at stamp, indicator and CIC ordering, indicator counts, and the
cross-references between indicators and CICs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := f.load()
				if err != nil {
					return err
				}
				path = cfg.OutputPath
			}
			return runValidate(cmd.OutOrStdout(), path)
		},
	}
}

func runValidate(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	var c domain.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	checks := domain.CheckCatalog(c)

	fmt.Fprintf(out, "=== Catalog Validation: %s ===\n\n", path)
	allPassed := true
	for _, ch := range checks {
		status := "PASS"
		if !ch.Passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(ch.Errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", ch.Name, status)
	}

	fmt.Fprintf(out, "\nRecords: %d indicators, %d CICs\n", len(c.Indicators), len(c.CICs))

	for _, ch := range checks {
		if ch.Passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", ch.Name)
		for i, e := range ch.Errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return nil
	}
	return errValidationFailed
}
