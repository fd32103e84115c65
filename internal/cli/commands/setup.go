// Package commands implements the starform subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/starform/internal/config"
	"github.com/leapstack-labs/starform/internal/model"
	"github.com/leapstack-labs/starform/internal/profile"
	"github.com/leapstack-labs/starform/internal/table"
)

// getConfig retrieves the loaded config from the command context.
func getConfig(cmd *cobra.Command) *config.Config {
	return config.FromContext(cmd.Context())
}

// getLogger retrieves the CLI logger from the command context.
func getLogger(cmd *cobra.Command) *slog.Logger {
	return config.LoggerFromContext(cmd.Context())
}

// loadSource reads a delimited source file using the configured reader
// options.
func loadSource(cfg *config.Config, path string) (*table.Table, error) {
	opts := table.ReadOptions{
		NullValues: cfg.Source.NullValues,
	}
	if cfg.Source.Delimiter != "" {
		opts.Delimiter = rune(cfg.Source.Delimiter[0])
	}

	tbl, err := table.ReadCSVFile(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return tbl, nil
}

// analyzeSource profiles a source table with the configured options.
func analyzeSource(cmd *cobra.Command, tbl *table.Table) *profile.Profile {
	cfg := getConfig(cmd)
	return profile.Analyze(tbl, profile.Options{
		Keys:   cfg.KeyOptions(),
		Logger: getLogger(cmd),
	})
}

// inferModel infers a data model from a profiled table with the configured
// options.
func inferModel(cmd *cobra.Command, tbl *table.Table, prof *profile.Profile) *model.DataModel {
	cfg := getConfig(cmd)
	return model.Infer(tbl, prof, model.Options{
		DisableDateDimension: !cfg.DateDimension,
		Logger:               getLogger(cmd),
	})
}
