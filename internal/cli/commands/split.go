package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/starform/internal/model"
	"github.com/leapstack-labs/starform/internal/split"
)

// SplitOptions holds options for the split command.
type SplitOptions struct {
	ModelFile string
}

// NewSplitCommand creates the split command.
func NewSplitCommand() *cobra.Command {
	opts := &SplitOptions{}

	cmd := &cobra.Command{
		Use:   "split <source-file>",
		Short: "Split a source file into model tables",
		Long: `Materialize the inferred (or supplied) data model: deduplicate
dimensions, resolve fact foreign keys to surrogate keys, and write one CSV
file per model table to the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ModelFile, "model", "m", "", "Use a saved model YAML instead of inferring one")

	return cmd
}

func runSplit(cmd *cobra.Command, sourceFile string, opts *SplitOptions) error {
	cfg := getConfig(cmd)
	logger := getLogger(cmd)

	tbl, err := loadSource(cfg, sourceFile)
	if err != nil {
		return err
	}

	var m *model.DataModel
	if opts.ModelFile != "" {
		m, err = model.Load(opts.ModelFile)
		if err != nil {
			return fmt.Errorf("failed to load model: %w", err)
		}
	} else {
		prof := analyzeSource(cmd, tbl)
		m = inferModel(cmd, tbl, prof)
	}

	eng := &split.Engine{Logger: logger}
	result := eng.Split(tbl, m, filepath.Base(sourceFile), time.Now().UTC())

	for _, t := range m.Tables {
		rs, ok := result.Tables[t.Name]
		if !ok {
			continue
		}
		if _, err := writeRecordSet(cfg.OutputDir, rs); err != nil {
			return err
		}
	}

	renderSplitResult(cmd.OutOrStdout(), m, result)
	fmt.Fprintf(cmd.OutOrStdout(), "Output written to %s\n", cfg.OutputDir)
	return nil
}
