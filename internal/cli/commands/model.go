package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/starform/internal/model"
)

// ModelOptions holds options for the model command.
type ModelOptions struct {
	Format string
	Out    string
}

// NewModelCommand creates the model command.
func NewModelCommand() *cobra.Command {
	opts := &ModelOptions{}

	cmd := &cobra.Command{
		Use:   "model <source-file>",
		Short: "Infer a dimensional data model",
		Long: `Profile a source file and infer a star schema (or a flat 3NF model
when no fact/dimension structure is detected). The model can be printed as
a summary or exported as YAML, CREATE TABLE DDL, or a Mermaid ER diagram.`,
		Example: `  # Print a model summary
  starform model orders.csv

  # Export the model as YAML
  starform model orders.csv --format yaml --out model.yaml

  # Generate warehouse DDL
  starform model orders.csv --format ddl --database ANALYTICS --schema SALES`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModel(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "summary", "Output format (summary|yaml|ddl|mermaid)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write output to a file instead of stdout")

	return cmd
}

func runModel(cmd *cobra.Command, sourceFile string, opts *ModelOptions) error {
	cfg := getConfig(cmd)

	tbl, err := loadSource(cfg, sourceFile)
	if err != nil {
		return err
	}

	prof := analyzeSource(cmd, tbl)
	m := inferModel(cmd, tbl, prof)

	var out []byte
	switch opts.Format {
	case "summary":
		renderModelSummary(cmd.OutOrStdout(), m)
		return nil
	case "yaml":
		out, err = m.ToYAML()
		if err != nil {
			return fmt.Errorf("failed to serialize model: %w", err)
		}
	case "ddl":
		out = []byte(model.GenerateDDL(m, cfg.Database, cfg.Schema, time.Now().UTC()))
	case "mermaid":
		out = []byte(model.GenerateMermaidERD(m))
	default:
		return fmt.Errorf("unknown format: %s", opts.Format)
	}

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.Out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.Out)
		return nil
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}
