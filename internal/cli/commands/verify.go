package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/starform/internal/dq"
	"github.com/leapstack-labs/starform/internal/split"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <source-file>",
		Short: "Run data quality checks on the split output",
		Long: `Profile a source file, infer and materialize its data model, then
verify primary key uniqueness, foreign key integrity, null constraints and
type conformance on the result. Exits non-zero when any check fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd)
			logger := getLogger(cmd)

			tbl, err := loadSource(cfg, args[0])
			if err != nil {
				return err
			}

			prof := analyzeSource(cmd, tbl)
			m := inferModel(cmd, tbl, prof)

			eng := &split.Engine{Logger: logger}
			result := eng.Split(tbl, m, filepath.Base(args[0]), time.Now().UTC())

			report := dq.Verify(m, result, dq.Options{Logger: logger})
			renderReport(cmd.OutOrStdout(), report)

			if !report.OverallPassed {
				return fmt.Errorf("data quality checks failed")
			}
			return nil
		},
	}
}
