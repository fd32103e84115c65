package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/starform/internal/dq"
	"github.com/leapstack-labs/starform/internal/model"
	"github.com/leapstack-labs/starform/internal/split"
	"github.com/leapstack-labs/starform/internal/state"
	"github.com/leapstack-labs/starform/internal/table"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <source-file>",
		Short: "Run the full pipeline with history tracking",
		Long: `Profile, model, split and verify a source file in one pass. Model
YAML, DDL and split tables are written to the output directory, and the
run is recorded in the local history database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args[0])
		},
	}
}

func runPipeline(cmd *cobra.Command, sourceFile string) error {
	cfg := getConfig(cmd)
	logger := getLogger(cmd)
	out := cmd.OutOrStdout()

	store := state.NewStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}

	tbl, err := loadSource(cfg, sourceFile)
	if err != nil {
		return err
	}

	prof := analyzeSource(cmd, tbl)
	m := inferModel(cmd, tbl, prof)

	run, err := store.CreateRun(filepath.Base(sourceFile), string(m.Strategy))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run %s\n\n", run.ID)

	report, err := executePipeline(cmd, sourceFile, tbl, m, store, run.ID)
	if err != nil {
		if cerr := store.CompleteRun(run.ID, state.RunStatusFailed, err.Error()); cerr != nil {
			logger.Warn("failed to record run failure", "error", cerr)
		}
		return err
	}

	status := state.RunStatusCompleted
	errMsg := ""
	var runErr error
	if !report.OverallPassed {
		status = state.RunStatusFailed
		runErr = fmt.Errorf("data quality checks failed")
		errMsg = runErr.Error()
	}
	if err := store.CompleteRun(run.ID, status, errMsg); err != nil {
		logger.Warn("failed to complete run", "error", err)
	}
	return runErr
}

func executePipeline(cmd *cobra.Command, sourceFile string, tbl *table.Table, m *model.DataModel, store *state.Store, runID string) (*dq.Report, error) {
	cfg := getConfig(cmd)
	logger := getLogger(cmd)
	out := cmd.OutOrStdout()

	// Export model artifacts alongside the split tables.
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := m.Save(filepath.Join(cfg.OutputDir, "model.yaml")); err != nil {
		return nil, err
	}
	ddlPath := filepath.Join(cfg.OutputDir, "model.sql")
	if err := writeFile(ddlPath, model.GenerateDDL(m, cfg.Database, cfg.Schema, time.Now().UTC())); err != nil {
		return nil, err
	}
	erdPath := filepath.Join(cfg.OutputDir, "model.mmd")
	if err := writeFile(erdPath, model.GenerateMermaidERD(m)); err != nil {
		return nil, err
	}

	eng := &split.Engine{Logger: logger}
	result := eng.Split(tbl, m, filepath.Base(sourceFile), time.Now().UTC())

	for _, t := range m.Tables {
		rs, ok := result.Tables[t.Name]
		if !ok {
			continue
		}
		if _, err := writeRecordSet(cfg.OutputDir, rs); err != nil {
			return nil, err
		}
		err := store.RecordTableCount(runID, state.TableCount{
			TableName: t.Name,
			Kind:      string(t.Kind),
			RowCount:  rs.NumRows(),
		})
		if err != nil {
			logger.Warn("failed to record table count", "table", t.Name, "error", err)
		}
	}

	renderSplitResult(out, m, result)
	fmt.Fprintln(out)

	report := dq.Verify(m, result, dq.Options{Logger: logger})
	for _, c := range report.Checks {
		err := store.RecordCheck(runID, state.CheckOutcome{
			TableName: c.Table,
			CheckName: c.Check,
			Passed:    c.Passed,
			Message:   c.Message,
		})
		if err != nil {
			logger.Warn("failed to record check", "table", c.Table, "error", err)
		}
	}

	renderReport(out, report)
	fmt.Fprintf(out, "Output written to %s\n", cfg.OutputDir)
	return report, nil
}
