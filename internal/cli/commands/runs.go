package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/starform/internal/state"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
	Show  string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List pipeline run history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&opts.Show, "show", "", "Show table counts and checks for one run ID")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions) error {
	cfg := getConfig(cmd)
	out := cmd.OutOrStdout()

	if _, err := os.Stat(cfg.StatePath); err != nil {
		fmt.Fprintln(out, "No run history")
		return nil
	}

	store := state.NewStore(getLogger(cmd))
	if err := store.Open(cfg.StatePath); err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}

	if opts.Show != "" {
		return showRun(cmd, store, opts.Show)
	}

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No run history")
		return nil
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Source", "Strategy", "Status", "Started", "Duration"})
	for _, r := range runs {
		duration := ""
		if r.CompletedAt != nil {
			duration = r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{
			r.ID, r.SourceFile, r.Strategy, string(r.Status),
			r.StartedAt.Format(time.RFC3339), duration,
		})
	}
	t.Render()
	return nil
}

func showRun(cmd *cobra.Command, store *state.Store, id string) error {
	out := cmd.OutOrStdout()

	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run %s: %s (%s, %s)\n", run.ID, run.SourceFile, run.Strategy, run.Status)
	if run.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", run.Error)
	}

	counts, err := store.TableCounts(id)
	if err != nil {
		return err
	}
	if len(counts) > 0 {
		fmt.Fprintln(out)
		t := newTable(out)
		t.AppendHeader(table.Row{"Table", "Kind", "Rows"})
		for _, tc := range counts {
			t.AppendRow(table.Row{tc.TableName, tc.Kind, tc.RowCount})
		}
		t.Render()
	}

	checks, err := store.Checks(id)
	if err != nil {
		return err
	}
	if len(checks) > 0 {
		fmt.Fprintln(out)
		t := newTable(out)
		t.AppendHeader(table.Row{"Table", "Check", "Status", "Detail"})
		for _, c := range checks {
			status := "PASS"
			if !c.Passed {
				status = "FAIL"
			}
			t.AppendRow(table.Row{c.TableName, c.CheckName, status, c.Message})
		}
		t.Render()
	}
	return nil
}
