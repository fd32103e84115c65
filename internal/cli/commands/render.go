package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/starform/internal/dq"
	"github.com/leapstack-labs/starform/internal/model"
	"github.com/leapstack-labs/starform/internal/profile"
	"github.com/leapstack-labs/starform/internal/split"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// renderProfile prints the per-column statistics, candidate keys, entity
// classification and grain of a profiled source.
func renderProfile(w io.Writer, prof *profile.Profile, columnOrder []string) {
	fmt.Fprintf(w, "Rows: %d  Columns: %d  Grain: %s\n\n", prof.TotalRows, prof.TotalColumns, prof.Grain)

	t := newTable(w)
	t.AppendHeader(table.Row{"Column", "Type", "Nulls %", "Distinct", "Distinct %"})
	for _, name := range columnOrder {
		cp := prof.Columns[name]
		if cp == nil {
			continue
		}
		t.AppendRow(table.Row{
			cp.Column,
			string(cp.Type),
			fmt.Sprintf("%.2f", cp.NullPercentage),
			cp.DistinctCount,
			fmt.Sprintf("%.2f", cp.DistinctPercentage),
		})
	}
	t.Render()

	if len(prof.CandidateKeys) > 0 {
		fmt.Fprintln(w)
		k := newTable(w)
		k.AppendHeader(table.Row{"Candidate Key", "Uniqueness", "Distinct", "Nulls"})
		for _, ck := range prof.CandidateKeys {
			k.AppendRow(table.Row{
				strings.Join(ck.Columns, " + "),
				fmt.Sprintf("%.4f", ck.Uniqueness),
				ck.DistinctCount,
				ck.NullCount,
			})
		}
		k.Render()
	}

	fmt.Fprintln(w)
	e := newTable(w)
	e.AppendHeader(table.Row{"Role", "Columns"})
	e.AppendRow(table.Row{"ids", strings.Join(prof.Entities.IDs, ", ")})
	e.AppendRow(table.Row{"dates", strings.Join(prof.Entities.Dates, ", ")})
	e.AppendRow(table.Row{"dimensions", strings.Join(prof.Entities.Dimensions, ", ")})
	e.AppendRow(table.Row{"facts", strings.Join(prof.Entities.Facts, ", ")})
	e.AppendRow(table.Row{"unclassified", strings.Join(prof.Entities.Unclassified, ", ")})
	e.Render()
}

// renderModelSummary prints one line per model table plus relationships.
func renderModelSummary(w io.Writer, m *model.DataModel) {
	fmt.Fprintf(w, "Strategy: %s\n\n", m.Strategy)

	t := newTable(w)
	t.AppendHeader(table.Row{"Table", "Kind", "Columns", "Primary Key"})
	for _, tbl := range m.Tables {
		t.AppendRow(table.Row{
			tbl.Name,
			string(tbl.Kind),
			len(tbl.Columns),
			strings.Join(tbl.PrimaryKey, ", "),
		})
	}
	t.Render()

	if len(m.Relationships) > 0 {
		fmt.Fprintln(w)
		r := newTable(w)
		r.AppendHeader(table.Row{"From", "Column", "To", "Column"})
		for _, rel := range m.Relationships {
			r.AppendRow(table.Row{rel.FromTable, rel.FromColumn, rel.ToTable, rel.ToColumn})
		}
		r.Render()
	}
}

// renderSplitResult prints per-table row counts and any per-table errors.
func renderSplitResult(w io.Writer, m *model.DataModel, result *split.Result) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Table", "Kind", "Rows"})
	for _, tbl := range m.Tables {
		rs, ok := result.Tables[tbl.Name]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{tbl.Name, string(tbl.Kind), rs.NumRows()})
	}
	t.Render()

	for _, msg := range result.Errors {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
}

// renderReport prints the data quality report.
func renderReport(w io.Writer, report *dq.Report) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Table", "Check", "Status", "Detail"})
	for _, c := range report.Checks {
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		t.AppendRow(table.Row{c.Table, c.Check, status, c.Message})
	}
	t.Render()

	if report.OverallPassed {
		fmt.Fprintln(w, "All checks passed")
	} else {
		fmt.Fprintln(w, "Some checks failed")
	}
}
