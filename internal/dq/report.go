package dq

import (
	"log/slog"

	"github.com/leapstack-labs/starform/internal/model"
	"github.com/leapstack-labs/starform/internal/split"
)

// Report is the outcome of verifying all materialized tables against the
// model. OverallPassed is the logical AND of every individual check.
type Report struct {
	Checks        []CheckResult
	OverallPassed bool
}

// Options configures verification.
type Options struct {
	// Logger defaults to a discard logger when nil.
	Logger *slog.Logger
}

// Verify runs every declared check against the split output. A failing
// check never stops the remaining checks; tables absent from the split
// output (because their construction failed) are skipped.
func Verify(m *model.DataModel, result *split.Result, opts Options) *Report {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	report := &Report{OverallPassed: true}
	record := func(c CheckResult) {
		report.Checks = append(report.Checks, c)
		if !c.Passed {
			report.OverallPassed = false
			logger.Warn("check failed", "table", c.Table, "check", c.Check, "message", c.Message)
		}
	}

	for _, t := range m.Tables {
		rs, ok := result.Tables[t.Name]
		if !ok {
			continue
		}

		if len(t.PrimaryKey) > 0 {
			record(CheckPrimaryKeyUniqueness(rs, t.PrimaryKey))
		}

		if required := t.RequiredColumns(); len(required) > 0 {
			record(CheckNullConstraints(rs, required))
		}

		expected := make(map[string]string, len(t.Columns))
		for _, col := range t.Columns {
			expected[col.Name] = col.Type
		}
		record(CheckTypeConformance(rs, expected))
	}

	for _, rel := range m.Relationships {
		fact, okFact := result.Tables[rel.FromTable]
		dim, okDim := result.Tables[rel.ToTable]
		if !okFact || !okDim {
			continue
		}
		record(CheckForeignKeyIntegrity(fact, dim, rel.FromColumn, rel.ToColumn))
	}

	logger.Debug("verification complete", "checks", len(report.Checks), "passed", report.OverallPassed)
	return report
}
