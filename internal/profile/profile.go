package profile

import (
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/starform/internal/table"
)

// Options configures a profiling run.
type Options struct {
	Keys KeyOptions
	// Logger defaults to a discard logger when nil.
	Logger *slog.Logger
}

// Analyze runs the full profiling pipeline over a table: semantic typing,
// per-column statistics, candidate-key detection, entity classification and
// grain inference. Column statistics are computed in parallel; the output is
// independent of execution order.
func Analyze(tbl *table.Table, opts Options) *Profile {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("profiling table", "rows", tbl.NumRows(), "columns", tbl.NumColumns())

	types := ClassifyTypes(tbl)
	names := tbl.ColumnNames()

	profiles := make([]*ColumnProfile, len(names))
	var g errgroup.Group
	for i, name := range names {
		col, _ := tbl.Column(name)
		g.Go(func() error {
			profiles[i] = ProfileColumn(col, types[name])
			return nil
		})
	}
	// Column profiling never returns an error; the group is used only to
	// wait for all workers.
	_ = g.Wait()

	columns := make(map[string]*ColumnProfile, len(names))
	for i, name := range names {
		columns[name] = profiles[i]
	}

	keys := DetectCandidateKeys(tbl, opts.Keys)
	entities := ClassifyEntities(tbl, types)
	grain := DetectGrain(tbl)

	logger.Debug("profiling complete",
		"candidate_keys", len(keys),
		"dimensions", len(entities.Dimensions),
		"facts", len(entities.Facts),
		"grain", grain)

	return &Profile{
		TotalRows:     tbl.NumRows(),
		TotalColumns:  tbl.NumColumns(),
		Columns:       columns,
		Types:         types,
		CandidateKeys: keys,
		Entities:      entities,
		Grain:         grain,
	}
}
