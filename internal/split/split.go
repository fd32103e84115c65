package split

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/starform/internal/model"
	"github.com/leapstack-labs/starform/internal/table"
)

// Engine materializes a data model from a source table.
type Engine struct {
	// Logger defaults to a discard logger when nil.
	Logger *slog.Logger
}

// Split decomposes the source rows into the model's dimension and fact
// record sets. Dimensions are built first so their natural-key to
// surrogate-key mappings are available for fact FK resolution; the mappings
// live only for the duration of this call. The load timestamp is an
// explicit parameter so the whole split is a pure function of
// (source, model, source file name, instant).
//
// An error while building one table is recorded in the result and that
// table is absent from the output; the remaining tables still complete.
func (e *Engine) Split(tbl *table.Table, m *model.DataModel, sourceFile string, loadTS time.Time) *Result {
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	result := &Result{
		Tables:    make(map[string]*RecordSet),
		RowCounts: make(map[string]int),
	}
	mappings := make(map[string]map[string]string)

	for _, dim := range m.Dimensions() {
		var (
			rs      *RecordSet
			mapping map[string]string
			err     error
		)
		if dim.Name == "DIM_DATE" {
			rs, mapping, err = buildDateDimension(tbl, m, dim, sourceFile, loadTS)
		} else {
			rs, mapping, err = buildDimension(tbl, dim, sourceFile, loadTS)
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Error creating %s: %v", dim.Name, err))
			logger.Warn("dimension build failed", "table", dim.Name, "error", err)
			continue
		}
		result.Tables[dim.Name] = rs
		result.RowCounts[dim.Name] = rs.NumRows()
		mappings[dim.Name] = mapping
		logger.Debug("dimension materialized", "table", dim.Name, "rows", rs.NumRows())
	}

	for _, fact := range m.Facts() {
		rs := buildFact(tbl, fact, mappings, sourceFile, loadTS)
		result.Tables[fact.Name] = rs
		result.RowCounts[fact.Name] = rs.NumRows()
		logger.Debug("fact materialized", "table", fact.Name, "rows", rs.NumRows())
	}

	return result
}
