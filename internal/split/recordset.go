// Package split materializes an inferred data model: it deduplicates
// dimension rows, assigns deterministic surrogate keys, resolves fact
// foreign keys against the dimensions, and stamps the audit metadata
// columns. Output is one in-memory record set per model table.
package split

import "github.com/leapstack-labs/starform/internal/table"

// ColumnSpec describes one materialized column: its name and the storage
// type its values actually carry.
type ColumnSpec struct {
	Name    string
	Storage table.StorageType
}

// RecordSet is the materialized form of one model table. Row order follows
// source order for facts and first-occurrence order for dimensions.
type RecordSet struct {
	Name    string
	Columns []ColumnSpec
	Rows    [][]table.Value
}

// NumRows returns the number of materialized rows.
func (rs *RecordSet) NumRows() int { return len(rs.Rows) }

// ColumnIndex returns the position of the named column, or -1.
func (rs *RecordSet) ColumnIndex(name string) int {
	for i, c := range rs.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at (row, column name). The second return is false
// when the column does not exist.
func (rs *RecordSet) Value(row int, name string) (table.Value, bool) {
	i := rs.ColumnIndex(name)
	if i < 0 {
		return table.Value{}, false
	}
	return rs.Rows[row][i], true
}

// Result is the complete split output: one record set per materialized
// table, a row-count map, and the accumulated per-table errors. A table
// that failed to materialize is absent from Tables and has an entry in
// Errors; the rest of the split still completes.
type Result struct {
	Tables    map[string]*RecordSet
	RowCounts map[string]int
	Errors    []string
}
