package split

import (
	"strings"
	"time"

	"github.com/leapstack-labs/starform/internal/model"
	"github.com/leapstack-labs/starform/internal/table"
)

// factKeyColumnCount is how many leading source columns feed the surrogate
// fact key when no natural primary key applies.
const factKeyColumnCount = 5

// buildFact materializes one fact table: every source row is emitted once,
// in source order. The primary key reuses an existing source column when
// the model selected one; otherwise a surrogate hash over the leading
// source columns is assigned. FK columns are resolved against the dimension
// mappings; a source key with no dimension entry yields a null FK, never an
// error.
func buildFact(tbl *table.Table, fact *model.Table, mappings map[string]map[string]string, sourceFile string, loadTS time.Time) *RecordSet {
	// A reused primary key is an ordinary source column and is copied as
	// such below; only a *_SK primary key is synthesized by hashing.
	hashCols := tbl.ColumnNames()
	if len(hashCols) > factKeyColumnCount {
		hashCols = hashCols[:factKeyColumnCount]
	}

	rs := &RecordSet{Name: fact.Name, Columns: factSpecs(tbl, fact)}
	for row := 0; row < tbl.NumRows(); row++ {
		out := make([]table.Value, 0, len(fact.Columns))
		for _, col := range fact.Columns {
			name := col.Name
			switch {
			case col.IsPK && strings.HasSuffix(name, "_SK"):
				values := make([]table.Value, len(hashCols))
				for i, c := range hashCols {
					values[i], _ = tbl.Value(row, c)
				}
				out = append(out, table.String(SurrogateKey(values)))
			case col.IsFK:
				out = append(out, resolveForeignKey(tbl, col, row, mappings))
			case isMetadataColumn(name):
				out = append(out, metadataValue(tbl, name, row, sourceFile, loadTS))
			default:
				v, ok := tbl.Value(row, name)
				if !ok {
					v = table.Null()
				}
				out = append(out, v)
			}
		}
		rs.Rows = append(rs.Rows, out)
	}
	return rs
}

// resolveForeignKey looks up the surrogate key for one fact FK cell. The
// candidate natural-key column comes from the FK column's name with the
// _FK suffix stripped; the literal name and its _id-stripped variants are
// tried against the source in turn. The first candidate whose row value is
// present in the referenced dimension's mapping wins; no match yields null.
func resolveForeignKey(tbl *table.Table, col model.Column, row int, mappings map[string]map[string]string) table.Value {
	mapping, ok := mappings[col.References]
	if !ok {
		return table.Null()
	}

	base := strings.TrimSuffix(col.Name, "_FK")
	candidates := []string{
		base,
		strings.TrimSuffix(base, "_id"),
		strings.TrimSuffix(base, "_ID"),
	}
	for _, candidate := range candidates {
		if !tbl.HasColumn(candidate) {
			continue
		}
		v, _ := tbl.Value(row, candidate)
		if v.Null {
			continue
		}
		if sk, found := mapping[v.Raw]; found {
			return table.String(sk)
		}
	}
	return table.Null()
}

func factSpecs(tbl *table.Table, fact *model.Table) []ColumnSpec {
	specs := make([]ColumnSpec, 0, len(fact.Columns))
	for _, col := range fact.Columns {
		switch {
		case col.IsFK, col.IsPK && strings.HasSuffix(col.Name, "_SK"):
			specs = append(specs, ColumnSpec{Name: col.Name, Storage: table.Text})
		default:
			specs = append(specs, ColumnSpec{Name: col.Name, Storage: materializedStorage(tbl, col)})
		}
	}
	return specs
}
