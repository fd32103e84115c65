package split

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/starform/internal/model"
	"github.com/leapstack-labs/starform/internal/table"
)

func isMetadataColumn(name string) bool {
	for _, m := range model.MetadataColumns {
		if name == m {
			return true
		}
	}
	return false
}

// buildDimension materializes one dimension table: source rows are grouped
// by the natural-key columns (or by all attribute columns when no natural
// key resolved), the first row of each group is the representative record,
// and a deterministic surrogate key is computed from the representative's
// key values. The returned mapping associates each group's delimiter-joined
// key string with its surrogate key for later fact FK resolution.
func buildDimension(tbl *table.Table, dim *model.Table, sourceFile string, loadTS time.Time) (*RecordSet, map[string]string, error) {
	naturalKeys := dimensionNaturalKeys(tbl, dim)

	// Attribute columns resolvable against the source, in model order.
	var attrSources []string
	for _, col := range dim.Columns {
		name := col.Name
		switch {
		case strings.HasSuffix(name, "_SK"), isMetadataColumn(name):
			continue
		case strings.HasSuffix(name, "_NK"):
			if src := strings.TrimSuffix(name, "_NK"); tbl.HasColumn(src) {
				attrSources = append(attrSources, src)
			}
		default:
			if tbl.HasColumn(name) {
				attrSources = append(attrSources, name)
			}
		}
	}

	groupCols := naturalKeys
	if len(groupCols) == 0 {
		groupCols = attrSources
	}
	if len(groupCols) == 0 {
		return nil, nil, fmt.Errorf("no source columns to group by")
	}

	rs := &RecordSet{Name: dim.Name, Columns: dimensionSpecs(tbl, dim)}
	mapping := make(map[string]string)
	seen := make(map[string]bool)

	for row := 0; row < tbl.NumRows(); row++ {
		keyValues := make([]table.Value, len(groupCols))
		for i, col := range groupCols {
			keyValues[i], _ = tbl.Value(row, col)
		}
		key := joinValues(keyValues)
		if seen[key] {
			continue
		}
		seen[key] = true

		sk := SurrogateKey(keyValues)
		mapping[key] = sk
		rs.Rows = append(rs.Rows, dimensionRow(tbl, dim, row, sk, sourceFile, loadTS))
	}

	return rs, mapping, nil
}

// dimensionNaturalKeys resolves the dimension's *_NK columns back to source
// columns. When none resolve, the first non-key, non-metadata column that
// exists in the source is used instead.
func dimensionNaturalKeys(tbl *table.Table, dim *model.Table) []string {
	var keys []string
	for _, col := range dim.Columns {
		if strings.HasSuffix(col.Name, "_NK") {
			if src := strings.TrimSuffix(col.Name, "_NK"); tbl.HasColumn(src) {
				keys = append(keys, src)
			}
		}
	}
	if len(keys) > 0 {
		return keys
	}
	for _, col := range dim.Columns {
		if strings.HasSuffix(col.Name, "_SK") || isMetadataColumn(col.Name) {
			continue
		}
		if src := strings.TrimSuffix(col.Name, "_NK"); tbl.HasColumn(src) {
			return []string{src}
		}
	}
	return nil
}

func dimensionSpecs(tbl *table.Table, dim *model.Table) []ColumnSpec {
	specs := make([]ColumnSpec, 0, len(dim.Columns))
	for _, col := range dim.Columns {
		specs = append(specs, ColumnSpec{Name: col.Name, Storage: materializedStorage(tbl, col)})
	}
	return specs
}

// materializedStorage is the storage type a materialized column actually
// carries: source storage for copied columns, timestamp for LOAD_TS, text
// for generated keys and metadata.
func materializedStorage(tbl *table.Table, col model.Column) table.StorageType {
	if col.Name == "LOAD_TS" {
		return table.Timestamp
	}
	src := strings.TrimSuffix(col.Name, "_NK")
	if c, ok := tbl.Column(src); ok {
		return c.Storage
	}
	return table.Text
}

func dimensionRow(tbl *table.Table, dim *model.Table, row int, sk, sourceFile string, loadTS time.Time) []table.Value {
	out := make([]table.Value, 0, len(dim.Columns))
	for _, col := range dim.Columns {
		name := col.Name
		switch {
		case strings.HasSuffix(name, "_SK"):
			out = append(out, table.String(sk))
		case strings.HasSuffix(name, "_NK"):
			v, ok := tbl.Value(row, strings.TrimSuffix(name, "_NK"))
			if !ok || v.Null {
				// Natural keys are declared non-null; nulls normalize to
				// the empty string, matching the key hashing.
				v = table.String("")
			}
			out = append(out, v)
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
	return out
}

func metadataValue(tbl *table.Table, name string, row int, sourceFile string, loadTS time.Time) table.Value {
	switch name {
	case "LOAD_TS":
		return table.String(loadTS.Format("2006-01-02 15:04:05"))
	case "SOURCE_FILE_NAME", "RECORD_SOURCE":
		return table.String(sourceFile)
	case "ROW_HASH":
		return table.String(RowHash(tbl, row))
	default:
		return table.Null()
	}
}
