package split

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/starform/internal/model"
	"github.com/leapstack-labs/starform/internal/table"
)

// buildDateDimension materializes the synthesized date dimension from the
// distinct valid dates of every source column the fact table links to
// DIM_DATE. One row is emitted per distinct calendar date, in first-
// encountered order; the mapping associates every raw source value of a
// date with its surrogate key so fact FK resolution can look up raw cells
// directly.
func buildDateDimension(tbl *table.Table, m *model.DataModel, dim *model.Table, sourceFile string, loadTS time.Time) (*RecordSet, map[string]string, error) {
	sources := dateSourceColumns(tbl, m)
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("no source date columns resolve to %s", dim.Name)
	}

	rs := &RecordSet{Name: dim.Name, Columns: dateDimensionSpecs(dim)}
	mapping := make(map[string]string)
	seen := make(map[string]bool)

	for _, src := range sources {
		col, _ := tbl.Column(src)
		for row := 0; row < col.Len(); row++ {
			v := col.Value(row)
			t, ok := table.ParseTime(v)
			if !ok {
				continue
			}
			iso := t.Format("2006-01-02")
			sk := SurrogateKey([]table.Value{table.String(iso)})
			mapping[v.Raw] = sk
			if seen[iso] {
				continue
			}
			seen[iso] = true
			rs.Rows = append(rs.Rows, dateDimensionRow(dim, t, iso, sk, sourceFile, loadTS))
		}
	}
	return rs, mapping, nil
}

// dateSourceColumns finds the source columns behind fact FK columns that
// reference DIM_DATE, in model order.
func dateSourceColumns(tbl *table.Table, m *model.DataModel) []string {
	var sources []string
	seen := make(map[string]bool)
	for _, fact := range m.Facts() {
		for _, col := range fact.Columns {
			if !col.IsFK || col.References != "DIM_DATE" {
				continue
			}
			src := strings.TrimSuffix(col.Name, "_FK")
			if tbl.HasColumn(src) && !seen[src] {
				seen[src] = true
				sources = append(sources, src)
			}
		}
	}
	return sources
}

func dateDimensionSpecs(dim *model.Table) []ColumnSpec {
	specs := make([]ColumnSpec, 0, len(dim.Columns))
	for _, col := range dim.Columns {
		var storage table.StorageType
		switch col.Type {
		case model.TypeNumber:
			storage = table.Integer
		case model.TypeBoolean:
			storage = table.Boolean
		case model.TypeDate, model.TypeTimestamp:
			storage = table.Timestamp
		default:
			storage = table.Text
		}
		specs = append(specs, ColumnSpec{Name: col.Name, Storage: storage})
	}
	return specs
}

func dateDimensionRow(dim *model.Table, t time.Time, iso, sk, sourceFile string, loadTS time.Time) []table.Value {
	quarter := (int(t.Month())-1)/3 + 1
	weekday := t.Weekday()
	isWeekend := weekday == time.Saturday || weekday == time.Sunday

	out := make([]table.Value, 0, len(dim.Columns))
	for _, col := range dim.Columns {
		switch col.Name {
		case "DATE_SK":
			out = append(out, table.String(sk))
		case "DATE_NK":
			out = append(out, table.String(iso))
		case "YEAR":
			out = append(out, table.Int(int64(t.Year())))
		case "QUARTER":
			out = append(out, table.Int(int64(quarter)))
		case "MONTH":
			out = append(out, table.Int(int64(t.Month())))
		case "DAY":
			out = append(out, table.Int(int64(t.Day())))
		case "DAY_OF_WEEK":
			out = append(out, table.Int(int64(weekday)))
		case "DAY_NAME":
			out = append(out, table.String(weekday.String()))
		case "MONTH_NAME":
			out = append(out, table.String(t.Month().String()))
		case "IS_WEEKEND":
			out = append(out, table.String(strconv.FormatBool(isWeekend)))
		case "LOAD_TS":
			out = append(out, table.String(loadTS.Format("2006-01-02 15:04:05")))
		case "SOURCE_FILE_NAME", "RECORD_SOURCE":
			out = append(out, table.String(sourceFile))
		case "ROW_HASH":
			out = append(out, table.String(SurrogateKey([]table.Value{table.String(iso)})))
		default:
			out = append(out, table.Null())
		}
	}
	return out
}
