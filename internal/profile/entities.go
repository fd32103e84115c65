package profile

import (
	"strings"

	"github.com/leapstack-labs/starform/internal/table"
)

// measureKeywords mark a numeric column as a fact measure regardless of
// cardinality.
var measureKeywords = []string{
	"amount", "price", "cost", "qty", "quantity",
	"total", "sum", "count", "dbu", "usage",
	"metric", "value", "score", "rate",
}

// Cardinality-ratio thresholds for numeric and string classification.
const (
	numericDimensionRatio = 0.1
	stringDimensionRatio  = 0.5
)

// ClassifyEntities partitions columns into ids, dates, dimensions and facts.
// Precedence per column: identifier name pattern, then date name/type, then
// numeric type (measure keyword or high cardinality makes a fact, low
// cardinality a dimension key), then string type (dimension below the 0.5
// cardinality ratio). Columns matching no rule land in Unclassified: this
// keeps high-cardinality free text out of the model without it becoming a
// bogus dimension or measure.
func ClassifyEntities(tbl *table.Table, types map[string]SemanticType) Entities {
	var e Entities
	total := tbl.NumRows()

	for _, name := range tbl.ColumnNames() {
		switch {
		case idNamePattern.MatchString(name):
			e.IDs = append(e.IDs, name)
		case types[name] == TypeDate:
			e.Dates = append(e.Dates, name)
		case types[name] == TypeInteger || types[name] == TypeFloat:
			if isMeasure(name) || cardinalityRatio(tbl, name, total) >= numericDimensionRatio {
				e.Facts = append(e.Facts, name)
			} else {
				e.Dimensions = append(e.Dimensions, name)
			}
		case types[name] == TypeString:
			if cardinalityRatio(tbl, name, total) < stringDimensionRatio {
				e.Dimensions = append(e.Dimensions, name)
			} else {
				e.Unclassified = append(e.Unclassified, name)
			}
		default:
			e.Unclassified = append(e.Unclassified, name)
		}
	}
	return e
}

func isMeasure(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range measureKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func cardinalityRatio(tbl *table.Table, name string, total int) float64 {
	col, ok := tbl.Column(name)
	if !ok || total == 0 {
		return 0
	}
	return float64(distinctCount(col)) / float64(total)
}
