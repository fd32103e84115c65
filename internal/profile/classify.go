package profile

import (
	"regexp"

	"github.com/leapstack-labs/starform/internal/table"
)

var (
	// idNamePattern matches identifier-style column names: a trailing "_id"
	// segment, a bare "id", or anything containing "guid".
	idNamePattern = regexp.MustCompile(`(?i)(_id$|^id$|guid)`)
	// dateNamePattern matches date/time/timestamp column names.
	dateNamePattern = regexp.MustCompile(`(?i)(date|time)`)
)

// ClassifyType assigns a semantic type from the column name and declared
// storage type. Name patterns win over storage: identifier names are IDs and
// date-like names are DATEs regardless of how the values are stored.
func ClassifyType(name string, storage table.StorageType) SemanticType {
	if idNamePattern.MatchString(name) {
		return TypeID
	}
	if dateNamePattern.MatchString(name) {
		return TypeDate
	}
	switch storage {
	case table.Integer:
		return TypeInteger
	case table.Float:
		return TypeFloat
	case table.Boolean:
		return TypeBoolean
	case table.Timestamp:
		return TypeDate
	default:
		return TypeString
	}
}

// ClassifyTypes assigns a semantic type to every column of the table.
func ClassifyTypes(tbl *table.Table) map[string]SemanticType {
	types := make(map[string]SemanticType, tbl.NumColumns())
	for _, name := range tbl.ColumnNames() {
		col, _ := tbl.Column(name)
		types[name] = ClassifyType(name, col.Storage)
	}
	return types
}
