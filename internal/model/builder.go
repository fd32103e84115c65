package model

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/leapstack-labs/starform/internal/profile"
	"github.com/leapstack-labs/starform/internal/table"
)

// Options configures model inference.
type Options struct {
	// DisableDateDimension skips the synthesized date dimension and the date
	// FK columns that would reference it.
	DisableDateDimension bool
	// Logger defaults to a discard logger when nil.
	Logger *slog.Logger
}

var naturalKeyPattern = regexp.MustCompile(`(?i)_id$`)

// Infer constructs a data model from a profiled table. When both fact
// measures and dimension attributes were detected it builds a star schema;
// otherwise it falls back to a single third-normal-form table. Inference
// never aborts on unrecognized input: unknown storage types map to TEXT.
func Infer(tbl *table.Table, prof *profile.Profile, opts Options) *DataModel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &DataModel{}
	hasFacts := len(prof.Entities.Facts) > 0
	hasDims := len(prof.Entities.Dimensions) > 0

	if hasFacts && hasDims {
		m.Strategy = StrategyStarSchema
		buildStarSchema(tbl, prof, m, opts)
	} else {
		m.Strategy = StrategyThirdNF
		build3NF(tbl, prof, m)
	}

	logger.Debug("model inferred",
		"strategy", string(m.Strategy),
		"tables", len(m.Tables),
		"relationships", len(m.Relationships))
	return m
}

// dimFKMapping records how a dimension is wired to the fact table.
type dimFKMapping struct {
	fkColumn   string
	naturalKey string
}

func buildStarSchema(tbl *table.Table, prof *profile.Profile, m *DataModel, opts Options) {
	entities := prof.Entities

	// Fact key: best candidate key's first column, else a hash surrogate.
	var factKey string
	if best := prof.BestKey(); len(best) > 0 {
		factKey = best[0]
	}

	var factColumns []Column
	var factPK []string
	factColNames := make(map[string]bool)

	if factKey != "" {
		factColumns = append(factColumns, Column{
			Name:     factKey,
			Type:     mapStorageType(tbl, factKey),
			Nullable: tbl.HasNulls(factKey),
			IsPK:     true,
		})
		factPK = append(factPK, factKey)
	} else {
		// Assigned by hashing, so hex text rather than a numeric sequence.
		factColumns = append(factColumns, Column{
			Name: "FACT_SK",
			Type: TypeText,
			IsPK: true,
		})
		factPK = append(factPK, "FACT_SK")
	}
	factColNames[factColumns[0].Name] = true

	// Fact measures, skipping anything already present as the fact key.
	for _, col := range entities.Facts {
		if factColNames[col] {
			continue
		}
		factColNames[col] = true
		factColumns = append(factColumns, Column{
			Name:     col,
			Type:     mapStorageType(tbl, col),
			Nullable: tbl.HasNulls(col),
		})
	}

	// Date columns become FKs into the synthesized date dimension.
	withDates := len(entities.Dates) > 0 && !opts.DisableDateDimension
	if withDates {
		for _, col := range entities.Dates {
			name := col + "_FK"
			factColNames[name] = true
			factColumns = append(factColumns, Column{
				Name:             name,
				Type:             TypeText,
				Nullable:         tbl.HasNulls(col),
				IsFK:             true,
				References:       "DIM_DATE",
				ReferencesColumn: "DATE_SK",
			})
		}
	}

	groups := groupDimensionColumns(entities.Dimensions, entities.IDs)
	idSet := make(map[string]bool, len(entities.IDs))
	for _, id := range entities.IDs {
		idSet[id] = true
	}

	// First pass: wire one FK per dimension, reusing the natural key column
	// in place when it already sits on the fact table (e.g. as the fact key).
	fkMappings := make(map[string]dimFKMapping)
	for _, g := range groups {
		naturalKeys := naturalKeyColumns(g.columns, idSet)
		if len(naturalKeys) == 0 {
			continue
		}
		nk := naturalKeys[0]
		fkName := nk + "_FK"
		switch {
		case factColNames[nk]:
			fkMappings[g.name] = dimFKMapping{fkColumn: nk, naturalKey: nk}
		case factColNames[fkName]:
			fkMappings[g.name] = dimFKMapping{fkColumn: fkName, naturalKey: nk}
		default:
			factColNames[fkName] = true
			nullable := true
			if tbl.HasColumn(nk) {
				nullable = tbl.HasNulls(nk)
			}
			factColumns = append(factColumns, Column{
				Name:             fkName,
				Type:             TypeText,
				Nullable:         nullable,
				IsFK:             true,
				References:       g.name,
				ReferencesColumn: g.name + "_SK",
			})
			fkMappings[g.name] = dimFKMapping{fkColumn: fkName, naturalKey: nk}
		}
	}

	factColumns = append(factColumns, metadataColumns()...)
	m.AddTable("FACT_MAIN", KindFact, factColumns, factPK, prof.Grain)

	// Second pass: dimension tables and their relationships.
	for _, g := range groups {
		naturalKeys := naturalKeyColumns(g.columns, idSet)
		nkSet := make(map[string]bool, len(naturalKeys))
		for _, nk := range naturalKeys {
			nkSet[nk] = true
		}

		sk := g.name + "_SK"
		columns := []Column{{Name: sk, Type: TypeText, IsPK: true}}
		for _, nk := range naturalKeys {
			columns = append(columns, Column{
				Name: nk + "_NK",
				Type: mapStorageType(tbl, nk),
			})
		}
		for _, col := range g.columns {
			if nkSet[col] {
				continue
			}
			columns = append(columns, Column{
				Name:     col,
				Type:     mapStorageType(tbl, col),
				Nullable: tbl.HasNulls(col),
			})
		}
		columns = append(columns, metadataColumns()...)
		m.AddTable(g.name, KindDim, columns, []string{sk}, "")

		if fk, ok := fkMappings[g.name]; ok {
			m.AddRelationship("FACT_MAIN", g.name, fk.fkColumn, g.name+"_SK")
		}
	}

	if withDates {
		addDateDimension(m)
	}
}

func build3NF(tbl *table.Table, prof *profile.Profile, m *DataModel) {
	var columns []Column
	var pk []string

	if best := prof.BestKey(); len(best) > 0 {
		pkCol := best[0]
		pk = append(pk, pkCol)
		columns = append(columns, Column{
			Name: pkCol,
			Type: mapStorageType(tbl, pkCol),
			IsPK: true,
		})
	} else {
		pk = append(pk, "MAIN_SK")
		columns = append(columns, Column{Name: "MAIN_SK", Type: TypeText, IsPK: true})
	}

	for _, col := range tbl.ColumnNames() {
		if col == pk[0] {
			continue
		}
		columns = append(columns, Column{
			Name:     col,
			Type:     mapStorageType(tbl, col),
			Nullable: tbl.HasNulls(col),
		})
	}

	columns = append(columns, metadataColumns()...)
	m.AddTable("MAIN_TABLE", KindFact, columns, pk, "")
}

// dimensionGroup is one prospective dimension table and its source columns,
// in discovery order.
type dimensionGroup struct {
	name    string
	columns []string
}

// groupDimensionColumns groups dimension attributes by shared name prefix
// (the text before the final underscore segment; columns without an
// underscore fall into a generic group). Identifier columns join the first
// group whose attributes mention the id's base name; unmatched ids become
// singleton dimensions of their own.
func groupDimensionColumns(dimensions, ids []string) []dimensionGroup {
	var groups []dimensionGroup
	index := make(map[string]int)

	add := func(name, col string) {
		if i, ok := index[name]; ok {
			groups[i].columns = append(groups[i].columns, col)
			return
		}
		index[name] = len(groups)
		groups = append(groups, dimensionGroup{name: name, columns: []string{col}})
	}

	for _, col := range dimensions {
		prefix := "dimension"
		if i := strings.LastIndex(col, "_"); i > 0 {
			prefix = col[:i]
		}
		add("DIM_"+strings.ToUpper(prefix), col)
	}

	for _, id := range ids {
		base := strings.ReplaceAll(id, "_id", "")
		matched := false
		for i := range groups {
			for _, col := range groups[i].columns {
				if strings.Contains(strings.ToLower(col), base) {
					groups[i].columns = append(groups[i].columns, id)
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			add("DIM_"+strings.ToUpper(base), id)
		}
	}
	return groups
}

// naturalKeyColumns selects the group's natural key: id-classified columns
// or *_id names, falling back to the group's first column.
func naturalKeyColumns(columns []string, idSet map[string]bool) []string {
	var keys []string
	for _, col := range columns {
		if idSet[col] || naturalKeyPattern.MatchString(col) {
			keys = append(keys, col)
		}
	}
	if len(keys) == 0 && len(columns) > 0 {
		keys = []string{columns[0]}
	}
	return keys
}

func metadataColumns() []Column {
	return []Column{
		{Name: "LOAD_TS", Type: TypeTimestamp},
		{Name: "SOURCE_FILE_NAME", Type: TypeText, Nullable: true},
		{Name: "ROW_HASH", Type: TypeText, Nullable: true},
		{Name: "RECORD_SOURCE", Type: TypeText, Nullable: true},
	}
}

// mapStorageType maps a source column's declared storage type to a warehouse
// type. Unknown columns and unrecognized storage types map to TEXT rather
// than failing.
func mapStorageType(tbl *table.Table, name string) string {
	col, ok := tbl.Column(name)
	if !ok {
		return TypeText
	}
	switch col.Storage {
	case table.Integer:
		return TypeNumber
	case table.Float:
		return TypeFloat
	case table.Boolean:
		return TypeBoolean
	case table.Timestamp:
		return TypeTimestamp
	default:
		return TypeText
	}
}
