// Package model constructs typed warehouse models (tables, columns and
// relationships) from a profiled tabular source, choosing between a star
// schema and a single-table third-normal-form fallback. It also renders the
// model as DDL, a Mermaid ERD, and YAML.
package model

// TableKind distinguishes fact tables from dimension tables.
type TableKind string

const (
	KindFact TableKind = "FACT"
	KindDim  TableKind = "DIM"
)

// Warehouse storage types emitted by the builder.
const (
	TypeNumber    = "NUMBER(38,0)"
	TypeFloat     = "FLOAT"
	TypeBoolean   = "BOOLEAN"
	TypeTimestamp = "TIMESTAMP_NTZ"
	TypeText      = "TEXT"
	TypeDate      = "DATE"
)

// MetadataColumns is the fixed audit column set stamped on every table.
var MetadataColumns = []string{"LOAD_TS", "SOURCE_FILE_NAME", "ROW_HASH", "RECORD_SOURCE"}

// Column is one column of a model table. FK columns carry the referenced
// table and key column.
type Column struct {
	Name             string `yaml:"name"`
	Type             string `yaml:"type"`
	Nullable         bool   `yaml:"nullable"`
	IsPK             bool   `yaml:"is_pk,omitempty"`
	IsFK             bool   `yaml:"is_fk,omitempty"`
	References       string `yaml:"references,omitempty"`
	ReferencesColumn string `yaml:"references_column,omitempty"`
}

// Table is one table of the model with its ordered column list.
type Table struct {
	Name            string   `yaml:"name"`
	Kind            TableKind `yaml:"kind"`
	Columns         []Column `yaml:"columns"`
	PrimaryKey      []string `yaml:"primary_key"`
	Grain           string   `yaml:"grain,omitempty"`
	SCDType         string   `yaml:"scd_type,omitempty"`
	ClusteringKeys  []string `yaml:"clustering_keys,omitempty"`
	MetadataColumns []string `yaml:"metadata_columns"`
}

// Column returns the named column, or nil when absent.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// RequiredColumns returns the names of all non-nullable columns.
func (t *Table) RequiredColumns() []string {
	var required []string
	for _, c := range t.Columns {
		if !c.Nullable {
			required = append(required, c.Name)
		}
	}
	return required
}

// Relationship is a directed edge from a fact FK column to a dimension key
// column.
type Relationship struct {
	FromTable  string `yaml:"from_table"`
	ToTable    string `yaml:"to_table"`
	FromColumn string `yaml:"from_column"`
	ToColumn   string `yaml:"to_column"`
	Type       string `yaml:"type"`
}

// Strategy names the model construction approach.
type Strategy string

const (
	StrategyStarSchema Strategy = "STAR_SCHEMA"
	StrategyThirdNF    Strategy = "THIRD_NORMAL_FORM"
)

// DataModel is the complete inferred model: ordered tables plus a flat
// relationship list. It is the sole input to both the splitting engine and
// the DDL/documentation generators.
type DataModel struct {
	Strategy      Strategy       `yaml:"strategy"`
	Tables        []*Table       `yaml:"tables"`
	Relationships []Relationship `yaml:"relationships"`
}

// AddTable appends a table to the model.
func (m *DataModel) AddTable(name string, kind TableKind, columns []Column, primaryKey []string, grain string) *Table {
	t := &Table{
		Name:            name,
		Kind:            kind,
		Columns:         columns,
		PrimaryKey:      primaryKey,
		Grain:           grain,
		MetadataColumns: append([]string(nil), MetadataColumns...),
	}
	if kind == KindDim {
		t.SCDType = "Type 1"
	}
	m.Tables = append(m.Tables, t)
	return t
}

// AddRelationship appends a many-to-one edge between two tables.
func (m *DataModel) AddRelationship(fromTable, toTable, fromColumn, toColumn string) {
	m.Relationships = append(m.Relationships, Relationship{
		FromTable:  fromTable,
		ToTable:    toTable,
		FromColumn: fromColumn,
		ToColumn:   toColumn,
		Type:       "many_to_one",
	})
}

// Table returns the named table, or nil when absent.
func (m *DataModel) Table(name string) *Table {
	for _, t := range m.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Dimensions returns the dimension tables in model order.
func (m *DataModel) Dimensions() []*Table {
	var dims []*Table
	for _, t := range m.Tables {
		if t.Kind == KindDim {
			dims = append(dims, t)
		}
	}
	return dims
}

// Facts returns the fact tables in model order.
func (m *DataModel) Facts() []*Table {
	var facts []*Table
	for _, t := range m.Tables {
		if t.Kind == KindFact {
			facts = append(facts, t)
		}
	}
	return facts
}
