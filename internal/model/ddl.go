package model

import (
	"fmt"
	"strings"
	"time"
)

// CreateTableStatements returns one complete CREATE TABLE statement per
// table. Duplicate column names are dropped, keeping the first occurrence,
// so the emitted SQL never trips duplicate-column errors.
func CreateTableStatements(m *DataModel) []string {
	statements := make([]string, 0, len(m.Tables))
	for _, t := range m.Tables {
		seen := make(map[string]bool)
		var defs []string
		for _, col := range t.Columns {
			if seen[col.Name] {
				continue
			}
			seen[col.Name] = true
			defs = append(defs, columnDef(col))
		}
		statements = append(statements,
			fmt.Sprintf("CREATE OR REPLACE TABLE %s (\n%s\n)", t.Name, strings.Join(defs, ",\n")))
	}
	return statements
}

// GenerateDDL renders the full DDL script for a database/schema target.
// Primary keys are documented in comments since analytical warehouses do not
// enforce them; a clustering hint is emitted as an optional comment for fact
// tables that carry clustering keys.
func GenerateDDL(m *DataModel, database, schema string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Data Model DDL for %s.%s\n", database, schema)
	fmt.Fprintf(&b, "-- Generated: %s\n\n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "USE DATABASE %s;\n", database)
	fmt.Fprintf(&b, "USE SCHEMA %s;\n\n", schema)

	for _, t := range m.Tables {
		fmt.Fprintf(&b, "-- Table: %s (%s)\n", t.Name, t.Kind)
		if len(t.PrimaryKey) > 0 {
			fmt.Fprintf(&b, "-- Primary Key: %s\n", strings.Join(t.PrimaryKey, ", "))
			b.WriteString("-- Note: primary key constraints are documentation only\n\n")
		}

		fmt.Fprintf(&b, "CREATE OR REPLACE TABLE %s (\n", t.Name)
		var defs []string
		for _, col := range t.Columns {
			defs = append(defs, columnDef(col))
		}
		b.WriteString(strings.Join(defs, ",\n"))
		b.WriteString("\n);\n\n")

		if t.Kind == KindFact && len(t.ClusteringKeys) > 0 {
			fmt.Fprintf(&b, "-- Clustering key (optional): ALTER TABLE %s CLUSTER BY (%s);\n\n",
				t.Name, strings.Join(t.ClusteringKeys, ", "))
		}
	}
	return b.String()
}

func columnDef(col Column) string {
	def := fmt.Sprintf("    %s %s", col.Name, col.Type)
	if !col.Nullable {
		def += " NOT NULL"
	}
	return def
}
