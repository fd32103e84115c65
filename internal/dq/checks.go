// Package dq re-checks materialized tables against the model's declared
// constraints: primary-key uniqueness, foreign-key integrity, null
// constraints and coarse type conformance. Checks report violations; they
// never abort the pipeline.
package dq

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/leapstack-labs/starform/internal/split"
	"github.com/leapstack-labs/starform/internal/table"
)

// orphanReportCap limits how many orphaned FK values are listed in a
// report. The orphan count itself is never capped.
const orphanReportCap = 100

// NullViolation describes nulls found in a required column.
type NullViolation struct {
	NullCount      int
	NullPercentage float64
}

// TypeViolation describes a declared/actual storage type mismatch.
type TypeViolation struct {
	Expected string
	Actual   string
}

// CheckResult is the outcome of one check against one table or
// relationship.
type CheckResult struct {
	Table   string
	Check   string
	Passed  bool
	Message string

	DuplicateCount int
	DuplicateRows  []map[string]string

	OrphanedCount int
	OrphanedKeys  []string

	NullViolations map[string]NullViolation
	TypeViolations map[string]TypeViolation
}

// CheckPrimaryKeyUniqueness flags every row whose full primary-key tuple
// repeats.
func CheckPrimaryKeyUniqueness(rs *split.RecordSet, pkColumns []string) CheckResult {
	result := CheckResult{Table: rs.Name, Check: "primary_key_uniqueness"}
	if len(pkColumns) == 0 {
		result.Message = "No primary key columns specified"
		return result
	}

	tupleRows := make(map[string][]int)
	order := make([]string, 0)
	for row := 0; row < rs.NumRows(); row++ {
		key := pkTuple(rs, row, pkColumns)
		if _, ok := tupleRows[key]; !ok {
			order = append(order, key)
		}
		tupleRows[key] = append(tupleRows[key], row)
	}

	for _, key := range order {
		rows := tupleRows[key]
		if len(rows) < 2 {
			continue
		}
		result.DuplicateCount += len(rows)
		for _, row := range rows {
			sample := make(map[string]string, len(pkColumns))
			for _, col := range pkColumns {
				v, _ := rs.Value(row, col)
				sample[col] = v.Raw
			}
			result.DuplicateRows = append(result.DuplicateRows, sample)
		}
	}

	result.Passed = result.DuplicateCount == 0
	if result.Passed {
		result.Message = "Primary key is unique"
	} else {
		result.Message = fmt.Sprintf("Found %d duplicate primary key rows", result.DuplicateCount)
	}
	return result
}

func pkTuple(rs *split.RecordSet, row int, columns []string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		v, ok := rs.Value(row, col)
		if !ok || v.Null {
			parts[i] = "\x00"
			continue
		}
		parts[i] = v.Raw
	}
	return strings.Join(parts, "\x1f")
}

// CheckForeignKeyIntegrity computes the set difference of distinct FK
// values in the fact against distinct PK values in the referenced
// dimension. Orphans are sorted and listed up to orphanReportCap entries.
func CheckForeignKeyIntegrity(fact, dim *split.RecordSet, fkColumn, pkColumn string) CheckResult {
	result := CheckResult{
		Table: fmt.Sprintf("%s -> %s", fact.Name, dim.Name),
		Check: "foreign_key_integrity",
	}

	dimPKs := distinctValues(dim, pkColumn)
	var orphans []string
	for fk := range distinctValues(fact, fkColumn) {
		if _, ok := dimPKs[fk]; !ok {
			orphans = append(orphans, fk)
		}
	}
	sort.Strings(orphans)

	result.OrphanedCount = len(orphans)
	result.Passed = result.OrphanedCount == 0
	if result.Passed {
		result.Message = "All foreign keys valid"
	} else {
		result.Message = fmt.Sprintf("Found %d orphaned foreign keys", result.OrphanedCount)
		if len(orphans) > orphanReportCap {
			orphans = orphans[:orphanReportCap]
		}
		result.OrphanedKeys = orphans
	}
	return result
}

func distinctValues(rs *split.RecordSet, column string) map[string]struct{} {
	values := make(map[string]struct{})
	idx := rs.ColumnIndex(column)
	if idx < 0 {
		return values
	}
	for _, row := range rs.Rows {
		if row[idx].Null {
			continue
		}
		values[row[idx].Raw] = struct{}{}
	}
	return values
}

// CheckNullConstraints counts nulls in every column the model declares
// non-nullable. Columns missing from the record set are skipped rather
// than treated as failures.
func CheckNullConstraints(rs *split.RecordSet, requiredColumns []string) CheckResult {
	result := CheckResult{
		Table:          rs.Name,
		Check:          "null_constraints",
		NullViolations: make(map[string]NullViolation),
	}

	for _, col := range requiredColumns {
		idx := rs.ColumnIndex(col)
		if idx < 0 {
			continue
		}
		nulls := 0
		for _, row := range rs.Rows {
			if row[idx].Null {
				nulls++
			}
		}
		if nulls > 0 {
			pct := 0.0
			if rs.NumRows() > 0 {
				pct = math.Round(float64(nulls)/float64(rs.NumRows())*100*100) / 100
			}
			result.NullViolations[col] = NullViolation{NullCount: nulls, NullPercentage: pct}
		}
	}

	result.Passed = len(result.NullViolations) == 0
	if result.Passed {
		result.Message = "All required columns have no nulls"
	} else {
		result.Message = fmt.Sprintf("Found nulls in %d required columns", len(result.NullViolations))
	}
	return result
}

// CheckTypeConformance compares each column's declared type against the
// storage type the materialized column actually carries, matching by
// coarse type family (integer, float, boolean, text, date/timestamp).
func CheckTypeConformance(rs *split.RecordSet, expected map[string]string) CheckResult {
	result := CheckResult{
		Table:          rs.Name,
		Check:          "type_conformance",
		TypeViolations: make(map[string]TypeViolation),
	}

	for _, spec := range rs.Columns {
		want, ok := expected[spec.Name]
		if !ok {
			continue
		}
		if !typeFamiliesMatch(want, spec.Storage) {
			result.TypeViolations[spec.Name] = TypeViolation{
				Expected: want,
				Actual:   string(spec.Storage),
			}
		}
	}

	result.Passed = len(result.TypeViolations) == 0
	if result.Passed {
		result.Message = "All columns match expected types"
	} else {
		result.Message = fmt.Sprintf("Type mismatches in %d columns", len(result.TypeViolations))
	}
	return result
}

type typeFamily int

const (
	familyUnknown typeFamily = iota
	familyInteger
	familyFloat
	familyBoolean
	familyText
	familyDate
)

func declaredFamily(declared string) typeFamily {
	t := strings.ToLower(declared)
	switch {
	case strings.Contains(t, "int"), strings.Contains(t, "number"):
		return familyInteger
	case strings.Contains(t, "float"), strings.Contains(t, "double"), strings.Contains(t, "decimal"):
		return familyFloat
	case strings.Contains(t, "bool"):
		return familyBoolean
	case strings.Contains(t, "date"), strings.Contains(t, "timestamp"):
		return familyDate
	case strings.Contains(t, "text"), strings.Contains(t, "string"), strings.Contains(t, "char"):
		return familyText
	default:
		return familyUnknown
	}
}

func storageFamily(storage table.StorageType) typeFamily {
	switch storage {
	case table.Integer:
		return familyInteger
	case table.Float:
		return familyFloat
	case table.Boolean:
		return familyBoolean
	case table.Timestamp:
		return familyDate
	case table.Text:
		return familyText
	default:
		return familyUnknown
	}
}

// typeFamiliesMatch is deliberately coarse: an unknown declared type never
// fails the check, and integers conform to a float-family declaration.
func typeFamiliesMatch(declared string, storage table.StorageType) bool {
	want := declaredFamily(declared)
	got := storageFamily(storage)
	if want == familyUnknown {
		return true
	}
	if want == familyFloat && got == familyInteger {
		return true
	}
	return want == got
}
