// Package table provides the in-memory tabular structure consumed by the
// inference engine: ordered named columns with declared storage types and
// per-cell null markers. Row order is preserved and significant.
package table

import (
	"fmt"
	"strconv"
	"time"
)

// StorageType is the declared physical type of a column.
type StorageType string

const (
	Integer   StorageType = "INTEGER"
	Float     StorageType = "FLOAT"
	Boolean   StorageType = "BOOLEAN"
	Timestamp StorageType = "TIMESTAMP"
	Text      StorageType = "TEXT"
)

// Value is a single cell: the raw stringified value plus a null marker.
type Value struct {
	Raw  string
	Null bool
}

// Null returns a null cell.
func Null() Value { return Value{Null: true} }

// String returns a text cell.
func String(s string) Value { return Value{Raw: s} }

// Int returns an integer cell.
func Int(i int64) Value { return Value{Raw: strconv.FormatInt(i, 10)} }

// Floatv returns a floating-point cell.
func Floatv(f float64) Value { return Value{Raw: strconv.FormatFloat(f, 'g', -1, 64)} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{Raw: strconv.FormatBool(b)} }

// Time returns a timestamp cell in ISO date form.
func Time(t time.Time) Value { return Value{Raw: t.Format("2006-01-02")} }

// Column is one named, typed column with its cells in row order.
type Column struct {
	Name    string
	Storage StorageType
	values  []Value
}

// NewColumn creates a column from its cells.
func NewColumn(name string, storage StorageType, values []Value) *Column {
	return &Column{Name: name, Storage: storage, values: values}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.values) }

// Value returns the cell at the given row.
func (c *Column) Value(row int) Value { return c.values[row] }

// Values returns a read-only view of all cells.
func (c *Column) Values() []Value { return c.values }

// Table is an ordered collection of equal-length columns.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New creates a table from ordered columns.
// All columns must have the same number of rows.
func New(columns ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for i, col := range columns {
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), t.rows)
		}
		if _, exists := t.index[col.Name]; exists {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		t.index[col.Name] = i
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the column count.
func (t *Table) NumColumns() int { return len(t.columns) }

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the cell at (row, column name). The second return is false
// when the column does not exist.
func (t *Table) Value(row int, name string) (Value, bool) {
	col, ok := t.Column(name)
	if !ok {
		return Value{}, false
	}
	return col.Value(row), true
}

// HasNulls reports whether the named column contains at least one null cell.
// Unknown columns report true, matching the conservative nullable default.
func (t *Table) HasNulls(name string) bool {
	col, ok := t.Column(name)
	if !ok {
		return true
	}
	for _, v := range col.Values() {
		if v.Null {
			return true
		}
	}
	return false
}

// timestampLayouts are the accepted temporal formats, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

// ParseTime coerces a cell to a timestamp. Null cells and unparseable
// values report ok=false; coercion failures are never errors.
func ParseTime(v Value) (time.Time, bool) {
	if v.Null {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v.Raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseFloat coerces a cell to a float. Null cells and unparseable values
// report ok=false.
func ParseFloat(v Value) (float64, bool) {
	if v.Null {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.Raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
