package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadOptions configures CSV loading.
type ReadOptions struct {
	// Delimiter overrides delimiter sniffing when non-zero.
	Delimiter rune
	// NullValues are raw strings treated as null cells, in addition to the
	// empty string.
	NullValues []string
}

var defaultNullValues = []string{"NULL", "null", "NA", "N/A", "NaN"}

// ReadCSVFile loads a delimited file into a Table. The header row supplies
// column names; storage types are inferred from the data.
func ReadCSVFile(path string, opts ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// ReadCSV loads delimited data from a reader into a Table.
func ReadCSV(r io.Reader, opts ReadOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(string(data))
	}

	cr := csv.NewReader(strings.NewReader(string(data)))
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited data: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("source has no header row")
	}

	header := records[0]
	nulls := append([]string{}, defaultNullValues...)
	nulls = append(nulls, opts.NullValues...)

	cells := make([][]Value, len(header))
	for _, record := range records[1:] {
		for i := range header {
			var v Value
			if i >= len(record) {
				v = Null()
			} else {
				v = parseCell(record[i], nulls)
			}
			cells[i] = append(cells[i], v)
		}
	}

	columns := make([]*Column, len(header))
	for i, name := range header {
		columns[i] = NewColumn(strings.TrimSpace(name), inferStorage(cells[i]), cells[i])
	}
	return New(columns...)
}

// sniffDelimiter picks the delimiter from the first line, trying the common
// candidates in order.
func sniffDelimiter(data string) rune {
	firstLine := data
	if i := strings.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	for _, d := range []rune{',', ';', '\t', '|'} {
		if strings.ContainsRune(firstLine, d) {
			return d
		}
	}
	return ','
}

func parseCell(raw string, nulls []string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Null()
	}
	for _, n := range nulls {
		if trimmed == n {
			return Null()
		}
	}
	return Value{Raw: trimmed}
}

// inferStorage picks the narrowest storage type that fits every non-null
// cell. Columns with no non-null cells default to text.
func inferStorage(values []Value) StorageType {
	sawValue := false
	isInt, isFloat, isBool, isTime := true, true, true, true

	for _, v := range values {
		if v.Null {
			continue
		}
		sawValue = true
		if isInt {
			if _, err := strconv.ParseInt(v.Raw, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v.Raw, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			switch strings.ToLower(v.Raw) {
			case "true", "false":
			default:
				isBool = false
			}
		}
		if isTime {
			if _, ok := ParseTime(v); !ok {
				isTime = false
			}
		}
	}

	switch {
	case !sawValue:
		return Text
	case isBool:
		return Boolean
	case isInt:
		return Integer
	case isFloat:
		return Float
	case isTime:
		return Timestamp
	default:
		return Text
	}
}
