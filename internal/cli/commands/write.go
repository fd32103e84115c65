package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/starform/internal/split"
)

// writeFile writes text content, creating parent directories as needed.
func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeRecordSet writes one materialized table as <dir>/<name>.csv.
// Null values are written as empty fields.
func writeRecordSet(dir string, rs *split.RecordSet) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, rs.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		header[i] = c.Name
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			if v.Null {
				record[i] = ""
			} else {
				record[i] = v.Raw
			}
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
