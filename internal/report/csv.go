package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// WriteCSV writes rows to path with the given field order. A nil fieldnames
// slice means the alphabetically sorted superset of all row keys. Cells for
// missing keys are empty.
func WriteCSV(path string, rows []map[string]string, fieldnames []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if fieldnames == nil {
		seen := make(map[string]struct{})
		for _, r := range rows {
			for k := range r {
				seen[k] = struct{}{}
			}
		}
		for k := range seen {
			fieldnames = append(fieldnames, k)
		}
		sort.Strings(fieldnames)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(fieldnames); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	cells := make([]string, len(fieldnames))
	for _, r := range rows {
		for i, name := range fieldnames {
			cells[i] = r[name]
		}
		if err := w.Write(cells); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
