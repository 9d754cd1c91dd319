// Package ingest loads raw input files. One unreadable file is recorded as a
// failed RawFile and never aborts the rest of the batch.
package ingest

import (
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/snstools/snsmaster/internal/header"
	"github.com/snstools/snsmaster/internal/schema"
)

// Load statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// RawFile is one discovered input file after a load attempt. Immutable once
// returned.
type RawFile struct {
	Path      string
	Rows      []schema.RawRow
	Status    string
	Encoding  string
	Delimiter string
	Err       string
}

// Discover returns the sorted, deduplicated set of .csv/.tsv/.xlsx files
// under dir, recursively. A missing directory yields an empty set.
func Discover(dir string) []string {
	var files []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".tsv", ".xlsx":
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	out := files[:0]
	for i, f := range files {
		if i == 0 || f != files[i-1] {
			out = append(out, f)
		}
	}
	return out
}

// LoadAll loads every discovered file under dir. Column names are normalized
// on the way in, so downstream stages only ever see header tokens.
func LoadAll(dir string, logger *log.Logger) []RawFile {
	var records []RawFile
	for _, path := range Discover(dir) {
		var (
			rows []schema.RawRow
			enc  string
			sep  string
			err  error
		)
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			rows, err = readXLSX(path)
			enc, sep = "binary", "n/a"
		} else {
			rows, enc, sep, err = readDelimited(path)
		}
		if err != nil {
			records = append(records, RawFile{Path: path, Status: StatusFailed, Err: err.Error()})
			logger.Printf("Load failed file=%s error=%v", path, err)
			continue
		}
		records = append(records, RawFile{
			Path:      path,
			Rows:      rows,
			Status:    StatusSuccess,
			Encoding:  enc,
			Delimiter: sep,
		})
		logger.Printf("Loaded file=%s rows=%d", path, len(rows))
	}
	return records
}

// buildRows zips a header row with data rows into normalized-key RawRows.
// Cells beyond the header width are dropped; short rows pad with "". When
// two headers normalize to the same token the later column wins.
func buildRows(head []string, data [][]string) []schema.RawRow {
	tokens := header.NormalizeAll(head)
	out := make([]schema.RawRow, 0, len(data))
	for _, cells := range data {
		row := make(schema.RawRow, len(tokens))
		for i, tok := range tokens {
			if i < len(cells) {
				row[tok] = cells[i]
			} else {
				row[tok] = ""
			}
		}
		out = append(out, row)
	}
	return out
}

// AllColumns returns the sorted union of column tokens across the successful
// files, the input to mapping suggestion.
func AllColumns(files []RawFile) []string {
	seen := make(map[string]struct{})
	for _, f := range files {
		for _, r := range f.Rows {
			for c := range r {
				seen[c] = struct{}{}
			}
		}
	}
	cols := make([]string, 0, len(seen))
	for c := range seen {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
