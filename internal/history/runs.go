package history

import (
	"database/sql"
	"fmt"
)

// Run is one recorded pipeline run.
type Run struct {
	ID             int64
	StartedAt      string
	InputDir       string
	TotalFiles     int
	FailedFiles    int
	UnknownFiles   int
	InputRows      int
	OutputRows     int
	ErrorRows      int
	UnmatchedRows  int
	DuplicateKeys  int
	DurationMS     int64
	ReportMarkdown string
}

// Stats contains aggregate run-history statistics.
type Stats struct {
	TotalRuns       int
	TotalOutputRows int
	TotalErrorRows  int
	LastRunAt       string
}

// InsertRun records a finished pipeline run and returns its id.
func (db *DB) InsertRun(r Run) (int64, error) {
	res, err := db.conn.Exec(`
INSERT INTO runs (input_dir, total_files, failed_files, unknown_files,
    input_rows, output_rows, error_rows, unmatched_rows, duplicate_keys,
    duration_ms, report_markdown)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.InputDir, r.TotalFiles, r.FailedFiles, r.UnknownFiles,
		r.InputRows, r.OutputRows, r.ErrorRows, r.UnmatchedRows, r.DuplicateKeys,
		r.DurationMS, r.ReportMarkdown)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
SELECT id, started_at, input_dir, total_files, failed_files, unknown_files,
    input_rows, output_rows, error_rows, unmatched_rows, duplicate_keys,
    duration_ms, COALESCE(report_markdown, '')
FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.InputDir, &r.TotalFiles,
			&r.FailedFiles, &r.UnknownFiles, &r.InputRows, &r.OutputRows,
			&r.ErrorRows, &r.UnmatchedRows, &r.DuplicateKeys, &r.DurationMS,
			&r.ReportMarkdown); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun returns one run by id, or nil when it does not exist.
func (db *DB) GetRun(id int64) (*Run, error) {
	var r Run
	err := db.conn.QueryRow(`
SELECT id, started_at, input_dir, total_files, failed_files, unknown_files,
    input_rows, output_rows, error_rows, unmatched_rows, duplicate_keys,
    duration_ms, COALESCE(report_markdown, '')
FROM runs WHERE id = ?`, id).Scan(&r.ID, &r.StartedAt, &r.InputDir,
		&r.TotalFiles, &r.FailedFiles, &r.UnknownFiles, &r.InputRows,
		&r.OutputRows, &r.ErrorRows, &r.UnmatchedRows, &r.DuplicateKeys,
		&r.DurationMS, &r.ReportMarkdown)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return &r, nil
}

// LatestRun returns the most recent run, or nil when none exist.
func (db *DB) LatestRun() (*Run, error) {
	runs, err := db.ListRuns(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// GetStats returns aggregate statistics over all recorded runs.
func (db *DB) GetStats() (*Stats, error) {
	var s Stats
	err := db.conn.QueryRow(`
SELECT COUNT(*), COALESCE(SUM(output_rows), 0), COALESCE(SUM(error_rows), 0),
    COALESCE(MAX(started_at), '')
FROM runs`).Scan(&s.TotalRuns, &s.TotalOutputRows, &s.TotalErrorRows, &s.LastRunAt)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	return &s, nil
}
