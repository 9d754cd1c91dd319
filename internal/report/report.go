// Package report aggregates final records into the output artifacts: the
// master dataset, summary tables, error and unknown-file reports, and the
// data-quality report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/snstools/snsmaster/internal/schema"
)

// Output artifact file names, fixed per run.
const (
	MasterFile         = "master_posts_daily.csv"
	ParquetPlaceholder = "master_posts_daily.parquet"
	SummaryByDate      = "summary_by_date.csv"
	SummaryByPlatform  = "summary_by_platform.csv"
	SummaryByCampaign  = "summary_by_campaign.csv"
	TopPostsFile       = "top_posts_30d.csv"
	ErrorRowsFile      = "error_rows.csv"
	UnknownFilesFile   = "unknown_files.csv"
	QualityReportFile  = "data_quality_report.md"
	RunLogFile         = "run_log.txt"
)

const topPostsLimit = 30

// UnknownFile is a file excluded from the master dataset, with the reason.
type UnknownFile struct {
	Path   string
	Reason string
}

// WriteOutputs writes every CSV artifact plus the columnar-export
// placeholder. Artifact names are fixed; each is written exactly once.
func WriteOutputs(outDir string, rows []schema.Record, errRows []schema.ErrorRow, unknown []UnknownFile) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := WriteCSV(filepath.Join(outDir, MasterFile), masterMaps(rows), nil); err != nil {
		return err
	}
	placeholder := "parquet export skipped: columnar export not available in this environment\n"
	if err := os.WriteFile(filepath.Join(outDir, ParquetPlaceholder), []byte(placeholder), 0o644); err != nil {
		return fmt.Errorf("writing parquet placeholder: %w", err)
	}

	if err := WriteCSV(filepath.Join(outDir, SummaryByDate), groupSum(rows, "date"), nil); err != nil {
		return err
	}
	if err := WriteCSV(filepath.Join(outDir, SummaryByPlatform), groupSum(rows, "platform"), nil); err != nil {
		return err
	}
	if err := WriteCSV(filepath.Join(outDir, SummaryByCampaign), groupSum(rows, "campaign_name"), nil); err != nil {
		return err
	}
	if err := WriteCSV(filepath.Join(outDir, TopPostsFile), masterMaps(topByImpressions(rows)), nil); err != nil {
		return err
	}

	errMaps := make([]map[string]string, 0, len(errRows))
	for i := range errRows {
		m := errRows[i].BaseMap()
		m["error_reason"] = errRows[i].Reason
		errMaps = append(errMaps, m)
	}
	if err := WriteCSV(filepath.Join(outDir, ErrorRowsFile), errMaps, nil); err != nil {
		return err
	}

	unknownMaps := make([]map[string]string, 0, len(unknown))
	for _, u := range unknown {
		unknownMaps = append(unknownMaps, map[string]string{"path": u.Path, "reason": u.Reason})
	}
	return WriteCSV(filepath.Join(outDir, UnknownFilesFile), unknownMaps, nil)
}

func masterMaps(rows []schema.Record) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for i := range rows {
		m := rows[i].BaseMap()
		m["join_confidence"] = rows[i].JoinConfidence
		for _, f := range schema.DerivedFields {
			if v := rows[i].Metric(f); v != nil {
				m[f] = schema.FormatFloat(*v)
			} else {
				m[f] = ""
			}
		}
		out = append(out, m)
	}
	return out
}

// groupSum aggregates every numeric column by the given key field. Group
// rows appear in first-seen order so reruns on identical input produce
// identical bytes.
func groupSum(rows []schema.Record, key string) []map[string]string {
	order := []string{}
	sums := map[string]map[string]float64{}
	for i := range rows {
		k := rows[i].Field(key)
		agg, ok := sums[k]
		if !ok {
			agg = map[string]float64{}
			sums[k] = agg
			order = append(order, k)
		}
		for col, v := range rows[i].NumericValues() {
			agg[col] += v
		}
	}

	out := make([]map[string]string, 0, len(order))
	for _, k := range order {
		m := map[string]string{key: k}
		for col, v := range sums[k] {
			m[col] = schema.FormatFloat(v)
		}
		out = append(out, m)
	}
	return out
}

// topByImpressions returns the highest-impression rows, descending. Rows
// without impressions rank below everything, behind a zero-impression row.
func topByImpressions(rows []schema.Record) []schema.Record {
	ranked := make([]schema.Record, len(rows))
	copy(ranked, rows)
	imp := func(r *schema.Record) float64 {
		if r.Impressions == nil {
			return -1
		}
		return *r.Impressions
	}
	sort.SliceStable(ranked, func(i, j int) bool { return imp(&ranked[i]) > imp(&ranked[j]) })
	if len(ranked) > topPostsLimit {
		ranked = ranked[:topPostsLimit]
	}
	return ranked
}
