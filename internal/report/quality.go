package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/snstools/snsmaster/internal/join"
	"github.com/snstools/snsmaster/internal/schema"
)

// keyColumns are the fields whose missing rate is tracked in the quality
// report.
var keyColumns = []string{"date", "platform", "post_id", "impressions", "clicks", "spend"}

var confidenceOrder = []string{
	join.ConfidenceHigh,
	join.ConfidenceMedium,
	join.ConfidenceLow,
	join.ConfidenceUnmatched,
}

// MissingRate is the share of output rows missing one key column.
type MissingRate struct {
	Column string
	Rate   float64
}

// Summary holds the quality metrics of one run. It is computed fresh every
// run and never persisted as part of the dataset.
type Summary struct {
	TotalFiles   int
	SuccessFiles int
	FailedFiles  int

	InputRows  int
	OutputRows int
	ErrorRows  int

	DuplicatePostKeys int
	Confidence        map[string]int
	Unmatched         int
	MissingRates      []MissingRate
	NegativeSpend     int
	Unknown           []UnknownFile
}

// Summarize computes the quality metrics for a finished run.
func Summarize(totalFiles, successFiles, failedFiles, inputRows int, rows []schema.Record, errRows []schema.ErrorRow, unknown []UnknownFile) *Summary {
	s := &Summary{
		TotalFiles:   totalFiles,
		SuccessFiles: successFiles,
		FailedFiles:  failedFiles,
		InputRows:    inputRows,
		OutputRows:   len(rows),
		ErrorRows:    len(errRows),
		Confidence:   map[string]int{},
		Unknown:      unknown,
	}

	seenKeys := make(map[string]struct{}, len(rows))
	for i := range rows {
		r := &rows[i]
		if r.PostKey != "" {
			if _, dup := seenKeys[r.PostKey]; dup {
				s.DuplicatePostKeys++
			}
			seenKeys[r.PostKey] = struct{}{}
		}
		conf := r.JoinConfidence
		if conf == "" {
			conf = join.ConfidenceUnmatched
		}
		s.Confidence[conf]++
		if r.Spend != nil && *r.Spend < 0 {
			s.NegativeSpend++
		}
	}
	s.Unmatched = s.Confidence[join.ConfidenceUnmatched]

	for _, col := range keyColumns {
		// With no output rows at all every key column counts as fully missing.
		rate := 1.0
		if len(rows) > 0 {
			missing := 0
			for i := range rows {
				if fieldEmpty(&rows[i], col) {
					missing++
				}
			}
			rate = float64(missing) / float64(len(rows))
		}
		s.MissingRates = append(s.MissingRates, MissingRate{Column: col, Rate: rate})
	}
	return s
}

func fieldEmpty(r *schema.Record, col string) bool {
	for _, f := range schema.MetricFields {
		if f == col {
			return r.Metric(col) == nil
		}
	}
	return r.Field(col) == ""
}

// RenderQualityReport renders the human-readable quality report as Markdown.
func RenderQualityReport(s *Summary) string {
	var b strings.Builder
	b.WriteString("# Data Quality Report\n")
	fmt.Fprintf(&b, "- 読み込みファイル数: %d\n", s.TotalFiles)
	fmt.Fprintf(&b, "- 成功: %d\n", s.SuccessFiles)
	fmt.Fprintf(&b, "- 失敗: %d\n", s.FailedFiles)
	b.WriteString("\n## unknown分類ファイル一覧\n")
	if len(s.Unknown) == 0 {
		b.WriteString("- なし\n")
	}
	for _, u := range s.Unknown {
		fmt.Fprintf(&b, "- %s: %s\n", u.Path, u.Reason)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- 入力行数: %d\n", s.InputRows)
	fmt.Fprintf(&b, "- 出力行数: %d\n", s.OutputRows)
	fmt.Fprintf(&b, "- 重複件数（post_key）: %d\n", s.DuplicatePostKeys)
	b.WriteString("\n## 主要列欠損率\n")
	for _, m := range s.MissingRates {
		fmt.Fprintf(&b, "- %s: %.2f%%\n", m.Column, m.Rate*100)
	}
	b.WriteString("\n## join_confidence 内訳\n")
	for _, conf := range confidenceOrder {
		if n, ok := s.Confidence[conf]; ok {
			fmt.Fprintf(&b, "- %s: %d\n", conf, n)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- 異常値件数（負のspend等）: %d\n", s.NegativeSpend)
	b.WriteString("\n## 推奨アクション（運用改善）\n")
	b.WriteString("- mapping.yaml の date を見直す\n")
	b.WriteString("- mapping.yaml の post_id を見直す\n")
	b.WriteString("- mapping.yaml の campaign_name を見直す\n")
	return b.String()
}

// WriteQualityReport writes the rendered report into the output directory.
func WriteQualityReport(outDir string, s *Summary) error {
	path := filepath.Join(outDir, QualityReportFile)
	if err := os.WriteFile(path, []byte(RenderQualityReport(s)), 0o644); err != nil {
		return fmt.Errorf("writing quality report: %w", err)
	}
	return nil
}
