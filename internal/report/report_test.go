package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snstools/snsmaster/internal/join"
	"github.com/snstools/snsmaster/internal/schema"
)

func f(v float64) *float64 { return &v }

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()
	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSVSortedHeaderSuperset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rows := []map[string]string{
		{"b": "1", "a": "2"},
		{"c": "3"},
	}

	require.NoError(t, WriteCSV(path, rows, nil))

	got := readCSV(t, path)
	assert.Equal(t, []string{"a", "b", "c"}, got[0])
	assert.Equal(t, []string{"2", "1", ""}, got[1])
	assert.Equal(t, []string{"", "", "3"}, got[2])
}

func TestWriteCSVExplicitFieldOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rows := []map[string]string{{"a": "1", "b": "2"}}

	require.NoError(t, WriteCSV(path, rows, []string{"b", "a"}))

	got := readCSV(t, path)
	assert.Equal(t, []string{"b", "a"}, got[0])
	assert.Equal(t, []string{"2", "1"}, got[1])
}

func TestWriteOutputsArtifacts(t *testing.T) {
	dir := t.TempDir()
	rows := []schema.Record{
		{
			Date: "2024-01-01", Platform: "instagram", PostKey: "instagram:p1",
			SourceFile: "a.csv", SourceRow: 2,
			Impressions: f(100), Spend: f(50), JoinConfidence: join.ConfidenceHigh,
			CPM: f(500),
		},
		{
			Date: "2024-01-01", Platform: "instagram", PostKey: "instagram:p2",
			SourceFile: "a.csv", SourceRow: 3,
			Impressions: f(300), JoinConfidence: join.ConfidenceUnmatched,
		},
	}
	errRows := []schema.ErrorRow{
		{Record: schema.Record{SourceFile: "a.csv", SourceRow: 4}, Reason: "invalid_date"},
	}
	unknown := []UnknownFile{{Path: "junk.csv", Reason: "No organic/ad hint columns found"}}

	require.NoError(t, WriteOutputs(dir, rows, errRows, unknown))

	for _, name := range []string{
		MasterFile, ParquetPlaceholder,
		SummaryByDate, SummaryByPlatform, SummaryByCampaign,
		TopPostsFile, ErrorRowsFile, UnknownFilesFile,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	master := readCSV(t, filepath.Join(dir, MasterFile))
	require.Len(t, master, 3)
	assert.Contains(t, master[0], "join_confidence")
	assert.Contains(t, master[0], "cpm")
	assert.Contains(t, master[0], "post_key")

	unknownRows := readCSV(t, filepath.Join(dir, UnknownFilesFile))
	require.Len(t, unknownRows, 2)
	assert.Equal(t, []string{"path", "reason"}, unknownRows[0])
}

func TestGroupSumAggregatesAndKeepsFirstSeenOrder(t *testing.T) {
	rows := []schema.Record{
		{Platform: "instagram", Impressions: f(100), SourceRow: 2},
		{Platform: "tiktok", Impressions: f(50), SourceRow: 3},
		{Platform: "instagram", Impressions: f(200), Spend: f(10), SourceRow: 4},
	}

	got := groupSum(rows, "platform")

	require.Len(t, got, 2)
	assert.Equal(t, "instagram", got[0]["platform"])
	assert.Equal(t, "300", got[0]["impressions"])
	assert.Equal(t, "10", got[0]["spend"])
	assert.Equal(t, "tiktok", got[1]["platform"])
	assert.Equal(t, "50", got[1]["impressions"])
}

func TestTopByImpressionsRanking(t *testing.T) {
	rows := []schema.Record{
		{PostKey: "none"},
		{PostKey: "mid", Impressions: f(100)},
		{PostKey: "zero", Impressions: f(0)},
		{PostKey: "top", Impressions: f(900)},
	}

	got := topByImpressions(rows)

	require.Len(t, got, 4)
	assert.Equal(t, "top", got[0].PostKey)
	assert.Equal(t, "mid", got[1].PostKey)
	assert.Equal(t, "zero", got[2].PostKey)
	assert.Equal(t, "none", got[3].PostKey, "rows without impressions rank last")
}

func TestTopByImpressionsLimit(t *testing.T) {
	rows := make([]schema.Record, 45)
	for i := range rows {
		rows[i].Impressions = f(float64(i))
	}

	got := topByImpressions(rows)

	require.Len(t, got, topPostsLimit)
	assert.Equal(t, 44.0, *got[0].Impressions)
}

func TestSummarize(t *testing.T) {
	rows := []schema.Record{
		{Date: "2024-01-01", Platform: "instagram", PostID: "p1", PostKey: "instagram:p1",
			Impressions: f(100), Clicks: f(5), Spend: f(50), JoinConfidence: join.ConfidenceHigh},
		{Date: "2024-01-02", Platform: "instagram", PostKey: "instagram:p1",
			Spend: f(-10), JoinConfidence: join.ConfidenceUnmatched},
	}
	errRows := []schema.ErrorRow{{Reason: "invalid_date"}}

	s := Summarize(3, 2, 1, 5, rows, errRows, nil)

	assert.Equal(t, 3, s.TotalFiles)
	assert.Equal(t, 2, s.SuccessFiles)
	assert.Equal(t, 1, s.FailedFiles)
	assert.Equal(t, 5, s.InputRows)
	assert.Equal(t, 2, s.OutputRows)
	assert.Equal(t, 1, s.ErrorRows)
	assert.Equal(t, 1, s.DuplicatePostKeys)
	assert.Equal(t, 1, s.Confidence[join.ConfidenceHigh])
	assert.Equal(t, 1, s.Unmatched)
	assert.Equal(t, 1, s.NegativeSpend)

	rates := map[string]float64{}
	for _, m := range s.MissingRates {
		rates[m.Column] = m.Rate
	}
	assert.Equal(t, 0.0, rates["date"])
	assert.Equal(t, 0.5, rates["post_id"])
	assert.Equal(t, 0.5, rates["impressions"])
	assert.Equal(t, 0.0, rates["spend"])
}

func TestSummarizeEmptyRun(t *testing.T) {
	s := Summarize(0, 0, 0, 0, nil, nil, nil)

	for _, m := range s.MissingRates {
		assert.Equal(t, 1.0, m.Rate, m.Column)
	}
	assert.Zero(t, s.DuplicatePostKeys)
}

func TestRenderQualityReport(t *testing.T) {
	s := Summarize(2, 2, 0, 4,
		[]schema.Record{
			{Date: "2024-01-01", Platform: "instagram", PostKey: "instagram:p1", JoinConfidence: join.ConfidenceHigh},
		},
		nil,
		[]UnknownFile{{Path: "misc.csv", Reason: "No organic/ad hint columns found"}})

	md := RenderQualityReport(s)

	assert.Contains(t, md, "# Data Quality Report")
	assert.Contains(t, md, "- 読み込みファイル数: 2")
	assert.Contains(t, md, "## unknown分類ファイル一覧")
	assert.Contains(t, md, "- misc.csv: No organic/ad hint columns found")
	assert.Contains(t, md, "- 入力行数: 4")
	assert.Contains(t, md, "- 重複件数（post_key）: 0")
	assert.Contains(t, md, "## 主要列欠損率")
	assert.Contains(t, md, "- spend: 100.00%")
	assert.Contains(t, md, "## join_confidence 内訳")
	assert.Contains(t, md, "- high: 1")
	assert.NotContains(t, md, "- medium:")
	assert.Contains(t, md, "## 推奨アクション（運用改善）")
}

func TestRenderQualityReportNoUnknownFiles(t *testing.T) {
	md := RenderQualityReport(Summarize(1, 1, 0, 0, nil, nil, nil))
	assert.Contains(t, md, "- なし")
}
