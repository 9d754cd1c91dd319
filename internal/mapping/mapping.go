// Package mapping resolves which source column feeds each canonical field.
// A mapping is suggested from header synonyms on first contact, persisted for
// human correction, and treated as authoritative once a primary file exists.
package mapping

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/snstools/snsmaster/internal/header"
	"github.com/snstools/snsmaster/internal/schema"
)

// File names inside the mapping config directory. The primary file is the
// human-editable override surface; the suggested file is advisory only and
// rewritten on every run that has no primary.
const (
	PrimaryFile   = "mapping.yaml"
	SuggestedFile = "mapping.suggested.yaml"
)

// synonyms lists, per canonical field, the header tokens that identify it.
// Entries are normalized before comparison, so both raw and token forms work.
var synonyms = map[string][]string{
	"date":             {"date", "day", "投稿日", "createdat", "datetime", "日時"},
	"platform":         {"platform", "媒体", "sns", "channel"},
	"account_name":     {"account", "accountname", "アカウント", "アカウント名"},
	"post_id":          {"postid", "mediaid", "投稿id", "videoid"},
	"post_url":         {"posturl", "url", "投稿url", "permalink", "リンク"},
	"campaign_name":    {"campaign", "campaignname", "キャンペーン", "キャンペーン名"},
	"ad_platform":      {"adplatform", "広告媒体", "adsource"},
	"paid_organic":     {"paidorganic", "種別", "配信種別"},
	"impressions":      {"impressions", "imp", "表示回数"},
	"reach":            {"reach", "リーチ"},
	"views":            {"views", "再生数", "視聴回数"},
	"clicks":           {"clicks", "クリック"},
	"likes":            {"likes", "いいね"},
	"comments":         {"comments", "コメント"},
	"shares":           {"shares", "シェア"},
	"saves":            {"saves", "保存"},
	"watch_time_sec":   {"watchtime", "watchtimesec", "視聴時間"},
	"followers_gained": {"followersgained", "フォロワー増加"},
	"spend":            {"spend", "cost", "広告費", "消化金額"},
	"conversions":      {"conversions", "cv", "コンバージョン"},
	"revenue":          {"revenue", "sales", "売上", "購入金額"},
}

// Suggest derives a mapping from the observed columns. An exact normalized
// token match scores 100 and wins immediately in column order; a substring
// containment in either direction scores 80. A field with no match at any
// score stays unmapped.
func Suggest(columns []string) map[string]string {
	out := make(map[string]string)
	normCols := make([]string, len(columns))
	for i, c := range columns {
		normCols[i] = header.Normalize(c)
	}
	for _, target := range schema.Fields {
		syns := header.NormalizeAll(synonyms[target])
		best := ""
		bestScore := 0
		for i, raw := range columns {
			nc := normCols[i]
			if exactMatch(syns, nc) {
				best, bestScore = raw, 100
				break
			}
			if bestScore < 80 && substringMatch(syns, nc) {
				best, bestScore = raw, 80
			}
		}
		if best != "" {
			out[target] = best
		}
	}
	return out
}

func exactMatch(syns []string, col string) bool {
	for _, s := range syns {
		if s == col {
			return true
		}
	}
	return false
}

func substringMatch(syns []string, col string) bool {
	if col == "" {
		return false
	}
	for _, s := range syns {
		if strings.Contains(col, s) || strings.Contains(s, col) {
			return true
		}
	}
	return false
}

// Load resolves the mapping for a run. The primary file, when present, is
// returned verbatim and never rewritten. Otherwise the suggestion is
// persisted as advisory output and, only with applySuggested, promoted to
// primary and used; without promotion the run proceeds with an empty mapping.
func Load(configDir string, applySuggested bool, allColumns []string, logger *log.Logger) (map[string]string, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	primary := filepath.Join(configDir, PrimaryFile)
	suggested := filepath.Join(configDir, SuggestedFile)

	if _, err := os.Stat(primary); err == nil {
		m, err := ReadFile(primary)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", PrimaryFile, err)
		}
		logger.Printf("Using %s", PrimaryFile)
		return m, nil
	}

	sg := Suggest(allColumns)
	if err := WriteFile(suggested, sg); err != nil {
		return nil, fmt.Errorf("writing %s: %w", SuggestedFile, err)
	}
	logger.Printf("Generated %s", SuggestedFile)

	if applySuggested {
		if err := WriteFile(primary, sg); err != nil {
			return nil, fmt.Errorf("writing %s: %w", PrimaryFile, err)
		}
		logger.Printf("Promoted suggested mapping to %s", PrimaryFile)
		return sg, nil
	}
	return map[string]string{}, nil
}
