// Package classify decides whether an input file carries organic post data
// or paid-ad data, from column-name evidence alone.
package classify

import "fmt"

// File types assigned by Classify.
const (
	TypeOrganic = "organic_post_data"
	TypeAd      = "ad_data"
	TypeUnknown = "unknown"
)

// organicHints and adHints are disjoint vocabularies of normalized column
// tokens. English and Japanese terms are both first-class; lookup is exact
// set membership, no further normalization.
var organicHints = map[string]struct{}{
	"likes":           {},
	"comments":        {},
	"shares":          {},
	"saves":           {},
	"watchtime":       {},
	"posturl":         {},
	"postid":          {},
	"followersgained": {},
	"いいね":            {},
	"コメント":           {},
	"シェア":            {},
	"保存":              {},
	"投稿url":           {},
}

var adHints = map[string]struct{}{
	"spend":       {},
	"campaign":    {},
	"adset":       {},
	"clicks":      {},
	"impressions": {},
	"cpm":         {},
	"cpc":         {},
	"広告費":         {},
	"キャンペーン":      {},
	"クリック":        {},
	"表示回数":        {},
}

// Result is a classification verdict with an auditable reason.
type Result struct {
	FileType string
	Reason   string
}

// Classify scores a column set against both hint vocabularies. Files with no
// hint columns at all are unknown; otherwise the higher score wins, with
// ties going to organic.
func Classify(columns []string) Result {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		seen[c] = struct{}{}
	}
	organicScore, adScore := 0, 0
	for c := range seen {
		if _, ok := organicHints[c]; ok {
			organicScore++
		}
		if _, ok := adHints[c]; ok {
			adScore++
		}
	}
	if organicScore == 0 && adScore == 0 {
		return Result{TypeUnknown, "No organic/ad hint columns found"}
	}
	reason := fmt.Sprintf("organic_score=%d, ad_score=%d", organicScore, adScore)
	if organicScore >= adScore {
		return Result{TypeOrganic, reason}
	}
	return Result{TypeAd, reason}
}
