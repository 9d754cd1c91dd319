// Package schema defines the canonical record every source file is mapped
// into, plus the raw-row lookup abstraction used before mapping.
package schema

import (
	"sort"
	"strconv"

	"github.com/snstools/snsmaster/internal/header"
)

// Canonical field names, in target-schema order. Every source column is
// mapped into one of these or dropped.
var Fields = []string{
	"date",
	"platform",
	"account_name",
	"post_id",
	"post_url",
	"campaign_name",
	"ad_platform",
	"paid_organic",
	"impressions",
	"reach",
	"views",
	"clicks",
	"likes",
	"comments",
	"shares",
	"saves",
	"watch_time_sec",
	"followers_gained",
	"spend",
	"conversions",
	"revenue",
}

// MetricFields are the canonical fields coerced to numbers.
var MetricFields = []string{
	"impressions",
	"reach",
	"views",
	"clicks",
	"likes",
	"comments",
	"shares",
	"saves",
	"watch_time_sec",
	"followers_gained",
	"spend",
	"conversions",
	"revenue",
}

// DerivedFields are the ratio metrics computed after the join.
var DerivedFields = []string{"er", "ctr", "cpm", "cpc", "cpf", "cpv", "roas"}

// RawRow is one parsed input row, keyed by normalized header token.
type RawRow map[string]string

// Get looks up a value by source column name. The key is normalized before
// lookup, so both raw headers and already-normalized tokens resolve.
func (r RawRow) Get(col string) string {
	return r[header.Normalize(col)]
}

// Columns returns the row's column tokens in sorted order.
func (r RawRow) Columns() []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Record is a canonical per-post daily record. String fields hold "" for
// absent, metric fields hold nil for absent; nil is never conflated with zero.
type Record struct {
	Date         string
	Platform     string
	AccountName  string
	PostID       string
	PostURL      string
	CampaignName string
	AdPlatform   string
	PaidOrganic  string

	Impressions     *float64
	Reach           *float64
	Views           *float64
	Clicks          *float64
	Likes           *float64
	Comments        *float64
	Shares          *float64
	Saves           *float64
	WatchTimeSec    *float64
	FollowersGained *float64
	Spend           *float64
	Conversions     *float64
	Revenue         *float64

	SourceFile string
	SourceRow  int
	PostKey    string

	JoinConfidence string

	ER   *float64
	CTR  *float64
	CPM  *float64
	CPC  *float64
	CPF  *float64
	CPV  *float64
	ROAS *float64
}

// ErrorRow is a record that failed validation, with the reason it was
// excluded from the master dataset.
type ErrorRow struct {
	Record
	Reason string
}

// Field returns a string-typed canonical field by name.
func (r *Record) Field(name string) string {
	switch name {
	case "date":
		return r.Date
	case "platform":
		return r.Platform
	case "account_name":
		return r.AccountName
	case "post_id":
		return r.PostID
	case "post_url":
		return r.PostURL
	case "campaign_name":
		return r.CampaignName
	case "ad_platform":
		return r.AdPlatform
	case "paid_organic":
		return r.PaidOrganic
	}
	return ""
}

// SetField assigns a string-typed canonical field by name. Unknown names are
// ignored.
func (r *Record) SetField(name, v string) {
	switch name {
	case "date":
		r.Date = v
	case "platform":
		r.Platform = v
	case "account_name":
		r.AccountName = v
	case "post_id":
		r.PostID = v
	case "post_url":
		r.PostURL = v
	case "campaign_name":
		r.CampaignName = v
	case "ad_platform":
		r.AdPlatform = v
	case "paid_organic":
		r.PaidOrganic = v
	}
}

// Metric returns a numeric field (source or derived) by name, nil if absent
// or unknown.
func (r *Record) Metric(name string) *float64 {
	switch name {
	case "impressions":
		return r.Impressions
	case "reach":
		return r.Reach
	case "views":
		return r.Views
	case "clicks":
		return r.Clicks
	case "likes":
		return r.Likes
	case "comments":
		return r.Comments
	case "shares":
		return r.Shares
	case "saves":
		return r.Saves
	case "watch_time_sec":
		return r.WatchTimeSec
	case "followers_gained":
		return r.FollowersGained
	case "spend":
		return r.Spend
	case "conversions":
		return r.Conversions
	case "revenue":
		return r.Revenue
	case "er":
		return r.ER
	case "ctr":
		return r.CTR
	case "cpm":
		return r.CPM
	case "cpc":
		return r.CPC
	case "cpf":
		return r.CPF
	case "cpv":
		return r.CPV
	case "roas":
		return r.ROAS
	}
	return nil
}

// SetMetric assigns a numeric field by name. Unknown names are ignored.
func (r *Record) SetMetric(name string, v *float64) {
	switch name {
	case "impressions":
		r.Impressions = v
	case "reach":
		r.Reach = v
	case "views":
		r.Views = v
	case "clicks":
		r.Clicks = v
	case "comments":
		r.Comments = v
	case "likes":
		r.Likes = v
	case "shares":
		r.Shares = v
	case "saves":
		r.Saves = v
	case "watch_time_sec":
		r.WatchTimeSec = v
	case "followers_gained":
		r.FollowersGained = v
	case "spend":
		r.Spend = v
	case "conversions":
		r.Conversions = v
	case "revenue":
		r.Revenue = v
	case "er":
		r.ER = v
	case "ctr":
		r.CTR = v
	case "cpm":
		r.CPM = v
	case "cpc":
		r.CPC = v
	case "cpf":
		r.CPF = v
	case "cpv":
		r.CPV = v
	case "roas":
		r.ROAS = v
	}
}

// FormatFloat renders a metric value for CSV output.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// BaseMap renders the canonical and provenance fields as CSV cell strings.
// Absent values render as empty cells.
func (r *Record) BaseMap() map[string]string {
	m := make(map[string]string, len(Fields)+3)
	for _, f := range Fields {
		m[f] = r.Field(f)
	}
	for _, f := range MetricFields {
		if v := r.Metric(f); v != nil {
			m[f] = FormatFloat(*v)
		}
	}
	m["source_file"] = r.SourceFile
	m["source_row_number"] = strconv.Itoa(r.SourceRow)
	m["post_key"] = r.PostKey
	return m
}

// NumericValues returns every numeric column of the record, including the
// derived metrics and the source row number, for use in sum aggregations.
func (r *Record) NumericValues() map[string]float64 {
	out := make(map[string]float64)
	for _, f := range MetricFields {
		if v := r.Metric(f); v != nil {
			out[f] = *v
		}
	}
	for _, f := range DerivedFields {
		if v := r.Metric(f); v != nil {
			out[f] = *v
		}
	}
	out["source_row_number"] = float64(r.SourceRow)
	return out
}
