// Package metrics computes derived ratio metrics on merged records.
package metrics

import (
	"github.com/snstools/snsmaster/internal/coerce"
	"github.com/snstools/snsmaster/internal/schema"
)

// Enrich computes the derived metrics for one record and returns the
// enriched copy. Absent operands propagate to absent results; nothing here
// ever fails. The engagement sum alone treats absent as zero.
func Enrich(r schema.Record) schema.Record {
	engagement := orZero(r.Likes) + orZero(r.Comments) + orZero(r.Shares) + orZero(r.Saves)

	r.ER = coerce.SafeDiv(&engagement, r.Impressions)
	r.CTR = coerce.SafeDiv(r.Clicks, r.Impressions)
	r.CPM = coerce.SafeDiv(scale(r.Spend, 1000), r.Impressions)
	r.CPC = coerce.SafeDiv(r.Spend, r.Clicks)
	r.CPF = coerce.SafeDiv(r.Spend, r.FollowersGained)
	r.CPV = coerce.SafeDiv(r.Spend, r.Views)
	r.ROAS = coerce.SafeDiv(r.Revenue, r.Spend)
	return r
}

// EnrichAll enriches a batch, preserving order.
func EnrichAll(rows []schema.Record) []schema.Record {
	out := make([]schema.Record, len(rows))
	for i, r := range rows {
		out[i] = Enrich(r)
	}
	return out
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func scale(v *float64, by float64) *float64 {
	if v == nil {
		return nil
	}
	s := *v * by
	return &s
}
