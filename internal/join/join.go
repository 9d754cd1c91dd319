// Package join merges organic post records with their best-matching ad
// records using a tiered key-priority strategy.
package join

import (
	"github.com/snstools/snsmaster/internal/coerce"
	"github.com/snstools/snsmaster/internal/schema"
)

// Join confidence labels, from strongest key tier to no match.
const (
	ConfidenceHigh      = "high"
	ConfidenceMedium    = "medium"
	ConfidenceLow       = "low"
	ConfidenceUnmatched = "unmatched"
)

type idKey struct {
	platform string
	postID   string
}

type fallbackKey struct {
	platform string
	date     string
	campaign string
}

// Join matches each organic record against the ad pool, probing three key
// tiers in priority order: (platform, post_id), then normalized post URL,
// then (platform, date, campaign). Each index keeps the first ad row seen
// per key; later duplicates are shadowed. Matched ad fields fill only empty
// organic fields, never overwrite. The matching is greedy and one-pass —
// several organic rows may draw from the same ad row, and ad rows may go
// unconsumed.
//
// With no organic records at all, the ad records pass through unmatched.
func Join(organic, ads []schema.Record) []schema.Record {
	if len(organic) == 0 {
		out := make([]schema.Record, len(ads))
		for i, a := range ads {
			a.JoinConfidence = ConfidenceUnmatched
			out[i] = a
		}
		return out
	}

	byID := make(map[idKey]*schema.Record)
	byURL := make(map[string]*schema.Record)
	byCampaign := make(map[fallbackKey]*schema.Record)
	for i := range ads {
		a := &ads[i]
		if k := (idKey{a.Platform, a.PostID}); byID[k] == nil {
			byID[k] = a
		}
		if k := coerce.URL(a.PostURL); byURL[k] == nil {
			byURL[k] = a
		}
		if k := (fallbackKey{a.Platform, a.Date, a.CampaignName}); byCampaign[k] == nil {
			byCampaign[k] = a
		}
	}

	out := make([]schema.Record, 0, len(organic))
	for _, o := range organic {
		merged := o
		var match *schema.Record
		conf := ConfidenceUnmatched

		if o.PostID != "" {
			if m := byID[idKey{o.Platform, o.PostID}]; m != nil {
				match, conf = m, ConfidenceHigh
			}
		}
		if match == nil && o.PostURL != "" {
			if m := byURL[coerce.URL(o.PostURL)]; m != nil {
				match, conf = m, ConfidenceMedium
			}
		}
		if match == nil {
			if m := byCampaign[fallbackKey{o.Platform, o.Date, o.CampaignName}]; m != nil {
				match, conf = m, ConfidenceLow
			}
		}

		if match != nil {
			fillEmpty(&merged, match)
		}
		merged.JoinConfidence = conf
		out = append(out, merged)
	}
	return out
}

// fillEmpty copies every non-empty field of src into dst wherever dst has no
// value yet.
func fillEmpty(dst, src *schema.Record) {
	for _, f := range schema.Fields {
		if dst.Field(f) == "" && src.Field(f) != "" {
			dst.SetField(f, src.Field(f))
		}
	}
	for _, f := range schema.MetricFields {
		if dst.Metric(f) == nil && src.Metric(f) != nil {
			dst.SetMetric(f, src.Metric(f))
		}
	}
}
