package join

import (
	"testing"

	"github.com/snstools/snsmaster/internal/schema"
)

func f(v float64) *float64 { return &v }

func TestJoinHighConfidenceByID(t *testing.T) {
	organic := []schema.Record{
		{Platform: "instagram", PostID: "p1", Date: "2024-01-01", Likes: f(10)},
	}
	ads := []schema.Record{
		{Platform: "instagram", PostID: "p1", Date: "2024-01-01", Spend: f(500), CampaignName: "spring"},
	}

	out := Join(organic, ads)

	if len(out) != 1 {
		t.Fatalf("got %d records", len(out))
	}
	r := out[0]
	if r.JoinConfidence != ConfidenceHigh {
		t.Errorf("JoinConfidence = %q", r.JoinConfidence)
	}
	if r.Spend == nil || *r.Spend != 500 {
		t.Errorf("Spend = %v", r.Spend)
	}
	if r.CampaignName != "spring" {
		t.Errorf("CampaignName = %q", r.CampaignName)
	}
}

func TestJoinIDBeatsURL(t *testing.T) {
	organic := []schema.Record{
		{Platform: "instagram", PostID: "p1", PostURL: "instagram.com/p/x", Date: "2024-01-01"},
	}
	ads := []schema.Record{
		{Platform: "instagram", PostID: "other", PostURL: "https://instagram.com/p/x/", Spend: f(1)},
		{Platform: "instagram", PostID: "p1", Spend: f(2)},
	}

	out := Join(organic, ads)

	if out[0].JoinConfidence != ConfidenceHigh {
		t.Errorf("JoinConfidence = %q, want %q", out[0].JoinConfidence, ConfidenceHigh)
	}
	if out[0].Spend == nil || *out[0].Spend != 2 {
		t.Errorf("Spend = %v, want the ID-matched ad's spend", out[0].Spend)
	}
}

func TestJoinMediumConfidenceByURL(t *testing.T) {
	organic := []schema.Record{
		{Platform: "instagram", PostURL: "instagram.com/p/x", Date: "2024-01-01"},
	}
	ads := []schema.Record{
		{Platform: "instagram", PostID: "a9", PostURL: "https://Instagram.com/p/X/", Spend: f(3)},
	}

	out := Join(organic, ads)

	if out[0].JoinConfidence != ConfidenceMedium {
		t.Errorf("JoinConfidence = %q", out[0].JoinConfidence)
	}
	if out[0].Spend == nil || *out[0].Spend != 3 {
		t.Errorf("Spend = %v", out[0].Spend)
	}
}

func TestJoinLowConfidenceByCampaign(t *testing.T) {
	organic := []schema.Record{
		{Platform: "tiktok", Date: "2024-01-05", CampaignName: "launch"},
	}
	ads := []schema.Record{
		{Platform: "tiktok", Date: "2024-01-05", CampaignName: "launch", Clicks: f(40)},
	}

	out := Join(organic, ads)

	if out[0].JoinConfidence != ConfidenceLow {
		t.Errorf("JoinConfidence = %q", out[0].JoinConfidence)
	}
	if out[0].Clicks == nil || *out[0].Clicks != 40 {
		t.Errorf("Clicks = %v", out[0].Clicks)
	}
}

func TestJoinUnmatched(t *testing.T) {
	organic := []schema.Record{
		{Platform: "youtube", PostID: "v1", Date: "2024-01-01"},
	}
	ads := []schema.Record{
		{Platform: "tiktok", PostID: "v1", Date: "2024-01-01"},
	}

	out := Join(organic, ads)

	if out[0].JoinConfidence != ConfidenceUnmatched {
		t.Errorf("JoinConfidence = %q", out[0].JoinConfidence)
	}
}

func TestJoinNoOverwrite(t *testing.T) {
	organic := []schema.Record{
		{Platform: "instagram", PostID: "p1", Date: "2024-01-01", Impressions: f(999), AccountName: "brand"},
	}
	ads := []schema.Record{
		{Platform: "instagram", PostID: "p1", Impressions: f(100), AccountName: "agency"},
	}

	out := Join(organic, ads)

	if *out[0].Impressions != 999 {
		t.Errorf("Impressions = %v, organic value must survive", *out[0].Impressions)
	}
	if out[0].AccountName != "brand" {
		t.Errorf("AccountName = %q, organic value must survive", out[0].AccountName)
	}
}

func TestJoinFirstAdWinsPerKey(t *testing.T) {
	organic := []schema.Record{
		{Platform: "instagram", PostID: "p1", Date: "2024-01-01"},
	}
	ads := []schema.Record{
		{Platform: "instagram", PostID: "p1", Spend: f(1)},
		{Platform: "instagram", PostID: "p1", Spend: f(2)},
	}

	out := Join(organic, ads)

	if *out[0].Spend != 1 {
		t.Errorf("Spend = %v, first ad per key should win", *out[0].Spend)
	}
}

func TestJoinReusesAdAcrossOrganicRows(t *testing.T) {
	organic := []schema.Record{
		{Platform: "instagram", PostID: "p1", Date: "2024-01-01"},
		{Platform: "instagram", PostID: "p1", Date: "2024-01-02"},
	}
	ads := []schema.Record{
		{Platform: "instagram", PostID: "p1", Spend: f(7)},
	}

	out := Join(organic, ads)

	for i, r := range out {
		if r.Spend == nil || *r.Spend != 7 {
			t.Errorf("row %d Spend = %v, every matching organic row draws the ad", i, r.Spend)
		}
	}
}

func TestJoinAdsPassThroughWithoutOrganic(t *testing.T) {
	out := Join(nil, []schema.Record{
		{Platform: "tiktok", PostID: "a1", Date: "2024-01-01", Spend: f(5)},
	})

	if len(out) != 1 {
		t.Fatalf("got %d records", len(out))
	}
	if out[0].JoinConfidence != ConfidenceUnmatched {
		t.Errorf("JoinConfidence = %q", out[0].JoinConfidence)
	}
	if *out[0].Spend != 5 {
		t.Errorf("Spend = %v", *out[0].Spend)
	}
}
