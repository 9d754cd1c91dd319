// Package coerce holds the pure value-coercion functions shared by the
// normalization and metrics stages. All of them are total: bad input yields
// an absent result (nil or ""), never an error or a zero stand-in.
package coerce

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Reporting is the fixed reporting timezone (UTC+9). Every parsed timestamp
// is converted into it before being truncated to a calendar date.
var Reporting = time.FixedZone("JST", 9*60*60)

// dateLayouts are tried in order; the first successful parse wins. The
// RFC 3339 layout covers explicit offsets and a trailing Z; the rest are
// naive and assumed UTC.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

var schemePrefix = regexp.MustCompile(`^https?://`)

// SafeDiv divides two optional values. The result is absent when either
// operand is absent or the denominator is zero. It never fails.
func SafeDiv(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den
	return &v
}

// ToFloat parses a numeric string, tolerating thousands separators.
// Unparseable or empty input yields nil, never zero.
func ToFloat(s string) *float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	t = strings.ReplaceAll(t, ",", "")
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Platform normalizes an organic platform name by substring match. Anything
// not recognized becomes "unknown"; raw text never leaks through.
func Platform(value string) string {
	v := strings.ToLower(value)
	switch {
	case strings.Contains(v, "insta"):
		return "instagram"
	case strings.Contains(v, "tiktok"), strings.Contains(v, "tik tok"):
		return "tiktok"
	case strings.Contains(v, "youtube"):
		return "youtube"
	}
	return "unknown"
}

// AdPlatform normalizes a paid-media platform name. Empty, "none", and
// "organic" all mean no paid source; any other unrecognized value is "other".
func AdPlatform(value string) string {
	v := strings.ToLower(value)
	switch {
	case strings.Contains(v, "meta"), strings.Contains(v, "facebook"), strings.Contains(v, "instagram ads"):
		return "meta"
	case strings.Contains(v, "tiktok"):
		return "tiktok_ads"
	case strings.Contains(v, "google"):
		return "google_ads"
	case v == "" || v == "none" || v == "organic":
		return "none"
	}
	return "other"
}

// URL normalizes a post URL for matching: lower-cased, scheme stripped,
// trailing slashes removed. Empty input stays empty.
func URL(u string) string {
	t := strings.ToLower(strings.TrimSpace(u))
	t = schemePrefix.ReplaceAllString(t, "")
	return strings.TrimRight(t, "/")
}

// ParseDate parses a date or datetime string into an ISO calendar date in
// the reporting timezone. Naive timestamps are assumed UTC. Returns "" when
// no layout matches.
func ParseDate(value string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		dt, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return dt.In(Reporting).Format("2006-01-02")
	}
	return ""
}

// PostKey builds the deterministic post identifier. Posts with an ID key on
// platform and ID; posts without one key on a short content hash of the
// normalized URL, falling back to a fixed token when even the URL is absent.
func PostKey(platform, postID, postURL string) string {
	p := Platform(platform)
	if id := strings.TrimSpace(postID); id != "" {
		return p + ":" + id
	}
	u := URL(postURL)
	if u == "" {
		u = "missing-url"
	}
	sum := md5.Sum([]byte(u))
	return p + ":url_" + hex.EncodeToString(sum[:])[:12]
}
