// Package normalize maps raw rows into canonical records: type coercion,
// timezone-aware date handling, and per-row error isolation.
package normalize

import (
	"github.com/snstools/snsmaster/internal/coerce"
	"github.com/snstools/snsmaster/internal/schema"
)

// Rows converts raw rows into canonical records using the field mapping.
// Physical row numbers are 1-indexed after the header, so the first data row
// is row 2. A row whose date cannot be parsed goes to the error set instead
// of the valid set; no other field is mandatory. The two outputs form a
// stable partition of the input order.
func Rows(raw []schema.RawRow, mapping map[string]string, sourceLabel string) ([]schema.Record, []schema.ErrorRow) {
	var valid []schema.Record
	var errs []schema.ErrorRow

	for i, r := range raw {
		rec := schema.Record{
			SourceFile: sourceLabel,
			SourceRow:  i + 2,
		}
		rawValues := make(map[string]string, len(mapping))
		for _, field := range schema.Fields {
			src, ok := mapping[field]
			if !ok {
				continue
			}
			rawValues[field] = r.Get(src)
			rec.SetField(field, rawValues[field])
		}

		// A file-level platform column rarely exists; fall back to the file
		// itself and let normalization decide what it is.
		if rec.Platform == "" {
			rec.Platform = sourceLabel
		}
		rec.Platform = coerce.Platform(rec.Platform)
		rec.AdPlatform = coerce.AdPlatform(rec.AdPlatform)
		rec.Date = coerce.ParseDate(rec.Date)
		rec.PostURL = coerce.URL(rec.PostURL)
		rec.PostKey = coerce.PostKey(rec.Platform, rec.PostID, rec.PostURL)

		for _, field := range schema.MetricFields {
			rec.SetMetric(field, coerce.ToFloat(rawValues[field]))
		}

		if rec.Date == "" {
			errs = append(errs, schema.ErrorRow{Record: rec, Reason: "invalid_date"})
			continue
		}
		valid = append(valid, rec)
	}
	return valid, errs
}
