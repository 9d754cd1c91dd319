// Package header canonicalizes raw column names into comparison-stable
// tokens. Every component that touches source columns goes through Normalize
// so that full-width, half-width, underscore, and whitespace variants of the
// same header compare equal.
package header

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds a raw column name into its comparison token: NFKC
// compatibility normalization, trim, lower-case, then removal of all
// whitespace and underscores. The empty string maps to itself, and
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(name string) string {
	t := norm.NFKC.String(name)
	t = strings.ToLower(strings.TrimSpace(t))
	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		if r == '_' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeAll maps Normalize over a column list, preserving order.
func NormalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = Normalize(n)
	}
	return out
}
