// Package slug derives URL-safe identifiers from itinerary titles.
package slug

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// maxLen bounds the title-derived part so suffixed slugs stay readable.
const maxLen = 80

// fallback is used when a title has no letters or digits at all.
const fallback = "trip"

// Make lowercases title, collapses every run of non-alphanumeric characters
// into a single hyphen, and trims leading and trailing hyphens.
// "Tokyo Week!! (2026)" becomes "tokyo-week-2026". A result that would parse
// as a UUID gets a suffix, since ids and slugs share one lookup path.
func Make(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	s := b.String()
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	if s == "" {
		return fallback
	}
	if _, err := uuid.Parse(s); err == nil {
		return WithSuffix(s)
	}
	return s
}

// WithSuffix appends a short random disambiguator to base,
// e.g. "tokyo-week" becomes "tokyo-week-3f9a1c".
func WithSuffix(base string) string {
	id := uuid.New()
	return base + "-" + strings.ReplaceAll(id.String(), "-", "")[:6]
}
