package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify turns heading text into a stable anchor id: accents are folded via
// NFKD decomposition, everything non-alphanumeric collapses to single dashes.
func Slugify(text string) string {
	decomposed := norm.NFKD.String(text)

	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining marks left over from decomposition are dropped.
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
