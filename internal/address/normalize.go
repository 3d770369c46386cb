package address

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a free-text address line into a dense lowercase
// alphanumeric fingerprint: NFKD decomposition, lowercasing, collapsing every
// run of whitespace or non-alphanumeric runes into a single space, trimming,
// then stripping the remaining spaces. Two inputs normalize equal iff they
// differ only in case, punctuation, or whitespace. Deliberately lossy: it also
// conflates distinct addresses sharing the same alphanumerics.
func Normalize(s string) string {
	return strings.ReplaceAll(normalizeSpaced(s), " ", "")
}

// normalizeSpaced is the intermediate canonical form with single spaces kept
// between alphanumeric runs. Used for token-level comparison of two lines.
func normalizeSpaced(s string) string {
	decomposed := strings.ToLower(norm.NFKD.String(s))

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingSpace := false
	for _, r := range decomposed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}

	return b.String()
}
