// Package normalize produces the canonical text form shared by the indexing
// and query paths. Both sides must run their input through the same function,
// otherwise case or accent differences make stored text and query terms miss
// each other.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes to NFD, drops combining marks, and recomposes.
// "Héllo" becomes "Hello", "über" becomes "uber".
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Text returns the canonical form of s: diacritics folded to base Latin
// letters, lowercased, whitespace runs collapsed to a single space, and
// leading/trailing whitespace trimmed. Empty input returns the empty string.
//
// Text is idempotent: Text(Text(s)) == Text(s).
func Text(s string) string {
	if s == "" {
		return ""
	}

	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		// Malformed input (e.g. invalid UTF-8) is left as-is rather than
		// dropped; lowercasing and whitespace collapsing still apply.
		folded = s
	}

	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
