// Package sanitize strips markup from rich-text note content before it is
// indexed. Only HTML notes are touched; code and plain-text notes pass
// through unchanged so their literal content stays searchable.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/jpl-au/notesearch/internal/notes"
)

// Pre-compiled expressions. Script and style elements are removed with their
// content; every other tag is stripped but its text kept.
var (
	scriptTag = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleTag  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	allTags   = regexp.MustCompile(`<[^>]+>`)
)

// entityReplacer decodes the entities the rich-text editor emits. Anything
// more exotic is left literal, which is what users typed in the first place.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&amp;", "&",
)

// Clean returns the indexable text of raw content. HTML notes (text notes
// with a text/html MIME) have script/style elements removed, remaining tags
// stripped, standard entities decoded, and whitespace collapsed. All other
// note types pass through unchanged.
func Clean(raw string, typ notes.Type, mime string) string {
	if raw == "" {
		return ""
	}
	if typ != notes.TypeText || mime != "text/html" {
		return raw
	}
	return StripHTML(raw)
}

// StripHTML converts an HTML fragment to plain text.
func StripHTML(s string) string {
	s = scriptTag.ReplaceAllString(s, "")
	s = styleTag.ReplaceAllString(s, "")
	s = allTags.ReplaceAllString(s, " ")
	s = entityReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
