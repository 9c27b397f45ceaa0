package sanitize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jpl-au/notesearch/internal/notes"
	"github.com/jpl-au/notesearch/internal/sanitize"
)

func TestClean_HTMLNote(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "tags stripped",
			raw:  "<p>Hello <b>World</b></p>",
			want: "Hello World",
		},
		{
			name: "script removed with content",
			raw:  "<p>before</p><script>alert('x')</script><p>after</p>",
			want: "before after",
		},
		{
			name: "style removed with content",
			raw:  "<style>p { color: red }</style><p>visible</p>",
			want: "visible",
		},
		{
			name: "script with attributes",
			raw:  `<script type="text/javascript">var x = 1;</script>text`,
			want: "text",
		},
		{
			name: "script spanning lines",
			raw:  "<script>\nline1\nline2\n</script>kept",
			want: "kept",
		},
		{
			name: "entities decoded",
			raw:  "a&nbsp;b &amp; c&lt;d&gt; &quot;e&quot; don&#39;t",
			want: `a b & c<d> "e" don't`,
		},
		{
			name: "whitespace collapsed",
			raw:  "<div>  one\n\n two  </div>",
			want: "one two",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitize.Clean(tt.raw, notes.TypeText, "text/html")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClean_Passthrough(t *testing.T) {
	// Code notes keep markup-looking content verbatim.
	src := "if a < b { fmt.Println(\"<tag>\") }"
	assert.Equal(t, src, sanitize.Clean(src, notes.TypeCode, "text/x-go"))

	// Plain-text notes are untouched even with angle brackets.
	plain := "see <https://example.com> for details"
	assert.Equal(t, plain, sanitize.Clean(plain, notes.TypeText, "text/plain"))

	// Mermaid and canvas sources too.
	assert.Equal(t, "graph TD; A-->B", sanitize.Clean("graph TD; A-->B", notes.TypeMermaid, ""))
}

func TestStripHTML(t *testing.T) {
	got := sanitize.StripHTML(`<h1>Title</h1><ul><li>one</li><li>two</li></ul>`)
	assert.Equal(t, "Title one two", got)
}
