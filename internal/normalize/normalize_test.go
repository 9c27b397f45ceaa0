package normalize_test

import (
	"testing"

	"github.com/jpl-au/notesearch/internal/normalize"
	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercase passthrough", "hello world", "hello world"},
		{"uppercase folded", "Hello World", "hello world"},
		{"diacritics stripped", "Héllo  World", "hello world"},
		{"accented words", "café naïve Zürich", "cafe naive zurich"},
		{"whitespace collapsed", "  a \t b\n\nc  ", "a b c"},
		{"tabs and newlines", "one\ttwo\nthree", "one two three"},
		{"only whitespace", " \t\n ", ""},
		{"punctuation kept", "status: done!", "status: done!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Text(tt.in))
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Héllo  World",
		"  MIXED case\twith\nwhitespace  ",
		"déjà vu über café",
		"plain ascii already normal",
	}

	for _, in := range inputs {
		once := normalize.Text(in)
		assert.Equal(t, once, normalize.Text(once), "normalize must be idempotent for %q", in)
	}
}
