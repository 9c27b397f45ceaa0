// Package token splits note text into the word-level units stored in the
// search index. Beyond plain word splitting it decomposes code identifiers
// (camelCase, snake_case) so that a search for "user" finds "getUserName".
package token

import (
	"strings"
	"unicode"
)

// delimiters are the characters that end a token. Apostrophes are not
// included so contractions like "don't" survive as a single token, and
// underscores are not included so snake_case identifiers stay whole for the
// decomposition step below.
const delimiters = ",;.!?()[]{}\"`~@#$%^&*+=|\\/<>:-"

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(delimiters, r)
}

// Split returns the deduplicated token set for text, lowercased, in first
// occurrence order. For each word it also emits the camelCase and snake_case
// decompositions when the word actually splits into more than one part.
//
// Empty input returns nil. The output is deterministic for a given input.
func Split(text string) []string {
	if text == "" {
		return nil
	}

	words := strings.FieldsFunc(text, isDelimiter)
	if len(words) == 0 {
		return nil
	}

	var out []string
	seen := make(map[string]bool, len(words))
	add := func(tok string) {
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		out = append(out, tok)
	}

	for _, word := range words {
		add(strings.ToLower(word))

		if parts := splitCamel(word); len(parts) > 1 {
			for _, p := range parts {
				add(strings.ToLower(p))
			}
		}

		if parts := strings.Split(word, "_"); len(parts) > 1 {
			for _, p := range parts {
				add(strings.ToLower(p))
			}
		}
	}

	return out
}

// splitCamel splits immediately before each uppercase letter:
// "getUserName" -> ["get", "User", "Name"]. A word with no interior
// uppercase letter comes back as a single part.
func splitCamel(word string) []string {
	var parts []string
	start := 0
	for i, r := range word {
		if i > 0 && unicode.IsUpper(r) {
			parts = append(parts, word[start:i])
			start = i
		}
	}
	parts = append(parts, word[start:])
	return parts
}
