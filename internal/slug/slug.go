// Package slug derives URL-safe identities from free-text names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespace = regexp.MustCompile(`[\s\p{Z}]+`)
	disallowed = regexp.MustCompile(`[^a-z0-9-]`)
)

// Make lowercases text, strips diacritics, turns whitespace runs into a single
// hyphen, drops anything outside [a-z0-9-] and trims hyphens from both ends.
// Make(Make(s)) == Make(s) for every s.
func Make(text string) string {
	s := strings.ToLower(text)
	s = removeDiacritics(s)
	s = whitespace.ReplaceAllString(s, "-")
	s = disallowed.ReplaceAllString(s, "")
	return strings.Trim(s, "-")
}

// MakePtr is Make for optional text: nil in, nil out.
func MakePtr(text *string) *string {
	if text == nil {
		return nil
	}
	s := Make(*text)
	return &s
}

func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
