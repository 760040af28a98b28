package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s and strips diacritics, so "Oração" and "oracao"
// compare equal. Falls back to plain lowercasing if the transform fails.
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// Tokens splits s into normalized whitespace tokens of at least minLen runes.
func Tokens(s string, minLen int) []string {
	var tokens []string
	for _, tok := range strings.Fields(Normalize(s)) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(tok)) >= minLen {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Slugify turns free text into a lowercase ascii slug: "Noite de Oração"
// becomes "noite-de-oracao".
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range Normalize(s) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
