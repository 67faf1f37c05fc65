package lexical

import (
	"strings"
	"unicode"
)

// Tokenize lowercases and splits on non-alphanumeric runes. CJK runes are
// emitted as single-rune terms, since Han text carries no word separators
// and paper titles in the corpus mix scripts.
func Tokenize(text string) []string {
	var tokens []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, string(current))
			current = current[:0]
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current = append(current, r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}
