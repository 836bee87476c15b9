// Package wordlist provides word list filtering helpers.
package wordlist

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Trainable reports whether word uses only the lowercase ASCII letters the
// extractor understands. Run Normalize first to fold diacritics.
func Trainable(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}

// Normalize lowercases word and, except for English, strips combining
// marks so that "café" trains as "cafe".
func Normalize(word, lang string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if strings.EqualFold(lang, "en") {
		return word
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, word)
	if err != nil {
		return word
	}
	return folded
}

// Prepare normalizes and filters words for training. It returns the kept
// words and the number dropped.
func Prepare(words []string, lang string) ([]string, int) {
	kept := make([]string, 0, len(words))
	dropped := 0
	for _, w := range words {
		w = Normalize(w, lang)
		if !Trainable(w) {
			dropped++
			continue
		}
		kept = append(kept, w)
	}
	return kept, dropped
}
