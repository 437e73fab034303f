// Package text implements bag-of-words and TF-IDF feature extraction for
// document collections.
package text

import (
	"strings"
	"unicode"
)

// Tokenize lowercases the document and splits it into alphanumeric word
// tokens, dropping punctuation.
func Tokenize(doc string) []string {
	return strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

// englishStopwords is a small stoplist of high-frequency function words.
var englishStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "he": true, "in": true, "is": true, "it": true, "its": true,
	"of": true, "on": true, "or": true, "that": true, "the": true,
	"this": true, "to": true, "was": true, "were": true, "will": true,
	"with": true,
}

// RemoveStopwords filters common English stopwords from the token stream.
func RemoveStopwords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !englishStopwords[t] {
			out = append(out, t)
		}
	}
	return out
}
