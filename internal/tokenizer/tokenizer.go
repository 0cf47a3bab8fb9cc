package tokenizer

import (
	"regexp"
	"strings"
)

// wordRegex matches word tokens (keeping inner hyphens and apostrophes) or single
// punctuation characters, the way a Penn-style word tokenizer splits text.
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+(?:['\-][\p{L}\p{N}_]+)*|[^\p{L}\p{N}_\s]`)

// lineBreakRegex matches line breaks left over from PDF text extraction.
var lineBreakRegex = regexp.MustCompile(`[\r\n]+`)

// SplitSentences splits text into sentence units on the literal period.
// Line breaks become spaces and blank segments are dropped; there is no
// abbreviation handling.
func SplitSentences(text string) []string {
	text = lineBreakRegex.ReplaceAllString(text, " ")

	sentences := make([]string, 0)
	for _, part := range strings.Split(text, ".") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// WhitespaceTokens lowercases a sentence and splits it on whitespace.
// Punctuation stays attached to the token, which is what the surface index stores.
func WhitespaceTokens(sentence string) []string {
	return strings.Fields(strings.ToLower(sentence))
}

// WordTokenizer splits text into words and punctuation marks.
type WordTokenizer struct{}

// Tokenize converts a string into a slice of word and punctuation tokens.
// Case is preserved because part-of-speech tagging depends on it.
func (WordTokenizer) Tokenize(text string) []string {
	tokens := wordRegex.FindAllString(text, -1)
	if tokens == nil {
		return make([]string, 0)
	}
	return tokens
}
