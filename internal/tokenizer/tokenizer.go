// Package tokenizer turns raw document and query text into index tokens.
// Normalization runs three stages in a fixed order: tokenize, stopword
// filter, stem.
package tokenizer

import (
	"strings"

	"github.com/kljensen/snowball/english"

	"github.com/gcbaptista/movie-search/internal/errors"
)

// punctuation is the ASCII punctuation set stripped before splitting.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Tokenize strips punctuation, lowercases the text and splits it on single
// spaces. Empty tokens produced by leading, trailing or repeated spaces are
// dropped.
func Tokenize(text string) []string {
	stripped := strings.Map(func(r rune) rune {
		if r < 128 && strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, text)

	split := strings.Split(strings.ToLower(stripped), " ")

	tokens := make([]string, 0, len(split)) // Initialize as empty slice, not nil
	for _, s := range split {
		if s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// Stem maps a token to its Snowball English stem.
func Stem(token string) string {
	return english.Stem(token, true)
}

// Normalizer runs the full pipeline against a fixed stopword set.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	stopwords StopwordSet
}

// NewNormalizer creates a Normalizer. A nil set disables stopword filtering.
func NewNormalizer(stopwords StopwordSet) *Normalizer {
	if stopwords == nil {
		stopwords = StopwordSet{}
	}
	return &Normalizer{stopwords: stopwords}
}

// Normalize returns the index tokens for text.
func (n *Normalizer) Normalize(text string) []string {
	raw := Tokenize(text)

	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if n.stopwords.Contains(token) {
			continue
		}
		tokens = append(tokens, Stem(token))
	}
	return tokens
}

// NormalizeSingle normalizes text that must yield exactly one token.
func (n *Normalizer) NormalizeSingle(text string) (string, error) {
	tokens := n.Normalize(text)
	if len(tokens) != 1 {
		return "", errors.NewInvalidQueryError(text, len(tokens))
	}
	return tokens[0], nil
}
