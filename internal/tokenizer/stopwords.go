package tokenizer

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed stopwords.txt
var defaultStopwords string

// StopwordSet is an immutable set of words removed before stemming.
type StopwordSet map[string]struct{}

// Contains reports whether word is a stopword.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// DefaultStopwords returns the built-in English stopword list.
func DefaultStopwords() StopwordSet {
	set, _ := ParseStopwords(strings.NewReader(defaultStopwords))
	return set
}

// ParseStopwords reads one word per line. Blank lines are ignored and
// words are lowercased.
func ParseStopwords(r io.Reader) (StopwordSet, error) {
	set := make(StopwordSet)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}
		set[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stopwords: %w", err)
	}
	return set, nil
}

// LoadStopwords reads the stopword file at path, or returns the built-in
// list when path is empty.
func LoadStopwords(path string) (StopwordSet, error) {
	if path == "" {
		return DefaultStopwords(), nil
	}

	file, err := os.Open(path) // #nosec G304 -- path comes from application config
	if err != nil {
		return nil, fmt.Errorf("failed to open stopwords file %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	set, err := ParseStopwords(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}
