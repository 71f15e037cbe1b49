package ingest

import (
	"strings"
	"unicode"

	"github.com/cognicore/jotlens/pkg/jotlens/stoplist"
)

// Tokenizer normalizes journal text into lowercase word tokens
type Tokenizer struct {
	stops *stoplist.Manager
}

// NewTokenizer creates a new tokenizer with the given stopword list
func NewTokenizer(stopwords []string) *Tokenizer {
	return &Tokenizer{stops: stoplist.NewManager(stopwords)}
}

// Tokenize lowercases text, removes punctuation and drops stopwords.
// Punctuation inside a word is deleted rather than split on, so "don't"
// becomes "dont" and "to-do" becomes "todo".
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := current.String()
		current.Reset()
		if !t.stops.IsStop(word) {
			tokens = append(tokens, word)
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case isWordRune(r):
			current.WriteRune(unicode.ToLower(r))
		}
	}
	flush()

	return tokens
}

// IsStop reports whether token is in the tokenizer's stop set
func (t *Tokenizer) IsStop(token string) bool {
	return t.stops.IsStop(token)
}

// Stoplist returns the underlying stopword manager
func (t *Tokenizer) Stoplist() *stoplist.Manager {
	return t.stops
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}
