package tasks

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DefaultPatterns capture the phrase following an intent trigger up to
// the end of the sentence.
var DefaultPatterns = []string{
	`\b(?:need to|have to|must|should|want to|planning to|plan to|aim to|try to)\s+(.*?)(?:[.!?\n]|$)`,
	`\b(?:to[- ]do|todo)\W*(.*?)(?:[.!?\n]|$)`,
}

// Extractor pulls action items out of free text
type Extractor struct {
	patterns []*regexp.Regexp
}

// NewExtractor compiles patterns case-insensitively. Each pattern must
// have exactly one capture group.
func NewExtractor(patterns []string) (*Extractor, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile task pattern %q: %w", p, err)
		}
		if re.NumSubexp() != 1 {
			return nil, fmt.Errorf("task pattern %q: want 1 capture group, have %d", p, re.NumSubexp())
		}
		compiled = append(compiled, re)
	}
	return &Extractor{patterns: compiled}, nil
}

// Default returns an extractor over DefaultPatterns
func Default() *Extractor {
	ex, err := NewExtractor(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return ex
}

// Extract applies every pattern in order and returns the captured tasks,
// pattern by pattern. Duplicates across patterns are kept.
func (e *Extractor) Extract(text string) []string {
	var out []string
	for _, re := range e.patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			task := clean(m[1])
			if task != "" {
				out = append(out, task)
			}
		}
	}
	return out
}

func clean(s string) string {
	return strings.TrimRightFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}
