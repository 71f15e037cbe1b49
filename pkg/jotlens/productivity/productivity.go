package productivity

import (
	"math"
	"regexp"
	"strings"
)

// DefaultKeywords are the achievement words counted by Default()
var DefaultKeywords = []string{
	"complete", "completed", "finished", "done", "achieved", "accomplished", "organized",
	"planned", "worked", "progress", "improve", "improved", "fixed", "solved", "resolved",
	"created", "built", "started", "developed", "designed", "reviewed", "prepared", "submitted",
}

const (
	maxLengthBonus = 0.3
	wordsPerBonus  = 100.0
)

var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Scorer rates how productive an entry reads, from keyword density plus a
// small bonus for longer entries.
type Scorer struct {
	keywords []string
}

// NewScorer creates a scorer over the given keywords (lowercased)
func NewScorer(keywords []string) *Scorer {
	kws := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			kws = append(kws, k)
		}
	}
	return &Scorer{keywords: kws}
}

// Default returns a scorer over DefaultKeywords
func Default() *Scorer {
	return NewScorer(DefaultKeywords)
}

// Score returns a value in [0, 1] rounded to three decimals. Keywords are
// matched as substrings, so "completed" counts for both "complete" and
// "completed". Text without words scores exactly 0.
func (s *Scorer) Score(text string) float64 {
	text = strings.ToLower(text)
	wordCount := len(wordRE.FindAllString(text, -1))
	if wordCount == 0 {
		return 0
	}

	keywordCount := 0
	for _, kw := range s.keywords {
		keywordCount += strings.Count(text, kw)
	}

	density := float64(keywordCount) / float64(wordCount)
	bonus := math.Min(float64(wordCount)/wordsPerBonus, maxLengthBonus)
	score := math.Min(density+bonus, 1.0)
	return math.Round(score*1000) / 1000
}
