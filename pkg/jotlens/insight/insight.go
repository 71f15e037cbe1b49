// Package insight turns a set of journal entries into ranked recurring
// topics with the average mood and productivity of the entries that
// mention them.
package insight

import (
	"github.com/cognicore/jotlens/pkg/jotlens/entry"
	"github.com/cognicore/jotlens/pkg/jotlens/ingest"
	"github.com/cognicore/jotlens/pkg/jotlens/tfidf"
)

// Defaults for Options
const (
	DefaultTopK        = 10
	DefaultMinMentions = 2
)

// Insight is one recurring topic
type Insight struct {
	Topic           string  `json:"topic"`
	MentionCount    int     `json:"mention_count"`
	AvgMood         float64 `json:"avg_mood"`
	AvgProductivity float64 `json:"avg_productivity"`
	Score           float64 `json:"score"`
}

// Options tunes topic selection
type Options struct {
	TopK        int // candidate topics taken from the TF-IDF ranking
	MinMentions int // entries that must mention a topic for it to count
}

// Generator builds insights. It holds no per-call state.
type Generator struct {
	tokenizer *ingest.Tokenizer
	opts      Options
}

// NewGenerator creates a generator; zero options take the defaults.
func NewGenerator(tokenizer *ingest.Tokenizer, opts Options) *Generator {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.MinMentions <= 0 {
		opts.MinMentions = DefaultMinMentions
	}
	return &Generator{tokenizer: tokenizer, opts: opts}
}

// Generate ranks recurring topics across entries. Fewer than two entries
// yield no insights.
func (g *Generator) Generate(entries []entry.Entry) []Insight {
	candidates := g.Topics(entries)
	if len(candidates) == 0 {
		return nil
	}

	var out []Insight
	for _, cand := range candidates {
		ins := Summarize(entries, cand.Term)
		if ins.MentionCount < g.opts.MinMentions {
			continue
		}
		ins.Score = cand.TFIDF
		out = append(out, ins)
	}

	// Reliability floor dropped everything: keep the best candidate.
	if len(out) == 0 {
		best := Summarize(entries, candidates[0].Term)
		best.Score = candidates[0].TFIDF
		out = append(out, best)
	}
	return out
}

// Topics returns the top K candidate topics: bigrams and unigrams ranked
// together by TF-IDF, bigrams first on ties.
func (g *Generator) Topics(entries []entry.Entry) []tfidf.TermScore {
	if len(entries) < tfidf.MinDocs {
		return nil
	}
	corpus := tfidf.NewCorpus(2, 1)
	for _, e := range entries {
		corpus.Add(g.tokenizer.Tokenize(e.Text))
	}
	return tfidf.Top(corpus.Rank(), g.opts.TopK)
}

// Summarize aggregates the entries whose text contains topic. The counts
// are recomputed from entries on every call.
func Summarize(entries []entry.Entry, topic string) Insight {
	matched := entry.Containing(entries, topic)
	return Insight{
		Topic:           topic,
		MentionCount:    len(matched),
		AvgMood:         entry.MeanMood(matched),
		AvgProductivity: entry.MeanProductivity(matched),
	}
}
