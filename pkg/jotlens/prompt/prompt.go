// Package prompt proposes one adaptive journaling prompt from recent
// entries. Independent layers each return candidate prompts; the
// generator concatenates them and draws one uniformly at random.
package prompt

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/cognicore/jotlens/pkg/jotlens/entry"
	"github.com/cognicore/jotlens/pkg/jotlens/ingest"
	"github.com/cognicore/jotlens/pkg/jotlens/tfidf"
)

// Layer names the rule that proposed a candidate
type Layer string

const (
	LayerBase     Layer = "base"
	LayerRecency  Layer = "recency"
	LayerNovelty  Layer = "novelty"
	LayerHistory  Layer = "history"
	LayerTrend    Layer = "trend"
	LayerMomentum Layer = "momentum"
)

// Candidate is one proposed prompt
type Candidate struct {
	Text  string `json:"text"`
	Layer Layer  `json:"layer"`
}

// Rand is the random source used for the final draw. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Generator produces prompts. It is safe for concurrent use.
type Generator struct {
	tokenizer *ingest.Tokenizer
	cfg       Config

	mu  sync.Mutex
	rng Rand
}

// NewGenerator creates a generator. Unset config fields take their
// defaults; a nil rng uses the math/rand/v2 global source.
func NewGenerator(tokenizer *ingest.Tokenizer, cfg Config, rng Rand) *Generator {
	if rng == nil {
		rng = globalRand{}
	}
	return &Generator{
		tokenizer: tokenizer,
		cfg:       cfg.withDefaults(),
		rng:       rng,
	}
}

// Config returns the effective configuration
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate returns exactly one prompt for entries ordered oldest first.
func (g *Generator) Generate(entries []entry.Entry) string {
	return g.pick(g.Candidates(entries)).Text
}

// Candidates returns the full pool a Generate call draws from.
func (g *Generator) Candidates(entries []entry.Entry) []Candidate {
	out := g.base()
	win := g.newWindow(entries)
	if len(win.entries) == 0 {
		return out
	}

	out = append(out, g.recency(win)...)
	out = append(out, g.novelty(win)...)
	out = append(out, g.history(win)...)
	out = append(out, g.trend(win)...)
	out = append(out, g.momentum(win)...)
	return out
}

func (g *Generator) pick(cands []Candidate) Candidate {
	g.mu.Lock()
	defer g.mu.Unlock()
	return cands[g.rng.IntN(len(cands))]
}

// window is the tail of the entry list with each entry tokenized once.
type window struct {
	entries []entry.Entry
	docs    [][]string
}

func (g *Generator) newWindow(entries []entry.Entry) window {
	if len(entries) > g.cfg.Window {
		entries = entries[len(entries)-g.cfg.Window:]
	}
	docs := make([][]string, len(entries))
	for i, e := range entries {
		docs[i] = g.tokenizer.Tokenize(e.Text)
	}
	return window{entries: entries, docs: docs}
}

func (w window) latest() []string {
	return w.docs[len(w.docs)-1]
}

func fill(template, topic string) string {
	return strings.ReplaceAll(template, Placeholder, topic)
}

func (g *Generator) base() []Candidate {
	out := make([]Candidate, len(g.cfg.Base))
	for i, text := range g.cfg.Base {
		out[i] = Candidate{Text: text, Layer: LayerBase}
	}
	return out
}

// recency proposes one prompt per keyword set hit by the latest entry.
func (g *Generator) recency(w window) []Candidate {
	latest := w.latest()
	var out []Candidate
	for _, set := range g.cfg.KeywordSets {
		keywords := make(map[string]struct{}, len(set.Keywords))
		for _, k := range set.Keywords {
			keywords[strings.ToLower(k)] = struct{}{}
		}
		for _, tok := range latest {
			if _, ok := keywords[tok]; ok {
				out = append(out, Candidate{Text: fill(set.Template, tok), Layer: LayerRecency})
				break
			}
		}
	}
	return out
}

// novelty proposes bigrams of the latest entry never seen in older
// entries of the window.
func (g *Generator) novelty(w window) []Candidate {
	if len(w.docs) < 2 {
		return nil
	}
	seen := make(map[string]struct{})
	for _, doc := range w.docs[:len(w.docs)-1] {
		for _, bg := range ingest.Bigrams(doc) {
			seen[bg] = struct{}{}
		}
	}

	latest := w.latest()
	var out []Candidate
	for i := 0; i+1 < len(latest); i++ {
		if g.tokenizer.IsStop(latest[i]) || g.tokenizer.IsStop(latest[i+1]) {
			continue
		}
		bg := latest[i] + " " + latest[i+1]
		if _, ok := seen[bg]; ok {
			continue
		}
		seen[bg] = struct{}{}
		out = append(out, Candidate{Text: fill(g.cfg.NoveltyTemplate, bg), Layer: LayerNovelty})
		if g.cfg.NoveltyLimit > 0 && len(out) == g.cfg.NoveltyLimit {
			break
		}
	}
	return out
}

// history proposes a mood-framed prompt for each recurring bigram.
func (g *Generator) history(w window) []Candidate {
	ranked := tfidf.Top(tfidf.Score(w.docs, 2), g.cfg.HistoryTopK)
	var out []Candidate
	for _, ts := range ranked {
		matched := entry.Containing(w.entries, ts.Term)
		if len(matched) < g.cfg.MinMentions {
			continue
		}
		template := g.cfg.NeutralTemplate
		switch avg := entry.MeanMood(matched); {
		case avg > g.cfg.MoodThreshold:
			template = g.cfg.PositiveTemplate
		case avg < -g.cfg.MoodThreshold:
			template = g.cfg.ChallengeTemplate
		}
		out = append(out, Candidate{Text: fill(template, ts.Term), Layer: LayerHistory})
	}
	return out
}

// trend fires when recent productivity fell clearly below the span
// before it.
func (g *Generator) trend(w window) []Candidate {
	span := g.cfg.TrendSpan
	n := len(w.entries)
	if n < 2*span {
		return nil
	}
	recent := entry.MeanProductivity(w.entries[n-span:])
	older := entry.MeanProductivity(w.entries[n-2*span : n-span])
	if older-recent > g.cfg.TrendDrop {
		return []Candidate{{Text: g.cfg.TrendPrompt, Layer: LayerTrend}}
	}
	return nil
}

// momentum fires on good mood paired with low productivity.
func (g *Generator) momentum(w window) []Candidate {
	if len(w.entries) < 3 {
		return nil
	}
	if entry.MeanMood(w.entries) > g.cfg.MomentumMood &&
		entry.MeanProductivity(w.entries) < g.cfg.MomentumProductivity {
		return []Candidate{{Text: g.cfg.MomentumPrompt, Layer: LayerMomentum}}
	}
	return nil
}
