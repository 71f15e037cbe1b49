package prompt

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/cognicore/jotlens/pkg/jotlens/entry"
	"github.com/cognicore/jotlens/pkg/jotlens/ingest"
	"github.com/cognicore/jotlens/pkg/jotlens/mood"
	"github.com/cognicore/jotlens/pkg/jotlens/stoplist"
)

// lastRand always picks the final candidate.
type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

func newGenerator(cfg Config, rng Rand) *Generator {
	return NewGenerator(ingest.NewTokenizer(stoplist.Default()), cfg, rng)
}

func byLayer(cands []Candidate, layer Layer) []Candidate {
	var out []Candidate
	for _, c := range cands {
		if c.Layer == layer {
			out = append(out, c)
		}
	}
	return out
}

func TestGenerateEmptyReturnsBasePrompt(t *testing.T) {
	base := DefaultConfig().Base
	inBase := make(map[string]bool, len(base))
	for _, b := range base {
		inBase[b] = true
	}

	for seed := uint64(0); seed < 50; seed++ {
		g := newGenerator(Config{}, rand.New(rand.NewPCG(seed, seed+1)))
		got := g.Generate(nil)
		if !inBase[got] {
			t.Fatalf("seed %d: %q is not a base prompt", seed, got)
		}
	}

	cands := newGenerator(Config{}, nil).Candidates([]entry.Entry{})
	if len(cands) != len(base) {
		t.Errorf("empty window should only yield base prompts, got %d", len(cands))
	}
}

func TestGenerateIsMemberOfCandidates(t *testing.T) {
	entries := []entry.Entry{
		{Text: "Stuck on the work project", Mood: mood.Negative, Productivity: 0.3},
		{Text: "The work project is stuck again", Mood: mood.Negative, Productivity: 0.2},
	}
	g := newGenerator(Config{}, lastRand{})
	cands := g.Candidates(entries)
	got := g.Generate(entries)
	if got != cands[len(cands)-1].Text {
		t.Errorf("Generate = %q, want the last candidate %q", got, cands[len(cands)-1].Text)
	}
}

func TestRecencyLayer(t *testing.T) {
	entries := []entry.Entry{
		{Text: "Slept well."},
		{Text: "Feeling stuck on the report, need a plan for tomorrow."},
	}
	cands := byLayer(newGenerator(Config{}, nil).Candidates(entries), LayerRecency)
	if len(cands) != 2 {
		t.Fatalf("expected problem and planning prompts, got %+v", cands)
	}
	if !strings.Contains(cands[0].Text, "'stuck'") {
		t.Errorf("problem prompt = %q", cands[0].Text)
	}
	if !strings.Contains(cands[1].Text, "'plan'") {
		t.Errorf("planning prompt = %q", cands[1].Text)
	}
}

func TestNoveltyLayer(t *testing.T) {
	entries := []entry.Entry{
		{Text: "Morning run in the park"},
		{Text: "Morning run, then a new guitar lesson"},
	}
	cands := byLayer(newGenerator(Config{}, nil).Candidates(entries), LayerNovelty)

	var topics []string
	for _, c := range cands {
		topics = append(topics, c.Text)
	}
	want := []string{"'run new'", "'new guitar'", "'guitar lesson'"}
	if len(cands) != len(want) {
		t.Fatalf("novelty candidates = %v", topics)
	}
	for i, w := range want {
		if !strings.Contains(cands[i].Text, w) {
			t.Errorf("candidate %d = %q, want topic %s", i, cands[i].Text, w)
		}
	}
	for _, c := range cands {
		if strings.Contains(c.Text, "morning run") {
			t.Error("bigram seen in history must not count as novel")
		}
	}
}

func TestNoveltyNeedsHistoryAndHonoursLimit(t *testing.T) {
	single := []entry.Entry{{Text: "brand new guitar lesson today"}}
	if got := byLayer(newGenerator(Config{}, nil).Candidates(single), LayerNovelty); len(got) != 0 {
		t.Errorf("single entry should produce no novelty prompts, got %+v", got)
	}

	entries := []entry.Entry{
		{Text: "quiet"},
		{Text: "alpha beta gamma delta epsilon"},
	}
	got := byLayer(newGenerator(Config{NoveltyLimit: 2}, nil).Candidates(entries), LayerNovelty)
	if len(got) != 2 {
		t.Errorf("NoveltyLimit=2 gave %d candidates", len(got))
	}
}

func TestHistoryLayerMoodFraming(t *testing.T) {
	tests := []struct {
		name  string
		moods []mood.Label
		want  string
	}{
		{"positive", []mood.Label{mood.Positive, mood.Positive}, "good days"},
		{"challenge", []mood.Label{mood.Negative, mood.Negative}, "harder days"},
		{"neutral", []mood.Label{mood.Positive, mood.Negative}, "still thinking about"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := []entry.Entry{
				{Text: "Work project went great", Mood: tt.moods[0]},
				{Text: "work project demo", Mood: tt.moods[1]},
				{Text: "quiet evening", Mood: mood.Neutral},
			}
			cands := byLayer(newGenerator(Config{}, nil).Candidates(entries), LayerHistory)
			if len(cands) != 1 {
				t.Fatalf("expected one history prompt, got %+v", cands)
			}
			if !strings.Contains(cands[0].Text, "'work project'") || !strings.Contains(cands[0].Text, tt.want) {
				t.Errorf("history prompt = %q, want topic and %q", cands[0].Text, tt.want)
			}
		})
	}
}

func TestTrendLayer(t *testing.T) {
	mk := func(prods ...float64) []entry.Entry {
		out := make([]entry.Entry, len(prods))
		for i, p := range prods {
			out[i] = entry.Entry{Text: "day", Productivity: p}
		}
		return out
	}

	g := newGenerator(Config{}, nil)
	if got := byLayer(g.Candidates(mk(0.8, 0.8, 0.8, 0.3, 0.3, 0.3)), LayerTrend); len(got) != 1 {
		t.Errorf("drop of 0.5 should fire trend, got %+v", got)
	}
	if got := byLayer(g.Candidates(mk(0.5, 0.5, 0.5, 0.4, 0.4, 0.4)), LayerTrend); len(got) != 0 {
		t.Errorf("drop of 0.1 should not fire trend, got %+v", got)
	}
	if got := byLayer(g.Candidates(mk(0.9, 0.1, 0.1)), LayerTrend); len(got) != 0 {
		t.Errorf("fewer than six entries should not fire trend")
	}
}

func TestWindowLimitsHistory(t *testing.T) {
	entries := make([]entry.Entry, 0, 6)
	for _, p := range []float64{0.9, 0.9, 0.9, 0.2, 0.2, 0.2} {
		entries = append(entries, entry.Entry{Text: "day", Productivity: p})
	}
	g := newGenerator(Config{Window: 4}, nil)
	if got := byLayer(g.Candidates(entries), LayerTrend); len(got) != 0 {
		t.Errorf("a 4-entry window cannot see a 6-entry trend, got %+v", got)
	}
}

func TestMomentumLayer(t *testing.T) {
	entries := []entry.Entry{
		{Text: "lovely", Mood: mood.Positive, Productivity: 0.1},
		{Text: "sunny", Mood: mood.Positive, Productivity: 0.2},
		{Text: "calm", Mood: mood.Neutral, Productivity: 0.1},
	}
	got := byLayer(newGenerator(Config{}, nil).Candidates(entries), LayerMomentum)
	if len(got) != 1 {
		t.Fatalf("expected momentum prompt, got %+v", got)
	}
	if got := byLayer(newGenerator(Config{}, nil).Candidates(entries[:2]), LayerMomentum); len(got) != 0 {
		t.Error("momentum needs at least three entries")
	}
}

func TestLayersAreIndependent(t *testing.T) {
	entries := []entry.Entry{
		{Text: "work project kickoff", Mood: mood.Positive, Productivity: 0.9},
		{Text: "work project planning", Mood: mood.Positive, Productivity: 0.9},
		{Text: "work project review", Mood: mood.Positive, Productivity: 0.9},
		{Text: "slow", Mood: mood.Neutral, Productivity: 0.1},
		{Text: "slow", Mood: mood.Neutral, Productivity: 0.1},
		{Text: "Feeling stuck, strange new hobby", Mood: mood.Negative, Productivity: 0.1},
	}
	cands := newGenerator(Config{}, nil).Candidates(entries)
	for _, layer := range []Layer{LayerBase, LayerRecency, LayerNovelty, LayerHistory, LayerTrend} {
		if len(byLayer(cands, layer)) == 0 {
			t.Errorf("expected candidates from layer %s", layer)
		}
	}
}

func TestDefaultsFilled(t *testing.T) {
	g := newGenerator(Config{Window: 5, Base: []string{"Only prompt"}}, nil)
	cfg := g.Config()
	if cfg.Window != 5 || len(cfg.Base) != 1 {
		t.Errorf("explicit fields overwritten: %+v", cfg)
	}
	if cfg.TrendDrop != 0.15 || cfg.TrendSpan != 3 || cfg.MoodThreshold != 0.2 || cfg.HistoryTopK != 5 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if got := g.Generate(nil); got != "Only prompt" {
		t.Errorf("Generate = %q", got)
	}
}
