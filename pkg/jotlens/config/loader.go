package config

import (
	"fmt"

	"github.com/cognicore/jotlens/pkg/jotlens/ingest"
	"github.com/cognicore/jotlens/pkg/jotlens/insight"
	"github.com/cognicore/jotlens/pkg/jotlens/mood"
	"github.com/cognicore/jotlens/pkg/jotlens/productivity"
	"github.com/cognicore/jotlens/pkg/jotlens/prompt"
	"github.com/cognicore/jotlens/pkg/jotlens/tasks"
)

// Loader constructs the analytics components from a Config
type Loader struct {
	Config *Config
	Rand   prompt.Rand // nil uses the global source
}

// Components holds the constructed analytics components
type Components struct {
	Tokenizer    *ingest.Tokenizer
	Lexicon      *mood.Lexicon
	Productivity *productivity.Scorer
	Tasks        *tasks.Extractor
	Insights     *insight.Generator
	Prompts      *prompt.Generator
}

// Load builds every component. A nil Config uses the embedded default.
func (l *Loader) Load() (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		cfg = Default()
	}

	comp := &Components{}
	comp.Tokenizer = ingest.NewTokenizer(cfg.Stopwords)
	comp.Lexicon = mood.NewLexicon(cfg.Sentiment.Lexicon)
	comp.Productivity = productivity.NewScorer(cfg.Productivity.Keywords)

	extractor, err := tasks.NewExtractor(cfg.Tasks.Patterns)
	if err != nil {
		return nil, fmt.Errorf("load task patterns: %w", err)
	}
	comp.Tasks = extractor

	comp.Insights = insight.NewGenerator(comp.Tokenizer, insight.Options{
		TopK:        cfg.Insights.TopK,
		MinMentions: cfg.Insights.MinMentions,
	})
	comp.Prompts = prompt.NewGenerator(comp.Tokenizer, cfg.Prompts, l.Rand)

	return comp, nil
}
