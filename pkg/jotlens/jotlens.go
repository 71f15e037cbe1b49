// Package jotlens ties the journal analytics together: it analyzes and
// stores entries and answers insight, prompt and task queries over the
// stored history.
package jotlens

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/jotlens/pkg/jotlens/entry"
	"github.com/cognicore/jotlens/pkg/jotlens/ingest"
	"github.com/cognicore/jotlens/pkg/jotlens/insight"
	"github.com/cognicore/jotlens/pkg/jotlens/internalerr"
	"github.com/cognicore/jotlens/pkg/jotlens/mood"
	"github.com/cognicore/jotlens/pkg/jotlens/productivity"
	"github.com/cognicore/jotlens/pkg/jotlens/prompt"
	"github.com/cognicore/jotlens/pkg/jotlens/report"
	"github.com/cognicore/jotlens/pkg/jotlens/stoplist"
	"github.com/cognicore/jotlens/pkg/jotlens/store"
	"github.com/cognicore/jotlens/pkg/jotlens/tasks"
)

// Engine is the main journal analytics facade
type Engine struct {
	store        store.Store
	tokenizer    *ingest.Tokenizer
	classifier   mood.Classifier
	fallback     mood.Classifier
	productivity *productivity.Scorer
	tasks        *tasks.Extractor
	insights     *insight.Generator
	prompts      *prompt.Generator
	reports      *report.Builder
	now          func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Engine. Store is required; nil components fall
// back to their defaults.
type Options struct {
	Store        store.Store
	Tokenizer    *ingest.Tokenizer
	Classifier   mood.Classifier // primary mood backend
	Fallback     mood.Classifier // used when Classifier fails; lexicon by default
	Productivity *productivity.Scorer
	Tasks        *tasks.Extractor
	Insights     *insight.Generator
	Prompts      *prompt.Generator
	Reports      *report.Builder
	Now          func() time.Time
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	e := &Engine{
		store:        opts.Store,
		tokenizer:    opts.Tokenizer,
		classifier:   opts.Classifier,
		fallback:     opts.Fallback,
		productivity: opts.Productivity,
		tasks:        opts.Tasks,
		insights:     opts.Insights,
		prompts:      opts.Prompts,
		reports:      opts.Reports,
		now:          opts.Now,
		entropy:      ulid.Monotonic(rand.Reader, 0),
	}
	if e.tokenizer == nil {
		e.tokenizer = ingest.NewTokenizer(stoplist.Default())
	}
	if e.fallback == nil {
		e.fallback = mood.NewLexicon(nil)
	}
	if e.classifier == nil {
		e.classifier = e.fallback
	}
	if e.productivity == nil {
		e.productivity = productivity.Default()
	}
	if e.tasks == nil {
		e.tasks = tasks.Default()
	}
	if e.insights == nil {
		e.insights = insight.NewGenerator(e.tokenizer, insight.Options{})
	}
	if e.prompts == nil {
		e.prompts = prompt.NewGenerator(e.tokenizer, prompt.DefaultConfig(), nil)
	}
	if e.reports == nil {
		e.reports = report.New()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Close cleanly shuts down the Engine
func (e *Engine) Close() error {
	return e.store.Close()
}

// Analysis is the per-entry result of the independent analyzers
type Analysis struct {
	Mood         mood.Label `json:"mood"`
	Polarity     float64    `json:"polarity"`
	Productivity float64    `json:"productivity"`
	Tasks        []string   `json:"tasks"`
}

// Analyze runs mood, productivity and task extraction over text without
// storing anything. Text is analyzed as given; callers holding HTML
// convert it with ingest.Format first.
func (e *Engine) Analyze(ctx context.Context, text string) Analysis {
	res, err := e.classifier.Classify(ctx, text)
	if err != nil {
		log.Printf("mood classifier failed, using fallback: %v", err)
		res, err = e.fallback.Classify(ctx, text)
		if err != nil {
			log.Printf("fallback mood classifier failed: %v", err)
			res = mood.NewResult(0)
		}
	}

	return Analysis{
		Mood:         res.Mood,
		Polarity:     res.Polarity,
		Productivity: e.productivity.Score(text),
		Tasks:        e.tasks.Extract(text),
	}
}

// Submit analyzes and stores a new entry dated now
func (e *Engine) Submit(ctx context.Context, text string) (entry.Entry, []entry.Task, error) {
	return e.SubmitAt(ctx, text, e.now())
}

// SubmitAt analyzes and stores a new entry with an explicit date
func (e *Engine) SubmitAt(ctx context.Context, text string, date time.Time) (entry.Entry, []entry.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return entry.Entry{}, nil, fmt.Errorf("entry text is empty: %w", internalerr.ErrInvalidInput)
	}

	id, err := e.newID()
	if err != nil {
		return entry.Entry{}, nil, err
	}

	a := e.Analyze(ctx, text)
	ent := entry.Entry{
		ID:           id,
		Date:         date,
		Text:         text,
		Mood:         a.Mood,
		Polarity:     a.Polarity,
		Productivity: a.Productivity,
	}

	created, err := e.store.AddEntry(ctx, ent, a.Tasks)
	if err != nil {
		return entry.Entry{}, nil, fmt.Errorf("store entry: %w", err)
	}
	return ent, created, nil
}

// newID stamps IDs with the creation time, not the entry date, so
// backdated entries of any year get a valid ULID.
func (e *Engine) newID() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(e.now()), e.entropy)
	if err != nil {
		return "", fmt.Errorf("entry id: %w", err)
	}
	return id.String(), nil
}

// Entries lists stored entries for a period, oldest first
func (e *Engine) Entries(ctx context.Context, period entry.Period) ([]entry.Entry, error) {
	return e.store.ListEntries(ctx, store.ListOptions{Since: period.Since(e.now())})
}

// Insights ranks recurring topics over the entries of a period
func (e *Engine) Insights(ctx context.Context, period entry.Period) ([]insight.Insight, error) {
	entries, err := e.Entries(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return e.insights.Generate(entries), nil
}

// Prompt proposes one follow-up prompt from the most recent entries
func (e *Engine) Prompt(ctx context.Context) (string, error) {
	entries, err := e.store.ListEntries(ctx, store.ListOptions{Limit: e.prompts.Config().Window})
	if err != nil {
		return "", fmt.Errorf("list entries: %w", err)
	}
	return e.prompts.Generate(entries), nil
}

// DailyPrompt generates today's prompt and stores it
func (e *Engine) DailyPrompt(ctx context.Context) (store.DailyPrompt, error) {
	text, err := e.Prompt(ctx)
	if err != nil {
		return store.DailyPrompt{}, err
	}
	now := e.now()
	p := store.DailyPrompt{
		Day:       now.Format(store.DayFormat),
		Text:      text,
		CreatedAt: now,
	}
	if err := e.store.SavePrompt(ctx, p); err != nil {
		return store.DailyPrompt{}, fmt.Errorf("save daily prompt: %w", err)
	}
	return p, nil
}

// LatestPrompt returns the most recent stored daily prompt
func (e *Engine) LatestPrompt(ctx context.Context) (store.DailyPrompt, bool, error) {
	return e.store.LatestPrompt(ctx)
}

// Report builds an insight report for a period
func (e *Engine) Report(ctx context.Context, period entry.Period) (report.Report, error) {
	insights, err := e.Insights(ctx, period)
	if err != nil {
		return report.Report{}, err
	}
	text, err := e.Prompt(ctx)
	if err != nil {
		return report.Report{}, err
	}
	return e.reports.Build(period, insights, text, e.now()), nil
}

// SuggestStopwords proposes words that appear in so many entries of the
// period that they drown out real topics
func (e *Engine) SuggestStopwords(ctx context.Context, period entry.Period, th stoplist.Thresholds) ([]stoplist.Candidate, error) {
	entries, err := e.Entries(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	docs := make([][]string, len(entries))
	for i, ent := range entries {
		docs[i] = e.tokenizer.Tokenize(ent.Text)
	}
	return e.tokenizer.Stoplist().SuggestCandidates(stoplist.ComputeStats(docs), th), nil
}

// Delete removes an entry and its tasks
func (e *Engine) Delete(ctx context.Context, id string) error {
	return e.store.DeleteEntry(ctx, id)
}

// Tasks lists tasks by status; an empty status lists all
func (e *Engine) Tasks(ctx context.Context, status entry.TaskStatus) ([]entry.Task, error) {
	return e.store.ListTasks(ctx, status)
}

// CompleteTask marks a task done
func (e *Engine) CompleteTask(ctx context.Context, id int64) error {
	return e.store.CompleteTask(ctx, id)
}
