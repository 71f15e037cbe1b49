package jotlens

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/jotlens/pkg/jotlens/entry"
	"github.com/cognicore/jotlens/pkg/jotlens/ingest"
	"github.com/cognicore/jotlens/pkg/jotlens/internalerr"
	"github.com/cognicore/jotlens/pkg/jotlens/mood"
	"github.com/cognicore/jotlens/pkg/jotlens/prompt"
	"github.com/cognicore/jotlens/pkg/jotlens/stoplist"
	"github.com/cognicore/jotlens/pkg/jotlens/store/memstore"
)

var now = time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string) (mood.Result, error) {
	return mood.Result{}, errors.New("backend down")
}

type fixedClassifier struct{ polarity float64 }

func (f fixedClassifier) Classify(context.Context, string) (mood.Result, error) {
	return mood.NewResult(f.polarity), nil
}

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Store == nil {
		opts.Store = memstore.New()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return now }
	}
	e := New(opts)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestAnalyze(t *testing.T) {
	e := newEngine(t, Options{})
	a := e.Analyze(context.Background(), "Finished the report. I need to call mom.")

	if len(a.Tasks) != 1 || a.Tasks[0] != "call mom" {
		t.Errorf("tasks = %v", a.Tasks)
	}
	if a.Productivity <= 0 {
		t.Errorf("expected positive productivity, got %v", a.Productivity)
	}
	if !a.Mood.Valid() {
		t.Errorf("invalid mood %q", a.Mood)
	}
}

func TestAnalyzeFallsBackOnClassifierError(t *testing.T) {
	e := newEngine(t, Options{
		Classifier: failingClassifier{},
		Fallback:   fixedClassifier{polarity: 0.5},
	})
	a := e.Analyze(context.Background(), "anything")
	if a.Mood != mood.Positive || a.Polarity != 0.5 {
		t.Errorf("expected fallback result, got %+v", a)
	}
}

func TestSubmitStoresEntryAndTasks(t *testing.T) {
	e := newEngine(t, Options{Classifier: fixedClassifier{polarity: -0.4}})
	ctx := context.Background()

	ent, created, err := e.Submit(ctx, ingest.FormatHTML.Plain("<b>Rough day.</b> I have to file taxes!"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := ulid.Parse(ent.ID); err != nil {
		t.Errorf("entry ID %q is not a ULID: %v", ent.ID, err)
	}
	if ent.Text != "Rough day. I have to file taxes!" {
		t.Errorf("html not stripped: %q", ent.Text)
	}
	if !ent.Date.Equal(now) || ent.Mood != mood.Negative {
		t.Errorf("unexpected entry %+v", ent)
	}
	if len(created) != 1 || created[0].Text != "file taxes" || created[0].EntryID != ent.ID {
		t.Errorf("unexpected tasks %+v", created)
	}

	pending, err := e.Tasks(ctx, entry.TaskPending)
	if err != nil || len(pending) != 1 {
		t.Fatalf("Tasks: %v %v", pending, err)
	}
	if err := e.CompleteTask(ctx, pending[0].ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	pending, _ = e.Tasks(ctx, entry.TaskPending)
	if len(pending) != 0 {
		t.Errorf("task still pending: %+v", pending)
	}
}

func TestSubmitRejectsBlankText(t *testing.T) {
	e := newEngine(t, Options{})
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, _, err := e.Submit(context.Background(), text); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("Submit(%q): expected ErrInvalidInput, got %v", text, err)
		}
	}
}

func TestSubmitKeepsAngleBracketsInPlainText(t *testing.T) {
	e := newEngine(t, Options{})
	text := "My salary<bonus this year. I need to call mom."

	ent, created, err := e.Submit(context.Background(), text)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ent.Text != text {
		t.Errorf("stored text = %q, want %q", ent.Text, text)
	}
	if len(created) != 1 || created[0].Text != "call mom" {
		t.Errorf("tasks = %+v, want [call mom]", created)
	}

	a := e.Analyze(context.Background(), "x<y and I need to rest.")
	if len(a.Tasks) != 1 || a.Tasks[0] != "rest" {
		t.Errorf("Analyze tasks = %v", a.Tasks)
	}
}

func TestSubmitAtBeforeEpoch(t *testing.T) {
	e := newEngine(t, Options{})
	ctx := context.Background()
	date := time.Date(1965, 6, 1, 12, 0, 0, 0, time.UTC)

	ent, _, err := e.SubmitAt(ctx, "Old memory of the lake.", date)
	if err != nil {
		t.Fatalf("SubmitAt: %v", err)
	}
	if !ent.Date.Equal(date) {
		t.Errorf("date = %v, want %v", ent.Date, date)
	}
	id, err := ulid.Parse(ent.ID)
	if err != nil {
		t.Fatalf("entry ID %q is not a ULID: %v", ent.ID, err)
	}
	if id.Time() != ulid.Timestamp(now) {
		t.Errorf("ULID time = %d, want creation time %d", id.Time(), ulid.Timestamp(now))
	}

	got, err := e.Entries(ctx, entry.All)
	if err != nil || len(got) != 1 || got[0].ID != ent.ID {
		t.Errorf("Entries = %+v, %v", got, err)
	}
}

func TestInsightsByPeriod(t *testing.T) {
	e := newEngine(t, Options{Classifier: fixedClassifier{polarity: 0.5}})
	ctx := context.Background()

	old := now.AddDate(0, 0, -20)
	mustSubmitAt(t, e, "Garden weeds again.", old)
	mustSubmitAt(t, e, "garden weeds everywhere", old.Add(time.Hour))
	mustSubmitAt(t, e, "River run.", now.AddDate(0, 0, -2))
	mustSubmitAt(t, e, "river run", now.AddDate(0, 0, -1))
	mustSubmitAt(t, e, "Pasta", now.AddDate(0, 0, -1))
	mustSubmitAt(t, e, "tax forms", now)
	mustSubmitAt(t, e, "laundry", now)

	weekly, err := e.Insights(ctx, entry.Weekly)
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if len(weekly) == 0 || weekly[0].Topic != "river run" {
		t.Fatalf("weekly insights = %+v", weekly)
	}
	for _, in := range weekly {
		if in.Topic == "garden weeds" {
			t.Error("weekly insights include an entry older than 7 days")
		}
	}

	all, err := e.Insights(ctx, entry.All)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, in := range all {
		if in.Topic == "garden weeds" {
			found = true
			if in.MentionCount != 2 || in.AvgMood != 1 {
				t.Errorf("garden weeds = %+v", in)
			}
		}
	}
	if !found {
		t.Errorf("all-time insights missing garden weeds: %+v", all)
	}
}

func TestPromptUsesRecentWindow(t *testing.T) {
	tok := ingest.NewTokenizer(stoplist.Default())
	cfg := prompt.DefaultConfig()
	cfg.Window = 1
	e := newEngine(t, Options{
		Tokenizer: tok,
		Prompts:   prompt.NewGenerator(tok, cfg, lastRand{}),
	})
	ctx := context.Background()

	got, err := e.Prompt(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg.Base[len(cfg.Base)-1] {
		t.Errorf("empty journal prompt = %q, want a base prompt", got)
	}

	mustSubmitAt(t, e, "Feeling stuck.", now.Add(-time.Hour))
	got, _ = e.Prompt(ctx)
	if !strings.Contains(got, "'stuck'") {
		t.Errorf("expected recency prompt about 'stuck', got %q", got)
	}

	// The newer entry pushes the stuck one out of a one-entry window.
	mustSubmitAt(t, e, "Quiet day.", now)
	got, _ = e.Prompt(ctx)
	if got != cfg.Base[len(cfg.Base)-1] {
		t.Errorf("prompt after window moved = %q", got)
	}
}

func TestDailyPromptIsStored(t *testing.T) {
	e := newEngine(t, Options{})
	ctx := context.Background()

	p, err := e.DailyPrompt(ctx)
	if err != nil {
		t.Fatalf("DailyPrompt: %v", err)
	}
	if p.Day != "2024-03-15" || p.Text == "" {
		t.Errorf("unexpected prompt %+v", p)
	}

	latest, ok, err := e.LatestPrompt(ctx)
	if err != nil || !ok || latest.Text != p.Text {
		t.Errorf("LatestPrompt = %+v %v %v", latest, ok, err)
	}
}

func TestReport(t *testing.T) {
	e := newEngine(t, Options{Prompts: prompt.NewGenerator(ingest.NewTokenizer(stoplist.Default()), prompt.DefaultConfig(), firstRand{})})
	mustSubmitAt(t, e, "work project", now.Add(-2*time.Hour))
	mustSubmitAt(t, e, "work project again", now.Add(-time.Hour))
	mustSubmitAt(t, e, "quiet evening", now)

	r, err := e.Report(context.Background(), entry.All)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if r.Period != entry.All || r.Prompt == "" || r.ID == "" {
		t.Errorf("unexpected report %+v", r)
	}
	if len(r.Insights) == 0 || r.Insights[0].Topic != "work project" {
		t.Errorf("report insights = %+v", r.Insights)
	}
}

func TestDelete(t *testing.T) {
	e := newEngine(t, Options{})
	ctx := context.Background()

	ent := mustSubmitAt(t, e, "I must water plants.", now)
	if err := e.Delete(ctx, ent.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if tasks, _ := e.Tasks(ctx, ""); len(tasks) != 0 {
		t.Errorf("tasks survived delete: %+v", tasks)
	}
	if err := e.Delete(ctx, ent.ID); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func mustSubmitAt(t *testing.T, e *Engine, text string, date time.Time) entry.Entry {
	t.Helper()
	ent, _, err := e.SubmitAt(context.Background(), text, date)
	if err != nil {
		t.Fatalf("SubmitAt(%q): %v", text, err)
	}
	return ent
}

func TestSuggestStopwords(t *testing.T) {
	e := newEngine(t, Options{})
	for i, text := range []string{
		"Today the meeting ran long.",
		"Today I cooked pasta.",
		"Today was calm, read a book.",
		"Today felt slow.",
		"Today: gym, groceries.",
		"A quiet evening.",
	} {
		mustSubmitAt(t, e, text, now.Add(time.Duration(i)*time.Minute))
	}

	got, err := e.SuggestStopwords(context.Background(), entry.All, stoplist.Thresholds{})
	if err != nil {
		t.Fatalf("SuggestStopwords: %v", err)
	}
	if len(got) != 1 || got[0].Token != "today" || got[0].DF != 5 {
		t.Errorf("candidates = %+v", got)
	}
}
