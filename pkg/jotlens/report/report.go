package report

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/jotlens/pkg/jotlens/entry"
	"github.com/cognicore/jotlens/pkg/jotlens/insight"
)

// Builder constructs insight reports
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates a new report builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Report is a snapshot of the insights for one period plus a follow-up
// prompt
type Report struct {
	ID          string            `json:"id"`
	Period      entry.Period      `json:"period"`
	GeneratedAt time.Time         `json:"generated_at"`
	Insights    []insight.Insight `json:"insights"`
	Prompt      string            `json:"prompt"`
}

// Build stamps a report with a fresh ULID
func (b *Builder) Build(period entry.Period, insights []insight.Insight, prompt string, now time.Time) Report {
	b.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), b.entropy).String()
	b.mu.Unlock()

	return Report{
		ID:          id,
		Period:      period,
		GeneratedAt: now,
		Insights:    insights,
		Prompt:      prompt,
	}
}

// Markdown renders the report as a heading, a topic table and the prompt
func (r Report) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Journal insights (%s)\n\n", r.Period)
	fmt.Fprintf(&sb, "_Generated %s, report %s_\n\n", r.GeneratedAt.Format("2006-01-02 15:04 MST"), r.ID)

	if len(r.Insights) == 0 {
		sb.WriteString("No recurring topics yet.\n")
	} else {
		sb.WriteString("| Topic | Mentions | Avg mood | Avg productivity |\n")
		sb.WriteString("|---|---:|---:|---:|\n")
		for _, in := range r.Insights {
			fmt.Fprintf(&sb, "| %s | %d | %+.2f | %.2f |\n",
				escapeCell(in.Topic), in.MentionCount, in.AvgMood, in.AvgProductivity)
		}
	}

	if r.Prompt != "" {
		sb.WriteString("\n## Follow-up prompt\n\n")
		fmt.Fprintf(&sb, "> %s\n", r.Prompt)
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
