package entry

import (
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/jotlens/pkg/jotlens/mood"
)

// Entry is one submitted journal entry with its stored analysis
type Entry struct {
	ID           string     `json:"id" yaml:"id"`
	Date         time.Time  `json:"date" yaml:"date"`
	Text         string     `json:"text" yaml:"text"`
	Mood         mood.Label `json:"mood" yaml:"mood"`
	Polarity     float64    `json:"polarity" yaml:"polarity"`
	Productivity float64    `json:"productivity" yaml:"productivity"`
}

// TaskStatus is the lifecycle state of an extracted task
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
)

// Task is an action item extracted from an entry
type Task struct {
	ID      int64      `json:"id" yaml:"id"`
	EntryID string     `json:"entry_id" yaml:"entry_id"`
	Text    string     `json:"text" yaml:"text"`
	Status  TaskStatus `json:"status" yaml:"status"`
}

// Period selects how far back an analytics query reaches
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	All     Period = "all"
)

// ParsePeriod accepts weekly, monthly or all (empty means all)
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Weekly, Monthly, All:
		return p, nil
	case "":
		return All, nil
	default:
		return "", fmt.Errorf("unknown period %q (want weekly, monthly or all)", s)
	}
}

// Since returns the earliest entry date included in the period relative
// to now. The zero time means no lower bound.
func (p Period) Since(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case Weekly:
		return day.AddDate(0, 0, -7)
	case Monthly:
		return day.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

// MeanProductivity averages stored productivity, 0 for none
func MeanProductivity(entries []Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		sum += e.Productivity
	}
	return sum / float64(len(entries))
}

// MeanMood averages mood label values, 0 for none
func MeanMood(entries []Entry) float64 {
	moods := make([]mood.Label, len(entries))
	for i, e := range entries {
		moods[i] = e.Mood
	}
	return mood.Mean(moods)
}

// Containing returns the entries whose lowercased text contains the
// lowercased topic as a substring.
func Containing(entries []Entry, topic string) []Entry {
	needle := strings.ToLower(topic)
	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Text), needle) {
			out = append(out, e)
		}
	}
	return out
}
