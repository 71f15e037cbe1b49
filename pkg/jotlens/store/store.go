package store

import (
	"context"
	"time"

	"github.com/cognicore/jotlens/pkg/jotlens/entry"
)

// Store persists journal entries, their tasks and generated daily prompts
type Store interface {
	Close() error

	// Entries
	AddEntry(ctx context.Context, e entry.Entry, tasks []string) ([]entry.Task, error)
	GetEntry(ctx context.Context, id string) (entry.Entry, error)
	ListEntries(ctx context.Context, opts ListOptions) ([]entry.Entry, error)
	DeleteEntry(ctx context.Context, id string) error

	// Tasks
	ListTasks(ctx context.Context, status entry.TaskStatus) ([]entry.Task, error)
	CompleteTask(ctx context.Context, id int64) error

	// Daily prompts
	SavePrompt(ctx context.Context, p DailyPrompt) error
	LatestPrompt(ctx context.Context) (DailyPrompt, bool, error)
}

// ListOptions filters an entry listing. Results are always oldest first.
type ListOptions struct {
	Since time.Time // zero means no lower bound
	Limit int       // keep only the most recent N; 0 means all
}

// DailyPrompt is a prompt generated by the scheduler for one day
type DailyPrompt struct {
	Day       string    `json:"day"` // YYYY-MM-DD
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// DayFormat is the layout of DailyPrompt.Day
const DayFormat = "2006-01-02"
