package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/jotlens/pkg/jotlens/entry"
	"github.com/cognicore/jotlens/pkg/jotlens/internalerr"
	"github.com/cognicore/jotlens/pkg/jotlens/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu         sync.RWMutex
	nextTaskID int64
	entries    map[string]entry.Entry
	tasks      map[int64]entry.Task
	prompts    map[string]store.DailyPrompt
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		nextTaskID: 1,
		entries:    make(map[string]entry.Entry),
		tasks:      make(map[int64]entry.Task),
		prompts:    make(map[string]store.DailyPrompt),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// AddEntry stores an entry and creates a pending task per task text.
func (s *Store) AddEntry(ctx context.Context, e entry.Entry, taskTexts []string) ([]entry.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		return nil, fmt.Errorf("entry id: %w", internalerr.ErrInvalidInput)
	}
	if _, exists := s.entries[e.ID]; exists {
		return nil, fmt.Errorf("entry %s already exists: %w", e.ID, internalerr.ErrInvalidInput)
	}
	s.entries[e.ID] = e

	created := make([]entry.Task, 0, len(taskTexts))
	for _, text := range taskTexts {
		t := entry.Task{ID: s.nextTaskID, EntryID: e.ID, Text: text, Status: entry.TaskPending}
		s.nextTaskID++
		s.tasks[t.ID] = t
		created = append(created, t)
	}
	return created, nil
}

// GetEntry returns one entry by ID.
func (s *Store) GetEntry(ctx context.Context, id string) (entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return entry.Entry{}, fmt.Errorf("entry %s: %w", id, internalerr.ErrNotFound)
	}
	return e, nil
}

// ListEntries returns entries on or after opts.Since, oldest first.
func (s *Store) ListEntries(ctx context.Context, opts store.ListOptions) ([]entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entry.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !opts.Since.IsZero() && e.Date.Before(opts.Since) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[len(out)-opts.Limit:]
	}
	return out, nil
}

// DeleteEntry removes an entry and its tasks.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("entry %s: %w", id, internalerr.ErrNotFound)
	}
	for tid, t := range s.tasks {
		if t.EntryID == id {
			delete(s.tasks, tid)
		}
	}
	delete(s.entries, id)
	return nil
}

// ListTasks returns tasks with the given status (all when empty), by ID.
func (s *Store) ListTasks(ctx context.Context, status entry.TaskStatus) ([]entry.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entry.Task
	for _, t := range s.tasks {
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CompleteTask marks a task done.
func (s *Store) CompleteTask(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %d: %w", id, internalerr.ErrNotFound)
	}
	t.Status = entry.TaskDone
	s.tasks[id] = t
	return nil
}

// SavePrompt stores the prompt for its day, replacing any earlier one.
func (s *Store) SavePrompt(ctx context.Context, p store.DailyPrompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts[p.Day] = p
	return nil
}

// LatestPrompt returns the prompt with the most recent day.
func (s *Store) LatestPrompt(ctx context.Context) (store.DailyPrompt, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest store.DailyPrompt
	found := false
	for day, p := range s.prompts {
		if !found || day > latest.Day {
			latest = p
			found = true
		}
	}
	return latest, found, nil
}

var _ store.Store = (*Store)(nil)
