package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cognicore/jotlens/pkg/jotlens/store"
)

// DefaultTimeout bounds a single job run
const DefaultTimeout = 5 * time.Minute

// Job represents a scheduled task
type Job func(ctx context.Context) error

// Scheduler manages periodic tasks
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// New creates a new scheduler running in loc (nil means time.Local)
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		timeout: DefaultTimeout,
		jobs:    make(map[string]cron.EntryID),
	}
}

// SetTimeout changes the per-run timeout
func (s *Scheduler) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// AddJob adds a job with a cron schedule.
// schedule format: "0 7 * * *" (at 7:00 AM daily)
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already scheduled", name)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		if err := s.run(name, job); err != nil {
			log.Printf("[scheduler] Job %s failed: %v", name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	log.Printf("[scheduler] Added job: %s (schedule: %s)", name, schedule)
	return nil
}

func (s *Scheduler) run(name string, job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log.Printf("[scheduler] Starting job: %s", name)
	start := time.Now()
	if err := job(ctx); err != nil {
		return err
	}
	log.Printf("[scheduler] Job %s completed in %v", name, time.Since(start))
	return nil
}

// PromptSource produces and stores the prompt of the day
type PromptSource interface {
	DailyPrompt(ctx context.Context) (store.DailyPrompt, error)
}

// DailyPromptJob wraps src as a Job
func DailyPromptJob(src PromptSource) Job {
	return func(ctx context.Context) error {
		p, err := src.DailyPrompt(ctx)
		if err != nil {
			return fmt.Errorf("daily prompt: %w", err)
		}
		log.Printf("[scheduler] Prompt for %s: %s", p.Day, p.Text)
		return nil
	}
}

// AddDailyPromptJob schedules the daily prompt job
func (s *Scheduler) AddDailyPromptJob(schedule string, src PromptSource) error {
	return s.AddJob("daily-prompt", schedule, DailyPromptJob(src))
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.jobs[name]; ok {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		log.Printf("[scheduler] Removed job: %s", name)
	}
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	log.Println("[scheduler] Starting scheduler")
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	log.Println("[scheduler] Stopping scheduler")
	return s.cron.Stop()
}

// RunNow immediately executes a job
func (s *Scheduler) RunNow(name string, job Job) error {
	return s.run(name, job)
}

// JobInfo contains information about a scheduled job
type JobInfo struct {
	Name    string
	NextRun time.Time
	LastRun time.Time
}

// ListJobs returns info about scheduled jobs, sorted by name
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	infos := make([]JobInfo, 0, len(s.jobs))
	for name, entryID := range s.jobs {
		for _, e := range entries {
			if e.ID == entryID {
				infos = append(infos, JobInfo{Name: name, NextRun: e.Next, LastRun: e.Prev})
				break
			}
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
