package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/jotlens/pkg/jotlens/entry"
	"github.com/cognicore/jotlens/pkg/jotlens/internalerr"
	"github.com/cognicore/jotlens/pkg/jotlens/mood"
	"github.com/cognicore/jotlens/pkg/jotlens/store"
)

// timeLayout is fixed width so stored dates sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a SQLite database with WAL mode
// and foreign keys enabled, then applies pending migrations.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// PRAGMAs are per connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

// AddEntry inserts the entry and its pending tasks in one transaction.
func (s *sqliteStore) AddEntry(ctx context.Context, e entry.Entry, taskTexts []string) ([]entry.Task, error) {
	if e.ID == "" {
		return nil, fmt.Errorf("entry id: %w", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO entries (id, date, text, mood, polarity, productivity)
VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, formatTime(e.Date), e.Text, string(e.Mood), e.Polarity, e.Productivity)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	created := make([]entry.Task, 0, len(taskTexts))
	for _, text := range taskTexts {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (entry_id, text, status) VALUES (?, ?, ?)`,
			e.ID, text, string(entry.TaskPending))
		if err != nil {
			return nil, fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		created = append(created, entry.Task{ID: id, EntryID: e.ID, Text: text, Status: entry.TaskPending})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (entry.Entry, error) {
	var (
		e         entry.Entry
		date, lbl string
	)
	if err := row.Scan(&e.ID, &date, &e.Text, &lbl, &e.Polarity, &e.Productivity); err != nil {
		return entry.Entry{}, err
	}
	t, err := parseTime(date)
	if err != nil {
		return entry.Entry{}, err
	}
	e.Date = t
	if e.Mood, err = mood.ParseLabel(lbl); err != nil {
		return entry.Entry{}, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	return e, nil
}

// GetEntry returns one entry by ID.
func (s *sqliteStore) GetEntry(ctx context.Context, id string) (entry.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, date, text, mood, polarity, productivity
FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entry.Entry{}, fmt.Errorf("entry %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return entry.Entry{}, err
	}
	return e, nil
}

// ListEntries returns entries on or after opts.Since, oldest first. With a
// limit only the most recent opts.Limit entries are kept.
func (s *sqliteStore) ListEntries(ctx context.Context, opts store.ListOptions) ([]entry.Entry, error) {
	query := `SELECT id, date, text, mood, polarity, productivity FROM entries`
	var args []any
	if !opts.Since.IsZero() {
		query += ` WHERE date >= ?`
		args = append(args, formatTime(opts.Since))
	}
	query += ` ORDER BY date DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// DeleteEntry removes an entry together with its tasks.
func (s *sqliteStore) DeleteEntry(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE entry_id = ?`, id); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", id, internalerr.ErrNotFound)
	}
	return tx.Commit()
}

// ListTasks returns tasks with the given status (all when empty), by ID.
func (s *sqliteStore) ListTasks(ctx context.Context, status entry.TaskStatus) ([]entry.Task, error) {
	query := `SELECT id, entry_id, text, status FROM tasks`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entry.Task
	for rows.Next() {
		var (
			t  entry.Task
			st string
		)
		if err := rows.Scan(&t.ID, &t.EntryID, &t.Text, &st); err != nil {
			return nil, err
		}
		t.Status = entry.TaskStatus(st)
		out = append(out, t)
	}
	return out, rows.Err()
}

// CompleteTask marks a task done.
func (s *sqliteStore) CompleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ? WHERE id = ?`, string(entry.TaskDone), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, internalerr.ErrNotFound)
	}
	return nil
}

// SavePrompt stores the prompt for its day, replacing any earlier one.
func (s *sqliteStore) SavePrompt(ctx context.Context, p store.DailyPrompt) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO daily_prompts (day, text, created_at) VALUES (?, ?, ?)
ON CONFLICT(day) DO UPDATE SET text = excluded.text, created_at = excluded.created_at`,
		p.Day, p.Text, formatTime(p.CreatedAt))
	return err
}

// LatestPrompt returns the prompt with the most recent day.
func (s *sqliteStore) LatestPrompt(ctx context.Context) (store.DailyPrompt, bool, error) {
	var (
		p       store.DailyPrompt
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT day, text, created_at FROM daily_prompts ORDER BY day DESC LIMIT 1`).
		Scan(&p.Day, &p.Text, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.DailyPrompt{}, false, nil
	}
	if err != nil {
		return store.DailyPrompt{}, false, err
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return store.DailyPrompt{}, false, err
	}
	return p, true, nil
}
