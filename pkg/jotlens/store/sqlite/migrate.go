package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// migration is a single schema step tracked through PRAGMA user_version.
type migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, tx *sql.Tx) error
}

// migrations is ordered. Append new steps with incrementing versions.
var migrations = []migration{
	{
		Version:     1,
		Description: "entries and tasks",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	date TEXT NOT NULL,
	text TEXT NOT NULL,
	mood TEXT NOT NULL,
	polarity REAL NOT NULL DEFAULT 0,
	productivity REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date);

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
	text TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending'
);

CREATE INDEX IF NOT EXISTS idx_tasks_entry ON tasks(entry_id);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "daily prompts",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS daily_prompts (
	day TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`)
			return err
		},
	},
}

func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// migrate brings the schema up to latestVersion.
func migrate(ctx context.Context, db *sql.DB) error {
	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current >= latestVersion() {
		return nil
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		log.Printf("applying migration %d: %s", m.Version, m.Description)

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if err := m.Up(ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}

		// modernc/sqlite does not allow user_version inside the transaction.
		// The DDL is idempotent so a crash here just re-runs the step.
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			return fmt.Errorf("setting version %d: %w", m.Version, err)
		}
	}
	return nil
}
