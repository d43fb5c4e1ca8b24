// Package sqlite provides SQLite-based persistent storage for the honor
// score engine. Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/honor.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "honor.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// User directory: identity plus the running point balance the
		// engine adjusts. last_active powers the daily-refresh window.
		`CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL DEFAULT '',
			points      INTEGER NOT NULL DEFAULT 0,
			last_active INTEGER,
			created_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_active ON users(last_active)`,

		// Daily habit logs: at most one row per (user, habit, day).
		`CREATE TABLE IF NOT EXISTS daily_logs (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			habit_id   TEXT NOT NULL,
			day        INTEGER NOT NULL,
			completed  BOOLEAN NOT NULL DEFAULT 0,
			weight     INTEGER NOT NULL DEFAULT 1,
			streak     INTEGER NOT NULL DEFAULT 0,
			note       TEXT,
			proof_ref  TEXT,
			points     INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			UNIQUE(user_id, habit_id, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_user_day ON daily_logs(user_id, day)`,

		// Period score records: one row per (user, period), overwritten in
		// full on recomputation. The daily timeline is stored as JSON.
		`CREATE TABLE IF NOT EXISTS period_scores (
			user_id          TEXT NOT NULL,
			start_day        INTEGER NOT NULL,
			end_day          INTEGER NOT NULL,
			period_number    INTEGER NOT NULL,
			month            INTEGER NOT NULL,
			year             INTEGER NOT NULL,
			timeline         TEXT NOT NULL,
			points_earned    INTEGER NOT NULL,
			points_lost      INTEGER NOT NULL,
			raw_score        INTEGER NOT NULL,
			max_possible     REAL NOT NULL,
			completed_days   INTEGER NOT NULL,
			missed_days      INTEGER NOT NULL,
			average_weight   REAL NOT NULL,
			streak_bonus     INTEGER NOT NULL,
			final_score      INTEGER NOT NULL,
			honor_score      INTEGER NOT NULL,
			previous_score   INTEGER NOT NULL,
			improvement      INTEGER NOT NULL,
			consistency_rate INTEGER NOT NULL,
			calculated_at    INTEGER NOT NULL,
			PRIMARY KEY(user_id, start_day, end_day, period_number)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_user ON period_scores(user_id, start_day)`,

		// Point ledger: every balance adjustment with the balance that
		// resulted, so the running total is auditable.
		`CREATE TABLE IF NOT EXISTS point_ledger (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id   TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			kind      TEXT NOT NULL,
			amount    INTEGER NOT NULL,
			reference TEXT,
			balance   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_user ON point_ledger(user_id, id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
