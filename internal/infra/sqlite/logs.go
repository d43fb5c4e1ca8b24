package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/honorhabits/honor/internal/domain"
)

// ─── Daily Log Repository ───────────────────────────────────────────────────

// UpsertDailyLog records one day's habit event, keyed by (user, habit, day).
// Re-logging the same day updates the existing row instead of duplicating it.
//
// The user's point balance is adjusted by (new points − old points) and a
// ledger entry is written, all in one transaction, so re-logging a day never
// double-counts. Returns the stored log and the balance delta applied.
func (d *DB) UpsertDailyLog(l domain.DailyLog) (*domain.DailyLog, int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	if err := tx.QueryRow(`SELECT points FROM users WHERE id = ?`, l.UserID).Scan(&balance); err != nil {
		if err == sql.ErrNoRows {
			return nil, 0, domain.ErrUserNotFound
		}
		return nil, 0, fmt.Errorf("load user: %w", err)
	}

	// Preserve the original row identity on re-log.
	var oldPoints int64
	err = tx.QueryRow(
		`SELECT id, points FROM daily_logs WHERE user_id = ? AND habit_id = ? AND day = ?`,
		l.UserID, l.HabitID, l.Day.Unix(),
	).Scan(&l.ID, &oldPoints)
	switch {
	case err == sql.ErrNoRows:
		// First log for this day — keep the caller-assigned ID.
	case err != nil:
		return nil, 0, fmt.Errorf("load existing log: %w", err)
	}

	now := l.UpdatedAt.Unix()
	_, err = tx.Exec(
		`INSERT INTO daily_logs (id, user_id, habit_id, day, completed, weight, streak, note, proof_ref, points, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, habit_id, day) DO UPDATE SET
			completed=excluded.completed,
			weight=excluded.weight,
			streak=excluded.streak,
			note=excluded.note,
			proof_ref=excluded.proof_ref,
			points=excluded.points,
			updated_at=excluded.updated_at`,
		l.ID, l.UserID, l.HabitID, l.Day.Unix(), l.Completed, l.Weight, l.Streak,
		nullStr(l.Note), nullStr(l.ProofRef), l.Points, l.CreatedAt.Unix(), now,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("upsert log: %w", err)
	}

	delta := int64(l.Points) - oldPoints
	balance += delta
	_, err = tx.Exec(
		`UPDATE users SET points = ?, last_active = ? WHERE id = ?`,
		balance, now, l.UserID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("adjust balance: %w", err)
	}

	if delta != 0 {
		_, err = tx.Exec(
			`INSERT INTO point_ledger (user_id, timestamp, kind, amount, reference, balance)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			l.UserID, now, string(domain.PointDailyLog), delta,
			l.HabitID+"@"+l.Day.Format("2006-01-02"), balance,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ledger entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit: %w", err)
	}
	return &l, delta, nil
}

// GetDailyLog retrieves one log by its natural key. Returns (nil, nil) when
// not found.
func (d *DB) GetDailyLog(userID, habitID string, day time.Time) (*domain.DailyLog, error) {
	row := d.db.QueryRow(
		`SELECT id, user_id, habit_id, day, completed, weight, streak, note, proof_ref, points, created_at, updated_at
		 FROM daily_logs WHERE user_id = ? AND habit_id = ? AND day = ?`,
		userID, habitID, day.Unix(),
	)
	return scanLog(row)
}

// LogsInRange returns all of a user's logs with day in [from, to],
// ordered chronologically.
func (d *DB) LogsInRange(userID string, from, to time.Time) ([]domain.DailyLog, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, habit_id, day, completed, weight, streak, note, proof_ref, points, created_at, updated_at
		 FROM daily_logs WHERE user_id = ? AND day >= ? AND day <= ? ORDER BY day, habit_id`,
		userID, from.Unix(), to.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.DailyLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func scanLog(s scanner) (*domain.DailyLog, error) {
	var l domain.DailyLog
	var day, createdAt, updatedAt int64
	var note, proofRef sql.NullString

	err := s.Scan(&l.ID, &l.UserID, &l.HabitID, &day, &l.Completed, &l.Weight,
		&l.Streak, &note, &proofRef, &l.Points, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan log: %w", err)
	}

	l.Day = time.Unix(day, 0).UTC()
	l.CreatedAt = time.Unix(createdAt, 0)
	l.UpdatedAt = time.Unix(updatedAt, 0)
	if note.Valid {
		l.Note = note.String
	}
	if proofRef.Valid {
		l.ProofRef = proofRef.String
	}
	return &l, nil
}
