package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/honorhabits/honor/internal/domain"
)

// ─── User Directory ─────────────────────────────────────────────────────────

// CreateUser inserts a new user record with a zero point balance.
func (d *DB) CreateUser(u domain.User) error {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO users (id, name, points, last_active, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Points, nullableUnix(u.LastActive), u.CreatedAt.Unix(),
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrUserExists
	}
	return nil
}

// GetUser retrieves a user by ID. Returns (nil, nil) when not found.
func (d *DB) GetUser(id string) (*domain.User, error) {
	row := d.db.QueryRow(
		`SELECT id, name, points, last_active, created_at FROM users WHERE id = ?`, id,
	)
	return scanUser(row)
}

// ListUserIDs returns every user ID, for full-base batch runs.
func (d *DB) ListUserIDs() ([]string, error) {
	rows, err := d.db.Query(`SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ActiveUserIDs returns users whose last activity is at or after since.
// Powers the cheap daily refresh of the still-open period.
func (d *DB) ActiveUserIDs(since time.Time) ([]string, error) {
	rows, err := d.db.Query(
		`SELECT id FROM users WHERE last_active IS NOT NULL AND last_active >= ? ORDER BY id`,
		since.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var lastActive sql.NullInt64
	var createdAt int64

	err := s.Scan(&u.ID, &u.Name, &u.Points, &lastActive, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.CreatedAt = time.Unix(createdAt, 0)
	if lastActive.Valid {
		u.LastActive = time.Unix(lastActive.Int64, 0)
	}
	return &u, nil
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
