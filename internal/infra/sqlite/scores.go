package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/honorhabits/honor/internal/domain"
)

// ─── Period Score Repository ────────────────────────────────────────────────

// SavePeriodScore upserts the score record for (user, period) and adjusts the
// user's point balance by (new honor − old honor for the same period), with a
// ledger entry, all in one transaction. The old score is read inside the
// transaction, so concurrent recomputation of the same period cannot
// double-apply the delta. Returns the balance delta.
func (d *DB) SavePeriodScore(score domain.PeriodScore) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	if err := tx.QueryRow(`SELECT points FROM users WHERE id = ?`, score.UserID).Scan(&balance); err != nil {
		if err == sql.ErrNoRows {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("load user: %w", err)
	}

	p := score.Period
	var oldHonor int64
	err = tx.QueryRow(
		`SELECT honor_score FROM period_scores
		 WHERE user_id = ? AND start_day = ? AND end_day = ? AND period_number = ?`,
		score.UserID, p.Start.Unix(), p.End.Unix(), p.Number,
	).Scan(&oldHonor)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("load previous record: %w", err)
	}

	timeline, err := json.Marshal(score.Timeline)
	if err != nil {
		return 0, fmt.Errorf("marshal timeline: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO period_scores (user_id, start_day, end_day, period_number, month, year,
			timeline, points_earned, points_lost, raw_score, max_possible,
			completed_days, missed_days, average_weight, streak_bonus,
			final_score, honor_score, previous_score, improvement,
			consistency_rate, calculated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, start_day, end_day, period_number) DO UPDATE SET
			month=excluded.month,
			year=excluded.year,
			timeline=excluded.timeline,
			points_earned=excluded.points_earned,
			points_lost=excluded.points_lost,
			raw_score=excluded.raw_score,
			max_possible=excluded.max_possible,
			completed_days=excluded.completed_days,
			missed_days=excluded.missed_days,
			average_weight=excluded.average_weight,
			streak_bonus=excluded.streak_bonus,
			final_score=excluded.final_score,
			honor_score=excluded.honor_score,
			previous_score=excluded.previous_score,
			improvement=excluded.improvement,
			consistency_rate=excluded.consistency_rate,
			calculated_at=excluded.calculated_at`,
		score.UserID, p.Start.Unix(), p.End.Unix(), p.Number, int(p.Month), p.Year,
		string(timeline), score.PointsEarned, score.PointsLost, score.RawScore,
		score.MaxPossible, score.CompletedDays, score.MissedDays, score.AverageWeight,
		score.StreakBonus, score.FinalScore, score.HonorScore, score.PreviousScore,
		score.Improvement, score.ConsistencyRate, score.CalculatedAt.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("upsert score: %w", err)
	}

	delta := int64(score.HonorScore) - oldHonor
	if delta != 0 {
		balance += delta
		_, err = tx.Exec(`UPDATE users SET points = ? WHERE id = ?`, balance, score.UserID)
		if err != nil {
			return 0, fmt.Errorf("adjust balance: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO point_ledger (user_id, timestamp, kind, amount, reference, balance)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			score.UserID, score.CalculatedAt.Unix(), string(domain.PointPeriodScore),
			delta, p.Ref(), balance,
		)
		if err != nil {
			return 0, fmt.Errorf("ledger entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return delta, nil
}

// GetPeriodScore retrieves the stored record for (user, period).
// Returns (nil, nil) when no record exists.
func (d *DB) GetPeriodScore(userID string, p domain.Period) (*domain.PeriodScore, error) {
	row := d.db.QueryRow(
		`SELECT user_id, start_day, end_day, period_number, month, year, timeline,
			points_earned, points_lost, raw_score, max_possible, completed_days,
			missed_days, average_weight, streak_bonus, final_score, honor_score,
			previous_score, improvement, consistency_rate, calculated_at
		 FROM period_scores
		 WHERE user_id = ? AND start_day = ? AND end_day = ? AND period_number = ?`,
		userID, p.Start.Unix(), p.End.Unix(), p.Number,
	)
	return scanScore(row)
}

// ListPeriodScores returns a user's stored records, newest period first.
func (d *DB) ListPeriodScores(userID string, limit int) ([]domain.PeriodScore, error) {
	rows, err := d.db.Query(
		`SELECT user_id, start_day, end_day, period_number, month, year, timeline,
			points_earned, points_lost, raw_score, max_possible, completed_days,
			missed_days, average_weight, streak_bonus, final_score, honor_score,
			previous_score, improvement, consistency_rate, calculated_at
		 FROM period_scores WHERE user_id = ? ORDER BY start_day DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []domain.PeriodScore
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *s)
	}
	return scores, rows.Err()
}

// ─── Point Ledger ───────────────────────────────────────────────────────────

// LedgerEntries returns recent point-ledger entries for a user, newest first.
func (d *DB) LedgerEntries(userID string, limit int) ([]domain.PointEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, timestamp, kind, amount, reference, balance
		 FROM point_ledger WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PointEntry
	for rows.Next() {
		var e domain.PointEntry
		var ts int64
		var ref sql.NullString
		err := rows.Scan(&e.ID, &e.UserID, &ts, &e.Kind, &e.Amount, &ref, &e.Balance)
		if err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		if ref.Valid {
			e.Reference = ref.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanScore(s scanner) (*domain.PeriodScore, error) {
	var sc domain.PeriodScore
	var startDay, endDay, calculatedAt int64
	var month int
	var timeline string

	err := s.Scan(&sc.UserID, &startDay, &endDay, &sc.Period.Number, &month,
		&sc.Period.Year, &timeline, &sc.PointsEarned, &sc.PointsLost, &sc.RawScore,
		&sc.MaxPossible, &sc.CompletedDays, &sc.MissedDays, &sc.AverageWeight,
		&sc.StreakBonus, &sc.FinalScore, &sc.HonorScore, &sc.PreviousScore,
		&sc.Improvement, &sc.ConsistencyRate, &calculatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan score: %w", err)
	}

	sc.Period.Start = time.Unix(startDay, 0).UTC()
	sc.Period.End = time.Unix(endDay, 0).UTC()
	sc.Period.Month = time.Month(month)
	sc.CalculatedAt = time.Unix(calculatedAt, 0)
	if err := json.Unmarshal([]byte(timeline), &sc.Timeline); err != nil {
		return nil, fmt.Errorf("unmarshal timeline: %w", err)
	}
	return &sc, nil
}
