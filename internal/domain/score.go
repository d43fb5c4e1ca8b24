// Package domain holds the core value types of the honor score engine.
// Domain types are pure — no infrastructure dependency.
package domain

import (
	"fmt"
	"time"
)

// PeriodLengthDays is the fixed normalization denominator for a half-month
// scoring window. Period 2 of a 31-day month spans 16 calendar days, but the
// max-possible-points denominator stays at 15 to keep scores comparable
// across periods.
const PeriodLengthDays = 15

// Weight bounds for a single habit log.
const (
	MinWeight = 1
	MaxWeight = 5
)

// Period is a half-month scoring window. Number 1 covers days 1–15,
// number 2 covers day 16 through the last day of the month. Start and End
// are inclusive UTC-midnight days.
type Period struct {
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Number int        `json:"number"`
	Month  time.Month `json:"month"`
	Year   int        `json:"year"`
}

// Days returns the number of calendar days the period spans.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// Ref returns a short stable identifier for the period, e.g. "2026-03.1".
func (p Period) Ref() string {
	return fmt.Sprintf("%04d-%02d.%d", p.Year, int(p.Month), p.Number)
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	day := DayOf(t)
	return !day.Before(p.Start) && !day.After(p.End)
}

// DailyLog is one habit-completion event, at most one per (user, habit, day).
type DailyLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	HabitID   string    `json:"habit_id"`
	Day       time.Time `json:"day"`
	Completed bool      `json:"completed"`
	Weight    int       `json:"weight"`
	Streak    int       `json:"streak"`
	Note      string    `json:"note,omitempty"`
	ProofRef  string    `json:"proof_ref,omitempty"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DayEntry is one day of a reconstructed period timeline.
// HasLogs distinguishes an explicit miss (logged but incomplete) from an
// untracked day — only explicit misses are penalized.
type DayEntry struct {
	Day       time.Time `json:"day"`
	Completed bool      `json:"completed"`
	Weight    int       `json:"weight"`
	Streak    int       `json:"streak"`
	Bonus     int       `json:"bonus"`
	HasLogs   bool      `json:"has_logs"`
}

// PeriodScore is the persisted result of one aggregation run for one
// (user, period). Recomputation overwrites it in place.
type PeriodScore struct {
	UserID          string     `json:"user_id"`
	Period          Period     `json:"period"`
	Timeline        []DayEntry `json:"timeline"`
	PointsEarned    int        `json:"points_earned"`
	PointsLost      int        `json:"points_lost"`
	RawScore        int        `json:"raw_score"`
	MaxPossible     float64    `json:"max_possible"`
	CompletedDays   int        `json:"completed_days"`
	MissedDays      int        `json:"missed_days"`
	AverageWeight   float64    `json:"average_weight"`
	StreakBonus     int        `json:"streak_bonus"`
	FinalScore      int        `json:"final_score"`
	HonorScore      int        `json:"honor_score"`
	PreviousScore   int        `json:"previous_score"`
	Improvement     int        `json:"improvement"`
	ConsistencyRate int        `json:"consistency_rate"`
	CalculatedAt    time.Time  `json:"calculated_at"`
}

// BatchSummary reports the outcome of a full-user-base recomputation run.
// Per-user failures are counted, not fatal.
type BatchSummary struct {
	Trigger      string        `json:"trigger"`
	Period       Period        `json:"period"`
	SuccessCount int           `json:"success_count"`
	ErrorCount   int           `json:"error_count"`
	Duration     time.Duration `json:"duration"`
}

// ScoringRules are the tunable constants of the aggregation fold.
type ScoringRules struct {
	// DayCompletionRatio is the fraction of a day's logged habits that must
	// be completed for the day to count as completed.
	DayCompletionRatio float64
	// MissPenaltyCap is how many consecutive explicit misses cost points
	// before further misses in the same run become free.
	MissPenaltyCap int
	// ActiveWindowDays is the trailing window for the daily refresh's
	// active-user set.
	ActiveWindowDays int
}

// DefaultRules returns the production scoring constants.
func DefaultRules() ScoringRules {
	return ScoringRules{
		DayCompletionRatio: 0.7,
		MissPenaltyCap:     3,
		ActiveWindowDays:   7,
	}
}

// DayOf buckets a timestamp to its UTC calendar day. All scoring boundaries
// are UTC midnights; time-of-day is discarded at ingestion.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
