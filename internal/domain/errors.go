package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Directory errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user already exists")
	ErrHabitNotFound = errors.New("habit not found")

	// Ingestion errors — rejected at the boundary, before any log is written
	ErrInvalidWeight = errors.New("weight must be an integer between 1 and 5")
	ErrInvalidPeriod = errors.New("period number must be 1 or 2")

	// Scheduler lifecycle errors
	ErrSchedulerRunning = errors.New("scheduler is already running")
	ErrSchedulerStopped = errors.New("scheduler is not running")

	// Score errors
	ErrScoreNotFound = errors.New("no score recorded for this period")
)
