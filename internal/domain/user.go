package domain

import "time"

// User is the engine's view of a user record: identity plus the running
// point balance this engine adjusts.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Points     int64     `json:"points"`
	LastActive time.Time `json:"last_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// PointKind classifies a point-ledger adjustment.
type PointKind string

const (
	// PointDailyLog is the fast-path adjustment applied when a habit
	// completion (or miss) is logged.
	PointDailyLog PointKind = "daily_log"
	// PointPeriodScore is the delta applied when a period score is
	// recomputed.
	PointPeriodScore PointKind = "period_score"
)

// PointEntry is one row of the point ledger: a signed adjustment to a
// user's balance with the balance that resulted.
type PointEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      PointKind `json:"kind"`
	Amount    int64     `json:"amount"`
	Reference string    `json:"reference,omitempty"`
	Balance   int64     `json:"balance"`
}
