package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/honorhabits/honor/internal/domain"
	"github.com/honorhabits/honor/internal/infra/metrics"
)

// LogInput is one habit completion event from the tracking frontend.
type LogInput struct {
	UserID    string    `json:"user_id"`
	HabitID   string    `json:"habit_id"`
	Completed bool      `json:"completed"`
	Weight    int       `json:"weight"`   // 0 defaults to 1
	Note      string    `json:"note"`     // optional
	ProofRef  string    `json:"proof_ref"` // optional, opaque
	Day       time.Time `json:"day"`      // zero value means "today"
}

// LogHabitCompletion records one day's habit event and immediately applies
// its signed point value to the user's running balance — the fast path for
// responsive UI feedback, separate from full period recomputation.
//
// The event is bucketed to its UTC calendar day and upserted by
// (user, habit, day); re-logging the same day updates in place and the
// balance moves only by the point difference.
func (s *Service) LogHabitCompletion(ctx context.Context, in LogInput) (*domain.DailyLog, error) {
	if in.Weight == 0 {
		in.Weight = domain.MinWeight
	}
	if in.Weight < domain.MinWeight || in.Weight > domain.MaxWeight {
		return nil, domain.ErrInvalidWeight
	}
	if in.HabitID == "" {
		return nil, domain.ErrHabitNotFound
	}

	day := in.Day
	if day.IsZero() {
		day = time.Now()
	}
	day = domain.DayOf(day)

	lock := s.userLock(in.UserID)
	lock.Lock()
	defer lock.Unlock()

	// Streak as of this day is derived from yesterday's log for the same
	// habit, never set directly.
	streak := 0
	if in.Completed {
		streak = 1
		prev, err := s.db.GetDailyLog(in.UserID, in.HabitID, day.AddDate(0, 0, -1))
		if err != nil {
			return nil, fmt.Errorf("load previous day: %w", err)
		}
		if prev != nil && prev.Completed {
			streak = prev.Streak + 1
		}
	}

	points := in.Weight
	if !in.Completed {
		points = -in.Weight
	}

	now := time.Now()
	stored, _, err := s.db.UpsertDailyLog(domain.DailyLog{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		HabitID:   in.HabitID,
		Day:       day,
		Completed: in.Completed,
		Weight:    in.Weight,
		Streak:    streak,
		Note:      in.Note,
		ProofRef:  in.ProofRef,
		Points:    points,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	metrics.LogsIngested.Inc()
	return stored, nil
}
