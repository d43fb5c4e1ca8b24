// Package scoring implements the honor score engine: timeline
// reconstruction, the penalty-capped point fold, streak bonuses, trend
// analysis, and the ingestion fast path.
//
// Scores normalize a half-month of habit completions into 0–1000. The
// pipeline is deterministic over the stored logs, so recomputing a period is
// always safe: the record is overwritten in place and the user's balance
// moves only by the honor-score delta.
package scoring

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/honorhabits/honor/internal/app/period"
	"github.com/honorhabits/honor/internal/domain"
	"github.com/honorhabits/honor/internal/infra/metrics"
	"github.com/honorhabits/honor/internal/infra/sqlite"
)

// Service computes and persists period scores.
type Service struct {
	db    *sqlite.DB
	rules domain.ScoringRules

	// Per-user advisory locks: one (user, period) computation at a time.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a scoring service.
func NewService(db *sqlite.DB, rules domain.ScoringRules) *Service {
	return &Service{db: db, rules: rules, locks: make(map[string]*sync.Mutex)}
}

// Rules returns the active scoring constants.
func (s *Service) Rules() domain.ScoringRules { return s.rules }

// Calculate runs the full aggregation pipeline for one user and one period:
// load logs, rebuild the timeline, fold points under the penalty cap, award
// streak bonuses, compute the trend against the previous period, then upsert
// the record and adjust the balance by the honor-score delta in one
// transaction.
func (s *Service) Calculate(ctx context.Context, userID string, p domain.Period) (*domain.PeriodScore, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.db.GetUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	logs, err := s.db.LogsInRange(userID, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("load logs: %w", err)
	}

	timeline := BuildTimeline(p, logs, s.rules)
	score := s.fold(userID, p, timeline)

	prev, err := s.db.GetPeriodScore(userID, period.Previous(p))
	if err != nil {
		return nil, fmt.Errorf("load previous period: %w", err)
	}
	trend := ComputeTrend(score.HonorScore, prev, timeline)
	score.PreviousScore = trend.PreviousScore
	score.Improvement = trend.Improvement
	score.ConsistencyRate = trend.ConsistencyRate

	score.CalculatedAt = time.Now()
	if _, err := s.db.SavePeriodScore(score); err != nil {
		return nil, fmt.Errorf("save score: %w", err)
	}

	metrics.Calculations.Inc()
	metrics.HonorScores.Observe(float64(score.HonorScore))
	return &score, nil
}

// fold collapses the timeline into point totals and the normalized score.
func (s *Service) fold(userID string, p domain.Period, timeline []domain.DayEntry) domain.PeriodScore {
	var earned, lost, completedDays int
	consecutiveMisses := 0

	for _, e := range timeline {
		if e.Completed {
			earned += e.Weight
			completedDays++
			consecutiveMisses = 0
			continue
		}

		// Untracked days break streaks but are never penalized; only
		// explicitly logged misses cost points, and only up to the cap
		// per consecutive run.
		consecutiveMisses++
		if e.HasLogs && consecutiveMisses <= s.rules.MissPenaltyCap {
			lost += e.Weight
		}
	}

	raw := earned - lost
	avgWeight := round2(float64(earned) / float64(max(completedDays, 1)))
	maxPossible := domain.PeriodLengthDays * avgWeight

	bonus := AnnotateStreaks(timeline)
	final := raw + bonus

	honor := 0
	if maxPossible > 0 {
		honor = clamp(int(math.Round(float64(final)/maxPossible*1000)), 0, 1000)
	}

	return domain.PeriodScore{
		UserID:        userID,
		Period:        p,
		Timeline:      timeline,
		PointsEarned:  earned,
		PointsLost:    lost,
		RawScore:      raw,
		MaxPossible:   maxPossible,
		CompletedDays: completedDays,
		MissedDays:    len(timeline) - completedDays,
		AverageWeight: avgWeight,
		StreakBonus:   bonus,
		FinalScore:    final,
		HonorScore:    honor,
	}
}

// CurrentScore returns the stored record for the user's current period.
func (s *Service) CurrentScore(userID string, now time.Time) (*domain.PeriodScore, error) {
	score, err := s.db.GetPeriodScore(userID, period.Current(now))
	if err != nil {
		return nil, err
	}
	if score == nil {
		return nil, domain.ErrScoreNotFound
	}
	return score, nil
}

// History returns a user's stored period records, newest first.
func (s *Service) History(userID string, limit int) ([]domain.PeriodScore, error) {
	return s.db.ListPeriodScores(userID, limit)
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
