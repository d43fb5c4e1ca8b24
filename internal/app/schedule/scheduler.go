// Package schedule drives period score recomputation: time-based trigger
// rules for period closes and daily refreshes, plus a synchronous manual
// path for admin tools and on-demand recalculation. The concrete timing
// mechanism is a plain timer loop per trigger rule, so it stays swappable
// and testable without a cron dependency.
package schedule

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/honorhabits/honor/internal/app/period"
	"github.com/honorhabits/honor/internal/domain"
	"github.com/honorhabits/honor/internal/infra/metrics"
)

// Calculator computes and persists one user's score for one period.
type Calculator interface {
	Calculate(ctx context.Context, userID string, p domain.Period) (*domain.PeriodScore, error)
}

// Directory enumerates users for batch runs.
type Directory interface {
	ListUserIDs() ([]string, error)
	ActiveUserIDs(since time.Time) ([]string, error)
}

// Config configures the scheduler's trigger rules.
type Config struct {
	// CloseDelay is how long after the period-boundary midnight the close
	// jobs fire, leaving room for clients in late timezones to log.
	CloseDelay time.Duration
	// DailyRefreshHour is the UTC hour of the open-period refresh.
	DailyRefreshHour int
	// ActiveWindowDays is the trailing activity window for the refresh.
	ActiveWindowDays int
}

// DefaultConfig returns production trigger defaults.
func DefaultConfig() Config {
	return Config{
		CloseDelay:       5 * time.Minute,
		DailyRefreshHour: 3,
		ActiveWindowDays: 7,
	}
}

// Trigger is one time-based recomputation rule.
type Trigger struct {
	Name string
	// Next returns the first fire time strictly after the given instant.
	Next func(after time.Time) time.Time
	// Run executes the rule. fireTime is the scheduled instant.
	Run func(ctx context.Context, fireTime time.Time)
}

// Status is a snapshot of the scheduler's state.
type Status struct {
	Running  bool                 `json:"running"`
	NextRuns map[string]time.Time `json:"next_runs,omitempty"`
}

// Scheduler owns the trigger loops. One per deployment, created at process
// start and passed by reference to anything needing its lifecycle.
type Scheduler struct {
	config Config
	calc   Calculator
	dir    Directory

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	nextRuns map[string]time.Time
}

// New creates a stopped scheduler.
func New(cfg Config, calc Calculator, dir Directory) *Scheduler {
	return &Scheduler{
		config:   cfg,
		calc:     calc,
		dir:      dir,
		nextRuns: make(map[string]time.Time),
	}
}

// Initialize registers the three trigger rules and starts their loops:
// the mid-month close (16th, recomputes the just-closed period 1), the
// month close (1st, recomputes the just-closed period 2), and the daily
// refresh of the still-open period for recently active users.
func (s *Scheduler) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrSchedulerRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	triggers := []Trigger{
		{
			Name: "mid-month-close",
			Next: func(after time.Time) time.Time {
				return nextMonthly(after, 16, s.config.CloseDelay)
			},
			Run: func(ctx context.Context, fireTime time.Time) {
				s.runClosedPeriodBatch(ctx, "mid-month-close", fireTime)
			},
		},
		{
			Name: "month-close",
			Next: func(after time.Time) time.Time {
				return nextMonthly(after, 1, s.config.CloseDelay)
			},
			Run: func(ctx context.Context, fireTime time.Time) {
				s.runClosedPeriodBatch(ctx, "month-close", fireTime)
			},
		},
		{
			Name: "daily-refresh",
			Next: func(after time.Time) time.Time {
				return nextDaily(after, s.config.DailyRefreshHour)
			},
			Run: func(ctx context.Context, fireTime time.Time) {
				s.RefreshOpenPeriod(ctx, fireTime)
			},
		},
	}

	for _, t := range triggers {
		s.wg.Add(1)
		go s.runTrigger(ctx, t)
	}

	log.Printf("[schedule] started %d trigger rules", len(triggers))
	return nil
}

// Stop cancels pending triggers. In-flight batch runs complete before Stop
// returns.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return domain.ErrSchedulerStopped
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.nextRuns = make(map[string]time.Time)
	s.mu.Unlock()

	log.Printf("[schedule] stopped")
	return nil
}

// GetStatus reports whether the scheduler is running and the next fire time
// of each trigger rule.
func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Running: s.running}
	if s.running {
		st.NextRuns = make(map[string]time.Time, len(s.nextRuns))
		for name, at := range s.nextRuns {
			st.NextRuns[name] = at
		}
	}
	return st
}

// ManualCalculation is the synchronous entry point. With a user ID it
// recomputes that user's current period and returns the record. Without one
// it runs the full-user-base batch for whichever period just closed,
// returning the batch summary.
func (s *Scheduler) ManualCalculation(ctx context.Context, userID string) (*domain.PeriodScore, *domain.BatchSummary, error) {
	if userID != "" {
		score, err := s.calc.Calculate(ctx, userID, period.Current(time.Now()))
		if err != nil {
			metrics.CalculationErrors.WithLabelValues("manual").Inc()
			return nil, nil, err
		}
		return score, nil, nil
	}

	summary := s.runClosedPeriodBatch(ctx, "manual", time.Now())
	return nil, &summary, nil
}

// RefreshOpenPeriod recomputes the current, still-open period for users
// active in the trailing window — the cheap daily pass that keeps
// in-progress dashboards fresh without full-user-base cost.
func (s *Scheduler) RefreshOpenPeriod(ctx context.Context, now time.Time) domain.BatchSummary {
	since := now.AddDate(0, 0, -s.config.ActiveWindowDays)
	ids, err := s.dir.ActiveUserIDs(since)
	if err != nil {
		log.Printf("[schedule] daily-refresh: list active users: %v", err)
		return domain.BatchSummary{Trigger: "daily-refresh", ErrorCount: 1}
	}
	return s.runBatch(ctx, "daily-refresh", period.Current(now), ids)
}

// runClosedPeriodBatch recomputes the period that just closed relative to
// now, for every user.
func (s *Scheduler) runClosedPeriodBatch(ctx context.Context, trigger string, now time.Time) domain.BatchSummary {
	p := period.JustClosed(now)
	ids, err := s.dir.ListUserIDs()
	if err != nil {
		log.Printf("[schedule] %s: list users: %v", trigger, err)
		return domain.BatchSummary{Trigger: trigger, Period: p, ErrorCount: 1}
	}
	return s.runBatch(ctx, trigger, p, ids)
}

// runBatch computes one period for each user independently. A failure for
// one user is logged and counted, never fatal to the batch; re-running the
// batch is safe because every path is an idempotent upsert.
func (s *Scheduler) runBatch(ctx context.Context, trigger string, p domain.Period, userIDs []string) domain.BatchSummary {
	start := time.Now()
	summary := domain.BatchSummary{Trigger: trigger, Period: p}

	for _, id := range userIDs {
		if _, err := s.calc.Calculate(ctx, id, p); err != nil {
			summary.ErrorCount++
			metrics.CalculationErrors.WithLabelValues(trigger).Inc()
			log.Printf("[schedule] %s: user %s period %s: %v", trigger, id, p.Ref(), err)
			continue
		}
		summary.SuccessCount++
	}

	summary.Duration = time.Since(start)
	metrics.BatchDuration.WithLabelValues(trigger).Observe(summary.Duration.Seconds())
	metrics.BatchUsers.Set(float64(len(userIDs)))
	log.Printf("[schedule] %s: period %s done — %d ok, %d failed in %s",
		trigger, p.Ref(), summary.SuccessCount, summary.ErrorCount, summary.Duration)
	return summary
}

func (s *Scheduler) runTrigger(ctx context.Context, t Trigger) {
	defer s.wg.Done()

	for {
		next := t.Next(time.Now())
		s.mu.Lock()
		s.nextRuns[t.Name] = next
		s.mu.Unlock()

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case fireTime := <-timer.C:
			t.Run(ctx, fireTime)
		}
	}
}

// ─── Fire-time rules ────────────────────────────────────────────────────────

// nextMonthly returns the first occurrence of the given day-of-month at
// 00:00 UTC plus delay, strictly after the given instant.
func nextMonthly(after time.Time, day int, delay time.Duration) time.Time {
	u := after.UTC()
	fire := time.Date(u.Year(), u.Month(), day, 0, 0, 0, 0, time.UTC).Add(delay)
	if !fire.After(u) {
		fire = time.Date(u.Year(), u.Month()+1, day, 0, 0, 0, 0, time.UTC).Add(delay)
	}
	return fire
}

// nextDaily returns the first occurrence of the given UTC hour strictly
// after the given instant.
func nextDaily(after time.Time, hour int) time.Time {
	u := after.UTC()
	fire := time.Date(u.Year(), u.Month(), u.Day(), hour, 0, 0, 0, time.UTC)
	if !fire.After(u) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}

// SummaryString formats a batch summary for logs and CLI output.
func SummaryString(b domain.BatchSummary) string {
	return fmt.Sprintf("%s: %d succeeded, %d failed (%s)",
		b.Period.Ref(), b.SuccessCount, b.ErrorCount, b.Duration.Round(time.Millisecond))
}
