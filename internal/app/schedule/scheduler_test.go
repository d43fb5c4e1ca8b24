package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/honorhabits/honor/internal/app/period"
	"github.com/honorhabits/honor/internal/domain"
)

// fakeCalc records calculated (user, period) pairs and fails listed users.
type fakeCalc struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]error
}

func (f *fakeCalc) Calculate(ctx context.Context, userID string, p domain.Period) (*domain.PeriodScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	if err, ok := f.failFor[userID]; ok {
		return nil, err
	}
	return &domain.PeriodScore{UserID: userID, Period: p, HonorScore: 500}, nil
}

func (f *fakeCalc) calculated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeDir struct {
	all    []string
	active []string
}

func (f *fakeDir) ListUserIDs() ([]string, error)            { return f.all, nil }
func (f *fakeDir) ActiveUserIDs(time.Time) ([]string, error) { return f.active, nil }

func newTestScheduler(calc *fakeCalc, dir *fakeDir) *Scheduler {
	cfg := DefaultConfig()
	cfg.CloseDelay = 0
	return New(cfg, calc, dir)
}

// ─── Batch Runs ─────────────────────────────────────────────────────────────

func TestRunBatch_PartialFailure(t *testing.T) {
	calc := &fakeCalc{failFor: map[string]error{"bob": errors.New("corrupt log data")}}
	dir := &fakeDir{all: []string{"alice", "bob", "carol"}}
	s := newTestScheduler(calc, dir)

	now := time.Date(2026, time.March, 16, 0, 30, 0, 0, time.UTC)
	summary := s.runClosedPeriodBatch(context.Background(), "mid-month-close", now)

	if summary.SuccessCount != 2 {
		t.Errorf("success = %d, want 2", summary.SuccessCount)
	}
	if summary.ErrorCount != 1 {
		t.Errorf("errors = %d, want 1", summary.ErrorCount)
	}
	if len(calc.calculated()) != 3 {
		t.Errorf("calculated %v, want all three users attempted", calc.calculated())
	}
	// A close on March 16 recomputes the just-closed first half of March.
	if summary.Period.Ref() != "2026-03.1" {
		t.Errorf("batch period = %s, want 2026-03.1", summary.Period.Ref())
	}
}

func TestRefreshOpenPeriod_ActiveUsersOnly(t *testing.T) {
	calc := &fakeCalc{}
	dir := &fakeDir{all: []string{"alice", "bob", "carol"}, active: []string{"alice"}}
	s := newTestScheduler(calc, dir)

	now := time.Date(2026, time.March, 10, 3, 0, 0, 0, time.UTC)
	summary := s.RefreshOpenPeriod(context.Background(), now)

	if summary.SuccessCount != 1 || summary.ErrorCount != 0 {
		t.Fatalf("summary = %+v, want one success", summary)
	}
	if got := calc.calculated(); len(got) != 1 || got[0] != "alice" {
		t.Errorf("calculated %v, want only the active user", got)
	}
	if summary.Period != period.Current(now) {
		t.Errorf("refresh period = %s, want the open period", summary.Period.Ref())
	}
}

// ─── Manual Trigger ─────────────────────────────────────────────────────────

func TestManualCalculation_SingleUser(t *testing.T) {
	calc := &fakeCalc{}
	s := newTestScheduler(calc, &fakeDir{})

	score, summary, err := s.ManualCalculation(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ManualCalculation() error: %v", err)
	}
	if summary != nil {
		t.Error("single-user run should not produce a batch summary")
	}
	if score == nil || score.UserID != "alice" {
		t.Fatalf("score = %+v, want alice's record", score)
	}
	if score.Period != period.Current(time.Now()) {
		t.Errorf("period = %s, want the current period", score.Period.Ref())
	}
}

func TestManualCalculation_FullBatch(t *testing.T) {
	calc := &fakeCalc{}
	dir := &fakeDir{all: []string{"alice", "bob"}}
	s := newTestScheduler(calc, dir)

	score, summary, err := s.ManualCalculation(context.Background(), "")
	if err != nil {
		t.Fatalf("ManualCalculation() error: %v", err)
	}
	if score != nil {
		t.Error("batch run should not return a single record")
	}
	if summary == nil || summary.SuccessCount != 2 {
		t.Fatalf("summary = %+v, want 2 successes", summary)
	}
}

func TestManualCalculation_UserError(t *testing.T) {
	calc := &fakeCalc{failFor: map[string]error{"ghost": domain.ErrUserNotFound}}
	s := newTestScheduler(calc, &fakeDir{})

	_, _, err := s.ManualCalculation(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

func TestScheduler_Lifecycle(t *testing.T) {
	s := newTestScheduler(&fakeCalc{}, &fakeDir{})

	if st := s.GetStatus(); st.Running {
		t.Fatal("new scheduler should not be running")
	}

	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if err := s.Initialize(); err != domain.ErrSchedulerRunning {
		t.Fatalf("second Initialize() error = %v, want ErrSchedulerRunning", err)
	}

	st := s.GetStatus()
	if !st.Running {
		t.Fatal("scheduler should be running")
	}
	// Trigger loops publish their next fire times on startup.
	deadline := time.After(2 * time.Second)
	for len(s.GetStatus().NextRuns) < 3 {
		select {
		case <-deadline:
			t.Fatalf("next runs = %v, want all three triggers", s.GetStatus().NextRuns)
		case <-time.After(10 * time.Millisecond):
		}
	}
	for name, at := range s.GetStatus().NextRuns {
		if !at.After(time.Now().Add(-time.Minute)) {
			t.Errorf("trigger %s: stale next run %s", name, at)
		}
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if err := s.Stop(); err != domain.ErrSchedulerStopped {
		t.Fatalf("second Stop() error = %v, want ErrSchedulerStopped", err)
	}
	if st := s.GetStatus(); st.Running || len(st.NextRuns) != 0 {
		t.Fatalf("status after stop = %+v, want idle", st)
	}
}

// ─── Fire-time Rules ────────────────────────────────────────────────────────

func TestNextMonthly(t *testing.T) {
	delay := 5 * time.Minute
	cases := []struct {
		after string
		day   int
		want  string
	}{
		{"2026-03-10T12:00:00Z", 16, "2026-03-16T00:05:00Z"},
		{"2026-03-16T00:05:00Z", 16, "2026-04-16T00:05:00Z"}, // strictly after
		{"2026-03-20T00:00:00Z", 16, "2026-04-16T00:05:00Z"},
		{"2026-03-20T00:00:00Z", 1, "2026-04-01T00:05:00Z"},
		{"2026-12-20T00:00:00Z", 1, "2027-01-01T00:05:00Z"}, // year rollover
	}

	for _, tc := range cases {
		after, _ := time.Parse(time.RFC3339, tc.after)
		want, _ := time.Parse(time.RFC3339, tc.want)
		if got := nextMonthly(after, tc.day, delay); !got.Equal(want) {
			t.Errorf("nextMonthly(%s, %d) = %s, want %s", tc.after, tc.day, got, want)
		}
	}
}

func TestNextDaily(t *testing.T) {
	cases := []struct {
		after string
		hour  int
		want  string
	}{
		{"2026-03-10T01:00:00Z", 3, "2026-03-10T03:00:00Z"},
		{"2026-03-10T03:00:00Z", 3, "2026-03-11T03:00:00Z"}, // strictly after
		{"2026-03-10T22:00:00Z", 3, "2026-03-11T03:00:00Z"},
	}

	for _, tc := range cases {
		after, _ := time.Parse(time.RFC3339, tc.after)
		want, _ := time.Parse(time.RFC3339, tc.want)
		if got := nextDaily(after, tc.hour); !got.Equal(want) {
			t.Errorf("nextDaily(%s, %d) = %s, want %s", tc.after, tc.hour, got, want)
		}
	}
}

func TestSummaryString(t *testing.T) {
	b := domain.BatchSummary{
		Period:       period.Current(time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)),
		SuccessCount: 9,
		ErrorCount:   1,
		Duration:     1500 * time.Millisecond,
	}
	want := "2026-03.1: 9 succeeded, 1 failed (1.5s)"
	if got := SummaryString(b); got != want {
		t.Errorf("SummaryString() = %q, want %q", got, want)
	}
}
