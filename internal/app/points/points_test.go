package points_test

import (
	"errors"
	"testing"
	"time"

	"github.com/honorhabits/honor/internal/app/points"
	"github.com/honorhabits/honor/internal/domain"
	"github.com/honorhabits/honor/internal/infra/sqlite"
)

func testSetup(t *testing.T) (*points.Service, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.CreateUser(domain.User{ID: "alice", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	return points.NewService(db), db
}

func TestBalance(t *testing.T) {
	svc, db := testSetup(t)

	got, err := svc.Balance("alice")
	if err != nil {
		t.Fatalf("Balance() error: %v", err)
	}
	if got != 0 {
		t.Fatalf("fresh balance = %d, want 0", got)
	}

	day := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	_, _, err = db.UpsertDailyLog(domain.DailyLog{
		ID: "l1", UserID: "alice", HabitID: "run", Day: day,
		Completed: true, Weight: 3, Points: 3,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertDailyLog() error: %v", err)
	}

	got, err = svc.Balance("alice")
	if err != nil {
		t.Fatalf("Balance() error: %v", err)
	}
	if got != 3 {
		t.Fatalf("balance after log = %d, want 3", got)
	}
}

func TestBalance_UnknownUser(t *testing.T) {
	svc, _ := testSetup(t)

	if _, err := svc.Balance("ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}

func TestHistory(t *testing.T) {
	svc, db := testSetup(t)

	for i := 1; i <= 3; i++ {
		day := time.Date(2026, time.March, i, 0, 0, 0, 0, time.UTC)
		_, _, err := db.UpsertDailyLog(domain.DailyLog{
			ID: "l" + day.Format("02"), UserID: "alice", HabitID: "run", Day: day,
			Completed: true, Weight: i, Points: i,
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("UpsertDailyLog() error: %v", err)
		}
	}

	entries, err := svc.History("alice", 0)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	// Newest first: the day-3 log with the final balance 1+2+3.
	if entries[0].Amount != 3 || entries[0].Balance != 6 {
		t.Errorf("latest entry = %+v, want amount 3 balance 6", entries[0])
	}

	limited, err := svc.History("alice", 1)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limited entries = %d, want 1", len(limited))
	}
}

func TestHistory_UnknownUser(t *testing.T) {
	svc, _ := testSetup(t)

	if _, err := svc.History("ghost", 10); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}
