package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/honorhabits/honor/internal/app/period"
	"github.com/honorhabits/honor/internal/app/points"
	"github.com/honorhabits/honor/internal/app/schedule"
	"github.com/honorhabits/honor/internal/app/scoring"
	"github.com/honorhabits/honor/internal/domain"
	"github.com/honorhabits/honor/internal/infra/sqlite"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.DB) {
	t.Helper()

	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	scores := scoring.NewService(db, domain.DefaultRules())
	pts := points.NewService(db)
	sched := schedule.New(schedule.DefaultConfig(), scores, db)

	ts := httptest.NewServer(NewServer(db, scores, pts, sched).Handler())
	t.Cleanup(ts.Close)
	return ts, db
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, payload
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, "GET", ts.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v, want status ok", body)
	}
}

func TestCurrentPeriod(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, "GET", ts.URL+"/api/period/current", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	want := period.Current(time.Now())
	if int(body["number"].(float64)) != want.Number {
		t.Errorf("period number = %v, want %d", body["number"], want.Number)
	}
}

func TestCreateUser(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := doJSON(t, "POST", ts.URL+"/api/users", `{"id":"alice","name":"Alice"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	// Duplicate registration conflicts.
	resp, _ = doJSON(t, "POST", ts.URL+"/api/users", `{"id":"alice"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", resp.StatusCode)
	}

	// Missing ID is a bad request.
	resp, _ = doJSON(t, "POST", ts.URL+"/api/users", `{"name":"nobody"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing-id status = %d, want 400", resp.StatusCode)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := doJSON(t, "GET", ts.URL+"/api/users/ghost", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestLogHabitAndScore(t *testing.T) {
	ts, _ := newTestServer(t)
	doJSON(t, "POST", ts.URL+"/api/users", `{"id":"alice"}`)

	resp, body := doJSON(t, "POST", ts.URL+"/api/habits/log",
		`{"user_id":"alice","habit_id":"run","completed":true,"weight":3}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("log status = %d: %v", resp.StatusCode, body)
	}
	if body["points"].(float64) != 3 {
		t.Errorf("logged points = %v, want 3", body["points"])
	}

	// No record yet for the current period.
	resp, _ = doJSON(t, "GET", ts.URL+"/api/scores/alice", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("pre-calc score status = %d, want 404", resp.StatusCode)
	}

	// Recalculate, then the record is readable.
	resp, body = doJSON(t, "POST", ts.URL+"/api/scores/alice/calculate", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("calculate status = %d: %v", resp.StatusCode, body)
	}
	if body["completed_days"].(float64) != 1 {
		t.Errorf("completed_days = %v, want 1", body["completed_days"])
	}

	resp, body = doJSON(t, "GET", ts.URL+"/api/scores/alice", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("score status = %d, want 200", resp.StatusCode)
	}
	if body["user_id"] != "alice" {
		t.Errorf("score user = %v, want alice", body["user_id"])
	}
}

func TestLogHabit_Validation(t *testing.T) {
	ts, _ := newTestServer(t)
	doJSON(t, "POST", ts.URL+"/api/users", `{"id":"alice"}`)

	resp, _ := doJSON(t, "POST", ts.URL+"/api/habits/log",
		`{"user_id":"alice","habit_id":"run","weight":9}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad weight status = %d, want 400", resp.StatusCode)
	}

	resp, _ = doJSON(t, "POST", ts.URL+"/api/habits/log",
		`{"habit_id":"run","completed":true}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing user status = %d, want 400", resp.StatusCode)
	}

	resp, _ = doJSON(t, "POST", ts.URL+"/api/habits/log",
		`{"user_id":"ghost","habit_id":"run","completed":true}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown user status = %d, want 404", resp.StatusCode)
	}
}

func TestLedger(t *testing.T) {
	ts, _ := newTestServer(t)
	doJSON(t, "POST", ts.URL+"/api/users", `{"id":"alice"}`)
	doJSON(t, "POST", ts.URL+"/api/habits/log",
		`{"user_id":"alice","habit_id":"run","completed":true,"weight":2}`)

	resp, body := doJSON(t, "GET", ts.URL+"/api/users/alice/ledger", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	entries := body["entries"].([]interface{})
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	e := entries[0].(map[string]interface{})
	if e["amount"].(float64) != 2 || e["kind"] != "daily_log" {
		t.Errorf("entry = %v, want daily_log +2", e)
	}
}

func TestCalculateBatch(t *testing.T) {
	ts, _ := newTestServer(t)
	doJSON(t, "POST", ts.URL+"/api/users", `{"id":"alice"}`)
	doJSON(t, "POST", ts.URL+"/api/users", `{"id":"bob"}`)

	resp, body := doJSON(t, "POST", ts.URL+"/api/scores/calculate", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if body["success_count"].(float64) != 2 {
		t.Errorf("success_count = %v, want 2", body["success_count"])
	}
}

func TestScheduleStatus(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, "GET", ts.URL+"/api/schedule/status", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["running"] != false {
		t.Errorf("running = %v, want false for an uninitialized scheduler", body["running"])
	}
}
