package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/honorhabits/honor/internal/app/period"
	"github.com/honorhabits/honor/internal/app/scoring"
	"github.com/honorhabits/honor/internal/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, period.Current(time.Now()))
}

// ─── Users ──────────────────────────────────────────────────────────────────

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "body must include a user id")
		return
	}

	user := domain.User{ID: req.ID, Name: req.Name, CreatedAt: time.Now()}
	if err := s.db.CreateUser(user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.db.GetUser(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, domain.ErrUserNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := s.points.History(chi.URLParam(r, "id"), queryLimit(r, 50))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// ─── Ingestion ──────────────────────────────────────────────────────────────

func (s *Server) handleLogHabit(w http.ResponseWriter, r *http.Request) {
	var in scoring.LogInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.UserID == "" || in.HabitID == "" {
		writeError(w, http.StatusBadRequest, "user_id and habit_id are required")
		return
	}

	logged, err := s.scores.LogHabitCompletion(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logged)
}

// ─── Scores ─────────────────────────────────────────────────────────────────

func (s *Server) handleCurrentScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.scores.CurrentScore(chi.URLParam(r, "id"), time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleScoreHistory(w http.ResponseWriter, r *http.Request) {
	scores, err := s.scores.History(chi.URLParam(r, "id"), queryLimit(r, 24))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scores": scores})
}

func (s *Server) handleCalculateUser(w http.ResponseWriter, r *http.Request) {
	score, _, err := s.scheduler.ManualCalculation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleCalculateBatch(w http.ResponseWriter, r *http.Request) {
	_, summary, err := s.scheduler.ManualCalculation(r.Context(), "")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ─── Scheduler ──────────────────────────────────────────────────────────────

func (s *Server) handleScheduleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scheduler.GetStatus())
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeDomainError maps sentinel errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrScoreNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidWeight),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrHabitNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func queryLimit(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
