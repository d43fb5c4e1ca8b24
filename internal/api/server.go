// Package api provides the HTTP server for the honor score engine: habit
// log ingestion, score retrieval and recalculation, the period resolver,
// and scheduler status.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/honorhabits/honor/internal/app/points"
	"github.com/honorhabits/honor/internal/app/schedule"
	"github.com/honorhabits/honor/internal/app/scoring"
	"github.com/honorhabits/honor/internal/infra/sqlite"
)

// Server is the honor HTTP API server.
type Server struct {
	db             *sqlite.DB
	scores         *scoring.Service
	points         *points.Service
	scheduler      *schedule.Scheduler
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(db *sqlite.DB, scores *scoring.Service, pts *points.Service, sched *schedule.Scheduler) *Server {
	return &Server{db: db, scores: scores, points: pts, scheduler: sched}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/period/current", s.handleCurrentPeriod)

		r.Post("/users", s.handleCreateUser)
		r.Get("/users/{id}", s.handleGetUser)
		r.Get("/users/{id}/ledger", s.handleLedger)

		r.Post("/habits/log", s.handleLogHabit)

		r.Get("/scores/{id}", s.handleCurrentScore)
		r.Get("/scores/{id}/history", s.handleScoreHistory)
		r.Post("/scores/{id}/calculate", s.handleCalculateUser)
		r.Post("/scores/calculate", s.handleCalculateBatch)

		r.Get("/schedule/status", s.handleScheduleStatus)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
