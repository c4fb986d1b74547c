// Package api exposes the HTTP status interface for a running harvest.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/okorolenko/bookcat/internal/metrics"
)

// Status is the live progress snapshot served at /statusz.
type Status struct {
	RunID           string    `json:"run_id"`
	Sources         []string  `json:"sources"`
	PagesFetched    int64     `json:"pages_fetched"`
	RecordsAccepted int64     `json:"records_accepted"`
	RecordsRejected int64     `json:"records_rejected"`
	Books           int       `json:"books"`
	Authors         int       `json:"authors"`
	ActiveWorkers   int64     `json:"active_workers"`
	StartedAt       time.Time `json:"started_at"`
}

// StatusFunc supplies the current Status on demand.
type StatusFunc func() Status

// Server wires the status endpoints onto a chi router.
type Server struct {
	router chi.Router
	status StatusFunc
	logger *zap.Logger
}

// NewServer constructs a Server.
func NewServer(status StatusFunc, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{status: status, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Get("/statusz", s.statusz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) statusz(w http.ResponseWriter, _ *http.Request) {
	if s.status == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no active run"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("status response write failed", zap.Error(err))
	}
}
