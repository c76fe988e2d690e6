// Package api provides the HTTP server for LogicalX.
// Each route maps to one session event; responses are JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/logicalx/logicalx/internal/app/engagement"
	"github.com/logicalx/logicalx/internal/domain"
	"github.com/logicalx/logicalx/internal/health"
)

// Server is the LogicalX HTTP API server.
type Server struct {
	session        *engagement.Session
	board          domain.Leaderboard
	logger         *zap.Logger
	health         *health.Checker
	metricsEnabled bool
	allowedOrigins []string
}

// NewServer creates a new API server.
func NewServer(session *engagement.Session, board domain.Leaderboard, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		session:        session,
		board:          board,
		logger:         logger.Named("api"),
		allowedOrigins: []string{"*"},
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth attaches the checker reported by /health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// SetAllowedOrigins restricts CORS to the given origins.
func (s *Server) SetAllowedOrigins(origins []string) {
	if len(origins) > 0 {
		s.allowedOrigins = origins
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)

		r.Post("/session/login", s.handleLogin)
		r.Post("/session/logout", s.handleLogout)

		r.Get("/tasks", s.handleTasks)
		r.Post("/tasks/{id}/start", s.handleStartTask)
		r.Post("/play", s.handlePlayNow)

		r.Post("/puzzle/answer", s.handleAnswer)
		r.Post("/puzzle/ack", s.handleAcknowledge)
		r.Post("/puzzle/abandon", s.handleAbandon)

		r.Post("/subscription", s.handleSubscribe)
		r.Put("/view", s.handleNavigate)
		r.Get("/notices", s.handleNotices)

		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/plans", s.handlePlans)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleHealth reports "ok", or "degraded" with 503 when a probe fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    kind,
		},
	})
}

// errorStatus maps domain errors to HTTP statuses.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUpgradeRequired):
		return http.StatusPaymentRequired, "upgrade_required"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not_authenticated"
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrNoActivePuzzle),
		errors.Is(err, domain.ErrPuzzleAnswered),
		errors.Is(err, domain.ErrPuzzleUnanswered):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrInvalidPlan),
		errors.Is(err, domain.ErrInvalidView):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrPuzzleUnavailable):
		return http.StatusBadGateway, "puzzle_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail writes err with its mapped status. Internal errors are logged and
// their message is not exposed.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		msg = "internal error"
	}
	writeError(w, status, kind, msg)
}
