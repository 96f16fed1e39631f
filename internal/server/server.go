// Package server exposes the HTTP trigger and monitoring endpoints.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"newsbot/internal/metrics"
	"newsbot/internal/pipeline"
)

// Runner triggers one pipeline pass; satisfied by *pipeline.Pipeline.
type Runner interface {
	RunOnce(ctx context.Context) pipeline.RunResult
}

// Server wires the trigger endpoint and the monitoring surface.
type Server struct {
	runner     Runner
	cronSecret string
}

func New(runner Runner, cronSecret string) *Server {
	return &Server{runner: runner, cronSecret: cronSecret}
}

// Router builds the chi router. The trigger accepts GET and POST: external
// schedulers differ in what they send.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/newsbot/run", s.handleRun)
	r.Post("/api/newsbot/run", s.handleRun)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	return r
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"error":   "Unauthorized",
		})
		return
	}

	result := s.runner.RunOnce(r.Context())

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

// authorized checks the shared-secret bearer token. An unset secret leaves
// the endpoint open.
func (s *Server) authorized(r *http.Request) bool {
	if s.cronSecret == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+s.cronSecret
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if !stats["is_healthy"].(bool) {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metrics.Global.GetStats())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("write response failed", "err", err)
	}
}
