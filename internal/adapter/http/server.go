// Package http exposes the service's HTTP surface: health, readiness,
// metrics, and the per-model ingestion trigger.
package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/nwp-ingest/internal/domain"
	"github.com/couchcryptid/nwp-ingest/internal/pipeline"
)

// TriggerRunner starts ingestion runs.
type TriggerRunner interface {
	Trigger(ctx context.Context, model string, runTime time.Time) (string, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes health, readiness, metrics, and trigger HTTP endpoints.
type Server struct {
	httpServer *http.Server
	runner     TriggerRunner
	runCtx     context.Context
	logger     *slog.Logger
}

// NewServer creates the HTTP server. runCtx scopes triggered ingestion runs
// to the service lifetime rather than to the triggering request, which
// returns 202 long before the run finishes.
func NewServer(addr string, runCtx context.Context, runner TriggerRunner, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		runner: runner,
		runCtx: runCtx,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /ingest/{model}", s.handleIngest)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleIngest accepts a run trigger. A Pub/Sub-style push body naming the
// published object pins the run time; an empty or unrecognized body falls
// back to the latest run the model should have published by now.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	model := r.PathValue("model")
	if !domain.KnownModel(model) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown model " + model})
		return
	}

	runTime := s.runTimeFromRequest(r, model)

	batchID, err := s.runner.Trigger(s.runCtx, model, runTime)
	if err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":   "accepted",
		"model":    model,
		"run_time": runTime.UTC().Format(time.RFC3339),
		"batch_id": batchID,
	})
}

// pushEnvelope is the Pub/Sub push delivery wrapper.
type pushEnvelope struct {
	Message struct {
		Data string `json:"data"`
	} `json:"message"`
}

func (s *Server) runTimeFromRequest(r *http.Request, model string) time.Time {
	fallback := domain.LatestRunTime(model)

	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return fallback
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return fallback
	}

	var env pushEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Message.Data == "" {
		return fallback
	}
	decoded, err := base64.StdEncoding.DecodeString(env.Message.Data)
	if err != nil {
		s.logger.Warn("undecodable push payload, using latest run", "model", model, "error", err)
		return fallback
	}

	var payload struct {
		Name     string `json:"name"`
		ObjectID string `json:"objectId"`
	}
	if err := json.Unmarshal(decoded, &payload); err != nil {
		s.logger.Warn("unparseable push payload, using latest run", "model", model, "error", err)
		return fallback
	}
	name := payload.Name
	if name == "" {
		name = payload.ObjectID
	}

	runTime, err := domain.RunTimeFromObjectPath(name)
	if err != nil {
		return fallback
	}
	return runTime
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
