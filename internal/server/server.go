// Package server provides the single-page web interface and its JSON API.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/competitor-discovery/internal/config"
	"github.com/jonathan/competitor-discovery/internal/delivery"
	"github.com/jonathan/competitor-discovery/internal/metrics"
	"github.com/jonathan/competitor-discovery/internal/pipeline"
	"github.com/jonathan/competitor-discovery/internal/types"
)

//go:embed templates/*.html
var templateFiles embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFiles, "templates/index.html"))

// Runner is the set of session operations the server exposes.
type Runner interface {
	Analyze(ctx context.Context, session types.DiscoverySession, req types.AnalysisRequest, onProgress pipeline.ProgressCallback) (types.DiscoverySession, error)
	Track(ctx context.Context, session types.DiscoverySession, req types.TrackingRequest, onProgress pipeline.ProgressCallback) (types.DiscoverySession, error)
	Send(ctx context.Context, session types.DiscoverySession, req types.SendRequest, onProgress pipeline.ProgressCallback) (delivery.Receipt, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	runner     Runner
	sessions   *SessionStore
	cfg        *config.Config
	log        logrus.FieldLogger
}

// New creates a new server instance
func New(cfg *config.Config, runner Runner, log logrus.FieldLogger) *Server {
	s := &Server{
		runner:   runner,
		sessions: NewSessionStore(cfg.Server.SessionTTL),
		cfg:      cfg,
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /analyze/stream", s.handleAnalyzeStream)
	mux.HandleFunc("POST /track", s.handleTrack)
	mux.HandleFunc("POST /track/stream", s.handleTrackStream)
	mux.HandleFunc("POST /send", s.handleSend)
	mux.HandleFunc("GET /session", s.handleSession)
	mux.HandleFunc("GET /reports/analysis.pdf", s.handleReport(types.ArtifactAnalysis))
	mux.HandleFunc("GET /reports/tracking.pdf", s.handleReport(types.ArtifactTracking))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.withRecovery(s.withLogging(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // analysis and tracking wait on the model
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	go s.sweepSessions(ctx)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// sweepSessions drops idle sessions until ctx is done.
func (s *Server) sweepSessions(ctx context.Context) {
	interval := s.cfg.Server.SessionTTL
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.log.WithField("sessions", n).Debug("expired sessions removed")
			}
		}
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers working behind the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request completed")
	})
}

// withRecovery turns a handler panic into a 500 response.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.WithFields(logrus.Fields{
					"path":  r.URL.Path,
					"panic": rec,
				}).Error("handler panicked\n" + string(debug.Stack()))
				s.errorResponse(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
