package server

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/jonathan/competitor-discovery/internal/analysis"
	"github.com/jonathan/competitor-discovery/internal/delivery"
	"github.com/jonathan/competitor-discovery/internal/observability"
	"github.com/jonathan/competitor-discovery/internal/pipeline"
	"github.com/jonathan/competitor-discovery/internal/pipeline/steps"
	"github.com/jonathan/competitor-discovery/internal/types"
)

// maxBodyBytes bounds request bodies; every request is a short form.
const maxBodyBytes = 64 << 10

// SessionResponse describes a session after an operation.
type SessionResponse struct {
	SessionID      string                  `json:"session_id"`
	Product        string                  `json:"product,omitempty"`
	Niche          string                  `json:"niche,omitempty"`
	Analysis       string                  `json:"analysis,omitempty"`
	AnalysisPDF    string                  `json:"analysis_pdf,omitempty"`
	Competitors    []string                `json:"competitors,omitempty"`
	Tracking       string                  `json:"tracking,omitempty"`
	TrackingPDF    string                  `json:"tracking_pdf,omitempty"`
	AvailableSteps []string                `json:"available_steps"`
	Messages       []observability.Message `json:"messages,omitempty"`
}

// ReceiptResponse represents the response for /send
type ReceiptResponse struct {
	Sent      bool                    `json:"sent"`
	Recipient string                  `json:"recipient"`
	Filename  string                  `json:"filename"`
	Error     string                  `json:"error,omitempty"`
	Messages  []observability.Message `json:"messages,omitempty"`
}

func newSessionResponse(session types.DiscoverySession, collector *observability.Collector) SessionResponse {
	resp := SessionResponse{
		SessionID:      session.ID,
		Product:        session.Product,
		Niche:          session.Niche,
		Analysis:       session.Analysis,
		Competitors:    session.Competitors,
		Tracking:       session.Tracking,
		AvailableSteps: steps.AvailableSteps(session),
	}
	if _, ok := session.Document(types.ArtifactAnalysis); ok {
		resp.AnalysisPDF = "/reports/analysis.pdf"
	}
	if _, ok := session.Document(types.ArtifactTracking); ok {
		resp.TrackingPDF = "/reports/tracking.pdf"
	}
	if collector != nil {
		resp.Messages = collector.Messages()
	}
	return resp
}

func newReceiptResponse(receipt delivery.Receipt, collector *observability.Collector) ReceiptResponse {
	resp := ReceiptResponse{
		Sent:      receipt.Sent,
		Recipient: receipt.Recipient,
		Filename:  receipt.Filename,
		Messages:  collector.Messages(),
	}
	if receipt.Err != nil {
		resp.Error = receipt.Err.Error()
	}
	return resp
}

// isJSON reports whether the request body is JSON rather than a form.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// decode reads a JSON body into dst, or calls fromForm with the parsed form.
func decode(w http.ResponseWriter, r *http.Request, dst any, fromForm func(form map[string][]string) error) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return &ErrBadRequest{Cause: err}
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	if err := fromForm(r.PostForm); err != nil {
		return &ErrBadRequest{Cause: err}
	}
	return nil
}

func first(form map[string][]string, key string) string {
	if values := form[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func decodeAnalysis(w http.ResponseWriter, r *http.Request) (types.AnalysisRequest, error) {
	var req types.AnalysisRequest
	err := decode(w, r, &req, func(form map[string][]string) error {
		req.Product = first(form, "product")
		req.Niche = first(form, "niche")
		req.Aspects = form["aspects"]
		return nil
	})
	return req, err
}

func decodeTracking(w http.ResponseWriter, r *http.Request) (types.TrackingRequest, error) {
	var req types.TrackingRequest
	err := decode(w, r, &req, func(form map[string][]string) error {
		req.Competitors = first(form, "competitors")
		if v := first(form, "max_items"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("max_items: %w", err)
			}
			req.MaxItems = n
		}
		return nil
	})
	return req, err
}

func decodeSend(w http.ResponseWriter, r *http.Request) (types.SendRequest, error) {
	var req types.SendRequest
	err := decode(w, r, &req, func(form map[string][]string) error {
		req.Recipient = first(form, "recipient")
		req.Artifact = types.ArtifactKind(first(form, "artifact"))
		return nil
	})
	return req, err
}

// withCollector attaches a Collector so soft failures reach the page.
func withCollector(ctx context.Context) (context.Context, *observability.Collector) {
	collector := &observability.Collector{}
	return observability.WithReporter(ctx, collector), collector
}

// handleIndex renders the single page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.Load(w, r)

	defaults := make(map[analysis.Aspect]bool)
	for _, a := range analysis.DefaultAspects() {
		defaults[a] = true
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, map[string]any{
		"Aspects":  analysis.Aspects(),
		"Defaults": defaults,
		"Session":  newSessionResponse(session, nil),
		"MaxItems": s.cfg.Discovery.MaxItems,
	})
	if err != nil {
		s.log.WithError(err).Error("failed to render index")
	}
}

// handleSession returns the caller's session state
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, newSessionResponse(s.sessions.Load(w, r), nil))
}

// handleAnalyze runs a competitor analysis for the caller's session
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalysis(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	session := s.sessions.Load(w, r)
	ctx, collector := withCollector(r.Context())

	next, err := s.runner.Analyze(ctx, session, req, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.sessions.Put(next)
	s.jsonResponse(w, http.StatusOK, newSessionResponse(next, collector))
}

// handleTrack runs competitor tracking for the caller's session
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTracking(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	session := s.sessions.Load(w, r)
	ctx, collector := withCollector(r.Context())

	next, err := s.runner.Track(ctx, session, req, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.sessions.Put(next)
	s.jsonResponse(w, http.StatusOK, newSessionResponse(next, collector))
}

// handleAnalyzeStream runs an analysis and streams progress via SSE
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalysis(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.stream(w, r, func(ctx context.Context, session types.DiscoverySession, onProgress pipeline.ProgressCallback) (types.DiscoverySession, error) {
		return s.runner.Analyze(ctx, session, req, onProgress)
	})
}

// handleTrackStream runs tracking and streams progress via SSE
func (s *Server) handleTrackStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTracking(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.stream(w, r, func(ctx context.Context, session types.DiscoverySession, onProgress pipeline.ProgressCallback) (types.DiscoverySession, error) {
		return s.runner.Track(ctx, session, req, onProgress)
	})
}

type sessionOp func(ctx context.Context, session types.DiscoverySession, onProgress pipeline.ProgressCallback) (types.DiscoverySession, error)

// stream runs op, sending each progress event as a "step" event and the
// resulting session as "complete".
func (s *Server) stream(w http.ResponseWriter, r *http.Request, op sessionOp) {
	session := s.sessions.Load(w, r)

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx, collector := withCollector(r.Context())
	next, err := op(ctx, session, func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			s.log.WithError(err).Warn("error writing SSE event")
		}
	})
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	s.sessions.Put(next)
	sse.WriteComplete(newSessionResponse(next, collector))
}

// handleSend emails a session document
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSend(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	session := s.sessions.Load(w, r)
	ctx, collector := withCollector(r.Context())

	receipt, err := s.runner.Send(ctx, session, req, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, newReceiptResponse(receipt, collector))
}

// handleReport serves a session document as a PDF download
func (s *Server) handleReport(kind types.ArtifactKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.sessions.Load(w, r)

		doc, ok := session.Document(kind)
		if !ok {
			s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("no %s report has been generated yet", kind))
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": kind.Filename()}))
		w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(doc); err != nil {
			s.log.WithError(err).Warn("error writing report")
		}
	}
}
