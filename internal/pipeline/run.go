// Package pipeline runs the analysis, tracking and delivery operations on an
// explicit DiscoverySession value.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/competitor-discovery/internal/analysis"
	"github.com/jonathan/competitor-discovery/internal/config"
	"github.com/jonathan/competitor-discovery/internal/delivery"
	"github.com/jonathan/competitor-discovery/internal/discovery"
	"github.com/jonathan/competitor-discovery/internal/fetch"
	"github.com/jonathan/competitor-discovery/internal/llm"
	"github.com/jonathan/competitor-discovery/internal/pipeline/steps"
	"github.com/jonathan/competitor-discovery/internal/rendering"
	"github.com/jonathan/competitor-discovery/internal/search"
	"github.com/jonathan/competitor-discovery/internal/tracking"
	"github.com/jonathan/competitor-discovery/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Analyzer produces a competitor analysis.
type Analyzer interface {
	Analyze(ctx context.Context, product, niche string, aspects []analysis.Aspect) analysis.Result
}

// Tracker produces competitor update summaries.
type Tracker interface {
	Track(ctx context.Context, names []string, maxItems int, progress tracking.ProgressFunc) tracking.Result
}

// Mailer emails a document.
type Mailer interface {
	Deliver(ctx context.Context, recipient string, document []byte, filename string) delivery.Receipt
}

// RenderFunc turns report text into a document.
type RenderFunc func(text string, hints rendering.Hints) ([]byte, error)

// Runner executes session operations. Every operation takes the current
// session and returns the next one; the input value is never modified.
type Runner struct {
	analyzer Analyzer
	tracker  Tracker
	mailer   Mailer
	render   RenderFunc
	maxItems int
	log      logrus.FieldLogger
	now      func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithRenderer replaces the PDF renderer.
func WithRenderer(render RenderFunc) Option {
	return func(r *Runner) { r.render = render }
}

// WithClock replaces time.Now for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner assembles a Runner from its collaborators.
func NewRunner(cfg *config.Config, analyzer Analyzer, tracker Tracker, mailer Mailer, log logrus.FieldLogger, opts ...Option) *Runner {
	r := &Runner{
		analyzer: analyzer,
		tracker:  tracker,
		mailer:   mailer,
		render:   rendering.Render,
		maxItems: cfg.Discovery.MaxItems,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build wires the production components described by cfg. The returned
// close function releases the language model client.
func Build(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Runner, func() error) {
	searcher := search.NewClient(cfg.Search, log.WithField("component", "search"))
	fetcher := fetch.NewFetcher(cfg.Fetch, log.WithField("component", "fetch"))
	discoverer := discovery.New(cfg.Discovery, searcher, fetcher, log.WithField("component", "discovery"))
	gen := llm.NewGenerator(ctx, cfg.LLM, log.WithField("component", "llm"))

	analyzer := analysis.NewAnalyzer(searcher, gen, cfg.LLM.Model, cfg.LLM.Temperature, log.WithField("component", "analysis"))
	tracker := tracking.NewTracker(discoverer, gen, cfg.LLM.Model, cfg.LLM.Temperature, log.WithField("component", "tracking"))
	mailer := delivery.NewMailer(cfg.Email, log.WithField("component", "delivery"))

	return NewRunner(cfg, analyzer, tracker, mailer, log), gen.Close
}

// emitProgress calls the progress callback if configured
func emitProgress(onProgress ProgressCallback, step, message string, content any) {
	if onProgress == nil {
		return
	}
	onProgress(ProgressEvent{
		Step:     step,
		Category: steps.StepRegistry[step].Category,
		Message:  message,
		Content:  content,
	})
}

// Analyze describes the product, generates the comparison and renders it.
// The new analysis replaces any previous one in the returned session.
func (r *Runner) Analyze(ctx context.Context, session types.DiscoverySession, req types.AnalysisRequest, onProgress ProgressCallback) (types.DiscoverySession, error) {
	req.Product = strings.TrimSpace(req.Product)
	req.Niche = strings.TrimSpace(req.Niche)
	if err := req.Validate(); err != nil {
		return session, validationError(err)
	}

	emitProgress(onProgress, steps.DescribeProduct, fmt.Sprintf("Analyzing competitors of %s...", req.Product), nil)
	result := r.analyzer.Analyze(ctx, req.Product, req.Niche, analysis.ParseAspects(req.Aspects))
	emitProgress(onProgress, steps.AnalyzeCompetitors, "Generated competitor analysis", result)

	next := session
	next.Product = req.Product
	next.Niche = req.Niche
	next.Analysis = result.Report
	next.AnalysisPDF = r.renderOrNil(result.Report, "Competitor Report", types.ArtifactAnalysis)
	next.UpdatedAt = r.now()
	emitProgress(onProgress, steps.RenderAnalysis, fmt.Sprintf("Rendered %s", types.AnalysisFilename), nil)

	return next, nil
}

// Track discovers and summarizes updates for each listed competitor and
// renders the combined report when it is not blank.
func (r *Runner) Track(ctx context.Context, session types.DiscoverySession, req types.TrackingRequest, onProgress ProgressCallback) (types.DiscoverySession, error) {
	if err := req.Validate(); err != nil {
		return session, validationError(err)
	}
	names := tracking.ParseCompetitors(req.Competitors)
	if len(names) == 0 {
		return session, &ValidationError{Field: "competitors", Message: "must name at least one competitor"}
	}

	maxItems := req.MaxItems
	if maxItems == 0 {
		maxItems = r.maxItems
	}

	result := r.tracker.Track(ctx, names, maxItems, func(i int, name string) {
		emitProgress(onProgress, steps.DiscoverUpdates, fmt.Sprintf("Fetching updates for %s (%d/%d)...", name, i+1, len(names)), nil)
	})
	emitProgress(onProgress, steps.SummarizeUpdates, "Updates fetched successfully", result.Sections)

	next := session
	next.Competitors = names
	next.Tracking = result.Markdown
	next.TrackingPDF = nil
	if strings.TrimSpace(result.Markdown) != "" {
		next.TrackingPDF = r.renderOrNil(result.Markdown, "Competitor Updates", types.ArtifactTracking)
		emitProgress(onProgress, steps.RenderTracking, fmt.Sprintf("Rendered %s", types.TrackingFilename), nil)
	}
	next.UpdatedAt = r.now()

	return next, nil
}

// Send emails the selected document. The session is never changed; a
// delivery failure is carried in the receipt, not the error.
func (r *Runner) Send(ctx context.Context, session types.DiscoverySession, req types.SendRequest, onProgress ProgressCallback) (delivery.Receipt, error) {
	req.Recipient = strings.TrimSpace(req.Recipient)
	if err := req.Validate(); err != nil {
		return delivery.Receipt{}, validationError(err)
	}
	kind, err := types.ParseArtifactKind(string(req.Artifact))
	if err != nil {
		return delivery.Receipt{}, &ValidationError{Field: "artifact", Message: err.Error()}
	}

	step := steps.SendStep(kind)
	if err := steps.ValidateDependencies(session, step); err != nil {
		return delivery.Receipt{}, missingArtifact(kind, err)
	}

	doc, _ := session.Document(kind)
	receipt := r.mailer.Deliver(ctx, req.Recipient, doc, kind.Filename())
	if receipt.Sent {
		emitProgress(onProgress, step, "Email sent successfully", receipt)
	} else {
		emitProgress(onProgress, step, "Email sending failed", receipt)
	}
	return receipt, nil
}

// renderOrNil renders text; a render failure is logged and leaves the
// session without a document for kind.
func (r *Runner) renderOrNil(text, title string, kind types.ArtifactKind) []byte {
	doc, err := r.render(text, rendering.Hints{Title: title})
	if err != nil {
		r.log.WithError(err).WithField("artifact", kind).Error("render failed")
		return nil
	}
	return doc
}
