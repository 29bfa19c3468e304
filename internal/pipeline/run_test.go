package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/competitor-discovery/internal/analysis"
	"github.com/jonathan/competitor-discovery/internal/config"
	"github.com/jonathan/competitor-discovery/internal/delivery"
	"github.com/jonathan/competitor-discovery/internal/llm"
	"github.com/jonathan/competitor-discovery/internal/observability"
	"github.com/jonathan/competitor-discovery/internal/pipeline/steps"
	"github.com/jonathan/competitor-discovery/internal/rendering"
	"github.com/jonathan/competitor-discovery/internal/tracking"
	"github.com/jonathan/competitor-discovery/internal/types"
)

type fakeAnalyzer struct {
	report  string
	aspects []analysis.Aspect
}

func (f *fakeAnalyzer) Analyze(_ context.Context, product, niche string, aspects []analysis.Aspect) analysis.Result {
	f.aspects = aspects
	return analysis.Result{Product: product, Niche: niche, Report: f.report}
}

type fakeTracker struct {
	names    []string
	maxItems int
}

func (f *fakeTracker) Track(_ context.Context, names []string, maxItems int, progress tracking.ProgressFunc) tracking.Result {
	f.names = names
	f.maxItems = maxItems
	var md string
	for i, name := range names {
		if progress != nil {
			progress(i, name)
		}
		md += "## " + name + "\n\nNo recent updates found for **" + name + "**.\n\n"
	}
	return tracking.Result{Markdown: md}
}

type fakeMailer struct {
	sent     bool
	docs     [][]byte
	names    []string
	receiver string
}

func (f *fakeMailer) Deliver(_ context.Context, recipient string, document []byte, filename string) delivery.Receipt {
	f.receiver = recipient
	f.docs = append(f.docs, document)
	f.names = append(f.names, filename)
	if !f.sent {
		return delivery.Receipt{Recipient: recipient, Filename: filename, Err: errors.New("535 bad credentials")}
	}
	return delivery.Receipt{Recipient: recipient, Filename: filename, Sent: true}
}

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestRunner(a Analyzer, tr Tracker, m Mailer, opts ...Option) *Runner {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewRunner(config.Default(), a, tr, m, observability.NopLogger(), opts...)
}

func TestAnalyze_RendersAndReplaces(t *testing.T) {
	a := &fakeAnalyzer{report: "# Report\n\nNotion vs the rest, see https://notion.so"}
	r := newTestRunner(a, &fakeTracker{}, &fakeMailer{})

	var events []ProgressEvent
	session := types.NewSession("s1")
	session.Tracking = "kept"

	next, err := r.Analyze(context.Background(), session, types.AnalysisRequest{
		Product: "  Notion ",
		Niche:   "productivity",
		Aspects: []string{"pricing", "Integrations"},
	}, func(e ProgressEvent) { events = append(events, e) })
	require.NoError(t, err)

	assert.Equal(t, "Notion", next.Product)
	assert.Equal(t, a.report, next.Analysis)
	assert.NotEmpty(t, next.AnalysisPDF)
	assert.Equal(t, "kept", next.Tracking)
	assert.Equal(t, fixedNow, next.UpdatedAt)
	assert.Equal(t, []analysis.Aspect{analysis.AspectPricing, analysis.AspectIntegrations}, a.aspects)

	// the input session is untouched
	assert.Empty(t, session.Analysis)

	require.Len(t, events, 3)
	assert.Equal(t, steps.DescribeProduct, events[0].Step)
	assert.Equal(t, steps.CategoryAnalysis, events[0].Category)
	assert.Equal(t, steps.RenderAnalysis, events[2].Step)

	expected, err := rendering.Render(a.report, rendering.Hints{Title: "Competitor Report"})
	require.NoError(t, err)
	assert.Equal(t, expected, next.AnalysisPDF)

	a.report = "second"
	again, err := r.Analyze(context.Background(), next, types.AnalysisRequest{Product: "Notion", Niche: "productivity"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "second", again.Analysis)
	assert.NotEqual(t, next.AnalysisPDF, again.AnalysisPDF)
}

func TestAnalyze_Validation(t *testing.T) {
	r := newTestRunner(&fakeAnalyzer{}, &fakeTracker{}, &fakeMailer{})

	_, err := r.Analyze(context.Background(), types.NewSession("s1"), types.AnalysisRequest{Product: "Notion", Niche: "   "}, nil)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "niche", verr.Field)
	assert.Equal(t, "is required", verr.Message)
}

func TestAnalyze_RenderFailureLeavesNoDocument(t *testing.T) {
	failing := func(string, rendering.Hints) ([]byte, error) {
		return nil, &rendering.RenderError{Message: "boom"}
	}
	r := newTestRunner(&fakeAnalyzer{report: llm.Sentinel}, &fakeTracker{}, &fakeMailer{}, WithRenderer(failing))

	next, err := r.Analyze(context.Background(), types.NewSession("s1"), types.AnalysisRequest{Product: "Notion", Niche: "productivity"}, nil)
	require.NoError(t, err)
	assert.Equal(t, llm.Sentinel, next.Analysis)
	assert.Nil(t, next.AnalysisPDF)
}

func TestTrack(t *testing.T) {
	tr := &fakeTracker{}
	r := newTestRunner(&fakeAnalyzer{}, tr, &fakeMailer{})

	var events []ProgressEvent
	next, err := r.Track(context.Background(), types.NewSession("s1"), types.TrackingRequest{Competitors: "Linear, ,Jira"},
		func(e ProgressEvent) { events = append(events, e) })
	require.NoError(t, err)

	assert.Equal(t, []string{"Linear", "Jira"}, tr.names)
	assert.Equal(t, 5, tr.maxItems) // configured default
	assert.Equal(t, []string{"Linear", "Jira"}, next.Competitors)
	assert.Contains(t, next.Tracking, "## Jira")
	assert.NotEmpty(t, next.TrackingPDF)

	require.Len(t, events, 4)
	assert.Equal(t, "Fetching updates for Linear (1/2)...", events[0].Message)
	assert.Equal(t, steps.RenderTracking, events[3].Step)
}

func TestTrack_MaxItemsOverride(t *testing.T) {
	tr := &fakeTracker{}
	r := newTestRunner(&fakeAnalyzer{}, tr, &fakeMailer{})

	_, err := r.Track(context.Background(), types.NewSession("s1"), types.TrackingRequest{Competitors: "Linear", MaxItems: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.maxItems)
}

func TestTrack_NoNames(t *testing.T) {
	r := newTestRunner(&fakeAnalyzer{}, &fakeTracker{}, &fakeMailer{})

	_, err := r.Track(context.Background(), types.NewSession("s1"), types.TrackingRequest{Competitors: " , "}, nil)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "competitors", verr.Field)
}

func TestSend(t *testing.T) {
	m := &fakeMailer{sent: true}
	r := newTestRunner(&fakeAnalyzer{}, &fakeTracker{}, m)

	session := types.NewSession("s1")
	session.Tracking = "## Linear"
	session.TrackingPDF = []byte("%PDF-tracking")

	receipt, err := r.Send(context.Background(), session, types.SendRequest{
		Recipient: " user@example.com ",
		Artifact:  types.ArtifactTracking,
	}, nil)
	require.NoError(t, err)

	assert.True(t, receipt.Sent)
	assert.Equal(t, "user@example.com", m.receiver)
	assert.Equal(t, [][]byte{[]byte("%PDF-tracking")}, m.docs)
	assert.Equal(t, []string{types.TrackingFilename}, m.names)
}

func TestSend_FailureIsSoft(t *testing.T) {
	r := newTestRunner(&fakeAnalyzer{}, &fakeTracker{}, &fakeMailer{sent: false})

	session := types.NewSession("s1")
	session.Analysis = "report"
	session.AnalysisPDF = []byte("%PDF-analysis")

	receipt, err := r.Send(context.Background(), session, types.SendRequest{Recipient: "user@example.com"}, nil)
	require.NoError(t, err)
	assert.False(t, receipt.Sent)
	assert.Error(t, receipt.Err)
	assert.Equal(t, types.AnalysisFilename, receipt.Filename)
}

func TestSend_MissingDocument(t *testing.T) {
	m := &fakeMailer{sent: true}
	r := newTestRunner(&fakeAnalyzer{}, &fakeTracker{}, m)

	_, err := r.Send(context.Background(), types.NewSession("s1"), types.SendRequest{
		Recipient: "user@example.com",
		Artifact:  types.ArtifactTracking,
	}, nil)

	var missing *MissingArtifactError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, types.ArtifactTracking, missing.Artifact)
	var depErr *steps.DependencyError
	assert.True(t, errors.As(err, &depErr))
	assert.Empty(t, m.docs)
}

func TestSend_InvalidRecipient(t *testing.T) {
	r := newTestRunner(&fakeAnalyzer{}, &fakeTracker{}, &fakeMailer{})

	_, err := r.Send(context.Background(), types.NewSession("s1"), types.SendRequest{Recipient: "not-an-email"}, nil)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "recipient", verr.Field)
	assert.Equal(t, "must be a valid email address", verr.Message)
}

func TestBuild_WiresWithoutCredentials(t *testing.T) {
	r, closeFn := Build(context.Background(), config.Default(), observability.NopLogger())
	require.NotNil(t, r)
	assert.NoError(t, closeFn())
}
