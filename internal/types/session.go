//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"time"
)

// ArtifactKind names one of the two documents a session can export.
type ArtifactKind string

const (
	// ArtifactAnalysis is the competitor comparison report.
	ArtifactAnalysis ArtifactKind = "analysis"
	// ArtifactTracking is the competitor update summary.
	ArtifactTracking ArtifactKind = "tracking"
)

// Attachment filenames used when a document is emailed or downloaded.
const (
	AnalysisFilename = "Competitor_Report.pdf"
	TrackingFilename = "Competitor_Tracking_Report.pdf"
)

// ParseArtifactKind converts user input into an ArtifactKind.
func ParseArtifactKind(s string) (ArtifactKind, error) {
	switch ArtifactKind(s) {
	case ArtifactAnalysis, ArtifactTracking:
		return ArtifactKind(s), nil
	case "":
		return ArtifactAnalysis, nil
	default:
		return "", fmt.Errorf("unknown artifact %q (want %q or %q)", s, ArtifactAnalysis, ArtifactTracking)
	}
}

// Filename returns the attachment filename for the artifact.
func (k ArtifactKind) Filename() string {
	if k == ArtifactTracking {
		return TrackingFilename
	}
	return AnalysisFilename
}

// DiscoverySession holds everything one interactive session has produced.
// Operations take a session value and return the next one; a new analysis or
// tracking run replaces the previous report and its rendered document.
type DiscoverySession struct {
	ID string `json:"id"`

	Product string `json:"product,omitempty"`
	Niche   string `json:"niche,omitempty"`

	Analysis    string `json:"analysis,omitempty"`
	AnalysisPDF []byte `json:"-"`

	Competitors []string `json:"competitors,omitempty"`
	Tracking    string   `json:"tracking,omitempty"`
	TrackingPDF []byte   `json:"-"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns an empty session with the given identifier.
func NewSession(id string) DiscoverySession {
	return DiscoverySession{ID: id}
}

// Document returns the rendered document for kind, or false if none exists yet.
func (s DiscoverySession) Document(kind ArtifactKind) ([]byte, bool) {
	var doc []byte
	switch kind {
	case ArtifactAnalysis:
		doc = s.AnalysisPDF
	case ArtifactTracking:
		doc = s.TrackingPDF
	}
	return doc, len(doc) > 0
}

// Report returns the generated markdown for kind.
func (s DiscoverySession) Report(kind ArtifactKind) string {
	if kind == ArtifactTracking {
		return s.Tracking
	}
	return s.Analysis
}
