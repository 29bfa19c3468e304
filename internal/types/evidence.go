// Package types provides type definitions for structured data shared across the competitor discovery system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// MinEvidenceTextLength is the exclusive lower bound on the length of list-item evidence text.
const MinEvidenceTextLength = 20

// UpdateEvidence is one piece of evidence that a competitor shipped something:
// a search snippet or a changelog list item, with where it came from.
type UpdateEvidence struct {
	Source string `json:"source"` // result link or probed changelog URL; may be empty
	Text   string `json:"text"`
}

// Key identifies an evidence item for duplicate detection.
func (e UpdateEvidence) Key() string {
	return e.Source + "\x00" + e.Text
}
