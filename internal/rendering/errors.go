// Package rendering turns generated markdown reports into PDF documents.
package rendering

import "fmt"

// HintError reports an unusable styling hint.
type HintError struct {
	Hint  string
	Value string
}

func (e *HintError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Hint, e.Value)
}

// RenderError represents a general rendering failure
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
