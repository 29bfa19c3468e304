package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/competitor-discovery/internal/pipeline/steps"
	"github.com/jonathan/competitor-discovery/internal/types"
)

// ValidationError indicates request validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// MissingArtifactError indicates the requested document has not been generated yet.
type MissingArtifactError struct {
	Artifact types.ArtifactKind
	Cause    error
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("no %s report has been generated yet", e.Artifact)
}

func (e *MissingArtifactError) Unwrap() error {
	return e.Cause
}

// validationError converts a validator failure into a ValidationError
// naming the first offending field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "request", Message: err.Error()}
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "email":
		msg = "must be a valid email address"
	case "max":
		msg = "must be at most " + fe.Param()
	case "min":
		msg = "must be at least " + fe.Param()
	case "oneof":
		msg = "must be one of: " + fe.Param()
	default:
		msg = "failed " + fe.Tag() + " check"
	}
	return &ValidationError{Field: field, Message: msg}
}

// missingArtifact wraps a dependency failure for a send step.
func missingArtifact(kind types.ArtifactKind, err error) error {
	var depErr *steps.DependencyError
	if errors.As(err, &depErr) {
		return &MissingArtifactError{Artifact: kind, Cause: err}
	}
	return err
}
