package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/competitor-discovery/internal/pipeline"
)

// ErrBadRequest indicates a request body that could not be decoded.
type ErrBadRequest struct {
	Cause error
}

func (e *ErrBadRequest) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.Cause)
}

func (e *ErrBadRequest) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		badRequest *ErrBadRequest
		validation *pipeline.ValidationError
		missing    *pipeline.MissingArtifactError
	)
	switch {
	case errors.As(err, &badRequest), errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &missing):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
