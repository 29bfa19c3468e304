//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// AnalysisRequest asks for a competitor comparison of one product.
type AnalysisRequest struct {
	Product string   `json:"product" validate:"required,max=200"`
	Niche   string   `json:"niche" validate:"required,max=200"`
	Aspects []string `json:"aspects,omitempty" validate:"dive,required"`
}

// TrackingRequest asks for update summaries of a comma-separated competitor list.
type TrackingRequest struct {
	Competitors string `json:"competitors" validate:"required"`
	MaxItems    int    `json:"max_items,omitempty" validate:"min=0,max=50"`
}

// SendRequest asks for a session document to be emailed.
type SendRequest struct {
	Recipient string       `json:"recipient" validate:"required,email"`
	Artifact  ArtifactKind `json:"artifact,omitempty" validate:"omitempty,oneof=analysis tracking"`
}

// Validate validates the AnalysisRequest using the validator.
func (r *AnalysisRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the TrackingRequest using the validator.
func (r *TrackingRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SendRequest using the validator.
func (r *SendRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
