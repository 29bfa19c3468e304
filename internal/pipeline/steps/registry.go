// Package steps defines the steps of an interactive session and which of
// them a session is ready to run.
package steps

import (
	"fmt"
	"sort"

	"github.com/jonathan/competitor-discovery/internal/types"
)

// Step names.
const (
	DescribeProduct    = "describe_product"
	AnalyzeCompetitors = "analyze_competitors"
	RenderAnalysis     = "render_analysis"
	DiscoverUpdates    = "discover_updates"
	SummarizeUpdates   = "summarize_updates"
	RenderTracking     = "render_tracking"
	SendAnalysis       = "send_analysis"
	SendTracking       = "send_tracking"
)

// Step categories.
const (
	CategoryAnalysis = "analysis"
	CategoryTracking = "tracking"
	CategoryDelivery = "delivery"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	DescribeProduct: {
		Name:     DescribeProduct,
		Category: CategoryAnalysis,
	},
	AnalyzeCompetitors: {
		Name:         AnalyzeCompetitors,
		Category:     CategoryAnalysis,
		Dependencies: []string{DescribeProduct},
	},
	RenderAnalysis: {
		Name:         RenderAnalysis,
		Category:     CategoryAnalysis,
		Dependencies: []string{AnalyzeCompetitors},
	},
	DiscoverUpdates: {
		Name:     DiscoverUpdates,
		Category: CategoryTracking,
	},
	SummarizeUpdates: {
		Name:         SummarizeUpdates,
		Category:     CategoryTracking,
		Dependencies: []string{DiscoverUpdates},
	},
	RenderTracking: {
		Name:         RenderTracking,
		Category:     CategoryTracking,
		Dependencies: []string{SummarizeUpdates},
	},
	SendAnalysis: {
		Name:         SendAnalysis,
		Category:     CategoryDelivery,
		Dependencies: []string{RenderAnalysis},
	},
	SendTracking: {
		Name:         SendTracking,
		Category:     CategoryDelivery,
		Dependencies: []string{RenderTracking},
	},
}

// SendStep returns the delivery step for an artifact.
func SendStep(kind types.ArtifactKind) string {
	if kind == types.ArtifactTracking {
		return SendTracking
	}
	return SendAnalysis
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies: %v", e.MissingDependencies)
}

// CompletedSteps derives which steps a session has already run. Delivery
// steps leave no trace in a session and can always be repeated.
func CompletedSteps(s types.DiscoverySession) map[string]bool {
	done := make(map[string]bool)
	if s.Analysis != "" {
		done[DescribeProduct] = true
		done[AnalyzeCompetitors] = true
	}
	if len(s.AnalysisPDF) > 0 {
		done[RenderAnalysis] = true
	}
	if s.Tracking != "" {
		done[DiscoverUpdates] = true
		done[SummarizeUpdates] = true
	}
	if len(s.TrackingPDF) > 0 {
		done[RenderTracking] = true
	}
	return done
}

// ValidateDependencies checks if all required dependencies for a step are completed
func ValidateDependencies(s types.DiscoverySession, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	done := CompletedSteps(s)
	var missing []string
	for _, dep := range def.Dependencies {
		if !done[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// AvailableSteps returns the steps whose dependencies are met, sorted by name.
// Completed steps stay available since every step can be rerun.
func AvailableSteps(s types.DiscoverySession) []string {
	var available []string
	for name := range StepRegistry {
		if ValidateDependencies(s, name) == nil {
			available = append(available, name)
		}
	}
	sort.Strings(available)
	return available
}

// BlockedSteps returns the steps whose dependencies are not met, sorted by name.
func BlockedSteps(s types.DiscoverySession) []string {
	var blocked []string
	for name := range StepRegistry {
		if ValidateDependencies(s, name) != nil {
			blocked = append(blocked, name)
		}
	}
	sort.Strings(blocked)
	return blocked
}
