// Package tracking summarizes recent updates for a list of competitors.
package tracking

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/competitor-discovery/internal/llm"
	"github.com/jonathan/competitor-discovery/internal/prompts"
	"github.com/jonathan/competitor-discovery/internal/types"
)

const promptFile = "tracking.json"

// Discoverer finds update evidence for one competitor.
type Discoverer interface {
	Discover(ctx context.Context, name string, maxItems int) []types.UpdateEvidence
}

// Generator is the part of llm.Generator the tracker needs.
type Generator interface {
	Generate(ctx context.Context, messages []llm.Message, model string, temperature float32) llm.Completion
}

// Section is the tracked outcome for a single competitor.
type Section struct {
	Name     string                 `json:"name"`
	Evidence []types.UpdateEvidence `json:"evidence"`
	Summary  string                 `json:"summary"`
	Failed   bool                   `json:"failed,omitempty"`
}

// Markdown renders the section as it appears in the combined report.
func (s Section) Markdown() string {
	return prompts.MustRender(promptFile, "section", map[string]string{"Name": s.Name, "Summary": s.Summary})
}

// Result is a tracking run over several competitors, in input order.
type Result struct {
	Markdown string    `json:"markdown"`
	Sections []Section `json:"sections"`
}

// ProgressFunc is told about each competitor before it is processed.
type ProgressFunc func(index int, name string)

// Tracker combines discovery and summarization.
type Tracker struct {
	discoverer  Discoverer
	gen         Generator
	model       string
	temperature float32
	log         logrus.FieldLogger
}

// NewTracker creates a Tracker. An empty model uses the generator's default.
func NewTracker(discoverer Discoverer, gen Generator, model string, temperature float32, log logrus.FieldLogger) *Tracker {
	return &Tracker{
		discoverer:  discoverer,
		gen:         gen,
		model:       model,
		temperature: temperature,
		log:         log,
	}
}

// ParseCompetitors splits a comma-separated list, trimming names and dropping empties.
func ParseCompetitors(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// SummaryMessages builds the single user message asking for a summary.
func SummaryMessages(name string, evidence []types.UpdateEvidence) []llm.Message {
	lines := make([]string, 0, len(evidence))
	for _, e := range evidence {
		lines = append(lines, prompts.MustRender(promptFile, "update-line", map[string]string{
			"Text":   e.Text,
			"Source": e.Source,
		}))
	}
	prompt := prompts.MustRender(promptFile, "summarize-updates", map[string]string{
		"Name":    name,
		"Updates": strings.Join(lines, "\n"),
	})
	return []llm.Message{llm.User(prompt)}
}

// Summarize turns evidence into a markdown summary. With no evidence the
// model is not consulted.
func (t *Tracker) Summarize(ctx context.Context, name string, evidence []types.UpdateEvidence) llm.Completion {
	if len(evidence) == 0 {
		return llm.Completion{Text: prompts.MustRender(promptFile, "no-updates", map[string]string{"Name": name})}
	}
	completion := t.gen.Generate(ctx, SummaryMessages(name, evidence), t.model, t.temperature)
	completion.Text = llm.StripCodeFence(completion.Text)
	return completion
}

// Track discovers and summarizes updates for each name in order. progress may be nil.
func (t *Tracker) Track(ctx context.Context, names []string, maxItems int, progress ProgressFunc) Result {
	result := Result{Sections: make([]Section, 0, len(names))}
	var sb strings.Builder

	for i, name := range names {
		if progress != nil {
			progress(i, name)
		}

		evidence := t.discoverer.Discover(ctx, name, maxItems)
		t.log.WithFields(logrus.Fields{
			"competitor": name,
			"evidence":   len(evidence),
		}).Info("discovered updates")

		completion := t.Summarize(ctx, name, evidence)
		section := Section{
			Name:     name,
			Evidence: evidence,
			Summary:  completion.Text,
			Failed:   completion.Failed(),
		}
		result.Sections = append(result.Sections, section)
		sb.WriteString(section.Markdown())
	}

	result.Markdown = sb.String()
	return result
}
