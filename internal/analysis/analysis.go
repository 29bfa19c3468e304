// Package analysis produces the competitor comparison report for a product.
package analysis

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/competitor-discovery/internal/llm"
	"github.com/jonathan/competitor-discovery/internal/prompts"
	"github.com/jonathan/competitor-discovery/internal/search"
)

const promptFile = "analysis.json"

// Generator is the part of llm.Generator the analyzer needs.
type Generator interface {
	Generate(ctx context.Context, messages []llm.Message, model string, temperature float32) llm.Completion
}

// Result is one analysis run. Report is always displayable; Failed is set
// when it is the LLM sentinel.
type Result struct {
	Product     string
	Niche       string
	Description string
	Aspects     string
	Report      string
	Failed      bool
}

// Analyzer describes a product from search and asks the model for a
// competitor comparison.
type Analyzer struct {
	searcher    search.Searcher
	gen         Generator
	model       string
	temperature float32
	log         logrus.FieldLogger
}

// NewAnalyzer creates an Analyzer. An empty model uses the generator's default.
func NewAnalyzer(searcher search.Searcher, gen Generator, model string, temperature float32, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		searcher:    searcher,
		gen:         gen,
		model:       model,
		temperature: temperature,
		log:         log,
	}
}

// Describe returns the first search snippet describing product within niche,
// or a generic description when search yields none.
func (a *Analyzer) Describe(ctx context.Context, product, niche string) string {
	data := map[string]string{"Product": product, "Niche": niche}

	resp := a.searcher.Search(ctx, prompts.MustRender(promptFile, "description-query", data), 0)
	if snippet := resp.FirstSnippet(); snippet != "" {
		return snippet
	}

	log := a.log.WithField("product", product)
	switch {
	case resp.Failed():
		log.WithError(resp.Err).Warn("description search failed, using fallback")
	case resp.Empty():
		log.Debug("description search returned no results, using fallback")
	default:
		log.Debug("no description snippet, using fallback")
	}
	return prompts.MustRender(promptFile, "description-fallback", data)
}

// Messages builds the analyst conversation for a product.
func Messages(product, description string, aspects []Aspect) []llm.Message {
	prompt := prompts.MustRender(promptFile, "analyze-competitors", map[string]string{
		"Product":     product,
		"Description": description,
		"Aspects":     JoinAspects(aspects),
	})
	return []llm.Message{
		llm.System(prompts.MustGet(promptFile, "system")),
		llm.User(prompt),
	}
}

// Analyze describes product and generates the comparison report.
func (a *Analyzer) Analyze(ctx context.Context, product, niche string, aspects []Aspect) Result {
	description := a.Describe(ctx, product, niche)

	a.log.WithFields(logrus.Fields{
		"product": product,
		"niche":   niche,
		"aspects": len(aspects),
	}).Info("analyzing competitors")

	completion := a.gen.Generate(ctx, Messages(product, description, aspects), a.model, a.temperature)

	return Result{
		Product:     product,
		Niche:       niche,
		Description: description,
		Aspects:     JoinAspects(aspects),
		Report:      llm.StripCodeFence(completion.Text),
		Failed:      completion.Failed(),
	}
}
