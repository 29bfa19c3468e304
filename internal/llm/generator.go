package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/competitor-discovery/internal/config"
	"github.com/jonathan/competitor-discovery/internal/metrics"
	"github.com/jonathan/competitor-discovery/internal/observability"
)

// Sentinel is the text shown in place of a report when generation fails.
const Sentinel = "⚠️ LLM error. Please retry."

// Completion is the outcome of Generate. Text is always displayable: it holds
// the model's reply, or Sentinel when Err is set.
type Completion struct {
	Text string
	Err  error
}

// Failed reports whether the completion is the sentinel.
func (c Completion) Failed() bool { return c.Err != nil }

// Generator issues completions and never returns an error to its caller.
type Generator struct {
	client   Client
	cfg      config.LLMConfig
	initErr  error
	log      logrus.FieldLogger
	reporter observability.Reporter
}

// NewGenerator builds the configured client. A client that cannot be built,
// most often for lack of an API key, is not fatal: every Generate call then
// reports the problem and returns the sentinel.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, log logrus.FieldLogger) *Generator {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("language model unavailable")
	}
	g := NewGeneratorWithClient(client, cfg, log)
	g.initErr = err
	return g
}

// NewGeneratorWithClient wraps an existing client.
func NewGeneratorWithClient(client Client, cfg config.LLMConfig, log logrus.FieldLogger) *Generator {
	return &Generator{
		client:   client,
		cfg:      cfg,
		log:      log,
		reporter: observability.LogReporter{Log: log},
	}
}

// Generate sends messages to model at temperature. An empty model uses the
// configured one. Any failure is reported as "LLM API Error: ..." through the
// Reporter attached to ctx and yields Completion{Text: Sentinel}.
func (g *Generator) Generate(ctx context.Context, messages []Message, model string, temperature float32) Completion {
	provider := g.cfg.Provider
	if g.client != nil {
		provider = g.client.Provider()
	}

	start := time.Now()
	text, err := g.complete(ctx, messages, Options{
		Model:       model,
		Temperature: Float32(temperature),
		MaxTokens:   g.cfg.MaxTokens,
	})
	metrics.RecordGeneration(provider, time.Since(start), err)

	if err != nil {
		g.log.WithFields(logrus.Fields{
			"provider": provider,
			"model":    model,
		}).WithError(err).Error("completion failed")
		observability.ReporterFrom(ctx, g.reporter).Error(fmt.Sprintf("LLM API Error: %v", err))
		return Completion{Text: Sentinel, Err: err}
	}
	return Completion{Text: text}
}

func (g *Generator) complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if g.client == nil {
		if g.initErr != nil {
			return "", g.initErr
		}
		return "", ErrMissingAPIKey
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}
	return g.client.Complete(ctx, messages, opts)
}

// Close releases the underlying client.
func (g *Generator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
