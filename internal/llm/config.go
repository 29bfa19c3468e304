// Package llm provides chat completion clients for the supported providers and
// a Generator that turns any client failure into a displayable sentinel.
package llm

import (
	"github.com/jonathan/competitor-discovery/internal/config"
)

// Default model per provider, used when neither the call nor the
// configuration names one.
const (
	DefaultOpenRouterModel = "deepseek/deepseek-chat"
	DefaultGeminiModel     = "gemini-2.5-flash"
)

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	if provider == config.ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenRouterModel
}

// Options tune a single completion. Zero values mean "use the client default".
type Options struct {
	Model       string
	Temperature *float32
	MaxTokens   int
}

// withDefaults fills unset options from cfg.
func (o Options) withDefaults(cfg config.LLMConfig) Options {
	if o.Model == "" {
		o.Model = cfg.Model
	}
	if o.Model == "" {
		o.Model = DefaultModel(cfg.Provider)
	}
	if o.Temperature == nil {
		t := cfg.Temperature
		o.Temperature = &t
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = cfg.MaxTokens
	}
	return o
}

// Float32 returns a pointer to v, for Options.Temperature.
func Float32(v float32) *float32 {
	return &v
}
