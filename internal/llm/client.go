package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/competitor-discovery/internal/config"
)

// Role of a chat message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System returns a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User returns a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

var (
	// ErrMissingAPIKey is returned when the selected provider has no key configured.
	ErrMissingAPIKey = errors.New("API key is required")
	// ErrEmptyCompletion is returned when the provider answers with no text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// Client is an abstraction over LLM providers
type Client interface {
	// Complete sends messages and returns the assistant's reply text.
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
	// Provider names the backing provider, for metrics and logs.
	Provider() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates the client for cfg.Provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	case config.ProviderOpenRouter, "":
		return NewOpenRouterClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
