package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/jonathan/competitor-discovery/internal/config"
)

// DefaultOpenRouterURL is the OpenAI-compatible endpoint of OpenRouter.
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouterClient implements Client against any OpenAI-compatible chat
// completions endpoint, OpenRouter by default.
type OpenRouterClient struct {
	chat model.ChatModel
	cfg  config.LLMConfig
}

// NewOpenRouterClient creates a client authenticated with cfg.APIKey.
func NewOpenRouterClient(ctx context.Context, cfg config.LLMConfig) (*OpenRouterClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter: %w", ErrMissingAPIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterURL
	}

	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   Options{}.withDefaults(cfg).Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenRouter client: %w", err)
	}

	return &OpenRouterClient{chat: chat, cfg: cfg}, nil
}

// Complete implements Client.
func (c *OpenRouterClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	opts = opts.withDefaults(c.cfg)

	callOpts := []model.Option{
		model.WithModel(opts.Model),
		model.WithTemperature(*opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, model.WithMaxTokens(opts.MaxTokens))
	}

	resp, err := c.chat.Generate(ctx, toSchemaMessages(messages), callOpts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Content, nil
}

// Provider implements Client.
func (c *OpenRouterClient) Provider() string { return config.ProviderOpenRouter }

// Close implements Client. The underlying HTTP client needs no cleanup.
func (c *OpenRouterClient) Close() error { return nil }

func toSchemaMessages(messages []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		var role schema.RoleType
		switch m.Role {
		case RoleSystem:
			role = schema.System
		case RoleAssistant:
			role = schema.Assistant
		default:
			role = schema.User
		}
		out = append(out, &schema.Message{Role: role, Content: m.Content})
	}
	return out
}
