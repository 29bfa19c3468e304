package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jonathan/competitor-discovery/internal/config"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	cfg    config.LLMConfig
}

// NewGeminiClient creates a new Gemini client from cfg.GeminiAPIKey.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig, opts ...option.ClientOption) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	// The configured model defaults to an OpenRouter name; Gemini needs its own.
	if cfg.Model == "" || strings.Contains(cfg.Model, "/") {
		cfg.Model = DefaultGeminiModel
	}

	opts = append([]option.ClientOption{option.WithAPIKey(cfg.GeminiAPIKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, cfg: cfg}, nil
}

// Complete implements Client. System messages become the system instruction;
// the remaining turns are sent as one multi-part prompt.
func (c *GeminiClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	opts = opts.withDefaults(c.cfg)

	m := c.client.GenerativeModel(opts.Model)
	m.SetTemperature(*opts.Temperature)
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}

	var system []genai.Part
	var parts []genai.Part
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = append(system, genai.Text(msg.Content))
			continue
		}
		parts = append(parts, genai.Text(msg.Content))
	}
	if len(system) > 0 {
		m.SystemInstruction = &genai.Content{Parts: system}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no prompt to send")
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// Provider implements Client.
func (c *GeminiClient) Provider() string { return config.ProviderGemini }

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", ErrEmptyCompletion
	}

	return strings.Join(parts, ""), nil
}
