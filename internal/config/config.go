// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Provider names accepted for llm.provider.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// MaxDiscoveryItems caps discovery.max_items, matching the per-request limit.
const MaxDiscoveryItems = 50

// DefaultChangelogPaths are the path suffixes probed on a guessed competitor domain, in order.
var DefaultChangelogPaths = []string{"/changelog", "/release-notes", "/releases", "/updates"}

// Config is built once at startup and handed to every component constructor.
type Config struct {
	Search    SearchConfig    `mapstructure:"search"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Email     EmailConfig     `mapstructure:"email"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// SearchConfig configures the SerpAPI client.
type SearchConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Engine  string        `mapstructure:"engine"`
	Limit   int           `mapstructure:"limit"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLMConfig configures the language model provider.
type LLMConfig struct {
	Provider     string        `mapstructure:"provider"`
	APIKey       string        `mapstructure:"api_key"`        // OpenRouter key
	GeminiAPIKey string        `mapstructure:"gemini_api_key"` // only read when provider is gemini
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	Temperature  float32       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// FetchConfig configures changelog page fetching.
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// DiscoveryConfig configures competitor update discovery.
type DiscoveryConfig struct {
	MaxItems int      `mapstructure:"max_items"`
	Paths    []string `mapstructure:"paths"`
	Parallel bool     `mapstructure:"parallel"`
	Dedupe   bool     `mapstructure:"dedupe"`
}

// EmailConfig configures outbound SMTP delivery.
type EmailConfig struct {
	SMTPServer string        `mapstructure:"smtp_server"`
	SMTPPort   int           `mapstructure:"smtp_port"`
	Sender     string        `mapstructure:"sender"`
	Password   string        `mapstructure:"password"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port       int           `mapstructure:"port"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// envBindings maps config keys to the environment variable names the tool has always used.
var envBindings = map[string]string{
	"search.api_key":     "SERPAPI_API_KEY",
	"llm.api_key":        "OPENROUTER_API_KEY",
	"llm.gemini_api_key": "GEMINI_API_KEY",
	"llm.model":          "LLM_MODEL",
	"llm.provider":       "LLM_PROVIDER",
	"email.sender":       "EMAIL_SENDER_ADDRESS",
	"email.password":     "EMAIL_SENDER_PASSWORD",
	"log.level":          "LOG_LEVEL",
	"log.file":           "LOG_FILE",
	"server.port":        "PORT",
}

// Load reads configuration from an optional file and the environment.
// With an empty path it looks for competitor.{yaml,json} in . and ./config and
// carries on without one if none exists.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("competitor")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration Load produces with no file and an empty environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults are all well-typed, decoding cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.base_url", "https://serpapi.com")
	v.SetDefault("search.engine", "google")
	v.SetDefault("search.limit", 10)
	v.SetDefault("search.timeout", "30s")

	v.SetDefault("llm.provider", ProviderOpenRouter)
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.model", "deepseek/deepseek-chat")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 1500)
	v.SetDefault("llm.timeout", "120s")

	v.SetDefault("fetch.timeout", "20s")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; CompetitorAgent/1.0)")

	v.SetDefault("discovery.max_items", 5)
	v.SetDefault("discovery.paths", DefaultChangelogPaths)
	v.SetDefault("discovery.parallel", false)
	v.SetDefault("discovery.dedupe", true)

	v.SetDefault("email.smtp_server", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", 465)
	v.SetDefault("email.timeout", "10s")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.session_ttl", "2h")

	v.SetDefault("log.level", "info")
}

// Validate checks that the configuration has usable values.
// Missing credentials are not errors here; see Warnings.
func (c *Config) Validate() error {
	if c.Search.Limit < 0 {
		return fmt.Errorf("config error: 'search.limit' must be non-negative")
	}
	if c.Discovery.MaxItems < 0 || c.Discovery.MaxItems > MaxDiscoveryItems {
		return fmt.Errorf("config error: 'discovery.max_items' must be between 0 and %d", MaxDiscoveryItems)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("config error: 'llm.max_tokens' must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config error: 'llm.temperature' must be between 0 and 2")
	}
	switch c.LLM.Provider {
	case ProviderOpenRouter, ProviderGemini:
	default:
		return fmt.Errorf("config error: unknown llm provider %q", c.LLM.Provider)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535")
	}
	if c.Email.SMTPPort <= 0 {
		return fmt.Errorf("config error: 'email.smtp_port' must be positive")
	}
	return nil
}

// Warnings lists missing credentials. Each affected feature still runs and
// fails soft when used.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Search.APIKey == "" {
		warnings = append(warnings, "SERPAPI_API_KEY is not set; searches will return no results")
	}
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			warnings = append(warnings, "GEMINI_API_KEY is not set; reports will not be generated")
		}
	default:
		if c.LLM.APIKey == "" {
			warnings = append(warnings, "OPENROUTER_API_KEY is not set; reports will not be generated")
		}
	}
	if c.Email.Sender == "" || c.Email.Password == "" {
		warnings = append(warnings, "EMAIL_SENDER_ADDRESS or EMAIL_SENDER_PASSWORD is not set; email delivery is disabled")
	}
	return warnings
}
