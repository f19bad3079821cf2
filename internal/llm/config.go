package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// EnvPrefix prefixes every environment variable read by ConfigFromEnv.
const EnvPrefix = "MUSICMAPPING_"

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single generation including retries.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // OpenAI-compatible endpoint override
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// envBindings lists the variables ConfigFromEnv reads, without prefix.
func (c *Config) envBindings() map[string]*string {
	return map[string]*string{
		"LLM_PROVIDER":        &c.Provider,
		"ANTHROPIC_API_KEY":   &c.Anthropic.APIKey,
		"ANTHROPIC_MODEL":     &c.Anthropic.Model,
		"OPENAI_API_KEY":      &c.OpenAI.APIKey,
		"OPENAI_MODEL":        &c.OpenAI.Model,
		"OPENAI_BASE_URL":     &c.OpenAI.BaseURL,
		"GEMINI_API_KEY":      &c.Gemini.APIKey,
		"GEMINI_MODEL":        &c.Gemini.Model,
		"OPENROUTER_API_KEY":  &c.OpenRouter.APIKey,
		"OPENROUTER_MODEL":    &c.OpenRouter.Model,
		"OPENROUTER_BASE_URL": &c.OpenRouter.BaseURL,
	}
}

// ConfigFromEnv builds a Config from MUSICMAPPING_* environment variables,
// falling back to defaults for unset values. When no provider is chosen
// explicitly, the standard vendor API key variables are probed.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	explicit := false
	for name, dst := range cfg.envBindings() {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
			if name == "LLM_PROVIDER" {
				explicit = true
			}
		}
	}
	if d := os.Getenv(EnvPrefix + "LLM_TIMEOUT"); d != "" {
		if t, err := time.ParseDuration(d); err == nil {
			cfg.Timeout = t
		}
	}
	if !explicit && cfg.Validate() != nil {
		if found, ok := DiscoverConfig(); ok {
			found.Timeout = cfg.Timeout
			return found
		}
	}
	return cfg
}

// DiscoverConfig probes standard API key env vars in priority order
// (Anthropic, OpenAI, Gemini, OpenRouter) and returns a Config for the
// first provider whose key is found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	probes := []struct {
		env      string
		provider string
		key      *string
	}{
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI.APIKey},
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter.APIKey},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			*p.key = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case ProviderAnthropic:
		key = c.Anthropic.APIKey
	case ProviderOpenAI:
		key = c.OpenAI.APIKey
	case ProviderGemini:
		key = c.Gemini.APIKey
	case ProviderOpenRouter:
		key = c.OpenRouter.APIKey
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s%s_API_KEY is required for the %s provider", EnvPrefix, envName(c.Provider), c.Provider)
	}
	return nil
}

func envName(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI"
	case ProviderGemini:
		return "GEMINI"
	case ProviderOpenRouter:
		return "OPENROUTER"
	default:
		return "ANTHROPIC"
	}
}
