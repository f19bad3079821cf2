package llm

import "fmt"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider targets the OpenRouter API, which speaks the OpenAI
// protocol, so the OpenAI client is reused.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	inner, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, err
	}

	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}
