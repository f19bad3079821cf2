package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NewProvider creates a Provider from configuration, wrapped as
// caller -> timeout -> retry -> logging -> base. recorder and logger may
// be nil.
func NewProvider(ctx context.Context, cfg Config, recorder EventRecorder, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, cfg.Provider, recorder, logger)
	p = WithRetry(p, cfg.Retry)
	return WithTimeout(p, cfg.Timeout), nil
}
