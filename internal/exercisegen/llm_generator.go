package exercisegen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/benewagner/musicmapping/internal/content"
	"github.com/benewagner/musicmapping/internal/llm"
)

// LLMGenerator implements Generator using an LLM provider. A draft that
// fails a retryable check is sent back to the model together with the
// failure message.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	logger   *zap.Logger
}

// New creates a new LLMGenerator. A nil logger discards log output.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *LLMGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMGenerator{provider: provider, config: cfg, logger: logger.Named("exercisegen")}
}

// CheckInput rejects inputs no model output could satisfy.
func CheckInput(input GenerateInput) error {
	if strings.TrimSpace(input.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if input.Pairs < MinPairs || input.Pairs > MaxPairs {
		return fmt.Errorf("pairs must be between %d and %d, got %d", MinPairs, MaxPairs, input.Pairs)
	}
	if input.Distractors < 0 || input.Distractors > MaxDistractors {
		return fmt.Errorf("distractors must be between 0 and %d, got %d", MaxDistractors, input.Distractors)
	}
	return nil
}

// Generate drafts an exercise, regenerating up to Config.MaxAttempts times.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*Exercise, error) {
	if err := CheckInput(input); err != nil {
		return nil, err
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeExerciseGen)

	messages := []llm.Message{
		{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
	}
	attempts := max(g.config.MaxAttempts, 1)

	var lastErr *ValidationError
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := g.provider.Generate(ctx, llm.Request{
			System:      systemPrompt,
			Messages:    messages,
			Schema:      ExerciseSchema,
			MaxTokens:   g.config.MaxTokens,
			Temperature: g.config.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("LLM generation failed: %w", err)
		}

		var d Draft
		if err := json.Unmarshal(resp.Content, &d); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response: %w", err)
		}

		c, verr := g.check(&d, input)
		if verr == nil {
			return &Exercise{Title: strings.TrimSpace(d.Title), Content: c, Attempts: attempt}, nil
		}
		lastErr = verr
		if !verr.Retryable {
			return nil, verr
		}

		g.logger.Warn("draft rejected",
			zap.Int("attempt", attempt),
			zap.String("validator", verr.Validator),
			zap.String("reason", verr.Message),
		)
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: string(resp.Content)},
			llm.Message{Role: llm.RoleUser, Content: buildFeedback(verr)},
		)
	}

	return nil, fmt.Errorf("no valid exercise after %d attempts: %w", attempts, lastErr)
}

// check runs the validator chain and then the content rules on the
// converted draft.
func (g *LLMGenerator) check(d *Draft, input GenerateInput) (content.Content, *ValidationError) {
	for _, v := range g.config.Validators {
		if verr := v.Validate(d, input); verr != nil {
			return content.Content{}, verr
		}
	}

	c, err := d.ToContent()
	if err != nil {
		return content.Content{}, &ValidationError{Validator: "content", Message: err.Error()}
	}
	if err := content.Validate(c); err != nil {
		return content.Content{}, &ValidationError{Validator: "content", Message: err.Error()}
	}
	if warnings := content.Warnings(c); len(warnings) > 0 {
		return content.Content{}, &ValidationError{
			Validator: "content",
			Message:   strings.Join(warnings, "; "),
			Retryable: true,
		}
	}
	return c, nil
}
