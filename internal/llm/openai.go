package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// openaiModels maps friendly names to OpenAI model IDs.
var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
	"gpt-4.1":     "gpt-4.1",
}

// OpenAIProvider implements Provider using the OpenAI SDK. Any
// OpenAI-compatible API can be targeted through BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  resolveModel(cfg.Model, openaiModels),
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            buildOpenAIMessages(req),
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}

	if req.Schema != nil {
		schemaBytes, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(schemaBytes),
				Strict:      true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no choices in OpenAI response")}
	}

	choice := resp.Choices[0]
	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	stop := "end"
	if choice.FinishReason == openai.FinishReasonLength {
		stop = "max_tokens"
	}
	return finish(req, json.RawMessage(choice.Message.Content), usage, resp.Model, stop)
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

func buildOpenAIMessages(req Request) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return messages
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		case apiErr.HTTPStatusCode >= 400:
			return &ErrRequestRejected{Status: apiErr.HTTPStatusCode, Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
