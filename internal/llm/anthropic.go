package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicModels maps friendly names to Anthropic model IDs.
var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-5-20250929",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// AnthropicProvider implements Provider using the Anthropic SDK.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg AnthropicConfig, extra ...option.RequestOption) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	opts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, extra...)
	client := anthropic.NewClient(opts...)

	return &AnthropicProvider{
		client: &client,
		model:  resolveModel(cfg.Model, anthropicModels),
	}, nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  buildAnthropicMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{
				Schema: req.Schema.Definition,
			},
		}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	text, ok := anthropicText(msg)
	if !ok {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no text content in Anthropic response")}
	}

	usage := Usage{
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
		TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}
	stop := "end"
	if msg.StopReason == anthropic.StopReasonMaxTokens {
		stop = "max_tokens"
	}
	return finish(req, json.RawMessage(text), usage, string(msg.Model), stop)
}

func (p *AnthropicProvider) ModelID() string {
	return p.model
}

func buildAnthropicMessages(msgs []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, len(msgs))
	for i, m := range msgs {
		if m.Role == RoleAssistant {
			out[i] = anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content))
		} else {
			out[i] = anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content))
		}
	}
	return out
}

// anthropicText concatenates the text blocks of a message.
func anthropicText(msg *anthropic.Message) (string, bool) {
	var b strings.Builder
	found := false
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
			found = true
		}
	}
	return b.String(), found
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.StatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		case apiErr.StatusCode >= 400:
			return &ErrRequestRejected{Status: apiErr.StatusCode, Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names are used as-is.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
