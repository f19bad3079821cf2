package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// geminiModels maps friendly names to Gemini model IDs.
var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
}

// GeminiProvider implements Provider using the Google Gemini SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  resolveModel(cfg.Model, geminiModels),
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = buildGeminiSchema(req.Schema.Definition)
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, buildGeminiContents(req.Messages), config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	var usage Usage
	if md := result.UsageMetadata; md != nil {
		usage = Usage{
			InputTokens:  int(md.PromptTokenCount),
			OutputTokens: int(md.CandidatesTokenCount),
			TotalTokens:  int(md.TotalTokenCount),
		}
	}
	stop := "end"
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		stop = "max_tokens"
	}
	return finish(req, json.RawMessage(result.Text()), usage, p.model, stop)
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func buildGeminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		out[i] = genai.NewContentFromText(m.Content, role)
	}
	return out
}

// buildGeminiSchema converts a JSON Schema definition map to a genai.Schema.
// Gemini understands a subset of JSON Schema; keywords outside it are
// dropped and enforced by local validation instead.
func buildGeminiSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := def["type"].(string); ok {
		schema.Type = mapGeminiType(t)
	}
	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}

	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildGeminiSchema(propDef)
			}
		}
	}

	schema.Required = stringList(def["required"])
	schema.Enum = stringList(def["enum"])

	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildGeminiSchema(items)
	}
	if n, ok := intValue(def["minItems"]); ok {
		schema.MinItems = genai.Ptr(n)
	}
	if n, ok := intValue(def["maxItems"]); ok {
		schema.MaxItems = genai.Ptr(n)
	}

	return schema
}

// stringList accepts both []string and the []any produced by decoding JSON.
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		var out []string
		for _, e := range list {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func mapGeminiType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.Code >= 500:
			return &ErrProviderUnavailable{Err: err}
		case apiErr.Code >= 400:
			return &ErrRequestRejected{Status: apiErr.Code, Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
