package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for LLM interaction.
// Consumers call Generate with a Request and receive structured JSON.
type Provider interface {
	// Generate sends a prompt to the LLM and returns a structured response.
	// When the request carries a Schema, the response Content is JSON that
	// has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Exercise generation sends a single
	// user message, followed by a feedback turn when a retry is needed.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When nil the
	// response Content is the raw text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero leaves the
	// provider default in place.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies the schema, e.g. "matching-exercise". It doubles as
	// the cache key for the compiled validator.
	Name string

	// Description is sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	Content json.RawMessage

	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
