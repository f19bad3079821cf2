package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// finish turns raw provider output into a Response. Output cut off by the
// token limit is reported as ErrMaxTokensExceeded; schema-bound output is
// validated.
func finish(req Request, raw json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if req.Schema != nil {
		raw = json.RawMessage(stripCodeFence(string(raw)))
	}
	if stop == "max_tokens" && req.Schema != nil {
		if !json.Valid(raw) {
			return nil, &ErrMaxTokensExceeded{Content: raw}
		}
	}
	if err := validateResponse(req.Schema, raw); err != nil {
		return nil, err
	}
	return &Response{Content: raw, Usage: usage, Model: model, StopReason: stop}, nil
}

// stripCodeFence removes a markdown code fence some models wrap JSON in.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

// validateResponse validates raw JSON against the given Schema.
// Returns nil if no schema is provided or validation passes.
// Returns *ErrInvalidResponse on failure.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("invalid JSON: %w", err),
		}
	}

	compiled, err := getCompiledSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("compile schema %q: %w", schema.Name, err),
		}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("schema validation failed: %w", err),
		}
	}

	return nil
}

// getCompiledSchema returns a cached compiled schema or compiles and caches it.
func getCompiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants values shaped like its own decoder output.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
