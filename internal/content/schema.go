package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const documentSchemaURL = "schema://music-mapping-content.json"

// DocumentSchema is the JSON Schema a stored exercise document must satisfy.
// Values are never coerced and no defaults are applied.
var DocumentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"elements": map[string]any{
			"type":  "array",
			"items": elementSchema,
		},
		"answers": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "array",
				"prefixItems": []any{
					map[string]any{"type": "string", "minLength": 1},
					map[string]any{"type": "string"},
				},
				"minItems": 2,
				"maxItems": 2,
			},
		},
	},
	"required": []any{"elements", "answers"},
}

var elementSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"key":             map[string]any{"type": "string", "minLength": 1},
		"label":           map[string]any{"type": "string"},
		"type":            map[string]any{"type": "string", "enum": []any{"question", "answer"}},
		"sourceUrl":       map[string]any{"type": "string"},
		"text":            map[string]any{"type": "string"},
		"cardType":        map[string]any{"type": "string", "enum": []any{"text", "image", "audio", "video", "abc"}},
		"abcCode":         map[string]any{"type": "string"},
		"playMidi":        map[string]any{"type": "boolean"},
		"copyrightNotice": map[string]any{"type": "string"},
		"answers": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []any{"key", "label", "type", "sourceUrl", "text", "cardType", "copyrightNotice"},
	"additionalProperties": false,
}

var (
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
	compileOnce       sync.Once
)

func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants values shaped like its own JSON decoder output,
		// so the Go literal is round-tripped through encoding/json.
		raw, err := json.Marshal(DocumentSchema)
		if err != nil {
			compiledSchemaErr = fmt.Errorf("marshal document schema: %w", err)
			return
		}
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compiledSchemaErr = fmt.Errorf("parse document schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(documentSchemaURL, def); err != nil {
			compiledSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile(documentSchemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// ValidateDocument checks raw JSON against DocumentSchema.
func ValidateDocument(data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	sch, err := documentSchema()
	if err != nil {
		return fmt.Errorf("compile document schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// Parse validates raw JSON against the document schema and the content
// rules, then decodes it.
func Parse(data []byte) (Content, error) {
	if err := ValidateDocument(data); err != nil {
		return Content{}, err
	}
	c, err := Decode(data)
	if err != nil {
		return Content{}, err
	}
	if err := Validate(c); err != nil {
		return Content{}, err
	}
	return c, nil
}
