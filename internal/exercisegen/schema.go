package exercisegen

import "github.com/benewagner/musicmapping/internal/llm"

// ExerciseSchema defines the JSON the LLM must return. Every property is
// required and no extras are allowed so the schema also works with
// OpenAI strict mode.
var ExerciseSchema = &llm.Schema{
	Name:        "matching-exercise",
	Description: "A music-theory matching exercise: question cards, answer cards and which answers each question matches",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short title of the exercise",
			},
			"questions": map[string]any{
				"type":        "array",
				"description": "Question cards shown in the left column",
				"minItems":    MinPairs,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "Card text. For notation cards a short caption.",
						},
						"card_type": map[string]any{
							"type":        "string",
							"enum":        []any{"text", "abc"},
							"description": "text for a plain card, abc for a card showing music notation",
						},
						"abc_code": map[string]any{
							"type":        "string",
							"description": "ABC notation tune including X: and K: header lines. Empty for text cards.",
						},
						"answers": map[string]any{
							"type":        "array",
							"description": "Labels of the answer cards that correctly match this question",
							"minItems":    1,
							"items":       map[string]any{"type": "string"},
						},
					},
					"required":             []any{"text", "card_type", "abc_code", "answers"},
					"additionalProperties": false,
				},
			},
			"answers": map[string]any{
				"type":        "array",
				"description": "Answer cards shown in the right column, including distractors",
				"minItems":    MinPairs,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"label": map[string]any{
							"type":        "string",
							"description": "Short unique label referenced by questions, e.g. A, B, C",
						},
						"text": map[string]any{
							"type":        "string",
							"description": "Card text",
						},
					},
					"required":             []any{"label", "text"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "questions", "answers"},
		"additionalProperties": false,
	},
}
