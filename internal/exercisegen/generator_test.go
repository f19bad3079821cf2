package exercisegen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/benewagner/musicmapping/internal/content"
	"github.com/benewagner/musicmapping/internal/llm"
)

func intervalsInput() GenerateInput {
	return GenerateInput{Topic: "intervals", Pairs: 3, Distractors: 1}
}

func validDraftJSON() json.RawMessage {
	return json.RawMessage(`{
		"title": "Name the interval",
		"questions": [
			{"text": "C to E", "card_type": "text", "abc_code": "", "answers": ["A"]},
			{"text": "C to G", "card_type": "text", "abc_code": "", "answers": ["B"]},
			{"text": "C to F", "card_type": "text", "abc_code": "", "answers": ["C"]}
		],
		"answers": [
			{"label": "A", "text": "Major third"},
			{"label": "B", "text": "Perfect fifth"},
			{"label": "C", "text": "Perfect fourth"},
			{"label": "D", "text": "Minor sixth"}
		]
	}`)
}

func TestGenerate_Valid(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validDraftJSON()})
	gen := New(mock, DefaultConfig(), nil)

	ex, err := gen.Generate(context.Background(), intervalsInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Title != "Name the interval" {
		t.Errorf("unexpected title: %q", ex.Title)
	}
	if ex.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", ex.Attempts)
	}
	if err := content.Validate(ex.Content); err != nil {
		t.Fatalf("generated content invalid: %v", err)
	}
	if len(ex.Content.Elements) != 7 {
		t.Fatalf("expected 7 elements, got %d", len(ex.Content.Elements))
	}
	if len(ex.Content.Answers) != 4 {
		t.Fatalf("expected 4 answer key entries, got %d", len(ex.Content.Answers))
	}

	q := ex.Content.Elements[1]
	if q.Label != "Q2" || q.Text != "C to G" {
		t.Fatalf("unexpected second question: %+v", q)
	}
	if len(q.Answers) != 1 || ex.Content.AnswerLabel(q.Answers[0]) != "B" {
		t.Fatalf("question should match answer B, got %v", q.Answers)
	}
}

func TestGenerate_SendsPurposeAndSchema(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validDraftJSON()})
	gen := New(mock, DefaultConfig(), nil)

	if _, err := gen.Generate(context.Background(), intervalsInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := mock.Calls[0]
	if req.Schema != ExerciseSchema {
		t.Error("expected the exercise schema on the request")
	}
	if req.System != systemPrompt {
		t.Error("expected the system prompt")
	}
	if !strings.Contains(req.Messages[0].Content, "Topic: intervals") {
		t.Errorf("user message missing topic: %q", req.Messages[0].Content)
	}
}

func TestGenerate_RetriesWithFeedback(t *testing.T) {
	bad := json.RawMessage(`{
		"title": "Name the interval",
		"questions": [
			{"text": "C to E", "card_type": "text", "abc_code": "", "answers": ["A"]},
			{"text": "C to G", "card_type": "text", "abc_code": "", "answers": ["Z"]},
			{"text": "C to F", "card_type": "text", "abc_code": "", "answers": ["C"]}
		],
		"answers": [
			{"label": "A", "text": "Major third"},
			{"label": "B", "text": "Perfect fifth"},
			{"label": "C", "text": "Perfect fourth"}
		]
	}`)
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: bad},
		llm.MockResponse{Content: validDraftJSON()},
	)
	gen := New(mock, DefaultConfig(), nil)

	ex, err := gen.Generate(context.Background(), intervalsInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", ex.Attempts)
	}

	retry := mock.Calls[1]
	if len(retry.Messages) != 3 {
		t.Fatalf("expected prompt, draft and feedback, got %d messages", len(retry.Messages))
	}
	if retry.Messages[1].Role != llm.RoleAssistant {
		t.Errorf("expected the rejected draft as assistant turn")
	}
	if !strings.Contains(retry.Messages[2].Content, `unknown answer label "Z"`) {
		t.Errorf("feedback should name the problem, got %q", retry.Messages[2].Content)
	}
}

func TestGenerate_GivesUpAfterMaxAttempts(t *testing.T) {
	noTitle := json.RawMessage(`{"title": "", "questions": [], "answers": []}`)
	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: noTitle},
		llm.MockResponse{Content: noTitle},
		llm.MockResponse{Content: validDraftJSON()},
	)
	// Skip schema checks so the structural validator sees the draft.
	gen := New(noSchema{mock}, cfg, nil)

	_, err := gen.Generate(context.Background(), intervalsInput())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	if verr.Validator != "structural" {
		t.Errorf("expected structural failure, got %q", verr.Validator)
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	gen := New(mock, DefaultConfig(), nil)

	_, err := gen.Generate(context.Background(), intervalsInput())
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
}

func TestGenerate_RejectsBadInput(t *testing.T) {
	mock := llm.NewMockProvider()
	gen := New(mock, DefaultConfig(), nil)

	tests := []GenerateInput{
		{Topic: "", Pairs: 3},
		{Topic: "scales", Pairs: 1},
		{Topic: "scales", Pairs: MaxPairs + 1},
		{Topic: "scales", Pairs: 3, Distractors: MaxDistractors + 1},
	}
	for _, in := range tests {
		if _, err := gen.Generate(context.Background(), in); err == nil {
			t.Errorf("expected error for %+v", in)
		}
	}
	if mock.CallCount() != 0 {
		t.Errorf("bad input must not reach the provider")
	}
}

func TestGenerate_Notation(t *testing.T) {
	raw := json.RawMessage(`{
		"title": "Which key?",
		"questions": [
			{"text": "Melody 1", "card_type": "abc", "abc_code": "X:1\nM:4/4\nL:1/4\nK:G\nGABc|d2d2|]", "answers": ["a"]},
			{"text": "Melody 2", "card_type": "abc", "abc_code": "X:1\nM:4/4\nL:1/4\nK:F\nFGAB|c2c2|]", "answers": ["b"]}
		],
		"answers": [
			{"label": "A", "text": "G major"},
			{"label": "B", "text": "F major"}
		]
	}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: raw})
	gen := New(mock, DefaultConfig(), nil)

	ex, err := gen.Generate(context.Background(), GenerateInput{Topic: "keys", Pairs: 2, Notation: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := ex.Content.Elements[0]
	if q.CardType != content.CardABC || !q.PlayMIDI || !strings.Contains(q.ABCCode, "K:G") {
		t.Fatalf("expected a notation card, got %+v", q)
	}
	if len(q.Answers) != 1 || ex.Content.AnswerLabel(q.Answers[0]) != "A" {
		t.Fatalf("labels should resolve case-insensitively, got %v", q.Answers)
	}
}

// noSchema strips the schema so canned drafts reach the validators.
type noSchema struct{ llm.Provider }

func (n noSchema) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	req.Schema = nil
	return n.Provider.Generate(ctx, req)
}
