package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/benewagner/musicmapping/internal/store"
)

func TestMockProvider_ReturnsCanedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ValidatesAgainstSchema(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"name":"Treble"}`)},
	)
	_, err := mock.Generate(context.Background(), Request{Schema: testSchema()})
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
	if mock.Remaining() != 0 {
		t.Fatalf("expected queue drained, got %d", mock.Remaining())
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeExerciseGen)
	if p := PurposeFrom(ctx); p != PurposeExerciseGen {
		t.Fatalf("expected %q, got %q", PurposeExerciseGen, p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	t.Run("explicit provider", func(t *testing.T) {
		t.Setenv("MUSICMAPPING_LLM_PROVIDER", "openai")
		t.Setenv("MUSICMAPPING_OPENAI_API_KEY", "sk-test")
		t.Setenv("MUSICMAPPING_OPENAI_MODEL", "gpt-4.1")
		t.Setenv("MUSICMAPPING_LLM_TIMEOUT", "15s")

		cfg := ConfigFromEnv()
		if cfg.Provider != ProviderOpenAI {
			t.Fatalf("expected openai, got %q", cfg.Provider)
		}
		if cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-4.1" {
			t.Fatalf("unexpected openai config: %+v", cfg.OpenAI)
		}
		if cfg.Timeout != 15*time.Second {
			t.Fatalf("expected 15s timeout, got %s", cfg.Timeout)
		}
	})

	t.Run("discovers vendor key", func(t *testing.T) {
		t.Setenv("MUSICMAPPING_LLM_PROVIDER", "")
		t.Setenv("MUSICMAPPING_ANTHROPIC_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "g-test")

		cfg := ConfigFromEnv()
		if cfg.Provider != ProviderGemini {
			t.Fatalf("expected gemini, got %q", cfg.Provider)
		}
		if cfg.Gemini.APIKey != "g-test" {
			t.Fatalf("expected discovered key, got %q", cfg.Gemini.APIKey)
		}
	})

	t.Run("defaults without keys", func(t *testing.T) {
		t.Setenv("MUSICMAPPING_LLM_PROVIDER", "")
		t.Setenv("MUSICMAPPING_LLM_TIMEOUT", "")
		cfg := ConfigFromEnv()
		if cfg.Provider != ProviderAnthropic {
			t.Fatalf("expected default anthropic, got %q", cfg.Provider)
		}
		if cfg.Timeout != DefaultConfig().Timeout {
			t.Fatalf("expected default timeout, got %s", cfg.Timeout)
		}
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "MUSICMAPPING_ANTHROPIC_API_KEY") {
			t.Fatalf("expected error naming the env var, got %v", err)
		}
	})
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (f *fakeRecorder) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, data)
	return f.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rec := &fakeRecorder{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"title":"Chords"}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 7},
	})
	p := WithLogging(mock, "mock", rec, zap.New(core))

	ctx := WithPurpose(context.Background(), PurposeExerciseGen)
	_, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "make one"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	ev := rec.events[0]
	if !ev.Success || ev.Purpose != PurposeExerciseGen || ev.Provider != "mock" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.InputTokens != 12 || ev.OutputTokens != 7 {
		t.Fatalf("unexpected token counts: %+v", ev)
	}
	if !strings.Contains(ev.RequestBody, "[system]\nsys") || !strings.Contains(ev.RequestBody, "make one") {
		t.Fatalf("request body missing prompt: %q", ev.RequestBody)
	}
	if ev.ResponseBody != `{"title":"Chords"}` {
		t.Fatalf("unexpected response body: %q", ev.ResponseBody)
	}
	if logs.FilterMessage("llm request").Len() != 1 {
		t.Fatalf("expected one info log line, got %v", logs.All())
	}
}

func TestLoggingProvider_RecordsFailureAndSurvivesRecorderError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rec := &fakeRecorder{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, "mock", rec, zap.New(core))

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected provider error to pass through, got: %T", err)
	}
	if len(rec.events) != 1 || rec.events[0].Success || rec.events[0].ErrorMessage == "" {
		t.Fatalf("unexpected events: %+v", rec.events)
	}
	if logs.FilterMessage("llm request failed").Len() != 1 {
		t.Fatal("expected a warning for the failed request")
	}
	if logs.FilterMessage("record llm request event").Len() != 1 {
		t.Fatal("expected the recorder error to be logged")
	}
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(blockingProvider{}, 5*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if p.ModelID() != "blocking" {
		t.Fatalf("expected ModelID to delegate, got %q", p.ModelID())
	}

	inner := NewMockProvider()
	if WithTimeout(inner, 0) != Provider(inner) {
		t.Fatal("zero timeout must return the provider unchanged")
	}
}

func TestNewProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock model, got %q", p.ModelID())
	}

	cfg.Provider = ProviderAnthropic
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected missing key error")
	}
}
