package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/benewagner/musicmapping/internal/store"
)

// EventRecorder persists LLM request events. store.EventRepo satisfies it.
type EventRecorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// LoggingProvider is a decorator that records every request as a store
// event and as a structured log line.
type LoggingProvider struct {
	inner    Provider
	provider string
	recorder EventRecorder
	logger   *zap.Logger
}

// WithLogging wraps a Provider with event logging. A nil recorder skips
// persistence; a nil logger discards log output.
func WithLogging(p Provider, providerName string, recorder EventRecorder, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{
		inner:    p,
		provider: providerName,
		recorder: recorder,
		logger:   logger.Named("llm"),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	fields := []zap.Field{
		zap.String("provider", data.Provider),
		zap.String("model", data.Model),
		zap.String("purpose", purpose),
		zap.Int64("latency_ms", data.LatencyMs),
		zap.Int("input_tokens", data.InputTokens),
		zap.Int("output_tokens", data.OutputTokens),
	}
	if err != nil {
		l.logger.Warn("llm request failed", append(fields, zap.Error(err))...)
	} else {
		l.logger.Info("llm request", fields...)
	}

	// Recording must never fail the request.
	if l.recorder != nil {
		if recErr := l.recorder.AppendLLMRequest(ctx, data); recErr != nil {
			l.logger.Error("record llm request event", zap.Error(recErr))
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}

	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}

	return b.String()
}
