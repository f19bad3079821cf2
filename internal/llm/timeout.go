package llm

import (
	"context"
	"time"
)

// TimeoutProvider bounds every Generate call, retries included.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p so each call is cancelled after d. A zero or
// negative d returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
