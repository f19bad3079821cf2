package store

import (
	"context"
	"errors"
	"time"

	"github.com/benewagner/musicmapping/internal/content"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Exercise is a stored exercise document.
type Exercise struct {
	ID        int
	Slug      string `validate:"required,slug,max=64"`
	Title     string `validate:"required,max=200"`
	Content   content.Content
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExerciseRepo manages the exercise library.
type ExerciseRepo interface {
	// Save inserts the exercise or replaces the one with the same slug.
	// ID and timestamps are filled in on success.
	Save(ctx context.Context, ex *Exercise) error

	// Get returns the exercise with the given slug, or ErrNotFound.
	Get(ctx context.Context, slug string) (*Exercise, error)

	// List returns every exercise, most recently updated first.
	List(ctx context.Context) ([]Exercise, error)

	// Delete removes the exercise with the given slug, or returns ErrNotFound.
	Delete(ctx context.Context, slug string) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMRequests returns LLM request events, newest first.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMRequest returns one event by sequence number, or ErrNotFound.
	GetLLMRequest(ctx context.Context, sequence int64) (*LLMRequestEvent, error)
}
