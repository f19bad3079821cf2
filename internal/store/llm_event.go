package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo backed by ent's SQL builders and the
// global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(llmRequestsTable).
		Columns("sequence", "timestamp", "provider", "model", "purpose",
			"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
			"request_body", "response_body").
		Values(seqNum, time.Now().UTC(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
			data.RequestBody, data.ResponseBody).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}

	return nil
}

var llmRequestFields = []string{
	"sequence", "timestamp", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
	"request_body", "response_body",
}

func (r *eventRepo) QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := builder().Select(llmRequestFields...).
		From(entsql.Table(llmRequestsTable)).
		OrderBy(entsql.Desc("sequence"))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM request events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEvent
	for rows.Next() {
		ev, err := scanLLMRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMRequest(ctx context.Context, sequence int64) (*LLMRequestEvent, error) {
	query, args := builder().Select(llmRequestFields...).
		From(entsql.Table(llmRequestsTable)).
		Where(entsql.EQ("sequence", sequence)).
		Query()
	ev, err := scanLLMRequest(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ev, err
}

func scanLLMRequest(row scanner) (*LLMRequestEvent, error) {
	var ev LLMRequestEvent
	if err := row.Scan(&ev.Sequence, &ev.Timestamp, &ev.Provider, &ev.Model, &ev.Purpose,
		&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &ev.Success, &ev.ErrorMessage,
		&ev.RequestBody, &ev.ResponseBody); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan LLM request event: %w", err)
	}
	return &ev, nil
}
