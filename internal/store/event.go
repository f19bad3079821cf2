package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequenceCounter hands out the monotonic sequence numbers events are
// ordered by. Auto-increment IDs restart when a table is rebuilt; the
// sequence survives in its own row.
//
// Uses raw SQL because the ent builders have no atomic counter. The mutex
// serializes within the process; the RETURNING clause makes the increment
// atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
