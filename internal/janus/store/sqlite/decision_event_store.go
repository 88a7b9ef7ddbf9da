package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/janus-door/janus/internal/db"
	"github.com/janus-door/janus/internal/janus/store"
)

type DecisionEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewDecisionEventStore(db *sql.DB, writer *dbpkg.Worker) *DecisionEventStore {
	return &DecisionEventStore{db: db, writer: writer}
}

func (s *DecisionEventStore) RecordEvent(ctx context.Context, rec store.DecisionEventRecord) error {
	if rec.DecidedAt.IsZero() {
		rec.DecidedAt = time.Now().UTC()
	}

	var visitorID any
	if rec.VisitorID != "" {
		visitorID = rec.VisitorID
	}
	var rateKey any
	if rec.RateKey != "" {
		rateKey = rec.RateKey
	}

	var notified int
	if rec.Notified {
		notified = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO decision_events(kind, visitor_id, rate_key, outcome, notified, decided_at_ms)
VALUES (?, ?, ?, ?, ?, ?);
`,
			rec.Kind, visitorID, rateKey, rec.Outcome, notified,
			rec.DecidedAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}
		return nil
	})
}
