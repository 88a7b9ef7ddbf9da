package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/janus-door/janus/internal/db"
	"github.com/janus-door/janus/internal/janus/store"
)

type VisitorStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewVisitorStore(db *sql.DB, writer *dbpkg.Worker) *VisitorStore {
	return &VisitorStore{db: db, writer: writer}
}

func (s *VisitorStore) Get(ctx context.Context, visitorID string) (store.VisitorRecord, bool, error) {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return store.VisitorRecord{}, false, nil
	}

	var (
		displayName string
		contactHint sql.NullString
		createdMs   int64
	)

	err := s.db.QueryRowContext(ctx, `
SELECT display_name, contact_hint, created_at_ms
FROM visitors
WHERE visitor_id = ?;
`, visitorID).Scan(&displayName, &contactHint, &createdMs)

	if err == sql.ErrNoRows {
		return store.VisitorRecord{}, false, nil
	}
	if err != nil {
		return store.VisitorRecord{}, false, fmt.Errorf("Get visitor: %w", err)
	}

	rec := store.VisitorRecord{
		VisitorID:   visitorID,
		DisplayName: displayName,
		CreatedAt:   time.UnixMilli(createdMs).UTC(),
	}
	if contactHint.Valid {
		rec.ContactHint = contactHint.String
	}
	return rec, true, nil
}

// Put upserts a visitor row.  Used only by the approval flow to record the
// minimal placeholder for a synthetic subject; real registrations come from
// the external enrollment pipeline.
func (s *VisitorStore) Put(ctx context.Context, rec store.VisitorRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	nowMs := time.Now().UTC().UnixMilli()

	var contactHint any
	if rec.ContactHint != "" {
		contactHint = rec.ContactHint
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO visitors(visitor_id, display_name, contact_hint, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(visitor_id) DO UPDATE SET
  display_name  = excluded.display_name,
  contact_hint  = excluded.contact_hint,
  updated_at_ms = excluded.updated_at_ms;
`,
			rec.VisitorID, rec.DisplayName, contactHint,
			rec.CreatedAt.UTC().UnixMilli(), nowMs,
		); err != nil {
			return fmt.Errorf("Put visitor: %w", err)
		}
		return nil
	})
}
