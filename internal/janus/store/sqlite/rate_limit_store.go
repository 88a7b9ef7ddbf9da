package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/janus-door/janus/internal/db"
)

type RateLimitStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewRateLimitStore(db *sql.DB, writer *dbpkg.Worker) *RateLimitStore {
	return &RateLimitStore{db: db, writer: writer}
}

// TryAcquire claims the window for key in a single conditional upsert: the
// insert wins when no row exists, the DO UPDATE wins only when the stored
// window has already expired.  Zero rows affected means the key is still
// blocked.  Never implemented as a separate read followed by a write — that
// lets two concurrent events both pass the check.
func (s *RateLimitStore) TryAcquire(ctx context.Context, key string, window time.Duration) (bool, error) {
	now := time.Now().UTC()
	nowMs := now.UnixMilli()
	newExpiryMs := now.Add(window).UnixMilli()

	var acquired bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO rate_limits(id, expires_at_ms)
VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET expires_at_ms = excluded.expires_at_ms
WHERE rate_limits.expires_at_ms <= ?;
`, key, newExpiryMs, nowMs)
		if err != nil {
			return fmt.Errorf("TryAcquire upsert: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("TryAcquire rows affected: %w", err)
		}
		acquired = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return acquired, nil
}

func (s *RateLimitStore) PruneExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM rate_limits WHERE expires_at_ms <= ?;", cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneExpired rate_limits: %w", err)
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}
