package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/janus-door/janus/internal/db"
	"github.com/janus-door/janus/internal/janus/store"
)

type PasscodeStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewPasscodeStore(db *sql.DB, writer *dbpkg.Worker) *PasscodeStore {
	return &PasscodeStore{db: db, writer: writer}
}

// Put inserts or replaces the row for rec.Code.  A colliding code silently
// rebinds to the new visitor — the issuer documents this as accepted.
func (s *PasscodeStore) Put(ctx context.Context, rec store.PasscodeRecord) error {
	if rec.IssuedAt.IsZero() {
		rec.IssuedAt = time.Now().UTC()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT OR REPLACE INTO passcodes(code, visitor_id, issued_at_ms, expires_at_ms)
VALUES (?, ?, ?, ?);
`,
			rec.Code, rec.VisitorID,
			rec.IssuedAt.UTC().UnixMilli(), rec.ExpiresAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("Put passcode: %w", err)
		}
		return nil
	})
}

func (s *PasscodeStore) Get(ctx context.Context, code string) (store.PasscodeRecord, bool, error) {
	var (
		visitorID string
		issuedMs  int64
		expiresMs int64
	)

	err := s.db.QueryRowContext(ctx, `
SELECT visitor_id, issued_at_ms, expires_at_ms
FROM passcodes
WHERE code = ?;
`, code).Scan(&visitorID, &issuedMs, &expiresMs)

	if err == sql.ErrNoRows {
		return store.PasscodeRecord{}, false, nil
	}
	if err != nil {
		return store.PasscodeRecord{}, false, fmt.Errorf("Get passcode: %w", err)
	}

	return store.PasscodeRecord{
		Code:      code,
		VisitorID: visitorID,
		IssuedAt:  time.UnixMilli(issuedMs).UTC(),
		ExpiresAt: time.UnixMilli(expiresMs).UTC(),
	}, true, nil
}

func (s *PasscodeStore) Delete(ctx context.Context, code string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM passcodes WHERE code = ?;", code); err != nil {
			return fmt.Errorf("Delete passcode: %w", err)
		}
		return nil
	})
}

func (s *PasscodeStore) PruneExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM passcodes WHERE expires_at_ms <= ?;", cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneExpired passcodes: %w", err)
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}
