package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SeedDevOptions struct {
	// Visitors to pre-register, as visitorID -> display name.
	Visitors map[string]string
}

// SeedDev inserts a couple of known visitors so the recognition pipeline's
// face IDs resolve to something during local testing.
func SeedDev(ctx context.Context, conn *sql.DB, opt SeedDevOptions) error {
	now := time.Now().UTC().UnixMilli()

	visitors := opt.Visitors
	if len(visitors) == 0 {
		visitors = map[string]string{
			"face-alice": "Alice Example",
			"face-bob":   "Bob Example",
		}
	}

	for id, name := range visitors {
		if _, err := conn.ExecContext(ctx, `
INSERT INTO visitors(visitor_id, display_name, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(visitor_id) DO UPDATE SET
  display_name  = excluded.display_name,
  updated_at_ms = excluded.updated_at_ms;
`, id, name, now, now); err != nil {
			return fmt.Errorf("seed visitor %s: %w", id, err)
		}
	}

	return nil
}
