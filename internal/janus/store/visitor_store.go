package store

import (
	"context"
	"time"
)

type VisitorRecord struct {
	VisitorID   string
	DisplayName string
	ContactHint string
	CreatedAt   time.Time
}

// VisitorStore is the directory: read-mostly profile data keyed by the
// recognition pipeline's subject identifier.  The core only writes minimal
// placeholder rows from the unknown-visitor approval flow.
type VisitorStore interface {
	Get(ctx context.Context, visitorID string) (VisitorRecord, bool, error)
	Put(ctx context.Context, rec VisitorRecord) error
}
