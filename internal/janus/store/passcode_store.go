package store

import (
	"context"
	"time"
)

// PasscodeRecord binds an issued code to a visitor for a bounded lifetime.
// The store is keyed by code, not visitor; a colliding code overwrites the
// earlier binding (accepted tradeoff, see Issuer).
type PasscodeRecord struct {
	Code      string
	VisitorID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PasscodeStore persists live passcodes.  Get returns the stored row as-is:
// expiry is enforced by the caller, not the store — the background sweep only
// keeps the table small.
type PasscodeStore interface {
	Put(ctx context.Context, rec PasscodeRecord) error
	Get(ctx context.Context, code string) (PasscodeRecord, bool, error)
	Delete(ctx context.Context, code string) error
	PruneExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
