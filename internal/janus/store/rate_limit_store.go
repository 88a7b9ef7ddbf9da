package store

import (
	"context"
	"time"
)

// RateLimitStore bounds notification frequency per composite key
// ("known:<visitor>" or "unknown:global").
//
// TryAcquire must be a single atomic conditional write: if the key is absent
// or its window has expired, set expires-at to now+window and report true;
// otherwise report false with no side effect.  Two concurrent acquires on the
// same key inside one window must never both report true — implementations
// serialize through the store itself, not through an application lock.
type RateLimitStore interface {
	TryAcquire(ctx context.Context, key string, window time.Duration) (bool, error)
	PruneExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
