package memory

import (
	"context"
	"sync"
	"time"
)

// RateLimitStore is an in-memory window table.  The mutex makes the
// check-and-set atomic, mirroring the conditional upsert of the sqlite
// implementation.
type RateLimitStore struct {
	mu      sync.Mutex
	windows map[string]time.Time

	// Now is overridable in tests to simulate window expiry.
	Now func() time.Time
}

func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{
		windows: make(map[string]time.Time),
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *RateLimitStore) TryAcquire(_ context.Context, key string, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	if exp, ok := s.windows[key]; ok && exp.After(now) {
		return false, nil
	}
	s.windows[key] = now.Add(window)
	return true, nil
}

func (s *RateLimitStore) PruneExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, exp := range s.windows {
		if !exp.After(cutoff) {
			delete(s.windows, key)
			deleted++
		}
	}
	return deleted, nil
}
