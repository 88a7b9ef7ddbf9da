package memory

import (
	"context"
	"sync"
	"time"

	"github.com/janus-door/janus/internal/janus/store"
)

// PasscodeStore is an in-memory passcode table for tests and dev.
type PasscodeStore struct {
	mu    sync.RWMutex
	codes map[string]store.PasscodeRecord
}

func NewPasscodeStore() *PasscodeStore {
	return &PasscodeStore{codes: make(map[string]store.PasscodeRecord)}
}

func (s *PasscodeStore) Put(_ context.Context, rec store.PasscodeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[rec.Code] = rec
	return nil
}

func (s *PasscodeStore) Get(_ context.Context, code string) (store.PasscodeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.codes[code]
	return rec, ok, nil
}

func (s *PasscodeStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, code)
	return nil
}

func (s *PasscodeStore) PruneExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for code, rec := range s.codes {
		if !rec.ExpiresAt.After(cutoff) {
			delete(s.codes, code)
			deleted++
		}
	}
	return deleted, nil
}

// Len reports the number of stored codes.  Test-only helper.
func (s *PasscodeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codes)
}

// First returns an arbitrary stored record.  Test-only helper for asserting
// on freshly issued codes.
func (s *PasscodeStore) First() (store.PasscodeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.codes {
		return rec, true
	}
	return store.PasscodeRecord{}, false
}
