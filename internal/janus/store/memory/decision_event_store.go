package memory

import (
	"context"
	"sync"

	"github.com/janus-door/janus/internal/janus/store"
)

// DecisionEventStore is an in-memory append-only log of engine decisions.
// It is intended for use in tests and dev environments.
type DecisionEventStore struct {
	mu     sync.Mutex
	events []store.DecisionEventRecord
}

func NewDecisionEventStore() *DecisionEventStore {
	return &DecisionEventStore{}
}

func (s *DecisionEventStore) RecordEvent(_ context.Context, rec store.DecisionEventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, rec)
	return nil
}

// Events returns a copy of all recorded events.  Test-only helper.
func (s *DecisionEventStore) Events() []store.DecisionEventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.DecisionEventRecord, len(s.events))
	copy(out, s.events)
	return out
}
