package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/janus-door/janus/internal/janus/store"
)

type VisitorStore struct {
	mu       sync.RWMutex
	visitors map[string]store.VisitorRecord
}

// NewVisitorStore pre-populates the directory from visitorID -> display name,
// the shape dev config and tests use.
func NewVisitorStore(known map[string]string) *VisitorStore {
	m := make(map[string]store.VisitorRecord, len(known))
	for id, name := range known {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		m[id] = store.VisitorRecord{
			VisitorID:   id,
			DisplayName: name,
			CreatedAt:   time.Now().UTC(),
		}
	}
	return &VisitorStore{visitors: m}
}

func (s *VisitorStore) Get(_ context.Context, visitorID string) (store.VisitorRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.visitors[visitorID]
	return rec, ok, nil
}

func (s *VisitorStore) Put(_ context.Context, rec store.VisitorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.visitors[rec.VisitorID] = rec
	return nil
}
