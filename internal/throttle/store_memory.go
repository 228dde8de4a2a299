package throttle

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps throttle marks in a map. Expired marks are evicted
// lazily on access, which is fine for the key cardinalities this serves
// (one mark per profile or contact).
type InMemoryStore struct {
	mu    sync.Mutex
	marks map[string]time.Time
	now   func() time.Time
}

// NewInMemoryStore constructs an empty in-memory throttle store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		marks: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (s *InMemoryStore) MarkIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if expiry, ok := s.marks[key]; ok && expiry.After(now) {
		return false, nil
	}
	s.marks[key] = now.Add(ttl)
	return true, nil
}

// Len reports the number of marks including expired ones not yet evicted.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.marks)
}
