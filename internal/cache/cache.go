package cache

import (
	"sync"
	"time"
)

// Store is a small in-process TTL map. It backs the doctor listing in
// single-replica deployments; anything multi-replica should use the
// redis variant instead.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

type entry struct {
	val      any
	deadline time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the live value for key. Expired entries are dropped on read.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Now().After(e.deadline) {
		s.Delete(key)
		return nil, false
	}

	return e.val, true
}

func (s *Store) Set(key string, val any) {
	s.mu.Lock()
	s.entries[key] = entry{val: val, deadline: time.Now().Add(s.ttl)}
	s.mu.Unlock()
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}
