// Package memory implements db.Store in process memory with per-key TTL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/newsline/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a bounded in-memory key-value store. Expired keys are dropped lazily
// on read and when the store is full.
type Store struct {
	mu      sync.Mutex
	items   map[string]entry
	maxKeys int
	now     func() time.Time
}

// NewStore creates an in-memory store holding at most maxKeys entries (0 = 10000).
func NewStore(maxKeys int) *Store {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &Store{
		items:   make(map[string]entry),
		maxKeys: maxKeys,
		now:     time.Now,
	}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close drops all entries.
func (s *Store) Close() {
	s.mu.Lock()
	s.items = make(map[string]entry)
	s.mu.Unlock()
}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.items, key)
		return nil, db.ErrKeyNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// SetWithTTL stores a copy of value. ttl <= 0 keeps the key until evicted.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; !exists && len(s.items) >= s.maxKeys {
		s.evictLocked()
	}

	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = e
	return nil
}

// Del removes a key.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored keys, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// evictLocked drops expired keys, or the entry closest to expiry when none are.
func (s *Store) evictLocked() {
	now := s.now()
	var (
		victim    string
		victimExp time.Time
		found     bool
	)
	for k, e := range s.items {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(s.items, k)
			continue
		}
		if !found || (!e.expiresAt.IsZero() && (victimExp.IsZero() || e.expiresAt.Before(victimExp))) {
			victim, victimExp, found = k, e.expiresAt, true
		}
	}
	if len(s.items) >= s.maxKeys && found {
		delete(s.items, victim)
	}
}
