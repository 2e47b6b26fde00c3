package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/KrystalRay/KFit/internal/fitness"
)

// MemoryStore is a concurrency-safe in-memory cache. Entries do not survive the process.
type MemoryStore struct {
	mu sync.RWMutex

	// key: kind:date
	data map[string]fitness.Entry

	ttl time.Duration
	now func() time.Time
}

var _ fitness.Cache = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore whose entries go stale after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]fitness.Entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the entry for (kind, date) unless it is missing or stale.
func (s *MemoryStore) Get(_ context.Context, kind fitness.Kind, date string) (fitness.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key(kind, date)]
	if !ok || expired(e.StoredAt, s.now(), s.ttl) {
		return fitness.Entry{}, false, nil
	}
	e.Payload = append(json.RawMessage(nil), e.Payload...)
	return e, true, nil
}

// Put overwrites the entry for (kind, date).
func (s *MemoryStore) Put(_ context.Context, kind fitness.Kind, date string, payload json.RawMessage) error {
	if err := validKey(kind, date); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key(kind, date)] = fitness.Entry{
		Kind:     kind,
		Date:     date,
		Payload:  append(json.RawMessage(nil), payload...),
		StoredAt: s.now(),
	}
	return nil
}

// InvalidateAll drops every entry.
func (s *MemoryStore) InvalidateAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]fitness.Entry)
	return nil
}

// Len returns the number of stored entries, stale ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
