// Package storefakes provides an in-memory throttle.Store for tests.
package storefakes

import (
	"context"
	"sync"
	"time"

	"github.com/cloudclip/auth-service/throttle"
)

type entry struct {
	value     []byte
	ttl       time.Duration
	expiresAt time.Time
}

// FakeStore is an in-memory implementation of throttle.Store with TTL
// support and an injectable clock. Setting FailWith makes every
// operation return that error, for exercising fail-open paths.
type FakeStore struct {
	mu       sync.RWMutex
	entries  map[string]entry
	FailWith error
	NowTime  func() time.Time
}

var _ throttle.Store = (*FakeStore)(nil)

// NewFakeStore creates a new in-memory store
func NewFakeStore() *FakeStore {
	return &FakeStore{
		entries: make(map[string]entry),
		NowTime: time.Now,
	}
}

func (s *FakeStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || s.NowTime().After(e.expiresAt) {
		return nil, throttle.ErrKeyNotFound
	}
	return e.value, nil
}

func (s *FakeStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.FailWith != nil {
		return s.FailWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		ttl:       ttl,
		expiresAt: s.NowTime().Add(ttl),
	}
	return nil
}

func (s *FakeStore) Delete(_ context.Context, key string) error {
	if s.FailWith != nil {
		return s.FailWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// TTL returns the expiry the key was last stored with.
func (s *FakeStore) TTL(key string) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return e.ttl, ok
}

// Len returns the number of stored keys, expired or not.
func (s *FakeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
