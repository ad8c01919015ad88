// Package memory provides an in-memory store implementation.
// Values are lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/aloks98/securevault/store"
)

// Store is an in-memory implementation of the store.Store interface.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, store.ErrClosed
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements store.Store.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	s.values[key] = value
	return nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ping checks if the store is available.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrClosed
	}
	return nil
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(ctx context.Context) error {
	return nil
}

var _ store.Store = (*Store)(nil)
