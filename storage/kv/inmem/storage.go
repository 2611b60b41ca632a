package inmemkv

import (
	"context"
	"sync"

	"github.com/skiddy/skiddy/core/session"
)

// Storage is an in-memory session.Storage for tests.
type Storage struct {
	mu    sync.RWMutex
	items map[string]string
	err   error
}

var _ session.Storage = (*Storage)(nil) // interface compliance check

func Open() *Storage {
	return &Storage{items: make(map[string]string)}
}

// FailWith makes every subsequent operation return err; nil resets.
func (s *Storage) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return "", s.err
	}
	return s.items[key], nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.items[key] = value
	return nil
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	delete(s.items, key)
	return nil
}
