package tokenstore

import (
	"fmt"
	"sync"
)

// InMemory is an in-memory implementation of Store
type InMemory struct {
	mu     sync.RWMutex
	tokens map[string]string
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		tokens: make(map[string]string),
	}
}

func (s *InMemory) Get(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.tokens[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *InMemory) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[key] = value
	return nil
}

func (s *InMemory) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, key)
	return nil
}
