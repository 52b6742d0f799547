package bounty

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore holds the replicated view in memory with proper concurrency
// control. The single RWMutex keeps reads consistent while the replay
// driver (the only writer) commits an operation's writes.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// NewMemoryStore returns an empty in-memory view.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]json.RawMessage)}
}

// Get returns the value stored under key, or nil when absent.
func (s *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out, nil
}

// Put stores value under key. A nil value clears the key.
func (s *MemoryStore) Put(_ context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == nil {
		delete(s.data, key)
		return nil
	}
	v := make(json.RawMessage, len(value))
	copy(v, value)
	s.data[key] = v
	return nil
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() {}
