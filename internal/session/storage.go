package session

import (
	"context"
	"sync"
)

// Storage is a flat string key-value store that outlives a single client.
// Implementations must be safe for concurrent use. Delete of a missing key
// is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps entries for the lifetime of the process
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStorage creates an empty in-process storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]string),
	}
}

// Get returns the value stored under key
func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

// Set stores value under key
func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()
	return nil
}

// Delete removes key
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
