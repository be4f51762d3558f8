package tasks

import (
	"context"
	"sync"
)

// MemoryBackend keeps snapshots in process memory; nothing survives a restart
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string)}
}

// Name returns the backend identifier
func (m *MemoryBackend) Name() string {
	return "memory"
}

// Get returns the stored value for key
func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return v, ok, nil
}

// Put stores every entry of the snapshot
func (m *MemoryBackend) Put(_ context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range entries {
		m.data[k] = v
	}
	return nil
}

// Close is a no-op
func (m *MemoryBackend) Close() error {
	return nil
}

// Register the memory backend
func init() {
	Register("memory", func(BackendOptions) (Backend, error) { return NewMemoryBackend(), nil })
}
