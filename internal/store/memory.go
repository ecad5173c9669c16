// ABOUTME: In-memory KV implementation for tests
// ABOUTME: Supports injected failures to exercise best-effort persistence paths

package store

import "sync"

// MemoryKV is a map-backed KV for tests. FailSet, FailGet, and FailRemove
// inject errors to exercise the archive's swallow-and-log behavior.
type MemoryKV struct {
	mu         sync.Mutex
	data       map[string][]byte
	FailGet    error
	FailSet    error
	FailRemove error
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get returns the value for key, or ErrKeyNotFound.
func (m *MemoryKV) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet != nil {
		return nil, m.FailGet
	}
	value, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set writes the value under key.
func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet != nil {
		return m.FailSet
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

// Remove deletes the key.
func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRemove != nil {
		return m.FailRemove
	}
	delete(m.data, key)
	return nil
}

// Close is a no-op.
func (m *MemoryKV) Close() error { return nil }

// Len returns the number of stored keys.
func (m *MemoryKV) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
