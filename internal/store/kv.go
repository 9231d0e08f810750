package store

import "sync"

// KV is the durable key-value port used for session identity and
// message history. Implementations must treat a missing key as
// (value "", ok false), never as an error.
type KV interface {
	// Get returns the value for key, and whether the key exists.
	Get(key string) (string, bool)

	// Set writes the value for key, overwriting any previous value.
	Set(key, value string) error

	// Delete removes the key. Deleting an absent key is a no-op.
	Delete(key string) error
}

// MemoryKV is an in-memory KV used in tests and as the degraded mode
// when the sqlite store cannot be opened.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
