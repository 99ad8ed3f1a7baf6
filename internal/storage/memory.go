package storage

import (
	"context"
	"sync"
)

// MemoryKV is a map-backed KV for tests and ephemeral runs. Values are copied
// on the way in and out so callers cannot alias stored blobs.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *MemoryKV) Save(_ context.Context, key string, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(raw))
	copy(stored, raw)
	m.data[key] = stored
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}
