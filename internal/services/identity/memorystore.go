package identity

import (
	"context"
	"sync"
)

// MemoryStore is the fallback when neither Redis nor a cache file is
// configured. Identities last for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Identity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Identity)}
}

func (m *MemoryStore) Load(ctx context.Context, scope string) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.items[scope]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (m *MemoryStore) Save(ctx context.Context, scope string, id Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[scope] = id
	return nil
}
