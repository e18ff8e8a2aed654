package cache

import (
	"context"
	"sync"
)

// MemoryCache keeps granted content ids for the life of the process.
type MemoryCache struct {
	mu      sync.RWMutex
	granted map[string]struct{}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{granted: make(map[string]struct{})}
}

func (m *MemoryCache) MarkGranted(_ context.Context, contentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.granted[contentID] = struct{}{}
	return nil
}

func (m *MemoryCache) IsGranted(_ context.Context, contentID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.granted[contentID]
	return ok, nil
}

func (m *MemoryCache) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.granted = make(map[string]struct{})
	return nil
}
