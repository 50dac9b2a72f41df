package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the TTL cache behind every warmed snapshot. Get never triggers a
// fetch and never blocks on upstream I/O: a miss, an expired entry, or a
// backend error all surface as (nil, false). Set is an atomic whole-value
// replacement. Incr maintains warm-side counters (call budgets).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type memoryItem struct {
	value     []byte
	counter   int64
	expiresAt time.Time
}

// MemoryStore is the in-process fallback used when no Redis address is
// configured. Expired entries are dropped lazily on read.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryStore creates an empty in-process TTL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// Get returns the stored value, or (nil, false) on miss or expiry.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.now().After(item.expiresAt) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return nil, false
	}
	return item.value, true
}

// Set stores value under key, replacing any previous entry.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryItem{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

// Incr increments the counter stored under key, creating it with the given
// TTL on first increment.
func (m *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok || m.now().After(item.expiresAt) {
		item = memoryItem{expiresAt: m.now().Add(ttl)}
	}
	item.counter++
	m.items[key] = item
	return item.counter, nil
}
