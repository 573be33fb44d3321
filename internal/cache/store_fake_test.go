package cache_test

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Mohanmohan007/BSC-CARE/internal/cache"
)

// memStore in-memory cache.Store with expiry driven by now
type memStore struct {
	mu    sync.Mutex
	items map[string]memItem
	now   func() time.Time
}

type memItem struct {
	value   string
	expires time.Time // zero never expires
}

var _ cache.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{items: make(map[string]memItem), now: time.Now}
}

func (m *memStore) live(key string) (memItem, bool) {
	item, ok := m.items[key]
	if ok && !item.expires.IsZero() && !m.now().Before(item.expires) {
		delete(m.items, key)
		return memItem{}, false
	}
	return item, ok
}

func (m *memStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *memStore) Fetch(_ context.Context, keys ...string) ([]cache.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slots := make([]cache.Slot, len(keys))
	for i, k := range keys {
		if item, ok := m.live(k); ok {
			slots[i] = cache.Slot{Value: item.value, Found: true}
		}
	}
	return slots, nil
}

func (m *memStore) Save(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memItem{value: value, expires: m.expiry(ttl)}
	return nil
}

func (m *memStore) Bump(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	if item, ok := m.live(key); ok {
		parsed, err := strconv.ParseInt(item.value, 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	}
	n++
	m.items[key] = memItem{value: strconv.FormatInt(n, 10), expires: m.expiry(ttl)}
	return n, nil
}

func (m *memStore) Drop(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}
