package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// entry is one memory-backend cache record.
type entry struct {
	value     []byte
	createdAt time.Time
	expiresAt time.Time // zero means no expiry
	size      int
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

// MemoryBackend is an in-process cache bounded by entry count and,
// optionally, total memory. Eviction uses LRU ordering for both bounds.
type MemoryBackend struct {
	mu          sync.Mutex
	lru         *lru.Cache[string, entry]
	maxMemoryMB int
	usedBytes   int
}

// NewMemoryBackend creates a memory cache bounded at maxSize entries and,
// when maxMemoryMB > 0, at that many megabytes of estimated value size.
func NewMemoryBackend(maxSize, maxMemoryMB int) *MemoryBackend {
	if maxSize <= 0 {
		maxSize = 1000
	}
	m := &MemoryBackend{maxMemoryMB: maxMemoryMB}
	c, _ := lru.NewWithEvict(maxSize, m.onEvict)
	m.lru = c
	return m
}

// onEvict keeps the byte-size accumulator in sync with LRU-driven evictions.
func (m *MemoryBackend) onEvict(_ string, v entry) {
	m.usedBytes -= v.size
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(time.Now()) {
		m.lru.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.lru.Peek(key); ok {
		m.usedBytes -= old.size
	}

	e := entry{value: value, createdAt: time.Now(), size: len(value)}
	if ttl > 0 {
		e.expiresAt = e.createdAt.Add(ttl)
	}

	m.usedBytes += e.size
	m.lru.Add(key, e)

	if m.maxMemoryMB > 0 {
		budget := int64(m.maxMemoryMB) * 1024 * 1024
		for int64(m.usedBytes) > budget && m.lru.Len() > 0 {
			if _, _, ok := m.lru.RemoveOldest(); !ok {
				break
			}
		}
	}
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Remove(key)
	return nil
}

func (m *MemoryBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := m.Get(ctx, key)
	return ok, err
}

func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Purge()
	m.usedBytes = 0
	return nil
}

func (m *MemoryBackend) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pattern == "" {
		pattern = "*"
	}
	now := time.Now()
	var out []string
	for _, k := range m.lru.Keys() {
		e, ok := m.lru.Peek(k)
		if !ok || e.expired(now) {
			continue
		}
		if globMatch(pattern, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *MemoryBackend) Close() error {
	return nil
}

var _ Backend = (*MemoryBackend)(nil)
