package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	resp      *Response
	expiresAt time.Time
}

// MemoryStore хранит ключи в памяти процесса. Просроченные ключи удаляются при обращении.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Begin(_ context.Context, key string) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evictLocked(now)

	if entry, ok := m.entries[key]; ok {
		if entry.resp == nil {
			return nil, ErrInProgress
		}
		resp := *entry.resp
		return &resp, nil
	}
	m.entries[key] = memoryEntry{expiresAt: now.Add(m.ttl)}
	return nil, nil //nolint:nilnil
}

func (m *MemoryStore) Complete(_ context.Context, key string, resp Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resp.Body = append([]byte(nil), resp.Body...)
	m.entries[key] = memoryEntry{resp: &resp, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) evictLocked(now time.Time) {
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}
