package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryBackend is an in-process LRU with per-entry expiry.
type MemoryBackend struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryBackend creates an LRU backend holding at most size entries.
func NewMemoryBackend(size int) (*MemoryBackend, error) {
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryBackend{entries: entries, now: time.Now}, nil
}

// Get returns the value for key, or ErrMiss if absent or expired.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := m.entries.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.entries.Remove(key)
		return nil, ErrMiss
	}
	return entry.value, nil
}

// SetWithTTL stores value. A non-positive ttl never expires.
func (m *MemoryBackend) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries.Add(key, entry)
	return nil
}

// Ping always succeeds.
func (m *MemoryBackend) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryBackend) Len() int {
	return m.entries.Len()
}

// NopBackend stores nothing. It is used when caching is disabled.
type NopBackend struct{}

// ErrDisabled is returned by NopBackend writes and pings.
var ErrDisabled = errors.New("cache disabled")

func (NopBackend) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (NopBackend) SetWithTTL(context.Context, string, []byte, time.Duration) error {
	return ErrDisabled
}

func (NopBackend) Ping(context.Context) error { return ErrDisabled }
