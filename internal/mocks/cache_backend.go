package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/summarizer-api/internal/cache"
)

// MockCacheBackend implements cache.Backend for testing. Without function
// fields or errors it behaves as an empty cache that accepts every write.
type MockCacheBackend struct {
	GetFn        func(ctx context.Context, key string) ([]byte, error)
	SetWithTTLFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	PingFn       func(ctx context.Context) error

	// Errors returned when the matching function field is nil
	GetErr  error
	SetErr  error
	PingErr error

	mu       sync.Mutex
	getCalls int
	setCalls int
	lastTTL  time.Duration
}

var _ cache.Backend = (*MockCacheBackend)(nil)

// Get implements cache.Backend.
func (m *MockCacheBackend) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	m.getCalls++
	m.mu.Unlock()

	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return nil, cache.ErrMiss
}

// SetWithTTL implements cache.Backend.
func (m *MockCacheBackend) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.setCalls++
	m.lastTTL = ttl
	m.mu.Unlock()

	if m.SetWithTTLFn != nil {
		return m.SetWithTTLFn(ctx, key, value, ttl)
	}
	return m.SetErr
}

// Ping implements cache.Backend.
func (m *MockCacheBackend) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return m.PingErr
}

// Calls returns how many gets and sets were made.
func (m *MockCacheBackend) Calls() (gets, sets int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls, m.setCalls
}

// LastTTL returns the ttl of the most recent set.
func (m *MockCacheBackend) LastTTL() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTTL
}
