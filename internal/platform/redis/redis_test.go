package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/phrazzld/summarizer-api/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) (*Backend, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)

	backend, err := NewBackendWithURL("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	return backend, mr
}

func TestBackend_SetAndGet(t *testing.T) {
	backend, mr := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.SetWithTTL(ctx, "summary:abc", []byte(`{"headline":"h"}`), time.Hour))

	got, err := backend.Get(ctx, "summary:abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"headline":"h"}`, string(got))
	assert.Equal(t, time.Hour, mr.TTL("summary:abc"))
}

func TestBackend_MissingKey(t *testing.T) {
	backend, _ := newTestBackend(t)

	_, err := backend.Get(context.Background(), "summary:none")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestBackend_Expiry(t *testing.T) {
	backend, mr := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.SetWithTTL(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := backend.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestBackend_PingAndOutage(t *testing.T) {
	backend, mr := newTestBackend(t)
	ctx := context.Background()

	assert.NoError(t, backend.Ping(ctx))

	mr.Close()

	assert.Error(t, backend.Ping(ctx))
	_, err := backend.Get(ctx, "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrMiss)
}

func TestStoreOverRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := cache.NewStore(NewBackend(client), 30*time.Minute, nil)
	ctx := context.Background()

	type entry struct {
		Summary string `json:"summary"`
	}

	require.True(t, store.Put(ctx, "content", 50, "casual", entry{Summary: "s"}, 0))
	assert.True(t, mr.Exists(cache.Key("content", 50, "casual")))
	assert.Equal(t, 30*time.Minute, mr.TTL(cache.Key("content", 50, "casual")))

	var got entry
	require.True(t, store.Get(ctx, "content", 50, "casual", &got))
	assert.Equal(t, "s", got.Summary)
	assert.True(t, store.IsAvailable(ctx))

	mr.Close()
	assert.False(t, store.IsAvailable(ctx))
	assert.False(t, store.Get(ctx, "content", 50, "casual", &got))
}

func TestNewBackendWithURL_Invalid(t *testing.T) {
	_, err := NewBackendWithURL("not-a-url://")
	assert.Error(t, err)
}
