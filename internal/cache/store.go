package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"
)

// KeyPrefix namespaces summary entries in shared backends.
const KeyPrefix = "summary:"

// ErrMiss is returned by backends when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Backend is a byte-oriented key/value store with expiry.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// Observer receives cache outcomes, typically for metrics.
type Observer interface {
	CacheHit()
	CacheMiss()
	CacheError(op string)
}

type nopObserver struct{}

func (nopObserver) CacheHit()         {}
func (nopObserver) CacheMiss()        {}
func (nopObserver) CacheError(string) {}

// Store wraps a Backend with key derivation, JSON encoding and the
// best-effort error policy.
type Store struct {
	backend    Backend
	defaultTTL time.Duration
	logger     *slog.Logger
	observer   Observer
}

// NewStore creates a Store. A nil backend behaves like NopBackend.
func NewStore(backend Backend, defaultTTL time.Duration, logger *slog.Logger) *Store {
	if backend == nil {
		backend = NopBackend{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend:    backend,
		defaultTTL: defaultTTL,
		logger:     logger.With("component", "cache"),
		observer:   nopObserver{},
	}
}

// SetObserver installs an outcome observer.
func (s *Store) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	s.observer = o
}

// Key derives the cache key for a content/settings combination.
func Key(content string, length int, tone string) string {
	sum := sha256.Sum256([]byte(content + ":" + strconv.Itoa(length) + ":" + tone))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

// Get decodes the cached value into dst and reports whether it was found.
func (s *Store) Get(ctx context.Context, content string, length int, tone string, dst any) bool {
	key := Key(content, length, tone)

	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrMiss) {
			s.observer.CacheMiss()
			return false
		}
		s.observer.CacheError("get")
		s.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.observer.CacheError("decode")
		s.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "error", err)
		return false
	}

	s.observer.CacheHit()
	return true
}

// Put stores value under the derived key. A non-positive ttl selects the
// store default.
func (s *Store) Put(ctx context.Context, content string, length int, tone string, value any, ttl time.Duration) bool {
	key := Key(content, length, tone)
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.observer.CacheError("encode")
		s.logger.WarnContext(ctx, "cache value not encodable", "key", key, "error", err)
		return false
	}

	if err := s.backend.SetWithTTL(ctx, key, data, ttl); err != nil {
		if errors.Is(err, ErrDisabled) {
			return false
		}
		s.observer.CacheError("set")
		s.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
		return false
	}

	s.logger.DebugContext(ctx, "cached summary", "key", key, "ttl", ttl)
	return true
}

// IsAvailable reports whether the backend answers a ping.
func (s *Store) IsAvailable(ctx context.Context) bool {
	if err := s.backend.Ping(ctx); err != nil {
		s.logger.DebugContext(ctx, "cache unavailable", "error", err)
		return false
	}
	return true
}
