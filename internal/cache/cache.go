// Package cache stores rendered landing page trees so repeated requests for
// the same community version skip the load and denormalize steps.
//
// Three backends share the Cache interface:
//   - null: never stores anything (caching disabled)
//   - memory: process-local map with expiry
//   - redis: shared across server instances
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Cache stores opaque byte payloads under string keys.
type Cache interface {
	// Get returns the payload for key. A miss returns (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Backend names accepted by New.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrUnknownBackend is returned by New for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Config selects and parameterizes a cache backend.
type Config struct {
	Backend   string
	RedisAddr string
}

// New builds the cache named by cfg.Backend. An empty backend means none.
func New(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendMemory:
		return NewMemoryCache(), nil
	case BackendRedis:
		return NewRedisCache(ctx, RedisConfig{Addr: cfg.RedisAddr})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Key returns the cache key of a rendered community version.
func Key(communityID, version int64) string {
	return fmt.Sprintf("landing:%d:v%d", communityID, version)
}
