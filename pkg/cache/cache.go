// Package cache stores built layouts and rendered snapshots.
//
// A [Cache] is a byte-oriented key/value store with per-entry TTL. Three
// backends are provided:
//
//   - [NullCache]: stores nothing; used when caching is disabled.
//   - [FileCache]: one JSON file per entry under a directory; used by the
//     CLI.
//   - [RedisCache]: a shared Redis instance; used when several servers
//     serve the same layouts.
//
// Keys are produced by a [Keyer] so every backend agrees on the key format.
// [ScopedKeyer] prefixes keys for per-profile isolation.
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(cache.LayoutKeyOpts{Seed: 42, Foliage: 25000})
//	var set layout.Set
//	hit, err := cache.GetJSON(ctx, c, key, &set)
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a key/value store for serialized artifacts.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and
	// unexpired. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GetJSON reads key and decodes it into v. A corrupt entry is deleted and
// reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}

// NullCache misses on every Get and drops every Set. It backs --no-cache
// and the "none" backend.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
