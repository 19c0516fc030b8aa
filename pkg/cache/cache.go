// Package cache provides the byte-level cache shared by the canvas client,
// the pipeline runner and the render service.
//
// Four backends implement [Cache]:
//
//   - [FileCache]: one JSON file per key under a local directory (CLI default)
//   - [RedisCache]: a Redis server, for the render service
//   - [MongoCache]: a MongoDB collection, for deployments that already run one
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer] so every consumer agrees on their layout.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
//
// Get reports a miss as (nil, false, nil); a non-nil error means the backend
// itself failed. A ttl of 0 stores the value without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per key kind. Canvas histories are append-only but live, so
// fetched responses expire quickly; scenes and artifacts are addressed by
// content hash and can be kept much longer.
const (
	TTLHTTP     = 30 * time.Second
	TTLScene    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// NullCache stores nothing: every Get misses. It backs --no-cache and the
// "none" backend.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                    { return nil }
func (*NullCache) Close() error                                            { return nil }

var _ Cache = (*NullCache)(nil)
