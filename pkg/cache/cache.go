// Package cache stores rendered artifacts keyed by a hash of their inputs.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: msgpack entries under a local directory, used by the CLI
//   - [RedisCache]: a shared Redis instance, used when a redis_url is set
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the input document
// together with every option that changes the output, so a key never maps
// to a stale artifact. [ScopedKeyer] adds a prefix, which the CLI and the
// HTTP server set to the build version and commit.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered artifacts are kept by default.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss with hit == false and a nil error. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
