// Package cache stores encoded sprite sheets between bakes.
//
// A bake is a pure function of the source bytes and the bake options, so its
// encoded sheets can be reused whenever both match. Three backends share the
// [Cache] interface:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: a shared Redis server, for the HTTP surface
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys come from a [Keyer] so that callers never build key strings by hand:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.SheetKey(cache.Hash(src), cache.SheetKeyOpts{Slices: 8, RotInc: 36})
//	data, hit, err := c.Get(ctx, key+":obj")
package cache

import (
	"context"
	"time"
)

// TTLSheet is how long encoded sheets stay cached.
const TTLSheet = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss with hit=false and a nil error. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
