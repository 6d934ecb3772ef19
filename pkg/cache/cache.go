// Package cache stores encoded posters so a seeded render is only drawn once.
//
// Only seeded renders are cacheable: the same seed and parameters always
// produce the same pixels, so the encoded bytes can be reused. Unseeded
// renders bypass the cache entirely.
//
// Three backends are provided:
//   - FileCache: one JSON file per entry under a directory, for the CLI
//   - RedisCache: a shared cache for several `genposter serve` instances
//   - NullCache: stores nothing, used when caching is disabled
//
// Keys are produced by a Keyer so that callers never build key strings by
// hand; ScopedKeyer adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found.
	// Expired or unreadable entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// TTLPoster is how long an encoded poster stays cached.
const TTLPoster = 7 * 24 * time.Hour

// PosterKeyOpts holds the encoding options that affect cached bytes.
type PosterKeyOpts struct {
	Format  string `json:"format"`
	Quality int    `json:"quality,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// PosterKey returns the key for a poster rendered from parameters whose
	// canonical hash is paramsHash, encoded with opts.
	PosterKey(paramsHash string, opts PosterKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PosterKey returns "poster:<sha256>".
func (DefaultKeyer) PosterKey(paramsHash string, opts PosterKeyOpts) string {
	return hashKey("poster", paramsHash, opts)
}
