// Package cache provides caching for rendered build artifacts.
//
// # Backends
//
//   - [NullCache]: never stores anything
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the API server
//
// # Keys
//
// A [Keyer] derives keys from content hashes so identical builds share
// entries regardless of project:
//
//	k := cache.NewDefaultKeyer()
//	key := k.RenderKey(cache.Hash(buildJSON), cache.RenderKeyOpts{Format: "svg", RootID: root})
//
// Backends that can fail transiently wrap their errors with [Retryable];
// [Get] and [Set] retry those under a [Backoff].
package cache

import (
	"context"
	"time"
)

// TTLRender is how long rendered trees are kept.
const TTLRender = 24 * time.Hour

// Cache is a byte-oriented key/value cache with expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// RenderKeyOpts are the render options that change the output.
type RenderKeyOpts struct {
	Format string `json:"format"`
	RootID string `json:"root_id"`
	Labels bool   `json:"labels"`
}

// Keyer generates cache keys.
type Keyer interface {
	// RenderKey addresses a rendering of the build with hash buildHash.
	RenderKey(buildHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey hashes the build hash together with the options.
func (DefaultKeyer) RenderKey(buildHash string, opts RenderKeyOpts) string {
	return hashKey("render", buildHash, opts)
}
