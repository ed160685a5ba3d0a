// Package cache memoizes user-agent classification results. Classification
// is deterministic per user-agent string, so a bounded cache in front of
// the parser removes repeated parsing work for busy sites where a handful
// of agent strings dominate traffic.
package cache

import (
	"time"

	"github.com/tonypconway/netlify-baseline-extension/config"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

// Resolution is the cached outcome of classifying one user-agent string:
// the bot verdict plus the resolved counter key pair.
type Resolution struct {
	Bot        bool
	BrowserKey string
	VersionKey string
}

// Cache wraps Ristretto with user-agent resolution specific methods.
type Cache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

// New creates a cache instance with the given configuration.
func New(cfg config.CacheConfig) (*Cache, error) {
	// Calculate max cost in bytes (convert MB to bytes)
	maxCost := int64(cfg.MaxSizeMB) * 1024 * 1024

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(cfg.CounterSize), // Number of keys to track frequency for admission
		MaxCost:     maxCost,                // Maximum cache size in bytes
		BufferItems: 64,                     // Number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("max_size_mb", cfg.MaxSizeMB).
		Int("ttl_seconds", cfg.TTLSeconds).
		Int("counter_size", cfg.CounterSize).
		Msg("User-agent resolution cache initialized")

	return &Cache{
		client: client,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

// GetResolution returns the cached resolution for a user-agent string.
func (c *Cache) GetResolution(userAgent string) (Resolution, bool) {
	if c == nil || c.client == nil {
		return Resolution{}, false
	}
	value, found := c.client.Get(userAgent)
	if !found {
		return Resolution{}, false
	}
	resolution, ok := value.(Resolution)
	return resolution, ok
}

// SetResolution stores the resolution for a user-agent string. Cost is the
// length of the key, an adequate proxy for the entry's footprint.
func (c *Cache) SetResolution(userAgent string, resolution Resolution) {
	if c == nil || c.client == nil {
		return
	}
	c.client.SetWithTTL(userAgent, resolution, int64(len(userAgent)), c.ttl)
}

// Close cleanly shuts down the cache.
func (c *Cache) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
		log.Info().Msg("Cache closed")
	}
}

// MetricsSnapshot is a point-in-time view of cache performance.
type MetricsSnapshot struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	KeysAdded   uint64  `json:"keys_added"`
	KeysEvicted uint64  `json:"keys_evicted"`
	HitRatio    float64 `json:"hit_ratio"`
	TTLSeconds  int     `json:"ttl_seconds"`
}

// GetMetricsSnapshot returns current cache metrics.
func (c *Cache) GetMetricsSnapshot() MetricsSnapshot {
	if c == nil || c.client == nil || c.client.Metrics == nil {
		return MetricsSnapshot{}
	}

	m := c.client.Metrics
	hits := m.Hits()
	misses := m.Misses()
	total := hits + misses

	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return MetricsSnapshot{
		Hits:        hits,
		Misses:      misses,
		KeysAdded:   m.KeysAdded(),
		KeysEvicted: m.KeysEvicted(),
		HitRatio:    hitRatio,
		TTLSeconds:  int(c.ttl.Seconds()),
	}
}
