package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	engineerrors "github.com/Aman-CERP/githound-engine/internal/errors"
)

// Stats are cumulative cache counters exposed for diagnostics.
type Stats struct {
	Hits    int64
	Misses  int64
	Sets    int64
	Deletes int64
}

// HitRate returns Hits/(Hits+Misses), or 0 when there have been no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// SearchCache is the facade every searcher and the orchestrator go through.
// It derives a stable cache key from (namespace, args), delegates to a
// Backend, and tracks hit/miss/set/delete counters.
type SearchCache struct {
	backend Backend
	ttl     time.Duration

	mu    sync.Mutex
	stats Stats
}

// NewSearchCache wraps a Backend with a default TTL applied when callers
// don't specify one.
func NewSearchCache(backend Backend, defaultTTL time.Duration) *SearchCache {
	return &SearchCache{backend: backend, ttl: defaultTTL}
}

// MakeKey derives a cache key for (kind, args). A single scalar arg takes a
// cheap "simple:{kind}:{value}" form; anything else is canonicalized to JSON
// and hashed with Blake2b-256 truncated to 16 bytes to bound key length.
func MakeKey(kind string, args ...any) string {
	if len(args) == 1 {
		switch v := args[0].(type) {
		case string:
			return fmt.Sprintf("simple:%s:%s", kind, v)
		case int, int64, bool:
			return fmt.Sprintf("simple:%s:%v", kind, v)
		}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		payload = []byte(fmt.Sprintf("%v", args))
	}
	sum := blake2b.Sum256(payload)
	digest := sum[:16]
	return fmt.Sprintf("hashed:%s:%s", kind, hex.EncodeToString(digest))
}

func (c *SearchCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		cacheErr := engineerrors.CacheError("backend get failed, treating as miss", err).WithDetail("key", key)
		slog.Debug(cacheErr.Error(), slog.String("key", key), slog.String("cause", err.Error()))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil || !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return value, true
}

// GetJSON unmarshals a cached value into dst. A miss or decode failure both
// report ok=false; a decode failure is never treated as fatal.
func (c *SearchCache) GetJSON(ctx context.Context, key string, dst any) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false
	}
	return true
}

func (c *SearchCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.backend.Set(ctx, key, value, ttl); err != nil {
		cacheErr := engineerrors.CacheError("backend set failed, discarding write", err).WithDetail("key", key)
		slog.Debug(cacheErr.Error(), slog.String("key", key), slog.String("cause", err.Error()))
		return
	}
	c.mu.Lock()
	c.stats.Sets++
	c.mu.Unlock()
}

// SetJSON marshals value and stores it under key. Marshal failures are
// silently discarded, matching the "cache errors are never fatal" contract.
func (c *SearchCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(ctx, key, raw, ttl)
}

func (c *SearchCache) Delete(ctx context.Context, key string) {
	if err := c.backend.Delete(ctx, key); err != nil {
		return
	}
	c.mu.Lock()
	c.stats.Deletes++
	c.mu.Unlock()
}

// InvalidatePattern deletes every key matching a `*`/`?` glob pattern.
func (c *SearchCache) InvalidatePattern(ctx context.Context, pattern string) int {
	keys, err := c.backend.Keys(ctx, pattern)
	if err != nil {
		return 0
	}
	for _, k := range keys {
		c.Delete(ctx, k)
	}
	return len(keys)
}

func (c *SearchCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *SearchCache) Close() error {
	return c.backend.Close()
}
