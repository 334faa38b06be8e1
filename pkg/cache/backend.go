// Package cache provides a pluggable key/value cache with memory-aware
// eviction, TTL, compression, and stats, used both for per-searcher
// intermediate results and whole-query results.
package cache

import (
	"context"
	"time"
)

// Backend is the abstract cache contract. Implementations return
// success/value without raising on ordinary backend errors; a backend error
// is always treated as a miss on read and a silent discard on write by the
// caller, never as fatal.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	Close() error
}

// globMatch implements the `*`-wildcard glob semantics shared by both
// backends' Keys(pattern).
func globMatch(pattern, s string) bool {
	return globMatchRunes([]rune(pattern), []rune(s))
}

func globMatchRunes(pattern, s []rune) bool {
	if len(pattern) == 0 {
		return len(s) == 0
	}
	if pattern[0] == '*' {
		if globMatchRunes(pattern[1:], s) {
			return true
		}
		if len(s) > 0 && globMatchRunes(pattern, s[1:]) {
			return true
		}
		return false
	}
	if len(s) == 0 {
		return false
	}
	if pattern[0] != '?' && pattern[0] != s[0] {
		return false
	}
	return globMatchRunes(pattern[1:], s[1:])
}
