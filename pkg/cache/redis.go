package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"time"

	"github.com/go-redis/redis/v8"

	engineerrors "github.com/Aman-CERP/githound-engine/internal/errors"
)

// markerRaw/markerCompressed flag whether a stored payload is gzip-compressed;
// values longer than compressAbove bytes are compressed.
const (
	markerRaw        byte = 0x00
	markerCompressed byte = 0x01
	compressAbove         = 1024
)

// RedisBackend is an out-of-process cache backed by Redis (or a compatible
// server), namespacing every key and gzip-compressing large values. Calls
// are routed through a circuit breaker so a flaky or down Redis degrades to
// fast per-call misses/discards (spec.md §7's "cache backend error") instead
// of every caller paying the connection timeout on every call.
type RedisBackend struct {
	client    *redis.Client
	namespace string
	breaker   *engineerrors.CircuitBreaker
}

// RedisConfig configures a RedisBackend connection.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

// NewRedisBackend dials a Redis server. It does not verify connectivity;
// callers that need a readiness check should call Exists on a throwaway key.
func NewRedisBackend(cfg RedisConfig) *RedisBackend {
	ns := cfg.Namespace
	if ns == "" {
		ns = "githound"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisBackend{
		client:    client,
		namespace: ns,
		breaker:   engineerrors.NewCircuitBreaker("redis-cache"),
	}
}

func (r *RedisBackend) namespacedKey(key string) string {
	return r.namespace + ":" + key
}

func (r *RedisBackend) encode(value []byte) []byte {
	if len(value) <= compressAbove {
		return append([]byte{markerRaw}, value...)
	}
	var buf bytes.Buffer
	buf.WriteByte(markerCompressed)
	gw := gzip.NewWriter(&buf)
	_, _ = gw.Write(value)
	_ = gw.Close()
	return buf.Bytes()
}

func (r *RedisBackend) decode(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return raw, nil
	}
	marker, payload := raw[0], raw[1:]
	switch marker {
	case markerRaw:
		return payload, nil
	case markerCompressed:
		gr, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		return io.ReadAll(gr)
	default:
		return nil, errors.New("cache: unknown redis payload marker")
	}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !r.breaker.Allow() {
		return nil, false, nil
	}
	var raw []byte
	var miss bool
	err := r.breaker.Execute(func() error {
		var getErr error
		raw, getErr = r.client.Get(ctx, r.namespacedKey(key)).Bytes()
		if errors.Is(getErr, redis.Nil) {
			miss = true
			return nil
		}
		return getErr
	})
	if err != nil {
		return nil, false, nil
	}
	if miss {
		return nil, false, nil
	}
	value, err := r.decode(raw)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 0
	}
	if !r.breaker.Allow() {
		return nil
	}
	if err := r.breaker.Execute(func() error {
		return r.client.Set(ctx, r.namespacedKey(key), r.encode(value), ttl).Err()
	}); err != nil {
		return nil
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if !r.breaker.Allow() {
		return nil
	}
	if err := r.breaker.Execute(func() error {
		return r.client.Del(ctx, r.namespacedKey(key)).Err()
	}); err != nil {
		return nil
	}
	return nil
}

func (r *RedisBackend) Exists(ctx context.Context, key string) (bool, error) {
	if !r.breaker.Allow() {
		return false, nil
	}
	var n int64
	if err := r.breaker.Execute(func() error {
		var existsErr error
		n, existsErr = r.client.Exists(ctx, r.namespacedKey(key)).Result()
		return existsErr
	}); err != nil {
		return false, nil
	}
	return n > 0, nil
}

func (r *RedisBackend) Clear(ctx context.Context) error {
	if !r.breaker.Allow() {
		return nil
	}
	return r.breaker.Execute(func() error {
		keys, err := r.client.Keys(ctx, r.namespace+":*").Result()
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return nil
		}
		return r.client.Del(ctx, keys...).Err()
	})
}

func (r *RedisBackend) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !r.breaker.Allow() {
		return nil, nil
	}
	var raw []string
	if err := r.breaker.Execute(func() error {
		var keysErr error
		raw, keysErr = r.client.Keys(ctx, r.namespace+":*").Result()
		return keysErr
	}); err != nil {
		return nil, nil
	}
	prefix := r.namespace + ":"
	var out []string
	for _, k := range raw {
		short := k[len(prefix):]
		if globMatch(pattern, short) {
			out = append(out, short)
		}
	}
	return out, nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

var _ Backend = (*RedisBackend)(nil)
