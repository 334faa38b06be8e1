// Package searcher defines the Searcher contract every concrete axis
// searcher implements, plus the Cacheable and Parallel capability mixins
// concrete searchers embed, per spec.md §4.1.
package searcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Aman-CERP/githound-engine/pkg/cache"
	"github.com/Aman-CERP/githound-engine/pkg/model"
)

// Metrics is a read-only snapshot of one searcher instance's counters.
type Metrics struct {
	CommitsSearched int64
	FilesSearched   int64
	ResultsFound    int64
	CacheHits       int64
	CacheMisses     int64
}

// Searcher is the contract every axis searcher implements. Search returns a
// finite, non-restartable stream; a searcher that cannot handle the query
// MUST yield nothing, and a searcher never raises out of its stream to the
// orchestrator — per-commit and per-file errors are logged and skipped.
type Searcher interface {
	Name() string
	CanHandle(query model.SearchQuery) bool
	EstimateWork(sctx *model.SearchContext) int
	Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult
	Metrics() Metrics
}

// Base is embedded by every concrete searcher. It owns the per-instance
// metrics counters and the stream helper every searcher uses to produce its
// lazy sequence of results while honoring cancellation at every suspension
// point.
type Base struct {
	mu      sync.Mutex
	metrics Metrics
}

// Metrics returns a snapshot of this searcher's counters.
func (b *Base) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.metrics
}

func (b *Base) addCommitsSearched(n int64) {
	b.mu.Lock()
	b.metrics.CommitsSearched += n
	b.mu.Unlock()
}

func (b *Base) addFilesSearched(n int64) {
	b.mu.Lock()
	b.metrics.FilesSearched += n
	b.mu.Unlock()
}

func (b *Base) addResultsFound(n int64) {
	b.mu.Lock()
	b.metrics.ResultsFound += n
	b.mu.Unlock()
}

func (b *Base) addCacheHit() {
	b.mu.Lock()
	b.metrics.CacheHits++
	b.mu.Unlock()
}

func (b *Base) addCacheMiss() {
	b.mu.Lock()
	b.metrics.CacheMisses++
	b.mu.Unlock()
}

// Emitter is the function a searcher's producer loop calls to yield one
// result. It returns false once the caller has stopped consuming (context
// cancelled); the producer loop MUST check the return value and stop.
type Emitter func(*model.SearchResult) bool

// Stream runs produce in its own goroutine and returns the channel it
// writes to, closing the channel when produce returns. This is the
// suspension-point boundary every searcher's Search method uses: every send
// on the returned channel, and every check of the emitter's return value,
// is a point where the orchestrator's cancellation is observed.
func Stream(ctx context.Context, produce func(emit Emitter)) <-chan *model.SearchResult {
	out := make(chan *model.SearchResult, 32)
	go func() {
		defer close(out)
		emit := func(r *model.SearchResult) bool {
			select {
			case out <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}
		produce(emit)
	}()
	return out
}

// Cacheable composes a stable cache key from
// (name_prefix, repo_identity, branch_or_HEAD, query_hash, suffix) and
// tracks cache hit/miss counters against the embedding searcher's Base.
type Cacheable struct {
	*Base
	NamePrefix string
}

// NewCacheable returns a Cacheable mixin bound to base and namePrefix.
func NewCacheable(base *Base, namePrefix string) Cacheable {
	return Cacheable{Base: base, NamePrefix: namePrefix}
}

// CacheKey derives this searcher's cache key for one query.
func (c Cacheable) CacheKey(repoIdentity, branch string, query model.SearchQuery, suffix string) string {
	branchOrHead := branch
	if branchOrHead == "" {
		branchOrHead = "HEAD"
	}
	return cache.MakeKey(c.NamePrefix, repoIdentity, branchOrHead, query, suffix)
}

// GetFromCache looks up key in sc, decoding a JSON value into dst on hit.
// A nil cache is treated as an unconditional miss. Counters update
// regardless of outcome.
func (c Cacheable) GetFromCache(ctx context.Context, sc *cache.SearchCache, key string, dst any) bool {
	if sc == nil {
		c.addCacheMiss()
		return false
	}
	ok := sc.GetJSON(ctx, key, dst)
	if ok {
		c.addCacheHit()
	} else {
		c.addCacheMiss()
	}
	return ok
}

// SetCache stores value under key with ttl (0 uses the cache's default). A
// nil cache is a no-op, matching "cache errors are never fatal".
func (c Cacheable) SetCache(ctx context.Context, sc *cache.SearchCache, key string, value any, ttl time.Duration) {
	if sc == nil {
		return
	}
	sc.SetJSON(ctx, key, value, ttl)
}

// Parallel bounds a searcher's internal fan-out to maxWorkers concurrent
// inner tasks via a counting semaphore, per spec.md §4.1's Parallel mixin.
type Parallel struct {
	sem *semaphore.Weighted
}

// NewParallel returns a Parallel mixin capped at maxWorkers (default 4).
func NewParallel(maxWorkers int) Parallel {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return Parallel{sem: semaphore.NewWeighted(int64(maxWorkers))}
}

// Acquire blocks until a worker slot is free or ctx is done.
func (p Parallel) Acquire(ctx context.Context) error {
	return p.sem.Acquire(ctx, 1)
}

// Release returns a worker slot.
func (p Parallel) Release() {
	p.sem.Release(1)
}
