package orchestrator

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/Aman-CERP/githound-engine/pkg/cache"
	"github.com/Aman-CERP/githound-engine/pkg/index"
	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/perf"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// queryCacheDefaultMaxEntries bounds the whole-query result cache independent
// of any per-searcher cache, per spec.md §4.7's cache_max_size default of 100.
const queryCacheDefaultMaxEntries = 100

// queryCacheTTL is how long a cached result set for one canonical query is
// considered fresh before it must be recomputed.
const queryCacheTTL = 5 * time.Minute

// EnhancedOrchestrator wraps a base Orchestrator with query optimization, a
// whole-query result cache, an index-driven fast path, and profiling, per
// spec.md §4.7.
type EnhancedOrchestrator struct {
	Base *Orchestrator

	// QueryCache, if non-nil, stores and replays whole-query result sets
	// keyed by the canonicalised query. A nil QueryCache disables the
	// cache-lookup phase entirely (every call falls through to the fast
	// path or the base orchestrator).
	QueryCache *cache.SearchCache

	// Indexer, if non-nil, is consulted for an index-driven fast path when
	// the query has a content pattern.
	Indexer *index.IncrementalIndexer

	// Profiler, if non-nil, records stage timings for every invocation.
	Profiler *perf.Profiler

	// BottleneckThreshold overrides perf.DefaultTotalTimeThreshold when
	// non-zero.
	BottleneckThreshold time.Duration
}

// NewEnhanced wraps base with an LRU-backed whole-query cache and a fresh
// profiler; callers that want to share an Indexer set it afterward.
func NewEnhanced(base *Orchestrator) *EnhancedOrchestrator {
	return &EnhancedOrchestrator{
		Base:       base,
		QueryCache: cache.NewSearchCache(cache.NewMemoryBackend(queryCacheDefaultMaxEntries, 0), queryCacheTTL),
		Profiler:   perf.NewProfiler(),
	}
}

// EnhancedResult is what Search returns: the ranked result set, the
// aggregate metrics from whichever phase produced them, the completed timing
// profile, and any bottlenecks that profile triggered.
type EnhancedResult struct {
	Results     []*model.SearchResult
	Metrics     model.SearchMetrics
	Profile     perf.Profile
	Bottlenecks []perf.Bottleneck

	// ErrorMessage carries the base orchestrator's cancellation/timeout
	// envelope message, if any, per spec.md §7.
	ErrorMessage string
}

// Search runs spec.md §4.7's enhanced orchestration algorithm: optimise the
// query, consult the whole-query cache, attempt an index-driven fast path
// when applicable, and otherwise fall back to the base orchestrator. Every
// phase is timed and folded into the returned profile.
func (e *EnhancedOrchestrator) Search(ctx context.Context, inv Invocation) (*EnhancedResult, error) {
	overallStart := time.Now()
	var stages []perf.StageTiming
	stage := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		stages = append(stages, perf.StageTiming{Name: name, Duration: time.Since(start)})
		return err
	}

	optimized := Optimize(inv.Query)
	inv.Query = optimized
	if inv.MaxResults <= 0 {
		inv.MaxResults = EstimateMaxResults(optimized)
	}

	key := e.cacheKey(inv)

	var cached []*model.SearchResult
	hit := false
	if e.QueryCache != nil {
		_ = stage("cache_lookup", func() error {
			hit = e.QueryCache.GetJSON(ctx, key, &cached)
			return nil
		})
	}
	if hit {
		if e.Profiler != nil {
			e.Profiler.RecordCacheHit()
		}
		if inv.Progress != nil {
			inv.Progress("Replayed from cache", 1.0)
		}
		result := &EnhancedResult{
			Results: cached,
			Metrics: model.SearchMetrics{DurationMs: time.Since(overallStart).Milliseconds(), CacheHits: 1},
			Profile: perf.Profile{Stages: stages, Total: time.Since(overallStart)},
		}
		e.finish(result)
		return result, nil
	}
	if e.Profiler != nil {
		e.Profiler.RecordCacheMiss()
	}

	if e.Indexer != nil && inv.Query.ContentPattern != "" {
		var fastResults []*model.SearchResult
		_ = stage("index_fast_path", func() error {
			fastResults = e.indexFastPath(inv)
			return nil
		})
		if len(fastResults) > 0 {
			if e.QueryCache != nil {
				e.QueryCache.SetJSON(ctx, key, fastResults, 0)
			}
			result := &EnhancedResult{
				Results: fastResults,
				Metrics: model.SearchMetrics{DurationMs: time.Since(overallStart).Milliseconds(), ResultsFound: int64(len(fastResults))},
				Profile: perf.Profile{Stages: stages, Total: time.Since(overallStart)},
			}
			e.finish(result)
			return result, nil
		}
	}

	var baseOut *Result
	var baseErr error
	_ = stage("base_search", func() error {
		baseOut, baseErr = e.Base.Search(ctx, inv)
		return baseErr
	})
	if baseErr != nil {
		return nil, baseErr
	}

	if e.QueryCache != nil {
		e.QueryCache.SetJSON(ctx, key, baseOut.Results, 0)
	}

	result := &EnhancedResult{
		Results:      baseOut.Results,
		Metrics:      baseOut.Metrics,
		Profile:      perf.Profile{Stages: stages, Total: time.Since(overallStart)},
		ErrorMessage: baseOut.ErrorMessage,
	}
	e.finish(result)
	return result, nil
}

// finish records the completed profile with the profiler (if any) and
// attaches bottleneck diagnostics.
func (e *EnhancedOrchestrator) finish(result *EnhancedResult) {
	if e.Profiler != nil {
		e.Profiler.RecordSearch(result.Profile)
	}
	result.Bottlenecks = perf.DetectBottlenecks(result.Profile, e.BottleneckThreshold)
}

func (e *EnhancedOrchestrator) cacheKey(inv Invocation) string {
	repoPath := ""
	if inv.Repo != nil {
		repoPath = inv.Repo.RealPath()
	}
	return cache.MakeKey("enhanced_query", repoPath, inv.Branch, inv.Query, inv.MaxResults)
}

// indexFastPath runs IncrementalIndexer.SearchContent and hydrates each hit
// from the repository, skipping documents whose commit or blob can no longer
// be resolved; it never errors, returning whatever it could hydrate.
func (e *EnhancedOrchestrator) indexFastPath(inv Invocation) []*model.SearchResult {
	limit := inv.MaxResults
	if limit <= 0 {
		limit = queryCacheDefaultMaxEntries
	}
	docs := e.Indexer.SearchContent(inv.Query.ContentPattern, limit)
	if len(docs) == 0 {
		return nil
	}

	out := make([]*model.SearchResult, 0, len(docs))
	for _, d := range docs {
		r := hydrateContentDoc(inv.Repo, d, inv.Query.ContentPattern)
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// hydrateContentDoc resolves one content-index hit's "<hash>:<path>" docID
// against the repository, producing a SearchResult with a concrete matching
// line when the changed blob can be located in the commit's diff.
func hydrateContentDoc(r repo.Repository, doc index.ScoredDoc, pattern string) *model.SearchResult {
	if r == nil {
		return nil
	}
	hash, path, ok := strings.Cut(doc.DocID, ":")
	if !ok {
		return nil
	}
	c, err := r.Commit(hash)
	if err != nil || c == nil {
		return nil
	}

	info := model.NewCommitInfo(c.Hexsha)
	info.AuthorName, info.AuthorEmail = c.Author.Name, c.Author.Email
	info.CommitterName, info.CommitterEmail = c.Committer.Name, c.Committer.Email
	info.Message = c.Message
	info.Date = c.CommittedTime
	info.Parents = c.Parents
	info.Insertions, info.Deletions = c.Stats.Insertions, c.Stats.Deletions

	result := &model.SearchResult{
		CommitHash:     c.Hexsha,
		FilePath:       path,
		SearchType:     model.SearchTypeContent,
		RelevanceScore: doc.Score,
		CommitInfo:     &info,
		MatchContext:   map[string]any{"source": "index_fast_path"},
	}
	result.ClampScore()

	if line, lineNum, ok := findMatchingLine(c, path, pattern); ok {
		result.MatchingLine = line
		n := lineNum
		result.LineNumber = &n
	}
	return result
}

// findMatchingLine scans path's post-change blob within c's diff for the
// first line containing pattern (case-insensitive), returning false if the
// diff or blob is unavailable.
func findMatchingLine(c *repo.Commit, path, pattern string) (string, int, bool) {
	if c.Diff == nil || pattern == "" {
		return "", 0, false
	}
	diffs, err := c.Diff(nil)
	if err != nil {
		return "", 0, false
	}
	needle := strings.ToLower(pattern)
	for _, d := range diffs {
		if d.BPath != path || d.BBlob == nil {
			continue
		}
		scanner := bufio.NewScanner(strings.NewReader(string(d.BBlob.Data)))
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			line := scanner.Text()
			if strings.Contains(strings.ToLower(line), needle) {
				return line, lineNum, true
			}
		}
		break
	}
	return "", 0, false
}
