package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	engineerrors "github.com/Aman-CERP/githound-engine/internal/errors"
	"github.com/Aman-CERP/githound-engine/pkg/cache"
	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/ranking"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
	"github.com/Aman-CERP/githound-engine/pkg/searcher"
)

// Orchestrator runs every applicable registered searcher concurrently for
// one query, merges their streams, ranks, and truncates, per spec.md §4.2.
type Orchestrator struct {
	*Registry

	// Ranking, if non-nil, reranks the merged result set before the final
	// sort (spec.md §4.5); nil leaves each searcher's own relevance_score
	// as the sort key.
	Ranking *ranking.Engine

	// BM25, if non-nil, runs after Ranking and blends a BM25 signal into
	// relevance_score, per spec.md §4.4's rank_results.
	BM25 *ranking.BM25Ranker
}

// New returns an Orchestrator with an empty registry.
func New() *Orchestrator {
	return &Orchestrator{Registry: NewRegistry()}
}

// Invocation bundles one search call's parameters, per spec.md §4.2's
// `search(repo, query, branch?, progress?, cache?, max_results?)` contract.
type Invocation struct {
	Repo       repo.Repository
	Query      model.SearchQuery
	Branch     string
	Progress   model.ProgressFunc
	Cache      *cache.SearchCache
	MaxResults int

	// TimeoutSeconds caps the whole invocation, per spec.md §5. Zero means
	// no timeout beyond whatever the caller's ctx already carries.
	TimeoutSeconds int
}

// Result is what Search returns: the ranked, truncated result slice plus
// the aggregate metrics for the invocation.
type Result struct {
	Results []*model.SearchResult
	Metrics model.SearchMetrics

	// ErrorMessage is set when the run was cancelled or timed out before
	// every searcher finished, per spec.md §7's response envelope; Results
	// still holds whatever had already been produced.
	ErrorMessage string
}

// slot holds one active searcher's own results, written only by the
// goroutine running that searcher.
type slot struct {
	s       searcher.Searcher
	results []*model.SearchResult
}

// Search runs the full orchestration algorithm described in spec.md §4.2:
// can_handle filtering, concurrent fan-out with progress events, global
// stable sort by relevance_score descending, and max_results truncation.
func (o *Orchestrator) Search(ctx context.Context, inv Invocation) (*Result, error) {
	start := time.Now()

	if inv.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(inv.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	sctx := &model.SearchContext{
		Repo: inv.Repo, Query: inv.Query, Branch: inv.Branch,
		Progress: inv.Progress, Cache: inv.Cache, MaxResults: inv.MaxResults,
	}
	emit := func(msg string, frac float64) {
		if inv.Progress != nil {
			inv.Progress(msg, frac)
		}
	}

	var slots []slot
	for _, s := range o.all() {
		if s.CanHandle(inv.Query) {
			slots = append(slots, slot{s: s})
		}
	}
	if len(slots) == 0 {
		emit("Search completed", 1.0)
		return &Result{Metrics: model.SearchMetrics{DurationMs: time.Since(start).Milliseconds()}}, nil
	}

	var completed int64
	total := int64(len(slots))

	g, gctx := errgroup.WithContext(ctx)
	for i := range slots {
		i := i
		g.Go(func() error {
			var local []*model.SearchResult
			for r := range slots[i].s.Search(gctx, sctx) {
				local = append(local, r)
				if inv.MaxResults > 0 && len(local) >= inv.MaxResults {
					break
				}
			}
			slots[i].results = local

			done := atomic.AddInt64(&completed, 1)
			emit(fmt.Sprintf("Completed %s", slots[i].s.Name()), float64(done)/float64(total))
			return nil
		})
	}
	_ = g.Wait()

	var engErr *engineerrors.EngineError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		engErr = engineerrors.New(engineerrors.ErrCodeSearchTimeout, "search timed out before every searcher completed", ctx.Err())
	case errors.Is(ctx.Err(), context.Canceled):
		engErr = engineerrors.New(engineerrors.ErrCodeSearchCanceled, "search was cancelled before every searcher completed", ctx.Err())
	}

	var merged []*model.SearchResult
	for _, sl := range slots {
		merged = append(merged, sl.results...)
	}

	if o.Ranking != nil {
		merged = o.Ranking.Rerank(merged, inv.Query)
	}
	if o.BM25 != nil {
		merged = o.BM25.RankResults(merged, inv.Query)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})

	if inv.MaxResults > 0 && len(merged) > inv.MaxResults {
		merged = merged[:inv.MaxResults]
	}

	metrics := model.SearchMetrics{DurationMs: time.Since(start).Milliseconds()}
	for _, s := range o.all() {
		m := s.Metrics()
		metrics.CommitsSearched += m.CommitsSearched
		metrics.FilesSearched += m.FilesSearched
		metrics.ResultsFound += m.ResultsFound
		metrics.CacheHits += m.CacheHits
		metrics.CacheMisses += m.CacheMisses
	}

	emit("Search completed", 1.0)
	result := &Result{Results: merged, Metrics: metrics}
	if engErr != nil {
		result.ErrorMessage = engErr.Error()
	}
	return result, nil
}
