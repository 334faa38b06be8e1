package searcher

import (
	"context"
	"sync"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// AdvancedSearcher activates whenever a query sets two or more independent
// criteria. It runs one sub-searcher per active criterion concurrently,
// then intersects their results on the (commit_hash, file_path) tuple and
// boosts the relevance of anything matched by more than one criterion, per
// spec.md §4.1.1's "advanced" row. Commit-level sub-searchers (commit hash,
// author, message, date range) yield an empty file_path, and the empty path
// is an ordinary key: it matches only other empty-path results, so such a
// criterion never intersects with file_path, file_type or content results.
type AdvancedSearcher struct {
	Base

	CommitHash *CommitHashSearcher
	Author     *AuthorSearcher
	Message    *MessageSearcher
	DateRange  *DateRangeSearcher
	FilePath   *FilePathSearcher
	FileType   *FileTypeSearcher
	Content    *ContentSearcher
}

// NewAdvancedSearcher wires one instance of every single-axis searcher it
// may fan out to. matcher is passed through to the content sub-searcher; a
// nil matcher falls back to the internal regex scan.
func NewAdvancedSearcher(matcher repo.LineMatcher) *AdvancedSearcher {
	return &AdvancedSearcher{
		CommitHash: NewCommitHashSearcher(),
		Author:     NewAuthorSearcher(),
		Message:    NewMessageSearcher(),
		DateRange:  NewDateRangeSearcher(),
		FilePath:   NewFilePathSearcher(),
		FileType:   NewFileTypeSearcher(),
		Content:    NewContentSearcher(matcher),
	}
}

func (s *AdvancedSearcher) Name() string { return "advanced" }

func (s *AdvancedSearcher) CanHandle(query model.SearchQuery) bool {
	return query.CriteriaCount() >= 2
}

func (s *AdvancedSearcher) EstimateWork(sctx *model.SearchContext) int {
	total := 0
	for _, sub := range s.activeSubsearchers(sctx.Query) {
		total += sub.EstimateWork(sctx)
	}
	return total
}

type subSearcher interface {
	Name() string
	CanHandle(model.SearchQuery) bool
	EstimateWork(*model.SearchContext) int
	Search(context.Context, *model.SearchContext) <-chan *model.SearchResult
}

func (s *AdvancedSearcher) activeSubsearchers(q model.SearchQuery) []subSearcher {
	all := []subSearcher{s.CommitHash, s.Author, s.Message, s.DateRange, s.FilePath, s.FileType, s.Content}
	var active []subSearcher
	for _, sub := range all {
		if sub.CanHandle(q) {
			active = append(active, sub)
		}
	}
	return active
}

type resultKey struct {
	commitHash string
	filePath   string
}

// Search collects every active sub-searcher's full result set, then emits
// the intersection across all of them, boosting relevance ×1.2 (capped at
// 1.0) for tuples matched by more than one criterion.
func (s *AdvancedSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed advanced", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		subs := s.activeSubsearchers(sctx.Query)
		if len(subs) < 2 {
			return
		}

		perSub := make([]map[resultKey]*model.SearchResult, len(subs))
		var wg sync.WaitGroup
		for i, sub := range subs {
			i, sub := i, sub
			wg.Add(1)
			go func() {
				defer wg.Done()
				m := make(map[resultKey]*model.SearchResult)
				ch := sub.Search(ctx, sctx)
				for r := range ch {
					k := resultKey{commitHash: r.CommitHash, filePath: r.FilePath}
					if existing, ok := m[k]; !ok || r.RelevanceScore > existing.RelevanceScore {
						m[k] = r
					}
				}
				perSub[i] = m
			}()
		}
		wg.Wait()

		if ctx.Err() != nil {
			return
		}

		matchCount := make(map[resultKey]int)
		best := make(map[resultKey]*model.SearchResult)
		for _, m := range perSub {
			for k, r := range m {
				matchCount[k]++
				if existing, ok := best[k]; !ok || r.RelevanceScore > existing.RelevanceScore {
					best[k] = r
				}
			}
		}

		for k, count := range matchCount {
			if count < len(subs) {
				continue
			}
			r := best[k]
			boosted := &model.SearchResult{
				CommitHash:     r.CommitHash,
				FilePath:       r.FilePath,
				LineNumber:     r.LineNumber,
				MatchingLine:   r.MatchingLine,
				SearchType:     model.SearchTypeCombined,
				RelevanceScore: r.RelevanceScore * 1.2,
				CommitInfo:     r.CommitInfo,
				MatchContext:   r.MatchContext,
			}
			boosted.ClampScore()
			s.addCommitsSearched(1)
			if !emit(boosted) {
				return
			}
			s.addResultsFound(1)
		}
	})
}
