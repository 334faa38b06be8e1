package searcher

import (
	"context"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// DateRangeSearcher matches commits within [date_from, date_to], either side
// open-ended, per spec.md §4.1.1.
type DateRangeSearcher struct {
	Base
	Cacheable
	MaxCommits int
}

// NewDateRangeSearcher returns a ready-to-use date-range searcher.
func NewDateRangeSearcher() *DateRangeSearcher {
	s := &DateRangeSearcher{}
	s.Cacheable = NewCacheable(&s.Base, "date_range")
	return s
}

func (s *DateRangeSearcher) Name() string { return "date_range" }

func (s *DateRangeSearcher) CanHandle(query model.SearchQuery) bool {
	return query.DateFrom != nil || query.DateTo != nil
}

func (s *DateRangeSearcher) EstimateWork(sctx *model.SearchContext) int {
	commits, err := sctx.Repo.IterCommits(repo.IterOptions{
		Ref:      sctx.Branch,
		MaxCount: estimateCommitCap,
		Since:    sctx.Query.DateFrom,
		Until:    sctx.Query.DateTo,
	})
	if err != nil {
		return 0
	}
	return len(commits)
}

// Search yields every commit with date_from <= commit.date <= date_to (open
// on whichever side is unset). Every match scores 1.0.
func (s *DateRangeSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed date_range", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: s.MaxCommits})
		if err != nil {
			return
		}

		for _, c := range commits {
			s.addCommitsSearched(1)

			date := c.CommittedTime.UTC()
			if sctx.Query.DateFrom != nil && date.Before(*sctx.Query.DateFrom) {
				continue
			}
			if sctx.Query.DateTo != nil && date.After(*sctx.Query.DateTo) {
				continue
			}

			result := &model.SearchResult{
				CommitHash:     c.Hexsha,
				SearchType:     model.SearchTypeDateRange,
				RelevanceScore: 1.0,
				CommitInfo:     ToCommitInfo(c),
			}
			if !emit(result) {
				return
			}
			s.addResultsFound(1)
		}
	})
}
