package searcher

import (
	"context"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// StatisticalSearcher computes aggregate stats (commits per author, average
// commit size) over the candidate commit set and emits a single summary
// result, per SPEC_FULL.md §4.1.1.
type StatisticalSearcher struct {
	Base
	Cacheable
	MaxCommits int
}

// NewStatisticalSearcher returns a ready-to-use statistical searcher.
func NewStatisticalSearcher() *StatisticalSearcher {
	s := &StatisticalSearcher{MaxCommits: estimateCommitCap}
	s.Cacheable = NewCacheable(&s.Base, "statistical")
	return s
}

func (s *StatisticalSearcher) Name() string { return "statistical" }

func (s *StatisticalSearcher) CanHandle(query model.SearchQuery) bool {
	return query.StatisticalAnalysis
}

func (s *StatisticalSearcher) EstimateWork(sctx *model.SearchContext) int {
	return s.MaxCommits
}

func (s *StatisticalSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed statistical", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: s.MaxCommits})
		if err != nil {
			return
		}
		if len(commits) == 0 {
			return
		}

		commitsPerAuthor := make(map[string]int)
		var totalInsertions, totalDeletions int
		var latest *repo.Commit

		for _, c := range commits {
			if ctx.Err() != nil {
				return
			}
			s.addCommitsSearched(1)
			if latest == nil {
				latest = c
			}
			commitsPerAuthor[c.Author.Name]++
			totalInsertions += c.Stats.Insertions
			totalDeletions += c.Stats.Deletions
		}

		n := float64(len(commits))
		result := &model.SearchResult{
			SearchType:     model.SearchTypeCombined,
			RelevanceScore: 1.0,
			CommitInfo:     ToCommitInfo(latest),
			MatchContext: map[string]any{
				"analysis_type":      "statistical",
				"total_commits":      len(commits),
				"commits_per_author": commitsPerAuthor,
				"avg_insertions":     float64(totalInsertions) / n,
				"avg_deletions":      float64(totalDeletions) / n,
				"avg_commit_size":    float64(totalInsertions+totalDeletions) / n,
			},
		}
		if emit(result) {
			s.addResultsFound(1)
		}
	})
}
