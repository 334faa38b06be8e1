package searcher

import (
	"context"

	"github.com/Aman-CERP/githound-engine/pkg/model"
)

// CommitHashSearcher performs a single repository lookup by exact hash.
type CommitHashSearcher struct {
	Base
	Cacheable
}

// NewCommitHashSearcher returns a ready-to-use commit-hash searcher.
func NewCommitHashSearcher() *CommitHashSearcher {
	s := &CommitHashSearcher{}
	s.Cacheable = NewCacheable(&s.Base, "commit_hash")
	return s
}

func (s *CommitHashSearcher) Name() string { return "commit_hash" }

func (s *CommitHashSearcher) CanHandle(query model.SearchQuery) bool {
	return query.CommitHash != ""
}

func (s *CommitHashSearcher) EstimateWork(_ *model.SearchContext) int { return 1 }

// Search yields zero or one result at relevance 1.0, per spec.md §4.1.1.
// An unknown hash is not an error: the searcher reports a complete,
// empty stream (spec.md §7 "Unknown commit").
func (s *CommitHashSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed commit_hash", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}
		commit, err := sctx.Repo.Commit(sctx.Query.CommitHash)
		if err != nil || commit == nil {
			s.addCommitsSearched(1)
			return
		}
		s.addCommitsSearched(1)

		info := ToCommitInfo(commit)
		result := &model.SearchResult{
			CommitHash:     commit.Hexsha,
			SearchType:     model.SearchTypeCommitHash,
			RelevanceScore: 1.0,
			CommitInfo:     info,
		}
		if emit(result) {
			s.addResultsFound(1)
		}
	})
}
