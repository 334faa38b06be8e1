package searcher

import (
	"context"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// BranchSearcher yields commits unique to the selected branch relative to
// the repository's active (checked-out) branch, per SPEC_FULL.md §4.1.1.
// It yields nothing when the selected branch is the active branch.
type BranchSearcher struct {
	Base
	Cacheable
	MaxCommits int
}

// NewBranchSearcher returns a ready-to-use branch searcher.
func NewBranchSearcher() *BranchSearcher {
	s := &BranchSearcher{MaxCommits: estimateCommitCap}
	s.Cacheable = NewCacheable(&s.Base, "branch")
	return s
}

func (s *BranchSearcher) Name() string { return "branch" }

func (s *BranchSearcher) CanHandle(query model.SearchQuery) bool {
	return query.BranchAnalysis
}

func (s *BranchSearcher) EstimateWork(sctx *model.SearchContext) int {
	return s.MaxCommits
}

func (s *BranchSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed branch", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		base, err := sctx.Repo.ActiveBranchName()
		if err != nil || base == "" || base == sctx.Branch {
			return
		}

		baseCommits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: base, MaxCount: s.MaxCommits})
		if err != nil {
			return
		}
		baseSet := make(map[string]struct{}, len(baseCommits))
		for _, c := range baseCommits {
			baseSet[c.Hexsha] = struct{}{}
		}

		branchCommits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: s.MaxCommits})
		if err != nil {
			return
		}

		for _, c := range branchCommits {
			if ctx.Err() != nil {
				return
			}
			s.addCommitsSearched(1)
			if _, inBase := baseSet[c.Hexsha]; inBase {
				continue
			}

			result := &model.SearchResult{
				CommitHash:     c.Hexsha,
				SearchType:     model.SearchTypeCombined,
				RelevanceScore: 1.0,
				CommitInfo:     ToCommitInfo(c),
				MatchContext: map[string]any{
					"analysis_type": "branch",
					"branch":        sctx.Branch,
					"base_branch":   base,
				},
			}
			if !emit(result) {
				return
			}
			s.addResultsFound(1)
		}
	})
}
