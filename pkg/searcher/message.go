package searcher

import (
	"context"

	"github.com/Aman-CERP/githound-engine/pkg/fuzzy"
	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// MessageSearcher matches commits by commit message, per spec.md §4.1.1.
type MessageSearcher struct {
	Base
	Cacheable
	MaxCommits int
}

// NewMessageSearcher returns a ready-to-use message searcher.
func NewMessageSearcher() *MessageSearcher {
	s := &MessageSearcher{}
	s.Cacheable = NewCacheable(&s.Base, "message")
	return s
}

func (s *MessageSearcher) Name() string { return "message" }

func (s *MessageSearcher) CanHandle(query model.SearchQuery) bool {
	return query.MessagePattern != ""
}

func (s *MessageSearcher) EstimateWork(sctx *model.SearchContext) int {
	commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: estimateCommitCap})
	if err != nil {
		return 0
	}
	return len(commits)
}

// Search iterates commits and matches commit.message the same way
// AuthorSearcher matches author identity.
func (s *MessageSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed message", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: s.MaxCommits})
		if err != nil {
			return
		}

		pattern := CompilePattern(sctx.Query.MessagePattern, sctx.Query.CaseSensitive)
		threshold := sctx.Query.EffectiveFuzzyThreshold()

		for _, c := range commits {
			s.addCommitsSearched(1)

			var score float64
			var matched bool
			if sctx.Query.FuzzySearch {
				ratio := fuzzy.PartialRatioFold(sctx.Query.MessagePattern, c.Message)
				matched = float64(ratio) >= threshold*100
				score = float64(ratio) / 100.0
			} else {
				matched = pattern.Match(c.Message)
				score = 1.0
			}
			if !matched {
				continue
			}

			result := &model.SearchResult{
				CommitHash:     c.Hexsha,
				SearchType:     model.SearchTypeMessage,
				RelevanceScore: score,
				CommitInfo:     ToCommitInfo(c),
			}
			result.ClampScore()
			if !emit(result) {
				return
			}
			s.addResultsFound(1)
		}
	})
}
