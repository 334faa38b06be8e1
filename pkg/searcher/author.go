package searcher

import (
	"context"

	"github.com/Aman-CERP/githound-engine/pkg/fuzzy"
	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

const estimateCommitCap = 1000

// AuthorSearcher matches commits by author name/email, per spec.md §4.1.1.
type AuthorSearcher struct {
	Base
	Cacheable
	MaxCommits int // 0 = unbounded for Search; EstimateWork always caps at 1000
}

// NewAuthorSearcher returns a ready-to-use author searcher.
func NewAuthorSearcher() *AuthorSearcher {
	s := &AuthorSearcher{}
	s.Cacheable = NewCacheable(&s.Base, "author")
	return s
}

func (s *AuthorSearcher) Name() string { return "author" }

func (s *AuthorSearcher) CanHandle(query model.SearchQuery) bool {
	return query.AuthorPattern != ""
}

func (s *AuthorSearcher) EstimateWork(sctx *model.SearchContext) int {
	commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: estimateCommitCap})
	if err != nil {
		return 0
	}
	return len(commits)
}

// Search iterates commits on the selected branch and matches each commit's
// author_{name,email} by regex (substring fallback) in non-fuzzy mode, or
// partial-ratio fuzzy score >= fuzzy_threshold in fuzzy mode.
func (s *AuthorSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed author", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: s.MaxCommits})
		if err != nil {
			return
		}

		pattern := CompilePattern(sctx.Query.AuthorPattern, sctx.Query.CaseSensitive)
		threshold := sctx.Query.EffectiveFuzzyThreshold()

		for _, c := range commits {
			s.addCommitsSearched(1)
			identity := c.Author.Name + " " + c.Author.Email

			var score float64
			var matched bool
			if sctx.Query.FuzzySearch {
				ratio := fuzzy.PartialRatioFold(sctx.Query.AuthorPattern, identity)
				matched = float64(ratio) >= threshold*100
				score = float64(ratio) / 100.0
			} else {
				matched = pattern.Match(identity)
				score = 1.0
			}
			if !matched {
				continue
			}

			result := &model.SearchResult{
				CommitHash:     c.Hexsha,
				SearchType:     model.SearchTypeAuthor,
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
