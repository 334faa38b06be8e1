package searcher

import (
	"context"

	"github.com/Aman-CERP/githound-engine/pkg/fuzzy"
	"github.com/Aman-CERP/githound-engine/pkg/model"
)

// TagSearcher matches the commit each repository tag points at against the
// query's author and message patterns on that single commit, annotating
// match_context["tag"], per SPEC_FULL.md §4.1.1. content_pattern is not
// checked, and a query with neither an author nor a message pattern
// matches no tag.
type TagSearcher struct {
	Base
	Cacheable
}

// NewTagSearcher returns a ready-to-use tag searcher.
func NewTagSearcher() *TagSearcher {
	s := &TagSearcher{}
	s.Cacheable = NewCacheable(&s.Base, "tag")
	return s
}

func (s *TagSearcher) Name() string { return "tag" }

func (s *TagSearcher) CanHandle(query model.SearchQuery) bool {
	return query.TagAnalysis
}

func (s *TagSearcher) EstimateWork(sctx *model.SearchContext) int {
	tags, err := sctx.Repo.Tags()
	if err != nil {
		return 0
	}
	return len(tags)
}

func (s *TagSearcher) matchesOtherCriteria(q model.SearchQuery, c *repoCommitView) bool {
	matched := false
	if q.AuthorPattern != "" {
		matched = true
		identity := c.authorName + " " + c.authorEmail
		if q.FuzzySearch {
			if float64(fuzzy.PartialRatioFold(q.AuthorPattern, identity)) < q.EffectiveFuzzyThreshold()*100 {
				return false
			}
		} else if !CompilePattern(q.AuthorPattern, q.CaseSensitive).Match(identity) {
			return false
		}
	}
	if q.MessagePattern != "" {
		matched = true
		if q.FuzzySearch {
			if float64(fuzzy.PartialRatioFold(q.MessagePattern, c.message)) < q.EffectiveFuzzyThreshold()*100 {
				return false
			}
		} else if !CompilePattern(q.MessagePattern, q.CaseSensitive).Match(c.message) {
			return false
		}
	}
	return matched
}

// repoCommitView is a tiny projection used only to keep matchesOtherCriteria
// decoupled from the repo.Commit type for easier table-driven testing.
type repoCommitView struct {
	authorName  string
	authorEmail string
	message     string
}

func (s *TagSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed tag", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		tags, err := sctx.Repo.Tags()
		if err != nil {
			return
		}

		for _, t := range tags {
			if ctx.Err() != nil {
				return
			}
			c, cerr := sctx.Repo.Commit(t.Target)
			if cerr != nil || c == nil {
				continue
			}
			s.addCommitsSearched(1)

			view := &repoCommitView{authorName: c.Author.Name, authorEmail: c.Author.Email, message: c.Message}
			if !s.matchesOtherCriteria(sctx.Query, view) {
				continue
			}

			result := &model.SearchResult{
				CommitHash:     c.Hexsha,
				SearchType:     model.SearchTypeCombined,
				RelevanceScore: 1.0,
				CommitInfo:     ToCommitInfo(c),
				MatchContext: map[string]any{
					"analysis_type": "tag",
					"tag":           t.Name,
				},
			}
			if !emit(result) {
				return
			}
			s.addResultsFound(1)
		}
	})
}
