package searcher_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/searcher"
)

// Scenario B from spec.md §8 (adapted to the fixture repo's author mix):
// a substring author match, case-insensitive, scores every hit at 1.0.
func TestAuthorSearcher_SubstringMatch(t *testing.T) {
	s := searcher.NewAuthorSearcher()
	sctx := newSearchContext(model.SearchQuery{AuthorPattern: "alice"})

	results := drain(s.Search(context.Background(), sctx))

	if assert.Len(t, results, 2) {
		for _, r := range results {
			assert.Equal(t, "alice", r.CommitInfo.AuthorName)
			assert.Equal(t, 1.0, r.RelevanceScore)
			assert.Equal(t, model.SearchTypeAuthor, r.SearchType)
		}
	}
}

func TestAuthorSearcher_NoMatch(t *testing.T) {
	s := searcher.NewAuthorSearcher()
	sctx := newSearchContext(model.SearchQuery{AuthorPattern: "nobody-by-this-name"})

	assert.Empty(t, drain(s.Search(context.Background(), sctx)))
}

func TestAuthorSearcher_CannotHandleEmptyQueryYieldsNothing(t *testing.T) {
	s := searcher.NewAuthorSearcher()
	sctx := newSearchContext(model.SearchQuery{})

	assert.False(t, s.CanHandle(sctx.Query))
	assert.Empty(t, drain(s.Search(context.Background(), sctx)))
}

func TestAuthorSearcher_FuzzyMatchRespectsThreshold(t *testing.T) {
	s := searcher.NewAuthorSearcher()
	sctx := newSearchContext(model.SearchQuery{
		AuthorPattern:  "alise", // typo for "alice"
		FuzzySearch:    true,
		FuzzyThreshold: 0.6,
	})

	results := drain(s.Search(context.Background(), sctx))
	assert.NotEmpty(t, results)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.RelevanceScore, 0.6)
	}
}
