package searcher_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
	"github.com/Aman-CERP/githound-engine/pkg/searcher"
)

func TestHistorySearcher_RanksFilesByTouchCount(t *testing.T) {
	now := time.Now()
	r := &fakeRepo{path: "/repos/history", commits: []*repo.Commit{
		makeCommit("c1", "touch hot", "alice", now.Add(-3*time.Hour), map[string]string{"hot.go": "a"}),
		makeCommit("c2", "touch hot again", "bob", now.Add(-2*time.Hour), map[string]string{"hot.go": "b"}),
		makeCommit("c3", "touch cold", "carol", now.Add(-1*time.Hour), map[string]string{"cold.go": "c"}),
	}}

	s := searcher.NewHistorySearcher()
	sctx := &model.SearchContext{Repo: r, Branch: "main", Query: model.SearchQuery{TemporalAnalysis: true}}

	results := drain(s.Search(context.Background(), sctx))

	require.Len(t, results, 2)
	assert.Equal(t, "hot.go", results[0].FilePath)
	assert.Equal(t, 2, results[0].MatchContext["touches"])
	assert.Equal(t, "cold.go", results[1].FilePath)
	assert.Equal(t, 1, results[1].MatchContext["touches"])
}

func TestHistorySearcher_CanHandle(t *testing.T) {
	s := searcher.NewHistorySearcher()
	assert.False(t, s.CanHandle(model.SearchQuery{}))
	assert.True(t, s.CanHandle(model.SearchQuery{TemporalAnalysis: true}))
}
