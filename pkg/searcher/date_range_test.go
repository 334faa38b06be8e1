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

// Scenario C from spec.md §8: 10 commits evenly spaced across 10 days,
// an open-ended date_from 4 days back yields exactly today..today-4.
func TestDateRangeSearcher_OpenEndedFrom(t *testing.T) {
	now := time.Now().UTC()
	var commits []*repo.Commit
	for i := 0; i < 10; i++ {
		date := now.Add(-time.Duration(i) * 24 * time.Hour)
		commits = append(commits, makeCommit(
			"c"+string(rune('0'+i)), "commit", "alice", date, nil))
	}
	r := &fakeRepo{path: "/repos/scenario-c", commits: commits}

	from := now.Add(-4 * 24 * time.Hour)
	s := searcher.NewDateRangeSearcher()
	sctx := &model.SearchContext{Repo: r, Branch: "main", Query: model.SearchQuery{DateFrom: &from}}

	results := drain(s.Search(context.Background(), sctx))

	require.Len(t, results, 5)
	for _, res := range results {
		assert.Equal(t, 1.0, res.RelevanceScore)
		assert.True(t, !res.CommitInfo.Date.Before(from))
	}
}

func TestDateRangeSearcher_ClosedRange(t *testing.T) {
	now := time.Now().UTC()
	r := &fakeRepo{path: "/repos/scenario-c2", commits: []*repo.Commit{
		makeCommit("old", "old", "alice", now.Add(-100*24*time.Hour), nil),
		makeCommit("mid", "mid", "alice", now.Add(-5*24*time.Hour), nil),
		makeCommit("new", "new", "alice", now, nil),
	}}

	from := now.Add(-10 * 24 * time.Hour)
	to := now.Add(-1 * 24 * time.Hour)
	s := searcher.NewDateRangeSearcher()
	sctx := &model.SearchContext{Repo: r, Branch: "main", Query: model.SearchQuery{DateFrom: &from, DateTo: &to}}

	results := drain(s.Search(context.Background(), sctx))

	require.Len(t, results, 1)
	assert.Equal(t, "mid", results[0].CommitHash)
}

func TestDateRangeSearcher_CanHandle(t *testing.T) {
	s := searcher.NewDateRangeSearcher()
	assert.False(t, s.CanHandle(model.SearchQuery{}))
	now := time.Now()
	assert.True(t, s.CanHandle(model.SearchQuery{DateFrom: &now}))
	assert.True(t, s.CanHandle(model.SearchQuery{DateTo: &now}))
}
