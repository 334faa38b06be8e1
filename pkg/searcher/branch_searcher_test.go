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

// branchAwareRepo layers ActiveBranchName on top of fakeRepo so the branch
// searcher can diff "feature" against a distinct base.
type branchAwareRepo struct {
	*fakeRepo
	base string
	all  []*repo.Commit
}

func (b *branchAwareRepo) ActiveBranchName() (string, error) { return b.base, nil }

func (b *branchAwareRepo) IterCommits(opts repo.IterOptions) ([]*repo.Commit, error) {
	if opts.Ref == b.base {
		return b.all[:2], nil
	}
	return b.all, nil
}

func TestBranchSearcher_YieldsCommitsUniqueToBranch(t *testing.T) {
	now := time.Now()
	all := []*repo.Commit{
		makeCommit("base1", "base work", "alice", now, nil),
		makeCommit("base2", "more base work", "alice", now, nil),
		makeCommit("feat1", "feature work", "bob", now, nil),
	}
	r := &branchAwareRepo{fakeRepo: &fakeRepo{path: "/repos/branch"}, base: "main", all: all}

	s := searcher.NewBranchSearcher()
	sctx := &model.SearchContext{Repo: r, Branch: "feature", Query: model.SearchQuery{BranchAnalysis: true}}

	results := drain(s.Search(context.Background(), sctx))

	require.Len(t, results, 1)
	assert.Equal(t, "feat1", results[0].CommitHash)
	assert.Equal(t, "branch", results[0].MatchContext["analysis_type"])
}

func TestBranchSearcher_CanHandle(t *testing.T) {
	s := searcher.NewBranchSearcher()
	assert.False(t, s.CanHandle(model.SearchQuery{}))
	assert.True(t, s.CanHandle(model.SearchQuery{BranchAnalysis: true}))
}
