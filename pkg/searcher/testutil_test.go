package searcher_test

import (
	"time"

	"github.com/Aman-CERP/githound-engine/cmd/githound/fixture"
	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// drain collects every result a searcher's Search channel produces.
func drain(ch <-chan *model.SearchResult) []*model.SearchResult {
	var out []*model.SearchResult
	for r := range ch {
		out = append(out, r)
	}
	return out
}

// newSearchContext builds a SearchContext over the demo fixture repository
// for query, with no cache and no progress callback.
func newSearchContext(query model.SearchQuery) *model.SearchContext {
	return &model.SearchContext{
		Repo:   fixture.New(),
		Query:  query,
		Branch: "main",
	}
}

// fakeRepo is a minimal repo.Repository stub for tests that need exact
// control over commit dates, messages, or file contents the demo fixture
// doesn't hold.
type fakeRepo struct {
	path    string
	commits []*repo.Commit
	tags    []repo.Tag
}

func (f *fakeRepo) ActiveBranchName() (string, error) { return "main", nil }
func (f *fakeRepo) WorkingDir() string                 { return f.path }
func (f *fakeRepo) RealPath() string                   { return f.path }
func (f *fakeRepo) Branches() ([]repo.Branch, error)   { return nil, nil }
func (f *fakeRepo) Tags() ([]repo.Tag, error)          { return f.tags, nil }
func (f *fakeRepo) Remotes() ([]repo.Remote, error)    { return nil, nil }

func (f *fakeRepo) Commit(hash string) (*repo.Commit, error) {
	for _, c := range f.commits {
		if c.Hexsha == hash {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) IterCommits(opts repo.IterOptions) ([]*repo.Commit, error) {
	out := f.commits
	if opts.MaxCount > 0 && opts.MaxCount < len(out) {
		out = out[:opts.MaxCount]
	}
	return out, nil
}

// makeCommit builds a repo.Commit at date with files as its changed blobs,
// diffed against an empty tree (no parent).
func makeCommit(hash, message, authorName string, date time.Time, files map[string]string) *repo.Commit {
	c := &repo.Commit{
		Hexsha:        hash,
		Author:        repo.Signature{Name: authorName, Email: authorName + "@example.com"},
		Committer:     repo.Signature{Name: authorName, Email: authorName + "@example.com"},
		Message:       message,
		CommittedDate: date.Unix(),
		CommittedTime: date,
	}
	stats := repo.CommitStats{Files: make(map[string]repo.FileStat)}
	var diffs []repo.Diff
	for path, content := range files {
		data := []byte(content)
		stats.Files[path] = repo.FileStat{Insertions: 1}
		diffs = append(diffs, repo.Diff{
			BPath:      path,
			ChangeType: repo.ChangeModified,
			BBlob:      &repo.Blob{Size: int64(len(data)), Data: data},
			RawUnified: []byte("+" + content),
		})
	}
	c.Stats = stats
	c.Diff = func(other *repo.Commit) ([]repo.Diff, error) { return diffs, nil }
	return c
}
