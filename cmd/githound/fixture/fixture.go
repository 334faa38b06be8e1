// Package fixture provides a small synthetic repository used by the
// githound demo binary to exercise the engine end-to-end without requiring
// a real Repository collaborator implementation, which this module
// deliberately does not ship (spec.md keeps the Git accessor external).
package fixture

import (
	"fmt"
	"time"

	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// Repo is an in-memory repo.Repository seeded with a handful of commits
// touching several files, authors, and a tag/branch, enough to demonstrate
// every searcher axis.
type Repo struct {
	path    string
	commits []*repo.Commit
	tags    []repo.Tag
	branch  string
}

// New builds the demo repository rooted at a nominal path.
func New() *Repo {
	now := time.Now()

	mk := func(hash, message, authorName, authorEmail string, age time.Duration, parents []string, files map[string]string) *repo.Commit {
		date := now.Add(-age)
		c := &repo.Commit{
			Hexsha:        hash,
			Author:        repo.Signature{Name: authorName, Email: authorEmail},
			Committer:     repo.Signature{Name: authorName, Email: authorEmail},
			Message:       message,
			CommittedDate: date.Unix(),
			CommittedTime: date,
			Parents:       parents,
		}
		stats := repo.CommitStats{Files: make(map[string]repo.FileStat)}
		var diffs []repo.Diff
		for path, content := range files {
			data := []byte(content)
			ins := len(content) / 20
			if ins == 0 {
				ins = 1
			}
			stats.Files[path] = repo.FileStat{Insertions: ins}
			stats.Insertions += ins
			diffs = append(diffs, repo.Diff{
				BPath:      path,
				ChangeType: repo.ChangeModified,
				BBlob:      &repo.Blob{Size: int64(len(data)), Data: data},
				RawUnified: []byte(fmt.Sprintf("+++ b/%s\n%s", path, prefixLines(content, "+"))),
			})
		}
		c.Stats = stats
		c.Diff = func(other *repo.Commit) ([]repo.Diff, error) { return diffs, nil }
		return c
	}

	commits := []*repo.Commit{
		mk("a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2", "initial commit: scaffold the indexer", "alice", "alice@example.com",
			30*24*time.Hour, nil, map[string]string{
				"internal/index/build.go": "package index\n\nfunc Build() error {\n\treturn nil\n}\n",
			}),
		mk("b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3", "fix authentication bug in token validation", "bob", "bob@example.com",
			20*24*time.Hour, []string{"a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"}, map[string]string{
				"internal/auth/token.go": "package auth\n\nfunc validateToken(t string) bool {\n\treturn len(t) > 0\n}\n",
			}),
		mk("c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4", "TODO: revisit the retry backoff curve", "alice", "alice@example.com",
			10*24*time.Hour, []string{"b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3"}, map[string]string{
				"internal/retry/backoff.go": "package retry\n\n// TODO: make jitter configurable\nfunc Backoff() {}\n",
			}),
		mk("d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5", "hardcoded password left in test fixture", "carol", "carol@example.com",
			2*24*time.Hour, []string{"c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4"}, map[string]string{
				"test/fixtures/creds.go": "package fixtures\n\nconst password = \"hunter2\"\n",
			}),
	}

	return &Repo{
		path:    "/demo/githound-fixture",
		commits: commits,
		tags:    []repo.Tag{{Name: "v0.1.0", Target: commits[1].Hexsha}},
		branch:  "main",
	}
}

func prefixLines(content, marker string) string {
	out := marker + content
	return out
}

func (r *Repo) ActiveBranchName() (string, error) { return r.branch, nil }
func (r *Repo) WorkingDir() string                 { return r.path }
func (r *Repo) RealPath() string                   { return r.path }

func (r *Repo) Commit(hash string) (*repo.Commit, error) {
	for _, c := range r.commits {
		if c.Hexsha == hash {
			return c, nil
		}
	}
	return nil, nil
}

func (r *Repo) IterCommits(opts repo.IterOptions) ([]*repo.Commit, error) {
	out := r.commits
	if opts.MaxCount > 0 && opts.MaxCount < len(out) {
		out = out[:opts.MaxCount]
	}
	return out, nil
}

func (r *Repo) Branches() ([]repo.Branch, error) {
	return []repo.Branch{{Name: r.branch, Target: r.commits[len(r.commits)-1].Hexsha}}, nil
}

func (r *Repo) Tags() ([]repo.Tag, error) { return r.tags, nil }

func (r *Repo) Remotes() ([]repo.Remote, error) { return nil, nil }
