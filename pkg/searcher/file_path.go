package searcher

import (
	"context"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// FilePathSearcher matches changed file paths by regex or fnmatch glob
// against commit diffs, deduping paths across commits, per spec.md §4.1.1.
type FilePathSearcher struct {
	Base
	Cacheable
	MaxCommits int
}

// NewFilePathSearcher returns a ready-to-use file-path searcher.
func NewFilePathSearcher() *FilePathSearcher {
	s := &FilePathSearcher{}
	s.Cacheable = NewCacheable(&s.Base, "file_path")
	return s
}

func (s *FilePathSearcher) Name() string { return "file_path" }

func (s *FilePathSearcher) CanHandle(query model.SearchQuery) bool {
	return query.FilePathPattern != ""
}

func (s *FilePathSearcher) EstimateWork(sctx *model.SearchContext) int {
	commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: estimateCommitCap})
	if err != nil {
		return 0
	}
	return len(commits)
}

// diffsForCommit walks a commit's diff against its first parent (or an
// empty tree for a root commit), the shared helper every file-axis searcher
// uses to enumerate changed paths.
func diffsForCommit(r repo.Repository, c *repo.Commit) ([]repo.Diff, error) {
	if c.Diff == nil {
		return nil, nil
	}
	if len(c.Parents) == 0 {
		return c.Diff(nil)
	}
	parent, err := r.Commit(c.Parents[0])
	if err != nil || parent == nil {
		return c.Diff(nil)
	}
	return c.Diff(parent)
}

// isPathLike reports whether pattern looks like a glob (fnmatch) rather
// than a regex: spec.md names both "regex or glob (fnmatch semantics)" for
// file_path without disambiguating, so a pattern containing any of `*`,
// `?`, `[` or `]` is treated as a glob only, with no regex fallback; other
// regex metachars in it are not considered.
func isPathLike(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', ']':
			return true
		}
	}
	return false
}

func matchFilePath(pattern, path string, caseSensitive bool) bool {
	if isPathLike(pattern) {
		return MatchFnmatch(pattern, path)
	}
	return CompilePattern(pattern, caseSensitive).Match(path)
}

func (s *FilePathSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed file_path", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: s.MaxCommits})
		if err != nil {
			return
		}

		seen := make(map[string]struct{})
		for _, c := range commits {
			s.addCommitsSearched(1)

			diffs, derr := diffsForCommit(sctx.Repo, c)
			if derr != nil {
				continue
			}
			for _, d := range diffs {
				p := d.BPath
				if p == "" {
					p = d.APath
				}
				if p == "" {
					continue
				}
				s.addFilesSearched(1)
				if !matchFilePath(sctx.Query.FilePathPattern, p, sctx.Query.CaseSensitive) {
					continue
				}
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}

				result := &model.SearchResult{
					CommitHash:     c.Hexsha,
					FilePath:       p,
					SearchType:     model.SearchTypeFilePath,
					RelevanceScore: 1.0,
					CommitInfo:     ToCommitInfo(c),
				}
				if !emit(result) {
					return
				}
				s.addResultsFound(1)
			}
		}
	})
}
