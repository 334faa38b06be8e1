package searcher

import (
	"context"
	"path"
	"strings"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// FileTypeSearcher matches changed files by lowercased extension against
// SearchQuery.FileExtensions, per spec.md §4.1.1.
type FileTypeSearcher struct {
	Base
	Cacheable
	MaxCommits int
}

// NewFileTypeSearcher returns a ready-to-use file-type searcher.
func NewFileTypeSearcher() *FileTypeSearcher {
	s := &FileTypeSearcher{}
	s.Cacheable = NewCacheable(&s.Base, "file_type")
	return s
}

func (s *FileTypeSearcher) Name() string { return "file_type" }

func (s *FileTypeSearcher) CanHandle(query model.SearchQuery) bool {
	return len(query.FileExtensions) > 0
}

func (s *FileTypeSearcher) EstimateWork(sctx *model.SearchContext) int {
	commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: estimateCommitCap})
	if err != nil {
		return 0
	}
	return len(commits)
}

func (s *FileTypeSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed file_type", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		extSet := make(map[string]struct{})
		for _, e := range NormalizeExtensions(sctx.Query.FileExtensions) {
			extSet[e] = struct{}{}
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

				ext := strings.ToLower(path.Ext(p))
				if _, ok := extSet[ext]; !ok {
					continue
				}
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}

				result := &model.SearchResult{
					CommitHash:     c.Hexsha,
					FilePath:       p,
					SearchType:     model.SearchTypeFileType,
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
