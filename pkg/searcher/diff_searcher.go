package searcher

import (
	"bufio"
	"context"
	"strings"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// DiffSearcher searches unified-diff text (added/removed lines only)
// against the first parent for content_pattern, per SPEC_FULL.md §4.1.1.
type DiffSearcher struct {
	Base
	Cacheable
	MaxCommits int
}

// NewDiffSearcher returns a ready-to-use diff searcher.
func NewDiffSearcher() *DiffSearcher {
	s := &DiffSearcher{}
	s.Cacheable = NewCacheable(&s.Base, "diff")
	return s
}

func (s *DiffSearcher) Name() string { return "diff" }

func (s *DiffSearcher) CanHandle(query model.SearchQuery) bool {
	return query.DiffAnalysis && query.ContentPattern != ""
}

func (s *DiffSearcher) EstimateWork(sctx *model.SearchContext) int {
	commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: estimateCommitCap})
	if err != nil {
		return 0
	}
	return len(commits)
}

func (s *DiffSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed diff", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: s.MaxCommits})
		if err != nil {
			return
		}

		q := sctx.Query
		pattern := CompilePattern(q.ContentPattern, q.CaseSensitive)

		for _, c := range commits {
			if ctx.Err() != nil {
				return
			}
			if len(c.Parents) == 0 || c.Diff == nil {
				continue
			}
			s.addCommitsSearched(1)

			diffs, derr := diffsForCommit(sctx.Repo, c)
			if derr != nil {
				continue
			}
			for _, d := range diffs {
				if len(d.RawUnified) == 0 {
					continue
				}
				s.addFilesSearched(1)
				sc := bufio.NewScanner(strings.NewReader(string(d.RawUnified)))
				for sc.Scan() {
					line := sc.Text()
					if len(line) == 0 || (line[0] != '+' && line[0] != '-') {
						continue
					}
					if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
						continue
					}
					if !pattern.Match(line) {
						continue
					}

					p := d.BPath
					if p == "" {
						p = d.APath
					}
					result := &model.SearchResult{
						CommitHash:     c.Hexsha,
						FilePath:       p,
						MatchingLine:   line,
						SearchType:     model.SearchTypeCombined,
						RelevanceScore: 0.8,
						CommitInfo:     ToCommitInfo(c),
						MatchContext: map[string]any{
							"analysis_type": "diff",
							"hunk_line":     line,
						},
					}
					if !emit(result) {
						return
					}
					s.addResultsFound(1)
				}
			}
		}
	})
}
