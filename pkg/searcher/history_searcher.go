package searcher

import (
	"context"
	"sort"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

type fileChurn struct {
	touches   int
	firstDate int64
	lastDate  int64
}

// HistorySearcher groups commits by file and reports churn summaries
// (touches per file, first/last-touch date), per SPEC_FULL.md §4.1.1.
type HistorySearcher struct {
	Base
	Cacheable
	MaxCommits int
}

// NewHistorySearcher returns a ready-to-use history searcher.
func NewHistorySearcher() *HistorySearcher {
	s := &HistorySearcher{MaxCommits: estimateCommitCap}
	s.Cacheable = NewCacheable(&s.Base, "history")
	return s
}

func (s *HistorySearcher) Name() string { return "history" }

func (s *HistorySearcher) CanHandle(query model.SearchQuery) bool {
	return query.TemporalAnalysis
}

func (s *HistorySearcher) EstimateWork(sctx *model.SearchContext) int {
	return s.MaxCommits
}

func (s *HistorySearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed history", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: s.MaxCommits})
		if err != nil {
			return
		}

		churn := make(map[string]*fileChurn)
		var latest *repo.Commit
		for _, c := range commits {
			if ctx.Err() != nil {
				return
			}
			s.addCommitsSearched(1)
			if latest == nil {
				latest = c
			}

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
				fc, ok := churn[p]
				if !ok {
					fc = &fileChurn{firstDate: c.CommittedDate, lastDate: c.CommittedDate}
					churn[p] = fc
				}
				fc.touches++
				if c.CommittedDate < fc.firstDate {
					fc.firstDate = c.CommittedDate
				}
				if c.CommittedDate > fc.lastDate {
					fc.lastDate = c.CommittedDate
				}
			}
		}

		paths := make([]string, 0, len(churn))
		for p := range churn {
			paths = append(paths, p)
		}
		sort.Slice(paths, func(i, j int) bool { return churn[paths[i]].touches > churn[paths[j]].touches })

		var commitInfo *model.CommitInfo
		if latest != nil {
			commitInfo = ToCommitInfo(latest)
		}

		for _, p := range paths {
			fc := churn[p]
			result := &model.SearchResult{
				FilePath:       p,
				SearchType:     model.SearchTypeCombined,
				RelevanceScore: 1.0,
				CommitInfo:     commitInfo,
				MatchContext: map[string]any{
					"analysis_type": "history",
					"touches":       fc.touches,
					"first_touch":   fc.firstDate,
					"last_touch":    fc.lastDate,
				},
			}
			if !emit(result) {
				return
			}
			s.addResultsFound(1)
		}
	})
}
