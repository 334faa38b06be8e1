package searcher

import (
	"context"
	"strings"

	"github.com/Aman-CERP/githound-engine/pkg/fuzzy"
	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

const (
	fuzzyDefaultTargetSize = 500
	fuzzyMaxBlobSize       = 1 << 20 // 1MB
	fuzzyMaxTotalLines     = 10000
	fuzzyMaxResults        = 100
)

// FuzzySearcher runs partial-ratio fuzzy matching over a bounded target set
// of commits across the author, message, and (when a content pattern is
// set) file-content axes at once, per spec.md §4.1.1.
type FuzzySearcher struct {
	Base
	Cacheable
	Parallel
}

// NewFuzzySearcher returns a ready-to-use fuzzy searcher whose Parallel
// semaphore holds maxWorkers slots (default 4). Search scans commits and
// files sequentially and does not acquire that semaphore.
func NewFuzzySearcher(maxWorkers int) *FuzzySearcher {
	s := &FuzzySearcher{Parallel: NewParallel(maxWorkers)}
	s.Cacheable = NewCacheable(&s.Base, "fuzzy")
	return s
}

func (s *FuzzySearcher) Name() string { return "fuzzy" }

func (s *FuzzySearcher) CanHandle(query model.SearchQuery) bool {
	if !query.FuzzySearch {
		return false
	}
	return query.ContentPattern != "" || query.MessagePattern != "" || query.AuthorPattern != ""
}

func (s *FuzzySearcher) targetSize(sctx *model.SearchContext) int {
	if sctx.MaxResults > 0 {
		return sctx.MaxResults
	}
	return fuzzyDefaultTargetSize
}

func (s *FuzzySearcher) EstimateWork(sctx *model.SearchContext) int {
	return s.targetSize(sctx)
}

type fuzzyMatch struct {
	result *model.SearchResult
	score  int
}

// Search builds the bounded target set, scores authors/messages/content
// lines via partial-ratio, and emits matches at or above fuzzy_threshold.
// Line scoring is capped at 10,000 total lines and the top 100 results.
func (s *FuzzySearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed fuzzy", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		q := sctx.Query
		cutoff := q.EffectiveFuzzyThreshold() * 100

		commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: s.targetSize(sctx)})
		if err != nil {
			return
		}

		var matches []fuzzyMatch
		linesScored := 0

		for _, c := range commits {
			if ctx.Err() != nil {
				return
			}
			s.addCommitsSearched(1)
			info := ToCommitInfo(c)

			if q.AuthorPattern != "" {
				identity := c.Author.Name + " " + c.Author.Email
				if score := fuzzy.PartialRatioFold(q.AuthorPattern, identity); float64(score) >= cutoff {
					matches = append(matches, fuzzyMatch{
						score: score,
						result: &model.SearchResult{
							CommitHash: c.Hexsha, SearchType: model.SearchTypeAuthor,
							RelevanceScore: float64(score) / 100.0, CommitInfo: info,
						},
					})
				}
			}
			if q.MessagePattern != "" {
				if score := fuzzy.PartialRatioFold(q.MessagePattern, c.Message); float64(score) >= cutoff {
					matches = append(matches, fuzzyMatch{
						score: score,
						result: &model.SearchResult{
							CommitHash: c.Hexsha, SearchType: model.SearchTypeMessage,
							RelevanceScore: float64(score) / 100.0, CommitInfo: info,
						},
					})
				}
			}

			if q.ContentPattern == "" || linesScored >= fuzzyMaxTotalLines {
				continue
			}
			diffs, derr := diffsForCommit(sctx.Repo, c)
			if derr != nil {
				continue
			}
			for _, d := range diffs {
				if linesScored >= fuzzyMaxTotalLines {
					break
				}
				if d.BBlob == nil || d.BBlob.Size > fuzzyMaxBlobSize || d.BPath == "" {
					continue
				}
				s.addFilesSearched(1)
				text := string(d.BBlob.Data)
				for i, line := range strings.Split(text, "\n") {
					if linesScored >= fuzzyMaxTotalLines {
						break
					}
					linesScored++
					score := fuzzy.PartialRatioFold(q.ContentPattern, line)
					if float64(score) < cutoff {
						continue
					}
					ln := i + 1
					matches = append(matches, fuzzyMatch{
						score: score,
						result: &model.SearchResult{
							CommitHash: c.Hexsha, FilePath: d.BPath, LineNumber: &ln,
							MatchingLine: line, SearchType: model.SearchTypeContent,
							RelevanceScore: float64(score) / 100.0, CommitInfo: info,
						},
					})
				}
			}
		}

		topN(matches, fuzzyMaxResults)
		for i, m := range matches {
			if i >= fuzzyMaxResults {
				break
			}
			m.result.ClampScore()
			if !emit(m.result) {
				return
			}
			s.addResultsFound(1)
		}
	})
}

// topN sorts all of matches descending by score in place; n is not used
// here, and the caller applies the spec.md §4.1.1 "top-100 results" bound
// while emitting.
func topN(matches []fuzzyMatch, n int) {
	// Stable insertion sort: for the sizes this searcher produces (bounded
	// by target commits x lines), a full sort is both simplest and fast
	// enough.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].score > matches[j-1].score; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
	_ = n
}
