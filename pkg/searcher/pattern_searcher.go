package searcher

import (
	"context"
	"regexp"

	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

type codePattern struct {
	name         string
	analysisType string // "code_pattern" or "security"
	re           *regexp.Regexp
}

// codePatterns is the fixed table of code-smell/security markers the
// pattern searcher scans for, per SPEC_FULL.md §4.1.1.
var codePatterns = []codePattern{
	{name: "todo", analysisType: "code_pattern", re: regexp.MustCompile(`(?i)\bTODO\b`)},
	{name: "fixme", analysisType: "code_pattern", re: regexp.MustCompile(`(?i)\bFIXME\b`)},
	{name: "hack", analysisType: "code_pattern", re: regexp.MustCompile(`(?i)\bHACK\b`)},
	{name: "hardcoded_password", analysisType: "security", re: regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*['"][^'"]+['"]`)},
	{name: "hardcoded_api_key", analysisType: "security", re: regexp.MustCompile(`(?i)(api[_-]?key|secret[_-]?key|access[_-]?token)\s*[:=]\s*['"][^'"]+['"]`)},
	{name: "private_key_block", analysisType: "security", re: regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH )?PRIVATE KEY-----`)},
}

// PatternSearcher scans commit content and messages for a small fixed table
// of code-smell and security patterns, independent of content_pattern, per
// SPEC_FULL.md §4.1.1.
type PatternSearcher struct {
	Base
	Cacheable
	MaxCommits int
}

// NewPatternSearcher returns a ready-to-use pattern searcher.
func NewPatternSearcher() *PatternSearcher {
	s := &PatternSearcher{}
	s.Cacheable = NewCacheable(&s.Base, "pattern")
	return s
}

func (s *PatternSearcher) Name() string { return "pattern" }

func (s *PatternSearcher) CanHandle(query model.SearchQuery) bool {
	return query.PatternAnalysis
}

func (s *PatternSearcher) EstimateWork(sctx *model.SearchContext) int {
	commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: estimateCommitCap})
	if err != nil {
		return 0
	}
	return len(commits)
}

func (s *PatternSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed pattern", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: s.MaxCommits})
		if err != nil {
			return
		}

		for _, c := range commits {
			if ctx.Err() != nil {
				return
			}
			s.addCommitsSearched(1)
			info := ToCommitInfo(c)

			for _, cp := range codePatterns {
				if cp.re.MatchString(c.Message) {
					if !s.emitMatch(emit, c, info, cp, c.Message) {
						return
					}
				}
			}

			diffs, derr := diffsForCommit(sctx.Repo, c)
			if derr != nil {
				continue
			}
			for _, d := range diffs {
				if d.BBlob == nil {
					continue
				}
				s.addFilesSearched(1)
				text := string(d.BBlob.Data)
				for _, cp := range codePatterns {
					loc := cp.re.FindString(text)
					if loc == "" {
						continue
					}
					p := d.BPath
					result := &model.SearchResult{
						CommitHash:     c.Hexsha,
						FilePath:       p,
						MatchingLine:   loc,
						SearchType:     model.SearchTypeCombined,
						RelevanceScore: 0.9,
						CommitInfo:     info,
						MatchContext: map[string]any{
							"analysis_type": cp.analysisType,
							"pattern":       cp.name,
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

func (s *PatternSearcher) emitMatch(emit Emitter, c *repo.Commit, info *model.CommitInfo, cp codePattern, line string) bool {
	result := &model.SearchResult{
		CommitHash:     c.Hexsha,
		MatchingLine:   line,
		SearchType:     model.SearchTypeCombined,
		RelevanceScore: 0.9,
		CommitInfo:     info,
		MatchContext: map[string]any{
			"analysis_type": cp.analysisType,
			"pattern":       cp.name,
		},
	}
	if !emit(result) {
		return false
	}
	s.addResultsFound(1)
	return true
}
