package searcher

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"unicode/utf8"

	engineerrors "github.com/Aman-CERP/githound-engine/internal/errors"
	"github.com/Aman-CERP/githound-engine/pkg/model"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// importantContentExtensions bumps relevance for source-like files, per
// spec.md §4.1.1's content searcher scoring formula.
var importantContentExtensions = map[string]struct{}{
	".go": {}, ".py": {}, ".js": {}, ".ts": {}, ".java": {}, ".c": {}, ".cpp": {},
	".rs": {}, ".rb": {}, ".php": {}, ".cs": {},
}

// ContentSearcher scans changed file blobs for a content pattern via the
// external line-matcher collaborator, falling back to an internal regex
// scan when no matcher is configured, per spec.md §6/§7.
type ContentSearcher struct {
	Base
	Cacheable
	Matcher    repo.LineMatcher
	MaxCommits int
}

// NewContentSearcher returns a content searcher using matcher; a nil
// matcher falls back to an internal regex-based scan.
func NewContentSearcher(matcher repo.LineMatcher) *ContentSearcher {
	s := &ContentSearcher{Matcher: matcher}
	s.Cacheable = NewCacheable(&s.Base, "content")
	return s
}

func (s *ContentSearcher) Name() string { return "content" }

func (s *ContentSearcher) CanHandle(query model.SearchQuery) bool {
	return query.ContentPattern != ""
}

func (s *ContentSearcher) EstimateWork(sctx *model.SearchContext) int {
	commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: estimateCommitCap})
	if err != nil {
		return 0
	}
	return len(commits)
}

func (s *ContentSearcher) Search(ctx context.Context, sctx *model.SearchContext) <-chan *model.SearchResult {
	return Stream(ctx, func(emit Emitter) {
		defer sctx.Emit("Completed content", 1.0)

		if !s.CanHandle(sctx.Query) {
			return
		}

		commits, err := sctx.Repo.IterCommits(repo.IterOptions{Ref: sctx.Branch, MaxCount: s.MaxCommits})
		if err != nil {
			return
		}

		q := sctx.Query
		for _, c := range commits {
			s.addCommitsSearched(1)

			diffs, derr := diffsForCommit(sctx.Repo, c)
			if derr != nil {
				blobErr := engineerrors.New(engineerrors.ErrCodeBlobUnreadable, "could not read commit diff, skipping commit", derr).
					WithDetail("commit", c.Hexsha)
				slog.Debug(blobErr.Error(), slog.String("commit", c.Hexsha), slog.String("cause", derr.Error()))
				continue
			}
			for _, d := range diffs {
				p := d.BPath
				if p == "" {
					continue
				}
				if !MatchesGlobs(p, q.IncludeGlobs, q.ExcludeGlobs) {
					continue
				}
				if d.BBlob == nil {
					continue
				}
				if q.MaxFileSize > 0 && d.BBlob.Size > q.MaxFileSize {
					continue
				}
				s.addFilesSearched(1)

				if !utf8.Valid(d.BBlob.Data) {
					decodeErr := engineerrors.New(engineerrors.ErrCodeDecodeFailed, "blob is not valid UTF-8, treating as binary", nil).
						WithDetail("commit", c.Hexsha).WithDetail("path", p)
					slog.Debug(decodeErr.Error(), slog.String("commit", c.Hexsha), slog.String("path", p))
					continue
				}
				text := string(d.BBlob.Data)

				matches := s.scanBuffer(text, q.ContentPattern, q.CaseSensitive)
				for _, m := range matches {
					ln := m.LineNumber
					result := &model.SearchResult{
						CommitHash:     c.Hexsha,
						FilePath:       p,
						LineNumber:     &ln,
						MatchingLine:   m.Text,
						SearchType:     model.SearchTypeContent,
						RelevanceScore: contentRelevance(q.ContentPattern, m.Text, p, q.CaseSensitive),
						CommitInfo:     ToCommitInfo(c),
						MatchContext: map[string]any{
							"column_start": m.ColumnStart,
							"column_end":   m.ColumnEnd,
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

// scanBuffer delegates to the configured LineMatcher, falling back to an
// internal regex scan when none is configured or it errors, per spec.md §7
// "External line-matcher unavailable".
func (s *ContentSearcher) scanBuffer(text, pattern string, caseSensitive bool) []repo.LineMatch {
	if s.Matcher != nil {
		matches, err := s.Matcher.ScanBuffer([]byte(text), pattern, caseSensitive)
		if err == nil {
			return matches
		}
	}
	return InternalScanBuffer(text, pattern, caseSensitive)
}

// InternalScanBuffer is the in-process regex fallback line matcher,
// satisfying the repo.LineMatcher contract's shape without an external
// process (spec.md §6's "Line matcher collaborator").
func InternalScanBuffer(text, pattern string, caseSensitive bool) []repo.LineMatch {
	compiled := CompilePattern(pattern, caseSensitive)
	var out []repo.LineMatch
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		start, end := compiled.FindFirst(line)
		if start < 0 {
			continue
		}
		out = append(out, repo.LineMatch{
			LineNumber:  i + 1,
			Text:        line,
			ColumnStart: start,
			ColumnEnd:   end,
		})
	}
	return out
}

// contentRelevance implements spec.md §4.1.1's content-searcher scoring:
// 0.5 base + 0.3 exact-substring + 0.1 important-extension + 0.1 shallow
// path, clamped to 1.0.
func contentRelevance(pattern, line, filePath string, caseSensitive bool) float64 {
	score := 0.5

	haystack, needle := line, pattern
	if !caseSensitive {
		haystack, needle = strings.ToLower(haystack), strings.ToLower(needle)
	}
	if strings.Contains(haystack, needle) {
		score += 0.3
	}

	ext := strings.ToLower(path.Ext(filePath))
	if _, ok := importantContentExtensions[ext]; ok {
		score += 0.1
	}

	depth := strings.Count(strings.Trim(path.Dir(filePath), "/"), "/") + 1
	if path.Dir(filePath) == "." {
		depth = 0
	}
	if depth <= 3 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
