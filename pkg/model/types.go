// Package model holds the immutable request/response carriers shared by the
// searcher, orchestrator, index, and ranking packages: SearchQuery,
// SearchResult, CommitInfo, SearchMetrics, and SearchContext.
package model

import (
	"time"

	"github.com/Aman-CERP/githound-engine/pkg/cache"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// SearchType identifies which axis of a query produced a SearchResult.
type SearchType string

const (
	SearchTypeContent    SearchType = "content"
	SearchTypeCommitHash SearchType = "commit_hash"
	SearchTypeAuthor     SearchType = "author"
	SearchTypeMessage    SearchType = "message"
	SearchTypeDateRange  SearchType = "date_range"
	SearchTypeFilePath   SearchType = "file_path"
	SearchTypeFileType   SearchType = "file_type"
	SearchTypeCombined   SearchType = "combined"
)

// SearchQuery is an immutable search request. At least one discriminating
// field must be set; an all-empty query matches nothing.
type SearchQuery struct {
	ContentPattern  string
	CommitHash      string
	AuthorPattern   string
	MessagePattern  string
	DateFrom        *time.Time
	DateTo          *time.Time
	FilePathPattern string
	FileExtensions  []string

	CaseSensitive  bool
	FuzzySearch    bool
	FuzzyThreshold float64 // [0,1], default 0.8

	IncludeGlobs []string
	ExcludeGlobs []string

	MaxFileSize    int64
	MinCommitSize  int
	MaxCommitSize  int

	BranchAnalysis      bool
	DiffAnalysis        bool
	PatternAnalysis     bool
	StatisticalAnalysis bool
	TemporalAnalysis    bool
	TagAnalysis         bool
}

// IsEmpty reports whether the query has no discriminating field set, in
// which case every searcher must yield zero results.
func (q SearchQuery) IsEmpty() bool {
	return q.ContentPattern == "" &&
		q.CommitHash == "" &&
		q.AuthorPattern == "" &&
		q.MessagePattern == "" &&
		q.DateFrom == nil &&
		q.DateTo == nil &&
		q.FilePathPattern == "" &&
		len(q.FileExtensions) == 0 &&
		!q.BranchAnalysis && !q.DiffAnalysis && !q.PatternAnalysis &&
		!q.StatisticalAnalysis && !q.TemporalAnalysis && !q.TagAnalysis
}

// CriteriaCount returns how many independent query axes are set; the
// "advanced" searcher activates when this is ≥ 2.
func (q SearchQuery) CriteriaCount() int {
	n := 0
	if q.ContentPattern != "" {
		n++
	}
	if q.CommitHash != "" {
		n++
	}
	if q.AuthorPattern != "" {
		n++
	}
	if q.MessagePattern != "" {
		n++
	}
	if q.DateFrom != nil || q.DateTo != nil {
		n++
	}
	if q.FilePathPattern != "" {
		n++
	}
	if len(q.FileExtensions) > 0 {
		n++
	}
	return n
}

// EffectiveFuzzyThreshold returns FuzzyThreshold, defaulting to 0.8.
func (q SearchQuery) EffectiveFuzzyThreshold() float64 {
	if q.FuzzyThreshold <= 0 {
		return 0.8
	}
	return q.FuzzyThreshold
}

// CommitInfo is a denormalised snapshot of one commit.
type CommitInfo struct {
	Hash          string
	ShortHash     string
	AuthorName    string
	AuthorEmail   string
	CommitterName string
	CommitterEmail string
	Message       string
	Date          time.Time
	FilesChanged  int
	Insertions    int
	Deletions     int
	Parents       []string
}

// NewCommitInfo builds a CommitInfo, deriving ShortHash from Hash.
func NewCommitInfo(hash string) CommitInfo {
	short := hash
	if len(short) > 8 {
		short = short[:8]
	}
	return CommitInfo{Hash: hash, ShortHash: short}
}

// SearchResult is one match produced by a searcher.
type SearchResult struct {
	CommitHash     string
	FilePath       string
	LineNumber     *int
	MatchingLine   string
	SearchType     SearchType
	RelevanceScore float64
	CommitInfo     *CommitInfo
	MatchContext   map[string]any
	SearchTimeMs   *int64
}

// ClampScore clamps RelevanceScore to [0,1].
func (r *SearchResult) ClampScore() {
	if r.RelevanceScore < 0 {
		r.RelevanceScore = 0
	}
	if r.RelevanceScore > 1 {
		r.RelevanceScore = 1
	}
}

// SearchMetrics holds monotonic counters for one orchestration invocation.
type SearchMetrics struct {
	CommitsSearched int64
	FilesSearched   int64
	ResultsFound    int64
	DurationMs      int64
	CacheHits       int64
	CacheMisses     int64
	PeakMemoryMB    *int64
}

// ProgressFunc reports (message, fraction) where fraction is in [0,1] and
// non-decreasing over one orchestration invocation. Implementations MUST be
// non-blocking; callers MAY drop callbacks under backpressure.
type ProgressFunc func(message string, fraction float64)

// SearchContext is per-query scratch state. Its lifetime is one orchestrator
// invocation; it is never shared across invocations.
type SearchContext struct {
	Repo     repo.Repository
	Query    SearchQuery
	Branch   string
	Progress ProgressFunc
	Cache    *cache.SearchCache

	// MaxResults mirrors the orchestrator invocation's result cap; searchers
	// that bound their own work by it (e.g. the fuzzy searcher's target set)
	// read it here. Zero means unbounded.
	MaxResults int
}

// Emit calls the progress callback if one is set, swallowing a nil callback.
func (c *SearchContext) Emit(message string, fraction float64) {
	if c.Progress != nil {
		c.Progress(message, fraction)
	}
}
