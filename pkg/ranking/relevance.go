package ranking

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Aman-CERP/githound-engine/internal/config"
	"github.com/Aman-CERP/githound-engine/pkg/fuzzy"
	"github.com/Aman-CERP/githound-engine/pkg/model"
)

// importantExtensions maps a lowercased file extension (with leading dot)
// to its base file_importance score, per spec.md §4.5.
var importantExtensions = map[string]float64{
	".py": 0.9, ".js": 0.9, ".java": 0.9, ".cpp": 0.9, ".c": 0.9, ".cs": 0.9,
	".ts": 0.8, ".go": 0.8, ".rs": 0.8, ".php": 0.8, ".rb": 0.8,
	".md": 0.7, ".rst": 0.7,
	".json": 0.6, ".yaml": 0.6, ".yml": 0.6, ".toml": 0.6, ".ini": 0.6, ".xml": 0.6,
	".css": 0.5, ".html": 0.5, ".scss": 0.5,
}

var boostDirs = map[string]struct{}{
	"src": {}, "lib": {}, "core": {}, "main": {}, "app": {},
}

var penaltyDirs = map[string]struct{}{
	"test": {}, "tests": {}, "spec": {}, "docs": {}, "examples": {}, "tmp": {}, "temp": {},
}

// importantFileNames overrides file_importance by exact (case-insensitive)
// base name, per spec.md §4.5.
var importantFileNames = map[string]float64{
	"readme": 0.9, "readme.md": 0.9,
	"changelog": 0.8, "changelog.md": 0.8,
	"license": 0.7, "license.md": 0.7,
	"package.json": 0.8, "go.mod": 0.8, "cargo.toml": 0.8, "pyproject.toml": 0.8,
	"makefile": 0.7, "dockerfile": 0.7,
}

var goodCommitKeywords = []string{
	"fix", "add", "update", "improve", "refactor", "implement", "feature", "bug", "issue", "enhancement",
}

var poorCommitKeywords = []string{
	"wip", "temp", "test", "debug", "tmp", "quick", "minor",
}

// Factors are the seven per-result relevance inputs, each clamped to [0,1]
// before weighting, per spec.md §4.5.
type Factors struct {
	QueryMatch       float64
	Recency          float64
	FileImportance   float64
	AuthorRelevance  float64
	CommitQuality    float64
	ContextRelevance float64
	Frequency        float64
}

// Engine is the multi-factor relevance scorer. Weights must already be
// normalized to sum to 1.0 (config.RankingWeights.Normalize does this on
// load).
type Engine struct {
	Weights config.RankingWeights
	Now     func() time.Time
}

// NewEngine returns an Engine with the given weights and the real clock.
func NewEngine(weights config.RankingWeights) *Engine {
	return &Engine{Weights: weights, Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Score computes the final weighted relevance score for one result within
// the context of the full result set (needed for the frequency/rarity
// factor) and the originating query.
func (e *Engine) Score(result *model.SearchResult, query model.SearchQuery, all []*model.SearchResult) float64 {
	f := e.computeFactors(result, query, all)
	score := e.Weights.QueryMatch*f.QueryMatch +
		e.Weights.Recency*f.Recency +
		e.Weights.FileImportance*f.FileImportance +
		e.Weights.AuthorRelevance*f.AuthorRelevance +
		e.Weights.CommitQuality*f.CommitQuality +
		e.Weights.ContextRelevance*f.ContextRelevance +
		e.Weights.Frequency*f.Frequency
	return clamp01(score)
}

// Rerank scores every result in place against the full set and returns the
// same slice (for convenience chaining); it does not sort.
func (e *Engine) Rerank(results []*model.SearchResult, query model.SearchQuery) []*model.SearchResult {
	for _, r := range results {
		r.RelevanceScore = e.Score(r, query, results)
	}
	return results
}

func (e *Engine) computeFactors(result *model.SearchResult, query model.SearchQuery, all []*model.SearchResult) Factors {
	return Factors{
		QueryMatch:       queryMatch(result, query),
		Recency:          recency(result, e.now()),
		FileImportance:   fileImportance(result.FilePath),
		AuthorRelevance:  authorRelevance(result, query),
		CommitQuality:    commitQuality(result),
		ContextRelevance: contextRelevance(result, query),
		Frequency:        frequency(result, all),
	}
}

// queryMatch averages per-axis similarity: exact substring -> 1.0, fuzzy
// partial-ratio when fuzzy mode, else a flat 0.3-0.5 partial-credit score.
func queryMatch(r *model.SearchResult, q model.SearchQuery) float64 {
	var scores []float64
	fold := func(s string) string {
		if q.CaseSensitive {
			return s
		}
		return strings.ToLower(s)
	}

	if q.ContentPattern != "" {
		scores = append(scores, axisScore(fold(q.ContentPattern), fold(r.MatchingLine), q.FuzzySearch))
	}
	if q.MessagePattern != "" {
		msg := ""
		if r.CommitInfo != nil {
			msg = r.CommitInfo.Message
		}
		scores = append(scores, axisScore(fold(q.MessagePattern), fold(msg), q.FuzzySearch))
	}
	if q.AuthorPattern != "" {
		author := ""
		if r.CommitInfo != nil {
			author = r.CommitInfo.AuthorName + " " + r.CommitInfo.AuthorEmail
		}
		scores = append(scores, axisScore(fold(q.AuthorPattern), fold(author), q.FuzzySearch))
	}
	if len(scores) == 0 {
		return 0.5
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func axisScore(pattern, field string, fuzzySearch bool) float64 {
	if pattern == "" {
		return 0.5
	}
	if field != "" && strings.Contains(field, pattern) {
		return 1.0
	}
	if fuzzySearch && field != "" {
		return float64(fuzzy.PartialRatio(pattern, field)) / 100.0
	}
	return 0.4
}

// recency maps days-since-commit to a step function, per spec.md §4.5.
func recency(r *model.SearchResult, now time.Time) float64 {
	if r.CommitInfo == nil || r.CommitInfo.Date.IsZero() {
		return 0.5
	}
	days := now.Sub(r.CommitInfo.Date).Hours() / 24
	switch {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 0.9
	case days <= 90:
		return 0.7
	case days <= 365:
		return 0.5
	case days <= 730:
		return 0.3
	default:
		return 0.1
	}
}

// fileImportance starts at 0.5, applies the extension table, ancestor
// directory boosts/penalties, and important-filename overrides, per
// spec.md §4.5.
func fileImportance(filePath string) float64 {
	if filePath == "" {
		return 0.5
	}
	base := strings.ToLower(path.Base(filePath))
	if v, ok := importantFileNames[base]; ok {
		return clampRange(v, 0.1, 1.0)
	}

	score := 0.5
	ext := strings.ToLower(path.Ext(filePath))
	if v, ok := importantExtensions[ext]; ok {
		score = v
	}

	dir := path.Dir(filePath)
	for _, seg := range strings.Split(dir, "/") {
		seg = strings.ToLower(seg)
		if _, ok := boostDirs[seg]; ok {
			score += 0.1
		}
		if _, ok := penaltyDirs[seg]; ok {
			score -= 0.1
		}
	}
	return clampRange(score, 0.1, 1.0)
}

// authorRelevance: 1.0 if the query's author pattern is a substring of
// "{name} {email}"; 0.3 otherwise; 0.5 if no author pattern was given.
func authorRelevance(r *model.SearchResult, q model.SearchQuery) float64 {
	if q.AuthorPattern == "" {
		return 0.5
	}
	if r.CommitInfo == nil {
		return 0.3
	}
	identity := r.CommitInfo.AuthorName + " " + r.CommitInfo.AuthorEmail
	pattern, field := q.AuthorPattern, identity
	if !q.CaseSensitive {
		pattern, field = strings.ToLower(pattern), strings.ToLower(field)
	}
	if strings.Contains(field, pattern) {
		return 1.0
	}
	return 0.3
}

// commitQuality scores message keywords, message length, and files_changed,
// per spec.md §4.5.
func commitQuality(r *model.SearchResult) float64 {
	if r.CommitInfo == nil {
		return 0.5
	}
	score := 0.5
	msg := strings.ToLower(r.CommitInfo.Message)

	for _, kw := range goodCommitKeywords {
		if strings.Contains(msg, kw) {
			score += 0.1
		}
	}
	for _, kw := range poorCommitKeywords {
		if strings.Contains(msg, kw) {
			score -= 0.1
		}
	}

	msgLen := len(r.CommitInfo.Message)
	switch {
	case msgLen >= 20 && msgLen <= 100:
		score += 0.1
	case msgLen < 10:
		score -= 0.2
	}

	switch {
	case r.CommitInfo.FilesChanged >= 1 && r.CommitInfo.FilesChanged <= 10:
		score += 0.1
	case r.CommitInfo.FilesChanged > 50:
		score -= 0.1
	}

	return clampRange(score, 0.1, 1.0)
}

// analysisTypes that earn the context_relevance "analysis" bonus.
var boostedAnalysisTypes = map[string]struct{}{
	"code_pattern": {}, "security": {}, "performance": {},
}

// contextRelevance rewards a match_context that confirms the query's
// content/message patterns appear in it, and analysis results from the
// advanced searchers.
func contextRelevance(r *model.SearchResult, q model.SearchQuery) float64 {
	score := 0.5
	if r.MatchContext == nil {
		return score
	}
	ctxText := strings.ToLower(contextAsText(r.MatchContext))
	if q.ContentPattern != "" && strings.Contains(ctxText, strings.ToLower(q.ContentPattern)) {
		score += 0.2
	}
	if q.MessagePattern != "" && strings.Contains(ctxText, strings.ToLower(q.MessagePattern)) {
		score += 0.2
	}
	if at, ok := r.MatchContext["analysis_type"].(string); ok {
		if _, boosted := boostedAnalysisTypes[at]; boosted {
			score += 0.3
		}
	}
	return clamp01(score)
}

func contextAsText(ctx map[string]any) string {
	var b strings.Builder
	for k, v := range ctx {
		fmt.Fprintf(&b, "%s %v ", k, v)
	}
	return b.String()
}

// frequency is a rarity bonus: results sharing this file path or search
// type with many other results in the batch score lower.
func frequency(r *model.SearchResult, all []*model.SearchResult) float64 {
	total := len(all)
	if total <= 1 {
		return 1.0
	}
	var sameFile, sameType int
	for _, other := range all {
		if other.FilePath != "" && other.FilePath == r.FilePath {
			sameFile++
		}
		if other.SearchType == r.SearchType {
			sameType++
		}
	}
	fileRarity := 1 - float64(sameFile)/float64(total)
	typeRarity := 1 - float64(sameType)/float64(total)
	return clampRange((fileRarity+typeRarity)/2, 0.1, 1.0)
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
