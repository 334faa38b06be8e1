// Package fuzzy provides the partial-ratio string similarity fuzzy searchers
// use for author, message, and content matching. It is a thin wrapper over
// Levenshtein edit distance, scaled the way fuzzywuzzy-style partial ratios
// are: best-matching substring of the longer string against the shorter one.
package fuzzy

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Ratio returns a 0-100 similarity score between a and b based on normalized
// Levenshtein distance over the full strings.
func Ratio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := (1.0 - float64(dist)/float64(maxLen)) * 100
	if score < 0 {
		score = 0
	}
	return int(score + 0.5)
}

// PartialRatio returns a 0-100 similarity score for the best-aligned
// substring of the longer string against the shorter one. This is what
// spec.md's searchers mean by "partial-ratio fuzzy score": a short query
// fragment scores highly if it closely matches anywhere within a longer
// field (author line, commit message, file line) rather than requiring the
// whole field to match.
func PartialRatio(a, b string) int {
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}
	if len(longer) == len(shorter) {
		return Ratio(shorter, longer)
	}

	best := 0
	n := len(shorter)
	for start := 0; start+n <= len(longer); start++ {
		window := longer[start : start+n]
		r := Ratio(shorter, window)
		if r > best {
			best = r
		}
		if best == 100 {
			break
		}
	}
	return best
}

// PartialRatioFold is PartialRatio over case-folded inputs, used whenever a
// searcher's fuzzy mode should ignore case regardless of query.CaseSensitive
// (spec.md's fuzzy searchers always fold case for partial-ratio scoring).
func PartialRatioFold(a, b string) int {
	return PartialRatio(strings.ToLower(a), strings.ToLower(b))
}
