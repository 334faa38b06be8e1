package orchestrator

import (
	"strings"

	"github.com/Aman-CERP/githound-engine/pkg/model"
)

// typoTable is a small fixed set of common misspellings corrected in free
// text patterns, per spec.md §4.7.
var typoTable = map[string]string{
	"comit":    "commit",
	"fiel":     "file",
	"funciton": "function",
	"calss":    "class",
}

const (
	fuzzyAutoEnableTextLen   = 10
	fuzzyAutoEnableAuthorLen = 15
)

// Optimize rewrites a query per spec.md §4.7: lowercases and collapses
// whitespace in text patterns, applies the typo table, normalises path
// separators, and auto-enables fuzzy search for short patterns that would
// otherwise likely miss on an exact match.
func Optimize(q model.SearchQuery) model.SearchQuery {
	q.ContentPattern = normalizeText(q.ContentPattern)
	q.MessagePattern = normalizeText(q.MessagePattern)
	q.AuthorPattern = normalizeText(q.AuthorPattern)
	q.FilePathPattern = normalizePath(q.FilePathPattern)

	if !q.FuzzySearch {
		if len(q.ContentPattern) > 0 && len(q.ContentPattern) < fuzzyAutoEnableTextLen {
			q.FuzzySearch = true
		}
		if len(q.MessagePattern) > 0 && len(q.MessagePattern) < fuzzyAutoEnableTextLen {
			q.FuzzySearch = true
		}
		if len(q.AuthorPattern) > 0 && len(q.AuthorPattern) < fuzzyAutoEnableAuthorLen {
			q.FuzzySearch = true
		}
	}
	return q
}

func normalizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	for typo, fix := range typoTable {
		s = replaceWord(s, typo, fix)
	}
	return s
}

// replaceWord substitutes whole-word occurrences of from with to, leaving
// the surrounding text untouched.
func replaceWord(s, from, to string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == from {
			words[i] = to
		}
	}
	return strings.Join(words, " ")
}

func normalizePath(p string) string {
	if p == "" {
		return p
	}
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.Trim(p, "/")
}

// EstimateMaxResults derives a sensible max_results from query specificity:
// a commit hash needs one result, path/extension filters 50, date ranges and
// content patterns 100, and the broader author/message patterns 200, per
// spec.md §4.7.
func EstimateMaxResults(q model.SearchQuery) int {
	switch {
	case q.CommitHash != "":
		return 1
	case q.FilePathPattern != "" || len(q.FileExtensions) > 0:
		return 50
	case q.DateFrom != nil || q.DateTo != nil:
		return 100
	case q.AuthorPattern != "" || q.MessagePattern != "":
		return 200
	case q.ContentPattern != "":
		return 100
	default:
		return 50
	}
}
