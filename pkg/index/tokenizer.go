// Package index builds and persists the inverted indexes (content, message,
// author) that back fast-path searches, and drives the incremental indexer
// that keeps them current with a repository's commit history.
package index

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\b\w+\b`)

var stopWords = buildStopWordSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to",
	"for", "of", "with", "by", "from", "as", "is",
)

func buildStopWordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Tokenize lowercases text, splits on word boundaries, and drops stop words
// and tokens of length ≤ 2.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	matches := tokenPattern.FindAllString(lower, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) <= 2 {
			continue
		}
		if _, stop := stopWords[m]; stop {
			continue
		}
		tokens = append(tokens, m)
	}
	return tokens
}
