// Package ranking implements the BM25 relevance ranker and the multi-factor
// relevance engine that combine to score SearchResults before they reach the
// orchestrator's global sort.
package ranking

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Aman-CERP/githound-engine/pkg/index"
	"github.com/Aman-CERP/githound-engine/pkg/model"
)

// BM25Document is one document the ranker indexes: an opaque ID plus the
// text BM25 scores against.
type BM25Document struct {
	ID   string
	Text string
}

// BM25Ranker is a probabilistic relevance ranker over a batch of documents.
// It is re-indexed per ranking call (RankResults), not incrementally
// maintained like pkg/index.InvertedIndex; it exists purely to turn a batch
// of already-found results into BM25-weighted scores.
type BM25Ranker struct {
	K1 float64
	B  float64

	mu           sync.Mutex
	docFreqs     map[string]int
	docLengths   map[string]int
	docTokens    map[string][]string
	avgDocLength float64
	numDocs      int
	idfCache     map[string]float64
}

// NewBM25Ranker returns a ranker with the spec's default k1=1.5, b=0.75.
func NewBM25Ranker() *BM25Ranker {
	return &BM25Ranker{K1: 1.5, B: 0.75}
}

// IndexDocuments tokenizes every document, records its length, accumulates
// doc_freqs over unique tokens, and recomputes avg_doc_length. It clears the
// IDF cache, matching spec.md §4.4's index_documents.
func (r *BM25Ranker) IndexDocuments(docs []BM25Document) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docFreqs = make(map[string]int)
	r.docLengths = make(map[string]int, len(docs))
	r.docTokens = make(map[string][]string, len(docs))
	r.idfCache = make(map[string]float64)
	r.numDocs = len(docs)

	var totalLen int
	for _, d := range docs {
		tokens := index.Tokenize(d.Text)
		r.docTokens[d.ID] = tokens
		r.docLengths[d.ID] = len(tokens)
		totalLen += len(tokens)

		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			r.docFreqs[t]++
		}
	}
	if r.numDocs > 0 {
		r.avgDocLength = float64(totalLen) / float64(r.numDocs)
	} else {
		r.avgDocLength = 0
	}
}

// idf computes and memoizes ln((N - df + 0.5)/(df + 0.5) + 1) for a term.
// Caller must hold r.mu.
func (r *BM25Ranker) idf(term string) float64 {
	if v, ok := r.idfCache[term]; ok {
		return v
	}
	df := float64(r.docFreqs[term])
	n := float64(r.numDocs)
	v := math.Log((n-df+0.5)/(df+0.5) + 1)
	r.idfCache[term] = v
	return v
}

// Score computes the BM25 score of docID (whose text must already have been
// passed to IndexDocuments) against queryText.
func (r *BM25Ranker) Score(queryText, docID string) float64 {
	queryTokens := index.Tokenize(queryText)
	if len(queryTokens) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	docTokens, ok := r.docTokens[docID]
	if !ok || len(docTokens) == 0 {
		return 0
	}
	tf := make(map[string]int, len(docTokens))
	for _, t := range docTokens {
		tf[t]++
	}

	docLen := float64(r.docLengths[docID])
	avgLen := r.avgDocLength
	if avgLen == 0 {
		avgLen = 1
	}
	lenNorm := (1 - r.B) + r.B*docLen/avgLen

	queried := make(map[string]struct{}, len(queryTokens))
	var score float64
	for _, qt := range queryTokens {
		if _, dup := queried[qt]; dup {
			continue
		}
		queried[qt] = struct{}{}
		count, present := tf[qt]
		if !present {
			continue
		}
		termTF := float64(count)
		score += r.idf(qt) * (termTF * (r.K1 + 1)) / (termTF + r.K1*lenNorm)
	}
	return score
}

// RankedResult pairs a SearchResult with the BM25 score computed for it.
type RankedResult struct {
	Result *model.SearchResult
	BM25   float64
}

// docText builds the document text BM25 scores against: matching line,
// commit message, and author name concatenated, per spec.md §4.4 step 1.
func docText(r *model.SearchResult) string {
	var parts []string
	if r.MatchingLine != "" {
		parts = append(parts, r.MatchingLine)
	}
	if r.CommitInfo != nil {
		if r.CommitInfo.Message != "" {
			parts = append(parts, r.CommitInfo.Message)
		}
		if r.CommitInfo.AuthorName != "" {
			parts = append(parts, r.CommitInfo.AuthorName)
		}
	}
	return strings.Join(parts, " ")
}

// CombinedQueryText concatenates the content/message/author patterns into
// one BM25 query string, per spec.md §4.4 step 3.
func CombinedQueryText(q model.SearchQuery) string {
	var parts []string
	for _, p := range []string{q.ContentPattern, q.MessagePattern, q.AuthorPattern} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// RankResults re-indexes the batch, scores each result's document text
// against the combined query text, and blends relevance_score =
// 0.7*bm25 + 0.3*prior_score where prior is the score assigned upstream.
// It stable-sorts descending by the combined score and returns the reordered
// slice (the same elements, not copies).
func (r *BM25Ranker) RankResults(results []*model.SearchResult, query model.SearchQuery) []*model.SearchResult {
	if len(results) == 0 {
		return results
	}

	docs := make([]BM25Document, len(results))
	for i, res := range results {
		docs[i] = BM25Document{ID: resultDocID(res, i), Text: docText(res)}
	}
	r.IndexDocuments(docs)

	queryText := CombinedQueryText(query)

	type scored struct {
		res   *model.SearchResult
		score float64
	}
	combined := make([]scored, len(results))
	for i, res := range results {
		bm25 := r.Score(queryText, docs[i].ID)
		prior := res.RelevanceScore
		score := 0.7*bm25 + 0.3*prior
		combined[i] = scored{res: res, score: score}
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].score > combined[j].score
	})

	out := make([]*model.SearchResult, len(combined))
	for i, c := range combined {
		c.res.RelevanceScore = c.score
		c.res.ClampScore()
		out[i] = c.res
	}
	return out
}

// normalizeBM25 squashes an unbounded BM25 score into [0,1] via a simple
// saturating curve so it can be blended with a [0,1] prior score without one
// side dominating. BM25 scores in the 0-10 range (typical for short query
// texts over short documents) map to most of [0,1]; larger scores asymptote
// toward 1.
func normalizeBM25(score float64) float64 {
	if score <= 0 {
		return 0
	}
	return score / (score + 2.0)
}

// resultDocID derives a stable per-result document ID for one ranking call.
func resultDocID(r *model.SearchResult, idx int) string {
	if r.CommitHash != "" {
		return r.CommitHash + "#" + r.FilePath + "#" + strconv.Itoa(idx)
	}
	return "doc#" + strconv.Itoa(idx)
}
