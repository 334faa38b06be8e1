package index

import (
	"math"
	"sort"
	"sync"
)

// Posting is one (document, position) occurrence of a term.
type Posting struct {
	DocID    string
	Position int
}

// ScoredDoc is one result from InvertedIndex.Search.
type ScoredDoc struct {
	DocID string
	Score float64
}

// InvertedIndex is a term -> postings map with the document-frequency and
// document-length bookkeeping an IDF-weighted search needs. It is safe for
// concurrent use.
type InvertedIndex struct {
	mu sync.RWMutex

	postings    map[string][]Posting
	docFreq     map[string]int
	docLengths  map[string]int
	docMetadata map[string]map[string]any
	totalDocs   int
}

// NewInvertedIndex returns an empty index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		postings:    make(map[string][]Posting),
		docFreq:     make(map[string]int),
		docLengths:  make(map[string]int),
		docMetadata: make(map[string]map[string]any),
	}
}

// AddDocument tokenizes text and records its postings under docID. Calling
// AddDocument again with the same docID adds a second, independent entry to
// totalDocs bookkeeping; callers that reindex a document must Remove it
// first.
func (idx *InvertedIndex) AddDocument(docID, text string, metadata map[string]any) {
	tokens := Tokenize(text)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.totalDocs++
	idx.docLengths[docID] = len(tokens)
	if metadata != nil {
		idx.docMetadata[docID] = metadata
	}

	seen := make(map[string]struct{})
	for pos, term := range tokens {
		idx.postings[term] = append(idx.postings[term], Posting{DocID: docID, Position: pos})
		if _, ok := seen[term]; !ok {
			idx.docFreq[term]++
			seen[term] = struct{}{}
		}
	}
}

// Remove deletes a document's postings, document-frequency, and length
// entries so it can be safely reindexed.
func (idx *InvertedIndex) Remove(docID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.docLengths[docID]; !ok {
		return
	}
	delete(idx.docLengths, docID)
	delete(idx.docMetadata, docID)
	idx.totalDocs--

	for term, postings := range idx.postings {
		filtered := postings[:0]
		removed := false
		for _, p := range postings {
			if p.DocID == docID {
				removed = true
				continue
			}
			filtered = append(filtered, p)
		}
		if removed {
			idx.docFreq[term]--
			if len(filtered) == 0 {
				delete(idx.postings, term)
				delete(idx.docFreq, term)
			} else {
				idx.postings[term] = filtered
			}
		}
	}
}

// Search scores every document containing at least one query token using
// idf = log((totalDocs+1)/(docFreq[term]+1)) summed per matched term, and
// returns the top `limit` documents by descending score.
func (idx *InvertedIndex) Search(queryText string, limit int) []ScoredDoc {
	tokens := Tokenize(queryText)
	if len(tokens) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	scores := make(map[string]float64)
	for _, term := range tokens {
		postings, ok := idx.postings[term]
		if !ok {
			continue
		}
		df := idx.docFreq[term]
		idf := math.Log(float64(idx.totalDocs+1) / float64(df+1))

		counted := make(map[string]int)
		for _, p := range postings {
			counted[p.DocID]++
		}
		for docID, count := range counted {
			scores[docID] += idf * float64(count)
		}
	}

	results := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		results = append(results, ScoredDoc{DocID: docID, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Metadata returns the stored metadata for docID, if any.
func (idx *InvertedIndex) Metadata(docID string) (map[string]any, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	m, ok := idx.docMetadata[docID]
	return m, ok
}

// Stats summarizes index size for diagnostics.
type Stats struct {
	TotalDocs  int
	TotalTerms int
	AvgDocLen  float64
}

func (idx *InvertedIndex) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var totalLen int
	for _, l := range idx.docLengths {
		totalLen += l
	}
	avg := 0.0
	if len(idx.docLengths) > 0 {
		avg = float64(totalLen) / float64(len(idx.docLengths))
	}
	return Stats{
		TotalDocs:  idx.totalDocs,
		TotalTerms: len(idx.postings),
		AvgDocLen:  avg,
	}
}
