package orchestrator

import (
	"sort"

	"github.com/Aman-CERP/githound-engine/pkg/model"
)

// ProcessOptions configures ResultProcessor.Process's post-ranking pipeline:
// filter by minimum score, group by a key, paginate, per spec.md §4's
// result-processing responsibilities (filter/enrich/group/sort/paginate).
type ProcessOptions struct {
	MinRelevance float64
	GroupBy      GroupKey
	Offset       int
	Limit        int // 0 = unbounded
}

// GroupKey names the axis ProcessOptions.GroupBy groups results by.
type GroupKey string

const (
	GroupByNone       GroupKey = ""
	GroupByFile       GroupKey = "file_path"
	GroupByAuthor     GroupKey = "author"
	GroupByCommit     GroupKey = "commit_hash"
	GroupBySearchType GroupKey = "search_type"
)

// GroupedResults is the output of a grouped Process call: each group
// preserves the relative (already-ranked) order of its members.
type GroupedResults struct {
	Key     string
	Results []*model.SearchResult
}

// ResultProcessor applies post-ranking filtering, grouping, and pagination
// to an already-sorted result slice, the step after Orchestrator.Search and
// before presenting results to a caller.
type ResultProcessor struct{}

// Process filters by MinRelevance, then either paginates a flat slice or
// groups by GroupBy (pagination applies within each group when grouping).
func (ResultProcessor) Process(results []*model.SearchResult, opts ProcessOptions) ([]*model.SearchResult, []GroupedResults) {
	filtered := make([]*model.SearchResult, 0, len(results))
	for _, r := range results {
		if r.RelevanceScore >= opts.MinRelevance {
			filtered = append(filtered, r)
		}
	}

	if opts.GroupBy == GroupByNone {
		return paginate(filtered, opts.Offset, opts.Limit), nil
	}

	groups := groupResults(filtered, opts.GroupBy)
	for i := range groups {
		groups[i].Results = paginate(groups[i].Results, opts.Offset, opts.Limit)
	}
	return nil, groups
}

func groupResults(results []*model.SearchResult, key GroupKey) []GroupedResults {
	order := make([]string, 0)
	byKey := make(map[string][]*model.SearchResult)
	for _, r := range results {
		k := groupKeyValue(r, key)
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], r)
	}
	sort.Strings(order)

	out := make([]GroupedResults, 0, len(order))
	for _, k := range order {
		out = append(out, GroupedResults{Key: k, Results: byKey[k]})
	}
	return out
}

func groupKeyValue(r *model.SearchResult, key GroupKey) string {
	switch key {
	case GroupByFile:
		return r.FilePath
	case GroupByAuthor:
		if r.CommitInfo != nil {
			return r.CommitInfo.AuthorName
		}
		return ""
	case GroupByCommit:
		return r.CommitHash
	case GroupBySearchType:
		return string(r.SearchType)
	default:
		return ""
	}
}

func paginate(results []*model.SearchResult, offset, limit int) []*model.SearchResult {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return nil
	}
	end := len(results)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return results[offset:end]
}
