package orchestrator

// searcherPriority ranks searchers by selectivity, per spec.md §4.7: lower
// numbers are more selective and would run first in a priority-ordered
// (non-parallel) execution plan.
var searcherPriority = map[string]int{
	"commit_hash": 1,
	"date_range":  2,
	"file_path":   3,
	"file_type":   3,
	"author":      4,
	"message":     5,
	"content":     6,
}

// Plan is the ordered execution plan the planner assigns to one query's
// activated searcher names; the orchestrator's concurrent execution already
// compensates for ordering, so Plan exists for callers that want to log or
// reason about expected selectivity rather than to gate scheduling.
type Plan struct {
	Names []string
}

// PlanSearchers assigns each activated searcher name its selectivity
// priority and returns names ordered by priority ascending (most selective
// first); unlisted searchers (the advanced/analytics set) sort last in
// registration order.
func PlanSearchers(names []string) Plan {
	priority := func(name string) int {
		if p, ok := searcherPriority[name]; ok {
			return p
		}
		return 100
	}
	ordered := make([]string, len(names))
	copy(ordered, names)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && priority(ordered[j]) < priority(ordered[j-1]); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return Plan{Names: ordered}
}
