package orchestrator

import (
	"github.com/Aman-CERP/githound-engine/internal/config"
	"github.com/Aman-CERP/githound-engine/pkg/ranking"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
	"github.com/Aman-CERP/githound-engine/pkg/searcher"
)

// NewDefault builds an Orchestrator with every concrete searcher this engine
// ships, gated by cfg.Searchers, and wires ranking per cfg.Ranking. matcher
// is the caller-supplied line-matcher collaborator passed to the content and
// advanced searchers.
func NewDefault(cfg *config.EngineConfig, matcher repo.LineMatcher) (*Orchestrator, error) {
	o := New()

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	basic := []searcher.Searcher{
		searcher.NewCommitHashSearcher(),
		searcher.NewAuthorSearcher(),
		searcher.NewMessageSearcher(),
		searcher.NewDateRangeSearcher(),
		searcher.NewFilePathSearcher(),
		searcher.NewFileTypeSearcher(),
		searcher.NewContentSearcher(matcher),
	}

	advanced := []searcher.Searcher{
		searcher.NewBranchSearcher(),
		searcher.NewDiffSearcher(),
		searcher.NewHistorySearcher(),
		searcher.NewPatternSearcher(),
		searcher.NewTagSearcher(),
		searcher.NewStatisticalSearcher(),
		searcher.NewAdvancedSearcher(matcher),
	}

	var active []searcher.Searcher
	if cfg.Searchers.EnableBasicSearchers {
		active = append(active, basic...)
	}
	if cfg.Searchers.EnableFuzzySearch {
		active = append(active, searcher.NewFuzzySearcher(maxWorkers))
	}
	if cfg.Searchers.EnableAdvancedSearchers {
		active = append(active, advanced...)
	}

	for _, s := range active {
		if err := o.RegisterSearcher(s); err != nil {
			return nil, err
		}
	}

	if cfg.Ranking.Enabled {
		weights := cfg.Ranking.Weights
		weights.Normalize()
		o.Ranking = ranking.NewEngine(weights)
		o.BM25 = ranking.NewBM25Ranker()
	}

	return o, nil
}
