// Package orchestrator selects applicable searchers for a query, runs them
// concurrently, merges and globally ranks their results, and enforces
// max_results — plus an enhanced variant layering a whole-query cache, an
// index-driven fast path, and a profiler on top, per spec.md §4.2/§4.7.
package orchestrator

import (
	"sort"
	"sync"

	engineerrors "github.com/Aman-CERP/githound-engine/internal/errors"
	"github.com/Aman-CERP/githound-engine/pkg/searcher"
)

// Registry holds the set of searchers an Orchestrator fans queries out to.
// Safe for concurrent registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	searchers map[string]searcher.Searcher
	order     []string
}

// NewRegistry returns an empty searcher registry.
func NewRegistry() *Registry {
	return &Registry{searchers: make(map[string]searcher.Searcher)}
}

// RegisterSearcher adds s under its Name(). Registering a second searcher
// under a name already in use is an error, per spec.md §4.2.
func (r *Registry) RegisterSearcher(s searcher.Searcher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := s.Name()
	if _, exists := r.searchers[name]; exists {
		return engineerrors.New(engineerrors.ErrCodeDuplicateName,
			"searcher already registered: "+name, nil)
	}
	r.searchers[name] = s
	r.order = append(r.order, name)
	return nil
}

// UnregisterSearcher removes the searcher registered under name, if any.
func (r *Registry) UnregisterSearcher(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.searchers[name]; !ok {
		return
	}
	delete(r.searchers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// ListSearchers returns every registered searcher's name, sorted
// alphabetically.
func (r *Registry) ListSearchers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	sort.Strings(out)
	return out
}

// GetSearcherByName returns the searcher registered under name, or
// (nil, false) if none is.
func (r *Registry) GetSearcherByName(name string) (searcher.Searcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.searchers[name]
	return s, ok
}

// all returns every registered searcher in registration order, the order
// new searchers were added (stable for "per-searcher order" ties at the
// global sort, per spec.md §5).
func (r *Registry) all() []searcher.Searcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]searcher.Searcher, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.searchers[name])
	}
	return out
}
