// Package async provides background processing infrastructure for the
// incremental commit indexer.
package async

import (
	"sync"
	"time"
)

// IndexingStatus represents the overall indexing state.
type IndexingStatus string

const (
	// StatusIndexing indicates indexing is in progress.
	StatusIndexing IndexingStatus = "indexing"
	// StatusReady indicates indexing is complete and search is available.
	StatusReady IndexingStatus = "ready"
	// StatusError indicates indexing failed with an error.
	StatusError IndexingStatus = "error"
)

// IndexingStage represents the current stage of a build_incremental_index run.
type IndexingStage string

const (
	// StageDiscovering indicates enumerating new commits since the last build.
	StageDiscovering IndexingStage = "discovering_commits"
	// StageContentIndex indicates building the content postings index.
	StageContentIndex IndexingStage = "building_content_index"
	// StageMessageIndex indicates building the commit-message postings index.
	StageMessageIndex IndexingStage = "building_message_index"
	// StageAuthorIndex indicates building the author postings index.
	StageAuthorIndex IndexingStage = "building_author_index"
	// StagePersisting indicates writing indexes to the on-disk cache dir.
	StagePersisting IndexingStage = "persisting"
)

// IndexProgressSnapshot is an immutable snapshot of indexing progress.
type IndexProgressSnapshot struct {
	Status           string  `json:"status"`
	Stage            string  `json:"stage"`
	CommitsTotal     int     `json:"commits_total"`
	CommitsProcessed int     `json:"commits_processed"`
	ProgressPct      float64 `json:"progress_pct"`
	ElapsedSeconds   int     `json:"elapsed_seconds"`
	ErrorMessage     string  `json:"error_message,omitempty"`
}

// IndexProgress provides thread-safe tracking of indexing progress.
// build_incremental_index reports progress every 100 commits via this
// tracker; callers poll Snapshot for a consistent read.
type IndexProgress struct {
	mu sync.RWMutex

	status           IndexingStatus
	stage            IndexingStage
	commitsTotal     int
	commitsProcessed int
	startTime        time.Time
	errorMessage     string
}

// NewIndexProgress creates a new progress tracker initialized for indexing.
func NewIndexProgress() *IndexProgress {
	return &IndexProgress{
		status:    StatusIndexing,
		stage:     StageDiscovering,
		startTime: time.Now(),
	}
}

// SetStage updates the current indexing stage and resets the total count.
func (p *IndexProgress) SetStage(stage IndexingStage, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stage = stage
	p.commitsTotal = total
}

// UpdateCommits updates the number of commits processed so far.
func (p *IndexProgress) UpdateCommits(processed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.commitsProcessed = processed
}

// SetError marks the indexing as failed with an error message.
func (p *IndexProgress) SetError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusError
	p.errorMessage = message
}

// SetReady marks the indexing as complete and ready for search.
func (p *IndexProgress) SetReady() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusReady
}

// IsIndexing returns true if indexing is still in progress.
func (p *IndexProgress) IsIndexing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.status == StatusIndexing
}

// Snapshot returns an immutable copy of the current progress state.
func (p *IndexProgress) Snapshot() IndexProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var progressPct float64
	if p.commitsTotal > 0 {
		progressPct = float64(p.commitsProcessed) / float64(p.commitsTotal) * 100.0
	}

	return IndexProgressSnapshot{
		Status:           string(p.status),
		Stage:            string(p.stage),
		CommitsTotal:     p.commitsTotal,
		CommitsProcessed: p.commitsProcessed,
		ProgressPct:      progressPct,
		ElapsedSeconds:   int(time.Since(p.startTime).Seconds()),
		ErrorMessage:     p.errorMessage,
	}
}
