package index

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Aman-CERP/githound-engine/internal/async"
	engineerrors "github.com/Aman-CERP/githound-engine/internal/errors"
	"github.com/Aman-CERP/githound-engine/pkg/repo"
)

// storeRetry governs transient sqlite contention ("database is locked")
// encountered while persisting an index store, per spec.md §7's "cache/index
// backend error" handling: a handful of short backoffs before giving up.
var storeRetry = engineerrors.RetryConfig{
	MaxRetries:   3,
	InitialDelay: 25 * time.Millisecond,
	MaxDelay:     200 * time.Millisecond,
	Multiplier:   2.0,
	Jitter:       true,
}

const (
	maxContentCommits = 1000
	maxBlobSize        = 1 << 20 // 1MB
	progressEvery       = 100
)

// BuildStats summarizes one build_incremental_index run.
type BuildStats struct {
	Status          string // "up_to_date" or "indexed"
	CommitsIndexed  int
	TotalCommits    int
}

// commitsMeta is the `<repo_hash>_commits.json` persisted alongside the
// three index files.
type commitsMeta struct {
	Commits       []string   `json:"commits"`
	LastIndexTime *time.Time `json:"last_index_time"`
}

// IncrementalIndexer maintains content, message, and author indexes for one
// repository, persisted under CacheDir keyed by a hash of the repo's real
// path.
type IncrementalIndexer struct {
	CacheDir string
	RepoPath string

	content *InvertedIndex
	message *InvertedIndex
	author  *InvertedIndex
	indexed map[string]struct{}
	lastRun *time.Time
}

// NewIncrementalIndexer constructs an indexer for one repository's cache.
func NewIncrementalIndexer(cacheDir, repoPath string) *IncrementalIndexer {
	return &IncrementalIndexer{
		CacheDir: cacheDir,
		RepoPath: repoPath,
		content:  NewInvertedIndex(),
		message:  NewInvertedIndex(),
		author:   NewInvertedIndex(),
		indexed:  make(map[string]struct{}),
	}
}

func (ix *IncrementalIndexer) repoHash() string {
	sum := md5.Sum([]byte(ix.RepoPath))
	return hex.EncodeToString(sum[:])[:8]
}

// GetIndexPath returns <cache_dir>/<repo_hash>_<kind>.idx.
func (ix *IncrementalIndexer) GetIndexPath(kind string) string {
	return filepath.Join(ix.CacheDir, fmt.Sprintf("%s_%s.idx", ix.repoHash(), kind))
}

func (ix *IncrementalIndexer) commitsMetaPath() string {
	return filepath.Join(ix.CacheDir, fmt.Sprintf("%s_commits.json", ix.repoHash()))
}

// LoadIndexes attempts to load all three indexes plus commits.json. It
// returns true only if every load succeeds; any partial failure leaves the
// indexer at its prior in-memory state.
func (ix *IncrementalIndexer) LoadIndexes() bool {
	content, ok1 := loadIndex(ix.GetIndexPath("content"))
	message, ok2 := loadIndex(ix.GetIndexPath("message"))
	author, ok3 := loadIndex(ix.GetIndexPath("author"))
	if !ok1 || !ok2 || !ok3 {
		return false
	}

	raw, err := os.ReadFile(ix.commitsMetaPath())
	if err != nil {
		return false
	}
	var meta commitsMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return false
	}

	ix.content, ix.message, ix.author = content, message, author
	ix.indexed = make(map[string]struct{}, len(meta.Commits))
	for _, h := range meta.Commits {
		ix.indexed[h] = struct{}{}
	}
	ix.lastRun = meta.LastIndexTime
	return true
}

// loadIndex loads one index file, returning ok=false without raising on a
// missing or corrupt file.
func loadIndex(path string) (*InvertedIndex, bool) {
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}
	if err := validateIntegrity(path); err != nil {
		return nil, false
	}
	store, err := OpenStore(path)
	if err != nil {
		return nil, false
	}
	defer store.Close()
	idx, err := store.Load()
	if err != nil {
		return nil, false
	}
	return idx, true
}

func (ix *IncrementalIndexer) persist() error {
	if err := os.MkdirAll(ix.CacheDir, 0o755); err != nil {
		return err
	}

	lock := newWriterLock(ix.CacheDir)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock index for writing: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	for kind, idx := range map[string]*InvertedIndex{"content": ix.content, "message": ix.message, "author": ix.author} {
		kind, idx := kind, idx
		err := engineerrors.Retry(context.Background(), storeRetry, func() error {
			store, err := OpenStore(ix.GetIndexPath(kind))
			if err != nil {
				return fmt.Errorf("open %s store: %w", kind, err)
			}
			saveErr := store.Save(idx)
			closeErr := store.Close()
			if saveErr != nil {
				return fmt.Errorf("save %s store: %w", kind, saveErr)
			}
			if closeErr != nil {
				return fmt.Errorf("close %s store: %w", kind, closeErr)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	commits := make([]string, 0, len(ix.indexed))
	for h := range ix.indexed {
		commits = append(commits, h)
	}
	raw, err := json.Marshal(commitsMeta{Commits: commits, LastIndexTime: ix.lastRun})
	if err != nil {
		return err
	}
	return os.WriteFile(ix.commitsMetaPath(), raw, 0o644)
}

// Build runs build_incremental_index against r: it loads existing indexes,
// enumerates up to maxCommits commits on branch, indexes whatever hasn't
// been indexed yet, and persists the result. progress, if non-nil, receives
// a commit-count update every 100 newly processed commits.
func (ix *IncrementalIndexer) Build(r repo.Repository, branch string, progress *async.IndexProgress, maxCommits int) (BuildStats, error) {
	ix.LoadIndexes()

	if maxCommits <= 0 {
		maxCommits = 10000
	}
	commits, err := r.IterCommits(repo.IterOptions{Ref: branch, MaxCount: maxCommits})
	if err != nil {
		return BuildStats{}, fmt.Errorf("iterate commits: %w", err)
	}

	var fresh []*repo.Commit
	for _, c := range commits {
		if _, ok := ix.indexed[c.Hexsha]; !ok {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		return BuildStats{Status: "up_to_date", TotalCommits: len(ix.indexed)}, nil
	}

	if progress != nil {
		progress.SetStage(async.StageDiscovering, len(fresh))
	}

	// fresh is newest-first (the order Repository.IterCommits returns), so
	// the most recent maxContentCommits entries are a prefix, not a suffix.
	contentCutoff := maxContentCommits
	if contentCutoff > len(fresh) {
		contentCutoff = len(fresh)
	}

	for i, c := range fresh {
		ix.message.AddDocument(c.Hexsha, c.Message, map[string]any{"hash": c.Hexsha})
		ix.author.AddDocument(c.Hexsha, c.Author.Name+" "+c.Author.Email, map[string]any{"hash": c.Hexsha})

		if i < contentCutoff {
			ix.indexCommitContent(c)
		}

		ix.indexed[c.Hexsha] = struct{}{}

		if progress != nil && (i+1)%progressEvery == 0 {
			progress.SetStage(async.StageContentIndex, len(fresh))
			progress.UpdateCommits(i + 1)
		}
	}

	now := time.Now()
	ix.lastRun = &now

	if progress != nil {
		progress.SetStage(async.StagePersisting, len(fresh))
	}
	if err := ix.persist(); err != nil {
		return BuildStats{}, fmt.Errorf("persist indexes: %w", err)
	}

	return BuildStats{
		Status:         "indexed",
		CommitsIndexed: len(fresh),
		TotalCommits:   len(ix.indexed),
	}, nil
}

// indexCommitContent adds one content document per changed file blob ≤1MB,
// skipping files it cannot read or decode; a per-file failure never aborts
// the commit.
func (ix *IncrementalIndexer) indexCommitContent(c *repo.Commit) {
	if c.Diff == nil {
		return
	}
	diffs, err := c.Diff(nil)
	if err != nil {
		return
	}
	for _, d := range diffs {
		if d.BBlob == nil || d.BBlob.Size > maxBlobSize {
			continue
		}
		text := string(d.BBlob.Data)
		docID := c.Hexsha + ":" + d.BPath
		ix.content.AddDocument(docID, text, map[string]any{
			"hash": c.Hexsha,
			"path": d.BPath,
		})
	}
}

// SearchContent, SearchMessages, SearchAuthors delegate to the matching
// index.
func (ix *IncrementalIndexer) SearchContent(query string, limit int) []ScoredDoc {
	return ix.content.Search(query, limit)
}

func (ix *IncrementalIndexer) SearchMessages(query string, limit int) []ScoredDoc {
	return ix.message.Search(query, limit)
}

func (ix *IncrementalIndexer) SearchAuthors(query string, limit int) []ScoredDoc {
	return ix.author.Search(query, limit)
}
