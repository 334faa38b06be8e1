package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// writerLock provides cross-process file locking so that at most one
// build_incremental_index run writes a repo's index files at a time, per
// spec.md §5's single-writer invariant. The lock file lives alongside the
// three .idx files and commits.json under cacheDir.
type writerLock struct {
	path string
	flk  *flock.Flock
}

func newWriterLock(cacheDir string) *writerLock {
	lockPath := filepath.Join(cacheDir, ".index.lock")
	return &writerLock{path: lockPath, flk: flock.New(lockPath)}
}

// Lock acquires the exclusive writer lock, blocking until it is free.
func (l *writerLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create index lock dir: %w", err)
	}
	if err := l.flk.Lock(); err != nil {
		return fmt.Errorf("acquire index writer lock: %w", err)
	}
	return nil
}

// Unlock releases the writer lock. Safe to call even if Lock failed.
func (l *writerLock) Unlock() error {
	if !l.flk.Locked() {
		return nil
	}
	return l.flk.Unlock()
}
