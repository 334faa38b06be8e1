package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	engineerrors "github.com/Aman-CERP/githound-engine/internal/errors"
)

// validateIntegrity checks an on-disk index file before opening it. A
// missing file is not an error; a corrupt one is reported so the caller can
// discard and rebuild.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='terms'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("cannot query schema: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("table 'terms' missing")
	}
	return nil
}

// Store persists an InvertedIndex to a SQLite file using WAL mode for
// concurrent-reader safety while a background indexer writes.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS terms (
	term TEXT NOT NULL,
	doc_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	field TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_terms_term ON terms(term);

CREATE TABLE IF NOT EXISTS doc_freq (
	term TEXT PRIMARY KEY,
	freq INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS doc_lengths (
	doc_id TEXT PRIMARY KEY,
	len INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS doc_metadata (
	doc_id TEXT PRIMARY KEY,
	json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// OpenStore opens (creating if absent) a SQLite-backed index file at path.
// A corrupt file is removed and rebuilt from scratch rather than surfaced as
// a fatal error.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index dir %s: %w", dir, err)
		}
	}

	if err := validateIntegrity(path); err != nil {
		corruptErr := engineerrors.IndexCorruptError("discarding corrupt index file, will rebuild from scratch", err).
			WithDetail("path", path)
		slog.Warn(corruptErr.Error(), slog.String("path", path), slog.String("cause", err.Error()))
		_ = os.Remove(path)
		_ = os.Remove(path + "-wal")
		_ = os.Remove(path + "-shm")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
		"PRAGMA temp_store = MEMORY",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Save writes every document and posting in idx to the store, replacing any
// prior contents, inside a single transaction.
func (s *Store) Save(idx *InvertedIndex) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{"DELETE FROM terms", "DELETE FROM doc_freq", "DELETE FROM doc_lengths", "DELETE FROM doc_metadata"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear table: %w", err)
		}
	}

	termStmt, err := tx.Prepare(`INSERT INTO terms(term, doc_id, position, field) VALUES (?, ?, ?, 'content')`)
	if err != nil {
		return err
	}
	defer termStmt.Close()

	for term, postings := range idx.postings {
		for _, p := range postings {
			if _, err := termStmt.Exec(term, p.DocID, p.Position); err != nil {
				return fmt.Errorf("insert term %q: %w", term, err)
			}
		}
	}

	freqStmt, err := tx.Prepare(`INSERT INTO doc_freq(term, freq) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer freqStmt.Close()
	for term, freq := range idx.docFreq {
		if _, err := freqStmt.Exec(term, freq); err != nil {
			return fmt.Errorf("insert doc_freq %q: %w", term, err)
		}
	}

	lenStmt, err := tx.Prepare(`INSERT INTO doc_lengths(doc_id, len) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer lenStmt.Close()
	for docID, length := range idx.docLengths {
		if _, err := lenStmt.Exec(docID, length); err != nil {
			return fmt.Errorf("insert doc_lengths %q: %w", docID, err)
		}
	}

	metaStmt, err := tx.Prepare(`INSERT INTO doc_metadata(doc_id, json) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer metaStmt.Close()
	for docID, md := range idx.docMetadata {
		raw, err := json.Marshal(md)
		if err != nil {
			continue
		}
		if _, err := metaStmt.Exec(docID, string(raw)); err != nil {
			return fmt.Errorf("insert doc_metadata %q: %w", docID, err)
		}
	}

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key, value) VALUES ('total_docs', ?)`, fmt.Sprint(idx.totalDocs)); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	_, err = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

// Load rebuilds an InvertedIndex from the store's current contents.
func (s *Store) Load() (*InvertedIndex, error) {
	idx := NewInvertedIndex()

	rows, err := s.db.Query(`SELECT term, doc_id, position FROM terms`)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	for rows.Next() {
		var term, docID string
		var position int
		if err := rows.Scan(&term, &docID, &position); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan term: %w", err)
		}
		idx.postings[term] = append(idx.postings[term], Posting{DocID: docID, Position: position})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	freqRows, err := s.db.Query(`SELECT term, freq FROM doc_freq`)
	if err != nil {
		return nil, fmt.Errorf("query doc_freq: %w", err)
	}
	for freqRows.Next() {
		var term string
		var freq int
		if err := freqRows.Scan(&term, &freq); err != nil {
			freqRows.Close()
			return nil, fmt.Errorf("scan doc_freq: %w", err)
		}
		idx.docFreq[term] = freq
	}
	freqRows.Close()

	lenRows, err := s.db.Query(`SELECT doc_id, len FROM doc_lengths`)
	if err != nil {
		return nil, fmt.Errorf("query doc_lengths: %w", err)
	}
	for lenRows.Next() {
		var docID string
		var length int
		if err := lenRows.Scan(&docID, &length); err != nil {
			lenRows.Close()
			return nil, fmt.Errorf("scan doc_lengths: %w", err)
		}
		idx.docLengths[docID] = length
	}
	lenRows.Close()

	metaRows, err := s.db.Query(`SELECT doc_id, json FROM doc_metadata`)
	if err != nil {
		return nil, fmt.Errorf("query doc_metadata: %w", err)
	}
	for metaRows.Next() {
		var docID, raw string
		if err := metaRows.Scan(&docID, &raw); err != nil {
			metaRows.Close()
			return nil, fmt.Errorf("scan doc_metadata: %w", err)
		}
		var md map[string]any
		if err := json.Unmarshal([]byte(raw), &md); err == nil {
			idx.docMetadata[docID] = md
		}
	}
	metaRows.Close()

	idx.totalDocs = len(idx.docLengths)
	return idx, nil
}

// Close flushes WAL state and closes the underlying database handle.
func (s *Store) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}
