// Package cache stores generated module text keyed by a digest of the
// source and the layout-relevant configuration, so unchanged inputs
// skip checking and generation entirely.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is an on-disk compile cache backed by a single sqlite file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS modules (
		key        TEXT PRIMARY KEY,
		output     TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Key derives the cache key for one compilation: the source text plus
// every knob that changes the generated layout.
func Key(source string, memoryPages int) string {
	h := sha256.New()
	fmt.Fprintf(h, "pages=%d\n", memoryPages)
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached output for key, if present.
func (s *Store) Get(key string) (string, bool, error) {
	var out string
	err := s.db.QueryRow(`SELECT output FROM modules WHERE key = ?`, key).Scan(&out)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup: %w", err)
	}
	return out, true, nil
}

// Put stores the output for key, replacing any previous entry.
func (s *Store) Put(key, output string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO modules (key, output, created_at) VALUES (?, ?, ?)`,
		key, output, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}
