package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite is the alternate persistent tier: a single kv table in one database
// file. Useful when a repo produces more cache entries than a flat directory
// handles comfortably.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) cache.db under baseDir.
func NewSQLite(baseDir string) (*SQLite, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(baseDir, "cache.db"))
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Get implements Engine.
func (s *SQLite) Get(key string) ([]byte, bool) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Put implements Engine.
func (s *SQLite) Put(key string, value []byte) error {
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
