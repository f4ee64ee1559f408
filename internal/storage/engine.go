// Package storage implements the two-tier cache: a bounded in-memory LRU in
// front of a persistent backend (one file per key, or a sqlite table).
// Values are opaque byte slices; callers own the serialization.
package storage

import (
	"fmt"
	"strings"

	"xlate/internal/config"
)

// Engine is the storage contract shared by every tier.
type Engine interface {
	// Get returns the value for key, reporting whether it was present.
	// A miss is not an error.
	Get(key string) ([]byte, bool)
	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte) error
}

// Tiered layers a fast cache over a persistent backend: reads hit the cache
// first and backfill it from the backend, writes go through to both (cache
// first).
type Tiered struct {
	cache   Engine
	backend Engine
}

// NewTiered builds a tiered engine from an explicit cache and backend.
func NewTiered(cache, backend Engine) *Tiered {
	return &Tiered{cache: cache, backend: backend}
}

// Get implements Engine.
func (t *Tiered) Get(key string) ([]byte, bool) {
	if v, ok := t.cache.Get(key); ok {
		return v, true
	}
	if v, ok := t.backend.Get(key); ok {
		_ = t.cache.Put(key, v)
		return v, true
	}
	return nil, false
}

// Put implements Engine.
func (t *Tiered) Put(key string, value []byte) error {
	if err := t.cache.Put(key, value); err != nil {
		return err
	}
	return t.backend.Put(key, value)
}

// Open builds the configured two-tier engine: an LRU memory tier over the
// file or sqlite backend named by cfg.Storage.Backend.
func Open(cfg *config.Config) (Engine, error) {
	mem, err := NewMemory(cfg.Storage.MemoryEntries)
	if err != nil {
		return nil, err
	}
	var backend Engine
	switch cfg.Storage.Backend {
	case "sqlite":
		backend, err = NewSQLite(cfg.CacheDir())
	default:
		backend, err = NewFile(cfg.CacheDir(), cfg.Storage.Compress)
	}
	if err != nil {
		return nil, err
	}
	return NewTiered(mem, backend), nil
}

// RepoNameFromPkgPath derives the cache key of the repository owning a
// package path: the second and third segments of the slash-split path
// ("github.com/org/repo/pkg" -> "org/repo"), or the whole path when it is
// too short to carry a host prefix.
func RepoNameFromPkgPath(pkgPath string) string {
	parts := strings.Split(pkgPath, "/")
	if len(parts) < 3 {
		return pkgPath
	}
	return fmt.Sprintf("%s/%s", parts[1], parts[2])
}
