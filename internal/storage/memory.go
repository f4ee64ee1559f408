package storage

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Memory is the bounded in-memory tier. Eviction is LRU so checkpoint-heavy
// runs keep the hot repos resident without growing without bound.
type Memory struct {
	lru *lru.Cache[string, []byte]
}

// NewMemory creates a memory tier holding at most entries values.
func NewMemory(entries int) (*Memory, error) {
	c, err := lru.New[string, []byte](entries)
	if err != nil {
		return nil, err
	}
	return &Memory{lru: c}, nil
}

// Get implements Engine.
func (m *Memory) Get(key string) ([]byte, bool) {
	return m.lru.Get(key)
}

// Put implements Engine.
func (m *Memory) Put(key string, value []byte) error {
	m.lru.Add(key, value)
	return nil
}
