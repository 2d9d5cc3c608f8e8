package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is a process-local LRU cache whose entries also expire after a TTL.
// It is safe for concurrent use.
type Memory[V any] struct {
	lru *expirable.LRU[string, V]
}

// NewMemory creates a cache holding at most size entries, each living for ttl.
// A size of zero means no size bound; a ttl of zero means entries never expire.
func NewMemory[V any](size int, ttl time.Duration) *Memory[V] {
	return &Memory[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

// Get returns the value stored under key, marking it recently used.
func (m *Memory[V]) Get(_ context.Context, key string) (V, bool, error) {
	v, ok := m.lru.Get(key)
	return v, ok, nil
}

// Set stores value under key, evicting the least recently used entry when full.
func (m *Memory[V]) Set(_ context.Context, key string, value V) error {
	m.lru.Add(key, value)
	return nil
}

// Delete removes key from the cache.
func (m *Memory[V]) Delete(key string) {
	m.lru.Remove(key)
}

// Len returns the number of live entries.
func (m *Memory[V]) Len() int {
	return m.lru.Len()
}
