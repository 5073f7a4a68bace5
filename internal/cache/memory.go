package cache

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries is the default in-memory cache capacity.
const DefaultMemoryEntries = 4096

// MemoryKV is an in-process KV backend on an LRU cache. Suitable for
// single-node deployments and tests; the LRU bound substitutes for the
// storage-side eviction a remote backend would provide.
type MemoryKV struct {
	entries *lru.Cache[string, []byte]
}

var _ KV = (*MemoryKV)(nil)

// NewMemoryKV creates an in-memory backend holding up to maxEntries.
func NewMemoryKV(maxEntries int) *MemoryKV {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	entries, _ := lru.New[string, []byte](maxEntries)
	return &MemoryKV{entries: entries}
}

// Get returns the value stored under storageKey.
func (m *MemoryKV) Get(ctx context.Context, storageKey string) ([]byte, bool, error) {
	value, ok := m.entries.Get(storageKey)
	return value, ok, nil
}

// Set stores value under storageKey. The safety TTL is ignored; the LRU
// bound and the store's lazy expiry handle reclamation.
func (m *MemoryKV) Set(ctx context.Context, storageKey string, value []byte, safetyTTL time.Duration) error {
	m.entries.Add(storageKey, value)
	return nil
}

// Delete removes the entry under storageKey.
func (m *MemoryKV) Delete(ctx context.Context, storageKey string) error {
	m.entries.Remove(storageKey)
	return nil
}

// DeleteMatching removes every entry whose partition component contains
// partitionSubstr. An empty substring matches everything.
func (m *MemoryKV) DeleteMatching(ctx context.Context, partitionSubstr string) (int, error) {
	removed := 0
	for _, key := range m.entries.Keys() {
		if strings.Contains(partitionOf(key), partitionSubstr) {
			m.entries.Remove(key)
			removed++
		}
	}
	return removed, nil
}

// Close purges all entries.
func (m *MemoryKV) Close() error {
	m.entries.Purge()
	return nil
}

// partitionOf extracts the partition component of a storage key.
func partitionOf(storageKey string) string {
	if i := strings.LastIndex(storageKey, "/"); i >= 0 {
		return storageKey[:i]
	}
	return storageKey
}
