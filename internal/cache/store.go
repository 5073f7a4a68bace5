package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/docuchat/searchcore/internal/config"
	"github.com/docuchat/searchcore/internal/model"
)

// KV is the key-value backend the cache store writes through. Storage keys
// are "<partition>/<key>"; DeleteMatching matches a substring against the
// partition component only.
//
// safetyTTL is advisory: backends may use it to bound storage growth, but
// expiry is enforced by the Store comparing the entry's own timestamp at
// read time. Backends are not required to auto-expire.
type KV interface {
	Get(ctx context.Context, storageKey string) ([]byte, bool, error)
	Set(ctx context.Context, storageKey string, value []byte, safetyTTL time.Duration) error
	Delete(ctx context.Context, storageKey string) error
	DeleteMatching(ctx context.Context, partitionSubstr string) (int, error)
	Close() error
}

// Entry is one cached result set with its app-managed expiry.
type Entry struct {
	Key       string         `json:"key"`
	Partition string         `json:"partition"`
	Results   []model.Result `json:"results"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Store caches search result sets, consulting the admin provider on every
// call so an operator toggle takes effect immediately.
//
// Failure policy: read errors degrade to a miss, write and delete errors
// are logged and swallowed. A cache malfunction costs latency, never
// correctness or availability.
type Store struct {
	kv    KV
	admin config.Provider
	now   func() time.Time
}

// NewStore creates a cache store over the given backend and admin provider.
func NewStore(kv KV, admin config.Provider) *Store {
	return &Store{kv: kv, admin: admin, now: time.Now}
}

// Get returns the cached result set for (key, partition), or ok=false on a
// miss. An entry found past its expiry is deleted and reported as a miss;
// there is no background sweeper.
func (s *Store) Get(ctx context.Context, key, partition string) ([]model.Result, bool) {
	if !s.admin.CacheEnabled(ctx) {
		return nil, false
	}

	data, found, err := s.kv.Get(ctx, storageKey(partition, key))
	if err != nil {
		slog.Warn("cache read failed, serving fresh",
			slog.String("partition", partition),
			slog.String("error", err.Error()))
		return nil, false
	}
	if !found {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Warn("cache entry corrupt, dropping",
			slog.String("partition", partition),
			slog.String("error", err.Error()))
		s.Delete(ctx, key, partition)
		return nil, false
	}

	if !entry.ExpiresAt.After(s.now()) {
		slog.Debug("cache entry expired, lazy delete",
			slog.String("partition", partition),
			slog.String("key", key))
		s.Delete(ctx, key, partition)
		return nil, false
	}

	return entry.Results, true
}

// Put stores a result set under (key, partition) with the admin-configured
// TTL. Always overwrites. A no-op while caching is disabled.
func (s *Store) Put(ctx context.Context, key, partition string, results []model.Result) {
	if !s.admin.CacheEnabled(ctx) {
		return
	}

	ttl := s.admin.CacheTTL(ctx)
	now := s.now()
	entry := Entry{
		Key:       key,
		Partition: partition,
		Results:   results,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("cache entry marshal failed",
			slog.String("partition", partition),
			slog.String("error", err.Error()))
		return
	}

	// Safety TTL at 2x bounds backend growth if an entry is never read
	// again; the entry's own ExpiresAt stays authoritative.
	if err := s.kv.Set(ctx, storageKey(partition, key), data, 2*ttl); err != nil {
		slog.Warn("cache write failed",
			slog.String("partition", partition),
			slog.String("error", err.Error()))
	}
}

// Delete removes one entry. Errors are logged, not returned: a failed
// delete leaves a stale entry reachable only until its key drifts via
// fingerprints or its TTL lapses.
func (s *Store) Delete(ctx context.Context, key, partition string) {
	if err := s.kv.Delete(ctx, storageKey(partition, key)); err != nil {
		slog.Warn("cache delete failed",
			slog.String("partition", partition),
			slog.String("error", err.Error()))
	}
}

// DeleteWhere removes every entry whose partition contains the substring.
// Returns the number of entries removed.
func (s *Store) DeleteWhere(ctx context.Context, partitionSubstr string) int {
	n, err := s.kv.DeleteMatching(ctx, partitionSubstr)
	if err != nil {
		slog.Warn("cache bulk delete failed",
			slog.String("partition_match", partitionSubstr),
			slog.String("error", err.Error()))
	}
	return n
}

// Clear removes every entry across all partitions (administrative sweep).
func (s *Store) Clear(ctx context.Context) int {
	return s.DeleteWhere(ctx, "")
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.kv.Close()
}

func storageKey(partition, key string) string {
	return partition + "/" + key
}
