// Package search implements the multi-index hybrid merge engine: per-scope
// access filters, concurrent fan-out, per-index score normalization, and
// deterministic merge ordering, plus the cache-aside wrapper that makes the
// whole pipeline reusable across repeated and multi-user queries.
package search

import (
	"context"
	"time"

	"github.com/docuchat/searchcore/internal/model"
)

// Index labels recorded on results for diagnostics.
const (
	IndexPersonal = "personal"
	IndexGroup    = "group"
	IndexPublic   = "public"
)

// Searcher executes a search query and returns merged ranked results.
type Searcher interface {
	Search(ctx context.Context, q model.Query) ([]model.Result, error)
}

// EngineConfig configures the merge engine.
type EngineConfig struct {
	// DefaultTopN is applied when a query omits top_n (default: 10).
	DefaultTopN int

	// MaxTopN caps top_n (default: 100).
	MaxTopN int

	// IndexTimeout bounds each backend index query independently.
	IndexTimeout time.Duration

	// EmbedTimeout bounds the embedding call that gates the whole search.
	EmbedTimeout time.Duration
}

// DefaultEngineConfig returns sensible defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultTopN:  10,
		MaxTopN:      100,
		IndexTimeout: 5 * time.Second,
		EmbedTimeout: 10 * time.Second,
	}
}

// ApplyDefaults clamps the query's top_n into the configured range. The
// cache layer applies the same clamping before keying so a defaulted query
// and its explicit equivalent share a cache entry.
func (c EngineConfig) ApplyDefaults(q model.Query) model.Query {
	if q.TopN <= 0 {
		q.TopN = c.DefaultTopN
	}
	if q.TopN > c.MaxTopN {
		q.TopN = c.MaxTopN
	}
	return q
}
