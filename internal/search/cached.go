package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docuchat/searchcore/internal/cache"
	apperrors "github.com/docuchat/searchcore/internal/errors"
	"github.com/docuchat/searchcore/internal/fingerprint"
	"github.com/docuchat/searchcore/internal/model"
)

// CachedSearcher wraps a Searcher with the document-set-aware result
// cache. On every call it recomputes the scope fingerprints, derives the
// cache key and partition, and only on a miss delegates to the engine.
//
// Correctness never depends on eager invalidation: any change to the
// visible document set changes a fingerprint, which changes the key, so a
// stale entry simply stops being addressed.
type CachedSearcher struct {
	engine       Searcher
	fingerprints *fingerprint.Service
	store        *cache.Store
	config       EngineConfig
}

var _ Searcher = (*CachedSearcher)(nil)

// NewCachedSearcher wraps engine with the cache layer. The config must
// match the engine's so default clamping agrees between key and search.
func NewCachedSearcher(
	engine Searcher,
	fingerprints *fingerprint.Service,
	store *cache.Store,
	config EngineConfig,
) (*CachedSearcher, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: engine is required", ErrNilDependency)
	}
	if fingerprints == nil {
		return nil, fmt.Errorf("%w: fingerprint service is required", ErrNilDependency)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: cache store is required", ErrNilDependency)
	}
	if config.DefaultTopN <= 0 {
		config = DefaultEngineConfig()
	}
	return &CachedSearcher{
		engine:       engine,
		fingerprints: fingerprints,
		store:        store,
		config:       config,
	}, nil
}

// Search serves from cache when a previous result for the same query and
// the same document-set fingerprints exists, otherwise executes the engine
// and stores the merged result. Hit and miss payloads are structurally
// identical.
func (s *CachedSearcher) Search(ctx context.Context, q model.Query) ([]model.Result, error) {
	if !q.Scope.Valid() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidScope, fmt.Sprintf("invalid scope %q", q.Scope), nil)
	}
	q = s.config.ApplyDefaults(q)

	key := cache.BuildKey(q, s.scopeFingerprints(ctx, q))
	partition := cache.ResolvePartition(q.Scope, q.RequesterID, q.ActiveGroupID, q.ActivePublicWorkspaceID)

	if results, ok := s.store.Get(ctx, key, partition); ok {
		slog.Debug("search cache hit",
			slog.String("partition", partition),
			slog.Int("results", len(results)))
		return results, nil
	}

	results, err := s.engine.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	s.store.Put(ctx, key, partition, results)
	return results, nil
}

// scopeFingerprints computes the fingerprint set applicable to the query's
// scope, in a fixed order: personal, then group, then public.
func (s *CachedSearcher) scopeFingerprints(ctx context.Context, q model.Query) []string {
	var fps []string

	if q.Scope == model.ScopePersonal || q.Scope == model.ScopeAll {
		fps = append(fps, s.fingerprints.Fingerprint(ctx, model.ScopeKindPersonal, q.RequesterID))
	}
	if (q.Scope == model.ScopeGroup || q.Scope == model.ScopeAll) && q.ActiveGroupID != "" {
		fps = append(fps, s.fingerprints.Fingerprint(ctx, model.ScopeKindGroup, q.ActiveGroupID))
	}
	if (q.Scope == model.ScopePublic || q.Scope == model.ScopeAll) && q.ActivePublicWorkspaceID != "" {
		fps = append(fps, s.fingerprints.Fingerprint(ctx, model.ScopeKindPublic, q.ActivePublicWorkspaceID))
	}
	return fps
}
