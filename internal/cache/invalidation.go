package cache

import (
	"context"
	"log/slog"

	"github.com/docuchat/searchcore/internal/model"
)

// Invalidator eagerly deletes shared cache entries when documents mutate.
//
// This sweep is a storage-reclamation optimization, not the correctness
// guarantee: correctness comes from fingerprints inside cache keys, which
// drift on any document change regardless of whether this sweep runs.
type Invalidator struct {
	store *Store
}

// NewInvalidator creates an invalidation handler over the cache store.
func NewInvalidator(store *Store) *Invalidator {
	return &Invalidator{store: store}
}

// HandleMutation deletes every cache entry in the partition the mutated
// document's scope maps to.
func (h *Invalidator) HandleMutation(ctx context.Context, ev model.MutationEvent) {
	partition := PartitionForScopeKind(ev.ScopeKind, ev.ScopeID)
	removed := h.store.DeleteWhere(ctx, partition)
	slog.Info("cache invalidated for document mutation",
		slog.String("event_id", ev.EventID),
		slog.String("kind", string(ev.Kind)),
		slog.String("document_id", ev.DocumentID),
		slog.String("partition", partition),
		slog.Int("entries_removed", removed))
}

// Run consumes mutation events until the channel closes or ctx is done.
func (h *Invalidator) Run(ctx context.Context, events <-chan model.MutationEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.HandleMutation(ctx, ev)
		}
	}
}
