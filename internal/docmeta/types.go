// Package docmeta tracks document identity, version, ownership, and sharing.
// It is the source the fingerprint service and the search engine's scope
// filters read from.
package docmeta

import (
	"context"

	"github.com/docuchat/searchcore/internal/model"
)

// Document is one tracked document with its ownership scope.
type Document struct {
	ID       string
	Version  int
	FileName string

	// OwnerKind and OwnerID identify the owning scope (personal user,
	// group, or public workspace).
	OwnerKind model.ScopeKind
	OwnerID   string
}

// Share records a sharing relationship from a document to a principal.
type Share struct {
	DocumentID  string
	PrincipalID string
	Status      string // e.g. "pending", "approved"
}

// DocumentStore lists the documents visible under one ownership scope.
//
// Visibility rules per scope kind:
//   - personal: owned by the user OR shared with the user at approved status
//   - group: owned by the group OR shared with the group at approved status
//   - public: owned by the workspace (no sharing concept)
type DocumentStore interface {
	ListDocuments(ctx context.Context, kind model.ScopeKind, scopeID string) ([]model.DocumentRef, error)
}

// VisibilityStore reads a user's visible public workspace set.
type VisibilityStore interface {
	VisiblePublicWorkspaceIDs(ctx context.Context, requesterID string) ([]string, error)
}
