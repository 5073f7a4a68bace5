// Package model defines the shared domain types for hybrid document search:
// queries, scopes, ranked results, and document mutation events.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scope is the ownership boundary a search is evaluated against.
type Scope string

const (
	// ScopePersonal searches only documents owned by or shared with the requester.
	ScopePersonal Scope = "personal"
	// ScopeGroup searches only documents owned by or shared with the active group.
	ScopeGroup Scope = "group"
	// ScopePublic searches only documents in visible public workspaces.
	ScopePublic Scope = "public"
	// ScopeAll fans out to every scope with a resolvable identifier.
	ScopeAll Scope = "all"
)

// Valid reports whether s is one of the four known scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopePersonal, ScopeGroup, ScopePublic, ScopeAll:
		return true
	}
	return false
}

// ParseScope converts a string to a Scope, defaulting to personal for empty input.
func ParseScope(s string) (Scope, error) {
	if s == "" {
		return ScopePersonal, nil
	}
	sc := Scope(s)
	if !sc.Valid() {
		return "", fmt.Errorf("unknown scope %q", s)
	}
	return sc, nil
}

// ScopeKind identifies one concrete ownership scope for fingerprinting and
// invalidation. Unlike Scope it never takes the value "all".
type ScopeKind string

const (
	ScopeKindPersonal ScopeKind = "personal"
	ScopeKindGroup    ScopeKind = "group"
	ScopeKindPublic   ScopeKind = "public"
)

// Query is an immutable search request.
type Query struct {
	// Text is the raw query text as entered by the user.
	Text string

	// RequesterID identifies the principal issuing the query.
	RequesterID string

	// DocumentID restricts results to a single document when non-empty.
	DocumentID string

	// Scope selects which index(es) to search.
	Scope Scope

	// ActiveGroupID is the group searched under group or all scope.
	ActiveGroupID string

	// ActivePublicWorkspaceID is the workspace searched under public or all scope.
	ActivePublicWorkspaceID string

	// TopN is the maximum number of results to return (must be positive).
	TopN int

	// AllowSharing gates whether sharing relationships widen personal-scope filters.
	AllowSharing bool
}

// Result is one ranked chunk returned from a backend index or the cache.
// Result lists from a cache hit and from a fresh merge are structurally
// identical; callers cannot tell them apart by inspecting the payload.
type Result struct {
	ID                string    `json:"id"`
	ChunkText         string    `json:"chunk_text"`
	ChunkID           string    `json:"chunk_id"`
	FileName          string    `json:"file_name"`
	GroupID           string    `json:"group_id,omitempty"`
	PublicWorkspaceID string    `json:"public_workspace_id,omitempty"`
	Version           int       `json:"version"`
	ChunkSequence     int       `json:"chunk_sequence"`
	UploadDate        time.Time `json:"upload_date,omitempty"`
	Classification    string    `json:"document_classification,omitempty"`
	PageNumber        int       `json:"page_number"`
	Author            string    `json:"author,omitempty"`
	Keywords          []string  `json:"keywords,omitempty"`
	Title             string    `json:"title,omitempty"`
	Summary           string    `json:"summary,omitempty"`

	// Score is the min-max normalized relevance score in [0,1].
	Score float64 `json:"score"`

	// OriginalScore preserves the index-native score for diagnostics.
	OriginalScore float64 `json:"original_score"`

	// OriginalIndex labels which backend produced the hit.
	OriginalIndex string `json:"original_index"`
}

// DocumentRef is a document identity+version pair as reported by the
// metadata store. Any change to the set of refs visible in a scope must
// change that scope's fingerprint.
type DocumentRef struct {
	ID      string
	Version int
}

// MutationKind classifies a document mutation event.
type MutationKind string

const (
	MutationCreate      MutationKind = "create"
	MutationUpdate      MutationKind = "update"
	MutationDelete      MutationKind = "delete"
	MutationShareChange MutationKind = "share_change"
)

// MutationEvent announces that a document changed in one ownership scope.
// The invalidation handler uses it to sweep the affected cache partition.
type MutationEvent struct {
	EventID    string
	Kind       MutationKind
	DocumentID string
	ScopeKind  ScopeKind
	ScopeID    string
	OccurredAt time.Time
}

// NewMutationEvent builds an event with a fresh ID and timestamp.
func NewMutationEvent(kind MutationKind, documentID string, scopeKind ScopeKind, scopeID string) MutationEvent {
	return MutationEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		DocumentID: documentID,
		ScopeKind:  scopeKind,
		ScopeID:    scopeID,
		OccurredAt: time.Now().UTC(),
	}
}
