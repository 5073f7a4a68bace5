package cache

import (
	"fmt"

	"github.com/docuchat/searchcore/internal/model"
)

// Partition prefixes for shared scopes. Personal partitions are the bare
// requester ID.
const (
	groupPartitionPrefix  = "group:"
	publicPartitionPrefix = "public:"
)

// ResolvePartition maps a scope and its identifiers to the storage
// partition a cache entry lives in. It is a pure function of the scope and
// identifiers, never of key contents, so invalidation can sweep a partition
// without recomputing keys.
//
// For all scope the precedence is group > public > personal: the first
// identifier present wins.
//
// Panics on an unknown scope; that is a programmer error, not an input
// error, and must not be absorbed.
func ResolvePartition(scope model.Scope, requesterID, activeGroupID, activePublicWorkspaceID string) string {
	switch scope {
	case model.ScopePersonal:
		return requesterID
	case model.ScopeGroup:
		return groupPartitionPrefix + activeGroupID
	case model.ScopePublic:
		return publicPartitionPrefix + activePublicWorkspaceID
	case model.ScopeAll:
		if activeGroupID != "" {
			return groupPartitionPrefix + activeGroupID
		}
		if activePublicWorkspaceID != "" {
			return publicPartitionPrefix + activePublicWorkspaceID
		}
		return requesterID
	}
	panic(fmt.Sprintf("cache: invalid scope %q", scope))
}

// PartitionForScopeKind maps a mutation event's scope to the partition its
// cached entries live in.
func PartitionForScopeKind(kind model.ScopeKind, scopeID string) string {
	switch kind {
	case model.ScopeKindPersonal:
		return scopeID
	case model.ScopeKindGroup:
		return groupPartitionPrefix + scopeID
	case model.ScopeKindPublic:
		return publicPartitionPrefix + scopeID
	}
	panic(fmt.Sprintf("cache: invalid scope kind %q", kind))
}
