// Package fingerprint computes content-addressed hashes over the document
// set visible in one ownership scope. Any addition, removal, or version bump
// of a visible document changes the scope's fingerprint, which in turn
// changes every cache key derived from it.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/docuchat/searchcore/internal/docmeta"
	"github.com/docuchat/searchcore/internal/model"
)

// delimiter separates the sorted "<id>:v<version>" entries before hashing.
const delimiter = "|"

// Service computes scope fingerprints from the document metadata store.
type Service struct {
	docs docmeta.DocumentStore
	now  func() time.Time
}

// NewService creates a fingerprint service backed by the given store.
func NewService(docs docmeta.DocumentStore) *Service {
	return &Service{docs: docs, now: time.Now}
}

// Fingerprint hashes the sorted (document_id, version) set visible under
// scopeID for the given kind.
//
// Failure policy: a metadata query failure returns a fingerprint derived
// from the current timestamp instead of an error. A timestamp fingerprint
// matches nothing, so the lookup that uses it becomes a cache miss; that is
// fail-safe (fresh search) rather than fail-open (possible stale hit).
func (s *Service) Fingerprint(ctx context.Context, kind model.ScopeKind, scopeID string) string {
	refs, err := s.docs.ListDocuments(ctx, kind, scopeID)
	if err != nil {
		slog.Warn("fingerprint fallback to timestamp, forcing cache miss",
			slog.String("scope_kind", string(kind)),
			slog.String("scope_id", scopeID),
			slog.String("error", err.Error()))
		return hashString(fmt.Sprintf("fallback:%s:%s:%d", kind, scopeID, s.now().UnixNano()))
	}

	entries := make([]string, len(refs))
	for i, ref := range refs {
		entries[i] = fmt.Sprintf("%s:v%d", ref.ID, ref.Version)
	}

	// Sort is mandatory: the metadata store gives no ordering guarantee and
	// an order-dependent hash would defeat the fingerprint entirely.
	sort.Strings(entries)

	return hashString(strings.Join(entries, delimiter))
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
