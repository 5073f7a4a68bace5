// Package cache implements the document-set-aware search result cache:
// content-addressed cache keys, scope-aware partitions, a lazily-expiring
// store over a pluggable key-value backend, and event-driven invalidation.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/docuchat/searchcore/internal/model"
)

// KeyVersion versions the canonical key serialization. Changing the field
// order below must bump this, which implicitly invalidates every existing
// entry after a deploy (expected and acceptable).
const KeyVersion = "v1"

// fieldSep joins canonical fields before hashing. A non-printable separator
// prevents field-boundary ambiguity from user-controlled text.
const fieldSep = "\x1f"

// BuildKey computes the deterministic cache key for a query and the
// fingerprints applicable to its scope.
//
// The requester ID is folded in only for personal scope: personal entries
// are private, while group/public/all entries are shared by every principal
// with access to the scope. The group and workspace IDs are likewise
// omitted for personal scope, where they are irrelevant to the result.
func BuildKey(q model.Query, fingerprints []string) string {
	fields := make([]string, 0, 10)
	fields = append(fields, KeyVersion, NormalizeQueryText(q.Text))

	if q.Scope == model.ScopePersonal {
		fields = append(fields, q.RequesterID)
	}

	fields = append(fields, q.DocumentID, string(q.Scope))

	if q.Scope != model.ScopePersonal {
		fields = append(fields, q.ActiveGroupID, q.ActivePublicWorkspaceID)
	}

	fields = append(fields,
		strconv.Itoa(q.TopN),
		strconv.FormatBool(q.AllowSharing),
		strings.Join(fingerprints, "|"),
	)

	sum := sha256.Sum256([]byte(strings.Join(fields, fieldSep)))
	return hex.EncodeToString(sum[:])
}

// NormalizeQueryText lowercases the text and collapses internal whitespace
// so casing and spacing differences do not fragment the cache.
func NormalizeQueryText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
