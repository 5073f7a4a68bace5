package docmeta

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/searchcore/internal/filter"
	"github.com/docuchat/searchcore/internal/model"
)

func newTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func refIDs(refs []model.DocumentRef) []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

func TestListDocuments_OwnedAndApprovedShared(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, Document{ID: "owned", FileName: "a.txt", OwnerKind: model.ScopeKindPersonal, OwnerID: "U1"}))
	require.NoError(t, store.SaveDocument(ctx, Document{ID: "shared-ok", FileName: "b.txt", OwnerKind: model.ScopeKindPersonal, OwnerID: "U2"}))
	require.NoError(t, store.SaveDocument(ctx, Document{ID: "shared-pending", FileName: "c.txt", OwnerKind: model.ScopeKindPersonal, OwnerID: "U2"}))
	require.NoError(t, store.SaveDocument(ctx, Document{ID: "unrelated", FileName: "d.txt", OwnerKind: model.ScopeKindPersonal, OwnerID: "U3"}))

	require.NoError(t, store.SetShare(ctx, Share{DocumentID: "shared-ok", PrincipalID: "U1", Status: filter.StatusApproved}))
	require.NoError(t, store.SetShare(ctx, Share{DocumentID: "shared-pending", PrincipalID: "U1", Status: "pending"}))

	refs, err := store.ListDocuments(ctx, model.ScopeKindPersonal, "U1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"owned", "shared-ok"}, refIDs(refs))
}

func TestListDocuments_GroupScope(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, Document{ID: "g-owned", OwnerKind: model.ScopeKindGroup, OwnerID: "G"}))
	require.NoError(t, store.SaveDocument(ctx, Document{ID: "u-owned", OwnerKind: model.ScopeKindPersonal, OwnerID: "U1"}))
	require.NoError(t, store.SetShare(ctx, Share{DocumentID: "u-owned", PrincipalID: "G", Status: filter.StatusApproved}))

	refs, err := store.ListDocuments(ctx, model.ScopeKindGroup, "G")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"g-owned", "u-owned"}, refIDs(refs))
}

func TestListDocuments_PublicScopeIgnoresShares(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, Document{ID: "w-doc", OwnerKind: model.ScopeKindPublic, OwnerID: "W"}))
	require.NoError(t, store.SaveDocument(ctx, Document{ID: "u-doc", OwnerKind: model.ScopeKindPersonal, OwnerID: "U1"}))
	require.NoError(t, store.SetShare(ctx, Share{DocumentID: "u-doc", PrincipalID: "W", Status: filter.StatusApproved}))

	refs, err := store.ListDocuments(ctx, model.ScopeKindPublic, "W")
	require.NoError(t, err)
	assert.Equal(t, []string{"w-doc"}, refIDs(refs))
}

func TestListDocuments_UnknownKind(t *testing.T) {
	store := newTestDB(t)

	_, err := store.ListDocuments(context.Background(), "galactic", "X")
	assert.Error(t, err)
}

func TestSaveDocument_ResaveBumpsVersion(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	doc := Document{ID: "doc", FileName: "a.txt", OwnerKind: model.ScopeKindPersonal, OwnerID: "U1"}

	require.NoError(t, store.SaveDocument(ctx, doc))
	refs, err := store.ListDocuments(ctx, model.ScopeKindPersonal, "U1")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, 1, refs[0].Version)

	doc.FileName = "a-v2.txt"
	require.NoError(t, store.SaveDocument(ctx, doc))
	refs, err = store.ListDocuments(ctx, model.ScopeKindPersonal, "U1")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, 2, refs[0].Version)
}

func TestDeleteDocument_CascadesShares(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, Document{ID: "doc", OwnerKind: model.ScopeKindPersonal, OwnerID: "U2"}))
	require.NoError(t, store.SetShare(ctx, Share{DocumentID: "doc", PrincipalID: "U1", Status: filter.StatusApproved}))
	require.NoError(t, store.DeleteDocument(ctx, "doc"))

	refs, err := store.ListDocuments(ctx, model.ScopeKindPersonal, "U1")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestSetShare_StatusUpdateChangesVisibility(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, Document{ID: "doc", OwnerKind: model.ScopeKindPersonal, OwnerID: "U2"}))
	require.NoError(t, store.SetShare(ctx, Share{DocumentID: "doc", PrincipalID: "U1", Status: "pending"}))

	refs, err := store.ListDocuments(ctx, model.ScopeKindPersonal, "U1")
	require.NoError(t, err)
	assert.Empty(t, refs, "pending shares are invisible")

	require.NoError(t, store.SetShare(ctx, Share{DocumentID: "doc", PrincipalID: "U1", Status: filter.StatusApproved}))
	refs, err = store.ListDocuments(ctx, model.ScopeKindPersonal, "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc"}, refIDs(refs))
}

func TestVisibleWorkspaces_ReplaceSemantics(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.SetVisibleWorkspaces(ctx, "U1", []string{"W2", "W1"}))
	ids, err := store.VisiblePublicWorkspaceIDs(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"W1", "W2"}, ids, "sorted for stable output")

	require.NoError(t, store.SetVisibleWorkspaces(ctx, "U1", []string{"W3"}))
	ids, err = store.VisiblePublicWorkspaceIDs(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"W3"}, ids, "set replacement drops the old entries")

	ids, err = store.VisiblePublicWorkspaceIDs(ctx, "U2")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
