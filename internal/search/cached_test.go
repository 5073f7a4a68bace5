package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/searchcore/internal/cache"
	"github.com/docuchat/searchcore/internal/config"
	"github.com/docuchat/searchcore/internal/fingerprint"
	"github.com/docuchat/searchcore/internal/model"
)

// countingSearcher returns canned results and counts invocations, standing
// in for the full merge engine.
type countingSearcher struct {
	mu      sync.Mutex
	results []model.Result
	calls   int
}

func (s *countingSearcher) Search(ctx context.Context, q model.Query) ([]model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.results, nil
}

func (s *countingSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// fakeDocStore serves document refs per scope for fingerprinting.
type fakeDocStore struct {
	mu   sync.Mutex
	docs map[string][]model.DocumentRef
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[string][]model.DocumentRef)}
}

func (f *fakeDocStore) ListDocuments(ctx context.Context, kind model.ScopeKind, scopeID string) ([]model.DocumentRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[string(kind)+":"+scopeID], nil
}

func (f *fakeDocStore) add(kind model.ScopeKind, scopeID string, ref model.DocumentRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := string(kind) + ":" + scopeID
	f.docs[key] = append(f.docs[key], ref)
}

type cachedFixture struct {
	searcher *CachedSearcher
	engine   *countingSearcher
	docs     *fakeDocStore
	store    *cache.Store
	admin    *config.StaticProvider
}

func newCachedFixture(t *testing.T) *cachedFixture {
	t.Helper()

	engine := &countingSearcher{results: []model.Result{
		{ID: "r1", FileName: "policy.txt", ChunkSequence: 1, Score: 0.5},
	}}
	docs := newFakeDocStore()
	admin := config.NewStaticProvider(true, 10*time.Minute)
	store := cache.NewStore(cache.NewMemoryKV(0), admin)

	searcher, err := NewCachedSearcher(engine, fingerprint.NewService(docs), store, DefaultEngineConfig())
	require.NoError(t, err)

	return &cachedFixture{searcher: searcher, engine: engine, docs: docs, store: store, admin: admin}
}

func TestCachedSearch_MissThenHit(t *testing.T) {
	fx := newCachedFixture(t)
	ctx := context.Background()
	q := personalQuery()

	first, err := fx.searcher.Search(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, fx.engine.callCount())

	second, err := fx.searcher.Search(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, fx.engine.callCount(), "second identical call must not reach the engine")
	assert.Equal(t, first, second, "hit and miss payloads are structurally identical")
}

func TestCachedSearch_DocumentUploadForcesFreshSearch(t *testing.T) {
	fx := newCachedFixture(t)
	ctx := context.Background()
	q := personalQuery()

	_, err := fx.searcher.Search(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 1, fx.engine.callCount())

	// New document in the requester's personal scope: fingerprint drifts,
	// the old key stops being addressed, no invalidation needed.
	fx.docs.add(model.ScopeKindPersonal, "U1", model.DocumentRef{ID: "new-doc", Version: 1})

	_, err = fx.searcher.Search(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, fx.engine.callCount())
}

func TestCachedSearch_VersionBumpForcesFreshSearch(t *testing.T) {
	fx := newCachedFixture(t)
	ctx := context.Background()
	fx.docs.add(model.ScopeKindPersonal, "U1", model.DocumentRef{ID: "doc", Version: 1})
	q := personalQuery()

	_, err := fx.searcher.Search(ctx, q)
	require.NoError(t, err)

	fx.docs.docs["personal:U1"] = []model.DocumentRef{{ID: "doc", Version: 2}}

	_, err = fx.searcher.Search(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, fx.engine.callCount())
}

func TestCachedSearch_GroupScopeSharedAcrossRequesters(t *testing.T) {
	fx := newCachedFixture(t)
	ctx := context.Background()

	base := model.Query{
		Text:          "release checklist",
		Scope:         model.ScopeGroup,
		ActiveGroupID: "G",
		TopN:          10,
	}

	u1 := base
	u1.RequesterID = "U1"
	_, err := fx.searcher.Search(ctx, u1)
	require.NoError(t, err)

	u2 := base
	u2.RequesterID = "U2"
	results, err := fx.searcher.Search(ctx, u2)
	require.NoError(t, err)

	assert.Equal(t, 1, fx.engine.callCount(), "U2 must hit the entry U1 populated")
	assert.Equal(t, fx.engine.results, results)
}

func TestCachedSearch_PersonalScopePrivatePerRequester(t *testing.T) {
	fx := newCachedFixture(t)
	ctx := context.Background()

	u1 := personalQuery()
	_, err := fx.searcher.Search(ctx, u1)
	require.NoError(t, err)

	// Identical query text and identical (empty) document sets, different
	// requester: personal keys fold in the requester, so this is a miss.
	u2 := personalQuery()
	u2.RequesterID = "U2"
	_, err = fx.searcher.Search(ctx, u2)
	require.NoError(t, err)

	assert.Equal(t, 2, fx.engine.callCount())
}

func TestCachedSearch_WhitespaceAndCaseShareOneEntry(t *testing.T) {
	fx := newCachedFixture(t)
	ctx := context.Background()

	q := personalQuery()
	q.Text = "Vacation   Policy"
	_, err := fx.searcher.Search(ctx, q)
	require.NoError(t, err)

	q.Text = "vacation policy"
	_, err = fx.searcher.Search(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, 1, fx.engine.callCount())
}

func TestCachedSearch_DisabledCacheBypassesStore(t *testing.T) {
	fx := newCachedFixture(t)
	fx.admin.SetEnabled(false)
	ctx := context.Background()
	q := personalQuery()

	for range 10 {
		_, err := fx.searcher.Search(ctx, q)
		require.NoError(t, err)
	}

	assert.Equal(t, 10, fx.engine.callCount())
	assert.Zero(t, fx.store.Clear(ctx), "no entries may be written while disabled")
}

func TestCachedSearch_OperatorToggleTakesEffectImmediately(t *testing.T) {
	fx := newCachedFixture(t)
	ctx := context.Background()
	q := personalQuery()

	_, err := fx.searcher.Search(ctx, q)
	require.NoError(t, err)

	fx.admin.SetEnabled(false)
	_, err = fx.searcher.Search(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, fx.engine.callCount(), "disable applies to the very next call")

	fx.admin.SetEnabled(true)
	_, err = fx.searcher.Search(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, fx.engine.callCount(), "re-enable makes the first call's entry addressable again")
}
