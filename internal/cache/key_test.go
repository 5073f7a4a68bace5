package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docuchat/searchcore/internal/model"
)

func baseQuery(scope model.Scope, requester string) model.Query {
	return model.Query{
		Text:                    "vacation policy",
		RequesterID:             requester,
		Scope:                   scope,
		ActiveGroupID:           "G",
		ActivePublicWorkspaceID: "W",
		TopN:                    10,
		AllowSharing:            true,
	}
}

func TestBuildKey_Deterministic(t *testing.T) {
	q := baseQuery(model.ScopeGroup, "U1")
	fps := []string{"fp-group"}

	assert.Equal(t, BuildKey(q, fps), BuildKey(q, fps))
}

func TestBuildKey_PersonalScopeFoldsInRequester(t *testing.T) {
	fps := []string{"fp-personal"}

	k1 := BuildKey(baseQuery(model.ScopePersonal, "U1"), fps)
	k2 := BuildKey(baseQuery(model.ScopePersonal, "U2"), fps)

	assert.NotEqual(t, k1, k2, "personal entries are private per requester")
}

func TestBuildKey_SharedScopesExcludeRequester(t *testing.T) {
	fps := []string{"fp-group"}

	for _, scope := range []model.Scope{model.ScopeGroup, model.ScopePublic, model.ScopeAll} {
		k1 := BuildKey(baseQuery(scope, "U1"), fps)
		k2 := BuildKey(baseQuery(scope, "U2"), fps)
		assert.Equal(t, k1, k2, "scope %s entries are shared across principals", scope)
	}
}

func TestBuildKey_NormalizesQueryText(t *testing.T) {
	fps := []string{"fp"}

	q1 := baseQuery(model.ScopeGroup, "U1")
	q1.Text = "  Vacation \t POLICY  "
	q2 := baseQuery(model.ScopeGroup, "U1")
	q2.Text = "vacation policy"

	assert.Equal(t, BuildKey(q1, fps), BuildKey(q2, fps))
}

func TestBuildKey_SensitiveToEveryCanonicalField(t *testing.T) {
	fps := []string{"fp"}
	base := baseQuery(model.ScopeGroup, "U1")
	baseKey := BuildKey(base, fps)

	mutations := map[string]func(q *model.Query){
		"text":          func(q *model.Query) { q.Text = "sick leave policy" },
		"document":      func(q *model.Query) { q.DocumentID = "doc-1" },
		"scope":         func(q *model.Query) { q.Scope = model.ScopeAll },
		"group":         func(q *model.Query) { q.ActiveGroupID = "G2" },
		"workspace":     func(q *model.Query) { q.ActivePublicWorkspaceID = "W2" },
		"top_n":         func(q *model.Query) { q.TopN = 20 },
		"allow_sharing": func(q *model.Query) { q.AllowSharing = false },
	}

	for name, mutate := range mutations {
		q := base
		mutate(&q)
		assert.NotEqual(t, baseKey, BuildKey(q, fps), "field %s must be part of the key", name)
	}

	assert.NotEqual(t, baseKey, BuildKey(base, []string{"fp-changed"}),
		"fingerprint drift must change the key")
}

func TestBuildKey_PersonalScopeIgnoresSharedScopeIDs(t *testing.T) {
	fps := []string{"fp"}

	q1 := baseQuery(model.ScopePersonal, "U1")
	q2 := baseQuery(model.ScopePersonal, "U1")
	q2.ActiveGroupID = "other-group"
	q2.ActivePublicWorkspaceID = "other-workspace"

	assert.Equal(t, BuildKey(q1, fps), BuildKey(q2, fps),
		"group/workspace IDs are irrelevant to personal scope and omitted from its key")
}

func TestNormalizeQueryText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello world"},
		{"  a \t b\nc  ", "a b c"},
		{"ALREADY lower", "already lower"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQueryText(tt.in))
	}
}
