package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/searchcore/internal/model"
)

func scored(id string, score float64) model.Result {
	return model.Result{ID: id, Score: score}
}

func TestNormalize_RangeAndPreservation(t *testing.T) {
	results := []model.Result{
		scored("a", 12.5),
		scored("b", 3.0),
		scored("c", 7.25),
	}

	normalized := Normalize(results, IndexPersonal)
	require.Len(t, normalized, 3)

	for _, r := range normalized {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
		assert.Equal(t, IndexPersonal, r.OriginalIndex)
	}

	// Extremes map to 0 and 1, native scores survive.
	assert.Equal(t, 1.0, normalized[0].Score)
	assert.Equal(t, 12.5, normalized[0].OriginalScore)
	assert.Equal(t, 0.0, normalized[1].Score)
	assert.Equal(t, 3.0, normalized[1].OriginalScore)
}

func TestNormalize_SingleResultMapsToMidpoint(t *testing.T) {
	normalized := Normalize([]model.Result{scored("only", 42.0)}, IndexGroup)

	require.Len(t, normalized, 1)
	assert.Equal(t, 0.5, normalized[0].Score)
	assert.Equal(t, 42.0, normalized[0].OriginalScore)
}

func TestNormalize_AllEqualScoresMapToMidpoint(t *testing.T) {
	results := []model.Result{scored("a", 2.0), scored("b", 2.0), scored("c", 2.0)}

	for _, r := range Normalize(results, IndexPublic) {
		assert.Equal(t, 0.5, r.Score)
	}
}

func TestNormalize_EmptyListUnchanged(t *testing.T) {
	assert.Empty(t, Normalize(nil, IndexPersonal))
	assert.Empty(t, Normalize([]model.Result{}, IndexPersonal))
}
