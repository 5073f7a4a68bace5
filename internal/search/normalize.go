package search

import (
	"github.com/docuchat/searchcore/internal/model"
)

// Normalize min-max scales one index's raw scores into [0,1], preserving
// the native score and index label on each result for diagnostics.
//
// Normalization runs per index, strictly before merging: different
// backends score on incomparable scales, and normalizing after merging
// would let a small result set's scores swamp a large one's.
//
// A degenerate list (single hit, or all scores equal) maps every member to
// the 0.5 midpoint rather than 0 or 1, to avoid implying false ordering
// against other indexes.
func Normalize(results []model.Result, indexLabel string) []model.Result {
	if len(results) == 0 {
		return results
	}

	minScore := results[0].Score
	maxScore := results[0].Score
	for _, r := range results[1:] {
		if r.Score < minScore {
			minScore = r.Score
		}
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	scoreRange := maxScore - minScore

	for i := range results {
		r := &results[i]
		r.OriginalScore = r.Score
		r.OriginalIndex = indexLabel
		if scoreRange > 0 {
			r.Score = (r.Score - minScore) / scoreRange
		} else {
			r.Score = 0.5
		}
	}
	return results
}
