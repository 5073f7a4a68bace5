package search

import (
	"sort"

	"github.com/docuchat/searchcore/internal/model"
)

// MergeAndSort concatenates normalized per-index result lists, orders them
// under the composite key (score desc, file_name asc, chunk_sequence asc),
// and truncates to topN.
//
// The secondary and tertiary keys exist solely to make ordering
// deterministic on score ties, which are common after normalization (every
// single-hit index lands on 0.5). Without them the same query could return
// visibly different chunk ordering across runs.
func MergeAndSort(topN int, lists ...[]model.Result) []model.Result {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	merged := make([]model.Result, 0, total)
	for _, l := range lists {
		merged = append(merged, l...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.FileName != b.FileName {
			return a.FileName < b.FileName
		}
		return a.ChunkSequence < b.ChunkSequence
	})

	if topN > 0 && len(merged) > topN {
		merged = merged[:topN]
	}
	return merged
}
