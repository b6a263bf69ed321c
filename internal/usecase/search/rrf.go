package search

import (
	"sort"

	"github.com/datamancy/searchgate/internal/domain"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// fuseRRF merges vector and full-text results via Reciprocal Rank Fusion.
// score(d) = sum of 1/(k + rank + 1) over each ranking where d appears,
// keyed by the deduplication key. The vector list is folded in first, so
// for documents present in both lists the vector hit's content and
// metadata are kept; only the score is replaced by the fused value.
// Ties sort stably in insertion order (vector list first).
func fuseRRF(vector, fulltext []domain.Result, limit int) []domain.Result {
	type scored struct {
		res   domain.Result
		score float64
	}

	merged := make(map[string]*scored, len(vector)+len(fulltext))
	order := make([]string, 0, len(vector)+len(fulltext))

	accumulate := func(list []domain.Result) {
		for rank, r := range list {
			contribution := 1.0 / float64(rrfK+rank+1)
			key := r.Key()
			if existing, ok := merged[key]; ok {
				existing.score += contribution
				continue
			}
			merged[key] = &scored{res: r, score: contribution}
			order = append(order, key)
		}
	}
	accumulate(vector)
	accumulate(fulltext)

	results := make([]domain.Result, 0, len(order))
	for _, key := range order {
		s := merged[key]
		fused := s.res
		fused.Score = s.score
		results = append(results, fused)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
