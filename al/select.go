package al

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrSelectionUnderflow is returned when the requested acquisition batch is
// larger than the number of selectable (finite-score, not-yet-acquired)
// pool entries. Callers must configure pool size strictly above the total
// acquisition budget.
var ErrSelectionUnderflow = errors.New("al: acquisition batch exceeds selectable pool entries")

// Select picks the k highest-scoring ids that are not in ignored. Entries
// whose id was already acquired are forced to -Inf first, so an example can
// never be picked twice. Ties break deterministically by ascending id. The
// returned ids carry their raw scores and are ordered best-first.
func Select(k int, scores []float64, ids []int64, ignored *Subset) ([]int64, []float64, error) {
	if len(scores) != len(ids) {
		return nil, nil, fmt.Errorf("al: scores/ids length mismatch: %d vs %d", len(scores), len(ids))
	}

	masked := make([]float64, len(scores))
	selectable := 0
	for i, s := range scores {
		if ignored != nil && ignored.Contains(ids[i]) {
			s = ninfScore
		}
		masked[i] = s
		if !math.IsInf(s, -1) {
			selectable++
		}
	}
	if k > selectable {
		return nil, nil, fmt.Errorf("%w: want %d, have %d", ErrSelectionUnderflow, k, selectable)
	}

	order := make([]int, len(masked))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if masked[ia] != masked[ib] {
			return masked[ia] > masked[ib]
		}
		return ids[ia] < ids[ib]
	})

	topIDs := make([]int64, k)
	topScores := make([]float64, k)
	for i := 0; i < k; i++ {
		topIDs[i] = ids[order[i]]
		topScores[i] = masked[order[i]]
	}
	return topIDs, topScores, nil
}
