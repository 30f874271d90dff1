package al

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_TopKProperty(t *testing.T) {
	scores := []float64{0.1, 0.9, 0.4, 0.8, 0.2, 0.7}
	ids := []int64{10, 11, 12, 13, 14, 15}

	sel, selScores, err := Select(3, scores, ids, NewSubset())
	require.NoError(t, err)
	require.Len(t, sel, 3)
	require.Len(t, selScores, 3)

	assert.ElementsMatch(t, []int64{11, 13, 15}, sel)
	// Every id outside the selection scores at most the worst selected one.
	minSelected := math.Inf(1)
	for _, s := range selScores {
		minSelected = math.Min(minSelected, s)
	}
	selected := map[int64]bool{}
	for _, id := range sel {
		selected[id] = true
	}
	for i, id := range ids {
		if !selected[id] {
			assert.LessOrEqual(t, scores[i], minSelected)
		}
	}
}

func TestSelect_IgnoredIDsNeverPicked(t *testing.T) {
	scores := []float64{0.9, 0.8, 0.7, 0.1}
	ids := []int64{1, 2, 3, 4}
	ignored := NewSubset()
	ignored.Add(1, 2)

	sel, selScores, err := Select(2, scores, ids, ignored)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{3, 4}, sel)
	for _, id := range sel {
		assert.False(t, ignored.Contains(id))
	}
	// Raw scores come back, not the -Inf masking.
	for _, s := range selScores {
		assert.False(t, math.IsInf(s, -1))
	}
}

func TestSelect_Underflow(t *testing.T) {
	tests := []struct {
		name    string
		scores  []float64
		ids     []int64
		ignored []int64
		k       int
	}{
		{"k exceeds pool", []float64{0.1, 0.2}, []int64{1, 2}, nil, 3},
		{"masked entries not selectable", []float64{0.1, math.Inf(-1)}, []int64{1, 2}, nil, 2},
		{"ignored entries not selectable", []float64{0.1, 0.2}, []int64{1, 2}, []int64{2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ignored := NewSubset()
			ignored.Add(tt.ignored...)
			_, _, err := Select(tt.k, tt.scores, tt.ids, ignored)
			assert.ErrorIs(t, err, ErrSelectionUnderflow)
		})
	}
}

func TestSelect_LengthMismatch(t *testing.T) {
	_, _, err := Select(1, []float64{0.1}, []int64{1, 2}, NewSubset())
	assert.Error(t, err)
}

func TestSelect_DeterministicTies(t *testing.T) {
	scores := []float64{0.5, 0.5, 0.5, 0.5}
	ids := []int64{9, 3, 7, 1}

	first, _, err := Select(2, scores, ids, NewSubset())
	require.NoError(t, err)
	second, _, err := Select(2, scores, ids, NewSubset())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// Ties break by ascending id.
	assert.Equal(t, []int64{1, 3}, first)
}

func TestSelect_Idempotent(t *testing.T) {
	rng := NewPartitionedRNG(NewExperimentKey(11))
	scores := UniformScores(allTrue(20), rng.ForSubsystem(SubsystemRound(2)))
	ids := make([]int64, 20)
	for i := range ids {
		ids[i] = int64(i)
	}

	first, firstScores, err := Select(5, scores, ids, NewSubset())
	require.NoError(t, err)
	second, secondScores, err := Select(5, scores, ids, NewSubset())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, firstScores, secondScores)
}

// The end-to-end acquisition scenario: 10 pool ids with two padding
// entries, uniform scores from a fixed seed, batch of three.
func TestSelect_UniformEndToEnd(t *testing.T) {
	ids := []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	masks := []bool{true, true, true, true, true, true, true, true, false, false}

	run := func() []int64 {
		rng := NewPartitionedRNG(NewExperimentKey(1234))
		scores := UniformScores(masks, rng.ForSubsystem(SubsystemRound(0)))
		sel, _, err := Select(3, scores, ids, NewSubset())
		require.NoError(t, err)
		return sel
	}

	first := run()
	require.Len(t, first, 3)
	for _, id := range first {
		assert.Less(t, id, int64(8), "padding ids must never be selected")
	}
	assert.Equal(t, first, run(), "fixed seed must reproduce the selection")
}
