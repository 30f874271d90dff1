package al

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntropyScores_UniformDistribution_LnC(t *testing.T) {
	tests := []struct {
		name    string
		classes int
	}{
		{"two classes", 2},
		{"ten classes", 10},
		{"hundred classes", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logits := [][]float64{make([]float64, tt.classes)} // equal logits = uniform distribution
			scores := EntropyScores(logits, []bool{true})
			assert.InDelta(t, math.Log(float64(tt.classes)), scores[0], 1e-9)
		})
	}
}

func TestEntropyScores_OneHotDistribution_Zero(t *testing.T) {
	// A huge logit gap drives the distribution to one-hot; the 0*log(0)
	// NaN terms must collapse to 0, not poison the sum.
	logits := [][]float64{{4000, 0, 0, 0}}
	scores := EntropyScores(logits, []bool{true})
	assert.InDelta(t, 0, scores[0], 1e-9)
	assert.False(t, math.IsNaN(scores[0]))
}

func TestEntropyScores_MaskedEntries_NegInf(t *testing.T) {
	logits := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	scores := EntropyScores(logits, []bool{true, false, true})
	assert.False(t, math.IsInf(scores[0], -1))
	assert.True(t, math.IsInf(scores[1], -1))
	assert.False(t, math.IsInf(scores[2], -1))
}

func TestEntropyScores_HigherForMoreUncertain(t *testing.T) {
	logits := [][]float64{
		{0, 0, 0, 0}, // uniform
		{3, 0, 0, 0}, // peaked
	}
	scores := EntropyScores(logits, allTrue(2))
	assert.Greater(t, scores[0], scores[1])
}

func TestMarginScores_TopTwoEqual_Zero(t *testing.T) {
	// Equal top-two probabilities give margin 0, the maximal score.
	logits := [][]float64{{2, 2, -5}}
	scores := MarginScores(logits, []bool{true})
	assert.InDelta(t, 0, scores[0], 1e-9)
}

func TestMarginScores_ConfidentPrediction_ScoresLower(t *testing.T) {
	logits := [][]float64{
		{5, 0, 0},   // confident
		{1, 0.9, 0}, // ambiguous
	}
	scores := MarginScores(logits, allTrue(2))
	assert.Greater(t, scores[1], scores[0])
	// Margins live in [0,1], so scores in [-1,0].
	for _, s := range scores {
		assert.LessOrEqual(t, s, 0.0)
		assert.GreaterOrEqual(t, s, -1.0)
	}
}

func TestMarginScores_MaskedEntries_NegInf(t *testing.T) {
	scores := MarginScores([][]float64{{1, 2}, {1, 2}}, []bool{false, true})
	assert.True(t, math.IsInf(scores[0], -1))
	assert.False(t, math.IsInf(scores[1], -1))
}

func TestUniformScores_RangeAndMask(t *testing.T) {
	rng := NewPartitionedRNG(NewExperimentKey(7))
	masks := []bool{true, true, false, true, false}
	scores := UniformScores(masks, rng.ForSubsystem(SubsystemInitialDraw))
	require.Len(t, scores, len(masks))
	for i, s := range scores {
		if masks[i] {
			assert.GreaterOrEqual(t, s, 0.0)
			assert.Less(t, s, 1.0)
		} else {
			assert.True(t, math.IsInf(s, -1))
		}
	}
}

func TestUniformScores_DeterministicGivenSeed(t *testing.T) {
	masks := allTrue(16)
	a := UniformScores(masks, NewPartitionedRNG(NewExperimentKey(3)).ForSubsystem(SubsystemRound(1)))
	b := UniformScores(masks, NewPartitionedRNG(NewExperimentKey(3)).ForSubsystem(SubsystemRound(1)))
	assert.Equal(t, a, b)

	c := UniformScores(masks, NewPartitionedRNG(NewExperimentKey(4)).ForSubsystem(SubsystemRound(1)))
	assert.NotEqual(t, a, c)
}

func TestComputeScoreStats_SkipsNegInf(t *testing.T) {
	scores := []float64{0.5, math.Inf(-1), 1.5, math.Inf(-1), 1.0}
	stats, ok := ComputeScoreStats(scores)
	require.True(t, ok)
	assert.Equal(t, 3, stats.Valid)
	assert.Equal(t, 0.5, stats.Min)
	assert.Equal(t, 1.5, stats.Max)
	assert.InDelta(t, 1.0, stats.Mean, 1e-9)
}

func TestComputeScoreStats_AllMasked_NotOK(t *testing.T) {
	_, ok := ComputeScoreStats([]float64{math.Inf(-1), math.Inf(-1)})
	assert.False(t, ok)
}
