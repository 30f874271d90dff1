package al

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// ninfScore marks entries that must never be selected: batch padding,
// already-acquired ids, and anything else masked out of an acquisition.
var ninfScore = math.Inf(-1)

// logSoftmax returns the log-softmax of one logit row.
func logSoftmax(logits []float64) []float64 {
	lse := floats.LogSumExp(logits)
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = v - lse
	}
	return out
}

// EntropyScores scores each example by the Shannon entropy of its predictive
// distribution, in nats. Higher entropy means higher uncertainty and a
// higher score. A zero probability produces a 0*log(0) NaN term, which is
// replaced by 0 before summation. Masked entries score -Inf.
func EntropyScores(logits [][]float64, masks []bool) []float64 {
	scores := make([]float64, len(logits))
	for i, row := range logits {
		if !masks[i] {
			scores[i] = ninfScore
			continue
		}
		logProbs := logSoftmax(row)
		entropy := 0.0
		for _, lp := range logProbs {
			nats := -math.Exp(lp) * lp
			if math.IsNaN(nats) {
				nats = 0
			}
			entropy += nats
		}
		scores[i] = entropy
	}
	return scores
}

// MarginScores scores each example by the negated margin between its top two
// class probabilities. A small margin means an ambiguous prediction, so
// negating makes higher scores more informative. Masked entries score -Inf.
func MarginScores(logits [][]float64, masks []bool) []float64 {
	scores := make([]float64, len(logits))
	for i, row := range logits {
		if !masks[i] {
			scores[i] = ninfScore
			continue
		}
		top1, top2 := math.Inf(-1), math.Inf(-1)
		for _, lp := range logSoftmax(row) {
			p := math.Exp(lp)
			if p > top1 {
				top1, top2 = p, top1
			} else if p > top2 {
				top2 = p
			}
		}
		scores[i] = -(top1 - top2)
	}
	return scores
}

// UniformScores draws an independent U[0,1) score per valid example from the
// supplied stream. The stream comes from the experiment's PartitionedRNG so
// reruns reproduce the draw. Masked entries score -Inf.
//
// The draw is consumed for masked entries too, keeping the mapping from
// stream position to example index independent of the mask contents.
func UniformScores(masks []bool, rng *rand.Rand) []float64 {
	scores := make([]float64, len(masks))
	for i, valid := range masks {
		u := rng.Float64()
		if valid {
			scores[i] = u
		} else {
			scores[i] = ninfScore
		}
	}
	return scores
}

// ScoreStats summarizes the finite entries of a score array.
type ScoreStats struct {
	Min   float64
	Mean  float64
	Max   float64
	Valid int // number of finite entries
}

// ComputeScoreStats summarizes the finite entries of scores for round
// diagnostics. Returns false when every entry is -Inf.
func ComputeScoreStats(scores []float64) (ScoreStats, bool) {
	stats := ScoreStats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, s := range scores {
		if math.IsInf(s, -1) {
			continue
		}
		stats.Valid++
		sum += s
		if s < stats.Min {
			stats.Min = s
		}
		if s > stats.Max {
			stats.Max = s
		}
	}
	if stats.Valid == 0 {
		return ScoreStats{}, false
	}
	stats.Mean = sum / float64(stats.Valid)
	return stats, true
}
