package synth

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/al-loop/al-loop/al"
)

// Model is a linear softmax classifier over the raw feature vectors. Its
// pre-logit representation is the input itself, which is exactly what the
// density acquisition method needs from a penultimate layer.
type Model struct {
	Classes    int
	FeatureDim int
}

// weights are the model parameters. Updates never mutate a weights value in
// place; they return a fresh copy, so al.Params snapshots stay intact.
type weights struct {
	w [][]float64 // Classes x FeatureDim
	b []float64   // Classes
}

func (w *weights) clone() *weights {
	out := &weights{
		w: make([][]float64, len(w.w)),
		b: append([]float64(nil), w.b...),
	}
	for c := range w.w {
		out.w[c] = append([]float64(nil), w.w[c]...)
	}
	return out
}

// Init returns zero-initialized parameters.
func (m Model) Init() al.Params {
	w := &weights{
		w: make([][]float64, m.Classes),
		b: make([]float64, m.Classes),
	}
	for c := range w.w {
		w.w[c] = make([]float64, m.FeatureDim)
	}
	return w
}

// logits computes Wx+b for one example.
func (m Model) logits(w *weights, x []float64) []float64 {
	out := make([]float64, m.Classes)
	for c := range out {
		out[c] = floats.Dot(w.w[c], x) + w.b[c]
	}
	return out
}

// Apply is the al.ApplyFn: forward pass returning logits and the identity
// pre-logit features.
func (m Model) Apply(params al.Params, images [][]float64) ([][]float64, [][]float64) {
	w := params.(*weights)
	logits := make([][]float64, len(images))
	for i, x := range images {
		logits[i] = m.logits(w, x)
	}
	return logits, images
}

// Update is the al.UpdateFn: one softmax cross-entropy gradient step over
// the batch. The rng state is advanced deterministically; the model has no
// stochastic layers, so it is threaded through untouched otherwise.
func (m Model) Update(params al.Params, lr float64, images, labels [][]float64, rng int64) (al.Params, float64, int64, map[string]float64) {
	w := params.(*weights).clone()
	n := float64(len(images))
	loss := 0.0

	gradW := make([][]float64, m.Classes)
	gradB := make([]float64, m.Classes)
	for c := range gradW {
		gradW[c] = make([]float64, m.FeatureDim)
	}

	for i, x := range images {
		logits := m.logits(w, x)
		lse := floats.LogSumExp(logits)
		for c := range logits {
			logp := logits[c] - lse
			loss += -labels[i][c] * logp / n
			g := (math.Exp(logp) - labels[i][c]) / n
			gradB[c] += g
			floats.AddScaled(gradW[c], g, x)
		}
	}

	gradNorm := 0.0
	for c := range gradW {
		gradNorm += floats.Dot(gradW[c], gradW[c]) + gradB[c]*gradB[c]
		w.b[c] -= lr * gradB[c]
		floats.AddScaled(w.w[c], -lr, gradW[c])
	}

	measurements := map[string]float64{"l2_grads": math.Sqrt(gradNorm)}
	return w, loss, rng + 1, measurements
}

// Eval is the al.EvalFn: masked top-1 correctness counts for one batch.
func (m Model) Eval(params al.Params, images, labels [][]float64, masks []bool) (float64, float64) {
	w := params.(*weights)
	var ncorrect, nseen float64
	for i, x := range images {
		if !masks[i] {
			continue
		}
		logits := m.logits(w, x)
		nseen++
		ncorrect += labels[i][floats.MaxIdx(logits)]
	}
	return ncorrect, nseen
}

// check the wiring against the collaborator contracts at compile time.
var (
	_ al.ApplyFn  = Model{}.Apply
	_ al.UpdateFn = Model{}.Update
	_ al.EvalFn   = Model{}.Eval
)

// Validate checks the model dimensions against a task config.
func (m Model) Validate(cfg TaskConfig) error {
	if m.Classes != cfg.Classes || m.FeatureDim != cfg.FeatureDim {
		return fmt.Errorf("synth: model %dx%d does not match task %dx%d",
			m.Classes, m.FeatureDim, cfg.Classes, cfg.FeatureDim)
	}
	return nil
}
