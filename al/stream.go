package al

// Params is the opaque model weight structure. The loop holds, swaps, and
// snapshots Params but never inspects them. Collaborators must treat Params
// functionally: an UpdateFn returns fresh Params and leaves its input intact,
// which is what lets the fine-tune loop keep a best-seen snapshot without a
// deep copy.
type Params any

// Batch is one fixed-size slab of examples from a DatasetStream. The four
// slices are aligned: index i describes the same example in each. Masks[i]
// is false for batch-padding filler, which must be excluded from every
// accuracy or score aggregation.
type Batch struct {
	IDs    []int64
	Images [][]float64
	Labels [][]float64
	Masks  []bool
}

// DatasetStream is a finite, single-use sequence of batches. Next returns
// the next batch and true, or a zero Batch and false once exhausted.
type DatasetStream interface {
	Next() (Batch, bool)
}

// StreamFn opens a fresh pass over some split. Evaluation during fine-tuning
// needs a new pass per cadence tick, hence a factory rather than a stream.
type StreamFn func() DatasetStream

// DataSource supplies every split the controller consumes. Implementations
// own preprocessing, shuffling, and batching; subset-based splits receive the
// acquired ids in sorted order so identical subsets produce identical streams.
type DataSource interface {
	// Pool streams the full candidate pool once, unshuffled, ids retained.
	Pool() DatasetStream
	// Val streams the validation split once, unshuffled.
	Val() DatasetStream
	// Test streams the held-out test split once, unshuffled.
	Test() DatasetStream
	// Train streams the labeled subset with training preprocessing and
	// shuffling, repeated for the given number of epochs to oversample
	// small subsets into enough batches for a full fine-tune.
	Train(subset []int64, epochs int) DatasetStream
	// TrainEval streams the labeled subset once with evaluation
	// preprocessing, unshuffled. Used for train accuracy and for fitting
	// the density model on subset features.
	TrainEval(subset []int64) DatasetStream
}

// ApplyFn runs the model forward in inference mode over one batch of images,
// returning per-example logits and pre-logit features.
type ApplyFn func(params Params, images [][]float64) (logits, preLogits [][]float64)

// UpdateFn applies one gradient step at the given learning rate and returns
// the new parameters, the batch loss, the advanced RNG state, and any
// auxiliary measurements (gradient norms etc., keyed by name, may be nil).
// The rng state is threaded explicitly through consecutive updates.
type UpdateFn func(params Params, lr float64, images, labels [][]float64, rng int64) (Params, float64, int64, map[string]float64)

// EvalFn counts top-1-correct predictions in one batch, honoring the mask.
// It returns the number of correct predictions and the number of valid
// examples seen.
type EvalFn func(params Params, images, labels [][]float64, masks []bool) (ncorrect, nseen float64)

// CheckpointLoader produces initial parameters from a pretrained source,
// reinitializing the named parameters (typically the classification head).
type CheckpointLoader func(init Params, sourceURI string, reinitParams []string) (Params, error)

// LRSchedule maps a 1-based step number to a learning rate.
type LRSchedule func(step int) float64

// ConstantLR returns a schedule that always yields base. Warmup/decay
// schedules are a poor fit for the small subsets this loop trains on.
func ConstantLR(base float64) LRSchedule {
	return func(int) float64 { return base }
}
