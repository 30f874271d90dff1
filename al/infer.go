package al

// InferenceResult holds per-example arrays aligned along the leading axis,
// collected from one full pass over a dataset split. The arrays can be
// longer than the true split size: fixed-size batching pads the final batch,
// and padded entries stay in place with Masks[i] == false. Callers suppress
// them through the mask rather than truncating, so shapes stay uniform.
type InferenceResult struct {
	IDs     []int64
	Outputs [][]float64 // logits, or pre-logit features when requested
	Labels  [][]float64
	Masks   []bool
}

// RunInference drives the model in inference mode over the whole stream,
// concatenating per-batch results in stream order. wantFeatures selects the
// pre-logit representation instead of logits (density scoring needs it).
// The stream must be finite; it is consumed exactly once.
func RunInference(apply ApplyFn, params Params, stream DatasetStream, wantFeatures bool) InferenceResult {
	var res InferenceResult
	for {
		batch, ok := stream.Next()
		if !ok {
			return res
		}
		logits, preLogits := apply(params, batch.Images)
		outputs := logits
		if wantFeatures {
			outputs = preLogits
		}
		res.IDs = append(res.IDs, batch.IDs...)
		res.Outputs = append(res.Outputs, outputs...)
		res.Labels = append(res.Labels, batch.Labels...)
		res.Masks = append(res.Masks, batch.Masks...)
	}
}
