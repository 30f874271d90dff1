package al

// Accuracy runs the evaluation function over a full stream and returns the
// fraction of valid examples predicted correctly. Returns 0 when the stream
// holds no valid examples.
func Accuracy(eval EvalFn, params Params, stream DatasetStream) float64 {
	var ncorrect, nseen float64
	for {
		batch, ok := stream.Next()
		if !ok {
			break
		}
		c, n := eval(params, batch.Images, batch.Labels, batch.Masks)
		ncorrect += c
		nseen += n
	}
	if nseen == 0 {
		return 0
	}
	return ncorrect / nseen
}
