package al

// Shared fakes for the acquisition-loop tests: in-memory dataset streams and
// a table-driven model whose logits are keyed by the first image component.

// memStream replays a fixed slice of batches once.
type memStream struct {
	batches []Batch
	pos     int
}

func (s *memStream) Next() (Batch, bool) {
	if s.pos >= len(s.batches) {
		return Batch{}, false
	}
	b := s.batches[s.pos]
	s.pos++
	return b, true
}

func streamOf(batches ...Batch) *memStream {
	return &memStream{batches: batches}
}

// onehot returns a one-hot label vector of the given width.
func onehot(width, class int) []float64 {
	v := make([]float64, width)
	v[class] = 1
	return v
}

// idImage encodes an example id as its single-component image, which lets
// fake models key their outputs on it.
func idImage(id int64) []float64 {
	return []float64{float64(id)}
}

// allTrue returns a mask of n valid entries.
func allTrue(n int) []bool {
	masks := make([]bool, n)
	for i := range masks {
		masks[i] = true
	}
	return masks
}

// versionParams counts gradient updates; the fine-tune fakes use it to
// verify which snapshot a loop returned.
type versionParams struct {
	version int
}

// countingUpdate returns an UpdateFn that replaces the params with a fresh
// versionParams one update newer.
func countingUpdate() UpdateFn {
	return func(params Params, lr float64, images, labels [][]float64, rng int64) (Params, float64, int64, map[string]float64) {
		v := params.(*versionParams)
		return &versionParams{version: v.version + 1}, 0, rng + 1, nil
	}
}

// scriptedEval returns an EvalFn reporting script[version] as the accuracy
// of every batch, with fallback for versions beyond the script.
func scriptedEval(script map[int]float64, fallback float64) EvalFn {
	return func(params Params, images, labels [][]float64, masks []bool) (float64, float64) {
		acc, ok := script[params.(*versionParams).version]
		if !ok {
			acc = fallback
		}
		n := 0.0
		for _, valid := range masks {
			if valid {
				n++
			}
		}
		return acc * n, n
	}
}

// tableModel maps ids to fixed logits, via the idImage encoding.
type tableModel struct {
	logits map[int64][]float64
}

func (m tableModel) apply(params Params, images [][]float64) ([][]float64, [][]float64) {
	out := make([][]float64, len(images))
	for i, img := range images {
		out[i] = m.logits[int64(img[0])]
	}
	return out, images
}

// fakeData serves fixed per-split batches, a fresh pass per call.
type fakeData struct {
	pool      []Batch
	val       []Batch
	test      []Batch
	train     func(subset []int64, epochs int) []Batch
	trainEval func(subset []int64) []Batch
}

func (d *fakeData) Pool() DatasetStream { return streamOf(d.pool...) }
func (d *fakeData) Val() DatasetStream  { return streamOf(d.val...) }
func (d *fakeData) Test() DatasetStream { return streamOf(d.test...) }

func (d *fakeData) Train(subset []int64, epochs int) DatasetStream {
	return streamOf(d.train(subset, epochs)...)
}

func (d *fakeData) TrainEval(subset []int64) DatasetStream {
	return streamOf(d.trainEval(subset)...)
}

// poolOfIDs builds a single pool batch with the given ids, one-hot labels
// cycling over width classes, and all-valid masks unless padFrom >= 0, in
// which case entries at padFrom and beyond are padding.
func poolOfIDs(ids []int64, width int, padFrom int) Batch {
	batch := Batch{
		IDs:    ids,
		Images: make([][]float64, len(ids)),
		Labels: make([][]float64, len(ids)),
		Masks:  make([]bool, len(ids)),
	}
	for i, id := range ids {
		batch.Images[i] = idImage(id)
		class := int(id) % width
		if class < 0 {
			class += width
		}
		batch.Labels[i] = onehot(width, class)
		batch.Masks[i] = padFrom < 0 || i < padFrom
	}
	return batch
}
