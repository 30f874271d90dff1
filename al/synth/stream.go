package synth

import "github.com/al-loop/al-loop/al"

// batchStream yields pre-chunked batches of rows from one split.
type batchStream struct {
	src     *split
	batches [][]int // row indices per batch; -1 marks padding
	size    int
	pos     int
}

// newEvalStream chunks rows into fixed-size batches, padding the final one
// with invalid filler entries so every batch has the same shape.
func newEvalStream(src split, rows []int, batchSize int) al.DatasetStream {
	var batches [][]int
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := append([]int(nil), rows[start:end]...)
		for len(batch) < batchSize {
			batch = append(batch, -1)
		}
		batches = append(batches, batch)
	}
	return &batchStream{src: &src, batches: batches, size: batchSize}
}

// newTrainStream chunks rows into full batches only, dropping any
// incomplete remainder.
func newTrainStream(src split, rows []int, batchSize int) al.DatasetStream {
	var batches [][]int
	for start := 0; start+batchSize <= len(rows); start += batchSize {
		batches = append(batches, append([]int(nil), rows[start:start+batchSize]...))
	}
	return &batchStream{src: &src, batches: batches, size: batchSize}
}

func (s *batchStream) Next() (al.Batch, bool) {
	if s.pos >= len(s.batches) {
		return al.Batch{}, false
	}
	rows := s.batches[s.pos]
	s.pos++

	batch := al.Batch{
		IDs:    make([]int64, len(rows)),
		Images: make([][]float64, len(rows)),
		Labels: make([][]float64, len(rows)),
		Masks:  make([]bool, len(rows)),
	}
	for i, row := range rows {
		if row < 0 {
			// Padding filler keeps the batch shape; zero rows sized like
			// real ones so the model can still run over them.
			batch.IDs[i] = -1
			batch.Images[i] = make([]float64, len(s.src.feats[0]))
			batch.Labels[i] = make([]float64, len(s.src.labels[0]))
			continue
		}
		batch.IDs[i] = s.src.ids[row]
		batch.Images[i] = s.src.feats[row]
		batch.Labels[i] = s.src.labels[row]
		batch.Masks[i] = true
	}
	return batch, true
}
