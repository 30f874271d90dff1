package al

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInference_ConcatenatesInStreamOrder(t *testing.T) {
	model := tableModel{logits: map[int64][]float64{
		1: {1, 0}, 2: {2, 0}, 3: {3, 0}, 4: {4, 0},
	}}
	batches := []Batch{
		poolOfIDs([]int64{1, 2}, 2, -1),
		poolOfIDs([]int64{3, 4}, 2, 1), // second entry is padding
	}

	res := RunInference(model.apply, &versionParams{}, streamOf(batches...), false)

	require.Len(t, res.IDs, 4)
	assert.Equal(t, []int64{1, 2, 3, 4}, res.IDs)
	assert.Equal(t, [][]float64{{1, 0}, {2, 0}, {3, 0}, {4, 0}}, res.Outputs)
	assert.Equal(t, []bool{true, true, true, false}, res.Masks)
	// Labels ride along, aligned with ids.
	assert.Len(t, res.Labels, 4)

	// Padding stays in place; the result is longer than the true dataset.
	valid := 0
	for _, m := range res.Masks {
		if m {
			valid++
		}
	}
	assert.Equal(t, 3, valid)
}

func TestRunInference_WantFeaturesSelectsPreLogits(t *testing.T) {
	model := tableModel{logits: map[int64][]float64{7: {9, 9}}}
	batch := poolOfIDs([]int64{7}, 2, -1)

	logitsRes := RunInference(model.apply, &versionParams{}, streamOf(batch), false)
	featRes := RunInference(model.apply, &versionParams{}, streamOf(batch), true)

	assert.Equal(t, [][]float64{{9, 9}}, logitsRes.Outputs)
	// The fake's pre-logits are the images themselves.
	assert.Equal(t, [][]float64{idImage(7)}, featRes.Outputs)
}

func TestRunInference_EmptyStream(t *testing.T) {
	model := tableModel{logits: map[int64][]float64{}}
	res := RunInference(model.apply, &versionParams{}, streamOf(), false)
	assert.Empty(t, res.IDs)
	assert.Empty(t, res.Outputs)
	assert.Empty(t, res.Masks)
}
