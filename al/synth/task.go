package synth

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/al-loop/al-loop/al"
)

// TaskConfig describes the synthetic classification task.
type TaskConfig struct {
	Classes    int     `yaml:"classes"`
	FeatureDim int     `yaml:"feature_dim"`
	PoolSize   int     `yaml:"pool_size"`
	ValSize    int     `yaml:"val_size"`
	TestSize   int     `yaml:"test_size"`
	BatchSize  int     `yaml:"batch_size"`
	Spread     float64 `yaml:"spread"` // within-class standard deviation
	Seed       int64   `yaml:"seed"`
}

// Validate checks the task dimensions.
func (c TaskConfig) Validate() error {
	if c.Classes < 2 {
		return fmt.Errorf("synth: need at least 2 classes, got %d", c.Classes)
	}
	if c.FeatureDim <= 0 {
		return fmt.Errorf("synth: feature dim must be positive, got %d", c.FeatureDim)
	}
	if c.PoolSize <= 0 || c.ValSize <= 0 || c.TestSize <= 0 {
		return fmt.Errorf("synth: pool/val/test sizes must be positive, got %d/%d/%d",
			c.PoolSize, c.ValSize, c.TestSize)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("synth: batch size must be positive, got %d", c.BatchSize)
	}
	if c.Spread <= 0 {
		return fmt.Errorf("synth: spread must be positive, got %g", c.Spread)
	}
	return nil
}

// split is one materialized dataset split with aligned rows.
type split struct {
	ids    []int64
	feats  [][]float64
	labels [][]float64
}

// Task is a synthetic Gaussian-cluster classification dataset implementing
// al.DataSource. Pool ids run 0..PoolSize-1; val and test ids occupy their
// own ranges above the pool.
type Task struct {
	cfg     TaskConfig
	pool    split
	val     split
	test    split
	poolIdx map[int64]int // pool id -> row
	shuffle *rand.Rand
}

// NewTask materializes the task from its config. Class means and examples
// are drawn from the task seed; the shuffle stream for training epochs is
// derived from the same seed.
func NewTask(cfg TaskConfig) (*Task, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	// Well-separated class means, spread ~4x the within-class stddev.
	means := make([][]float64, cfg.Classes)
	for c := range means {
		means[c] = make([]float64, cfg.FeatureDim)
		for d := range means[c] {
			means[c][d] = rng.NormFloat64() * 4 * cfg.Spread
		}
	}

	draw := func(n int, firstID int64) split {
		s := split{
			ids:    make([]int64, n),
			feats:  make([][]float64, n),
			labels: make([][]float64, n),
		}
		for i := 0; i < n; i++ {
			class := rng.Intn(cfg.Classes)
			feat := make([]float64, cfg.FeatureDim)
			for d := range feat {
				feat[d] = means[class][d] + rng.NormFloat64()*cfg.Spread
			}
			label := make([]float64, cfg.Classes)
			label[class] = 1
			s.ids[i] = firstID + int64(i)
			s.feats[i] = feat
			s.labels[i] = label
		}
		return s
	}

	t := &Task{
		cfg:     cfg,
		pool:    draw(cfg.PoolSize, 0),
		val:     draw(cfg.ValSize, int64(cfg.PoolSize)),
		test:    draw(cfg.TestSize, int64(cfg.PoolSize+cfg.ValSize)),
		poolIdx: make(map[int64]int, cfg.PoolSize),
		shuffle: rand.New(rand.NewSource(cfg.Seed ^ 0x5f367e)),
	}
	for i, id := range t.pool.ids {
		t.poolIdx[id] = i
	}
	return t, nil
}

// Pool streams the full pool once, padded to full batches.
func (t *Task) Pool() al.DatasetStream {
	return newEvalStream(t.pool, allRows(len(t.pool.ids)), t.cfg.BatchSize)
}

// Val streams the validation split once, padded to full batches.
func (t *Task) Val() al.DatasetStream {
	return newEvalStream(t.val, allRows(len(t.val.ids)), t.cfg.BatchSize)
}

// Test streams the test split once, padded to full batches.
func (t *Task) Test() al.DatasetStream {
	return newEvalStream(t.test, allRows(len(t.test.ids)), t.cfg.BatchSize)
}

// Train streams the subset rows for the given number of epochs, reshuffled
// each epoch, chunked into full batches. Incomplete trailing batches are
// dropped; the oversampling repeat count guarantees enough full ones.
func (t *Task) Train(subset []int64, epochs int) al.DatasetStream {
	rows := t.subsetRows(subset)
	var order []int
	for e := 0; e < epochs; e++ {
		epoch := append([]int(nil), rows...)
		t.shuffle.Shuffle(len(epoch), func(i, j int) {
			epoch[i], epoch[j] = epoch[j], epoch[i]
		})
		order = append(order, epoch...)
	}
	return newTrainStream(t.pool, order, t.cfg.BatchSize)
}

// TrainEval streams the subset once, unshuffled, padded to full batches.
func (t *Task) TrainEval(subset []int64) al.DatasetStream {
	return newEvalStream(t.pool, t.subsetRows(subset), t.cfg.BatchSize)
}

// subsetRows maps subset ids to pool rows in ascending id order. Unknown
// ids cannot occur: the subset only ever holds ids selected from the pool.
func (t *Task) subsetRows(subset []int64) []int {
	ids := append([]int64(nil), subset...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	rows := make([]int, len(ids))
	for i, id := range ids {
		rows[i] = t.poolIdx[id]
	}
	return rows
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
