package al

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Collaborators are the external functions and interfaces the loop drives.
// Apply, Update, Eval, Data, and LR are required; a nil Sink is replaced by
// NopSink.
type Collaborators struct {
	Apply  ApplyFn
	Update UpdateFn
	Eval   EvalFn
	Data   DataSource
	LR     LRSchedule
	Sink   MetricSink
}

// Controller orchestrates the acquisition loop: fine-tune on the current
// labeled subset, measure held-out test accuracy, score the pool, select an
// acquisition batch, and grow the subset, until the size budget is reached.
//
// One Controller drives one run. Rounds execute strictly in order on a
// single goroutine; every collaborator call is synchronous and blocking.
type Controller struct {
	cfg    Config
	collab Collaborators

	rng     *PartitionedRNG
	loopRNG int64 // update-fn rng state, threaded across rounds

	subset    *Subset
	params    Params
	round     int
	testCurve []AccuracyPoint
}

// NewController validates the configuration and assembles a run. The
// initial parameters come from the caller (typically via a
// CheckpointLoader); the controller replaces them each round with the
// fine-tune loop's best snapshot.
func NewController(cfg Config, initial Params, collab Collaborators) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if collab.Apply == nil || collab.Update == nil || collab.Eval == nil || collab.Data == nil || collab.LR == nil {
		return nil, fmt.Errorf("al: apply, update, eval, data, and lr collaborators are required")
	}
	if collab.Sink == nil {
		collab.Sink = NopSink{}
	}

	rng := NewPartitionedRNG(NewExperimentKey(cfg.Seed))
	return &Controller{
		cfg:     cfg,
		collab:  collab,
		rng:     rng,
		loopRNG: rng.ForSubsystem(SubsystemFinetune).Int63(),
		subset:  NewSubset(),
		params:  initial,
	}, nil
}

// Run executes the loop to completion and returns the final labeled subset
// together with the test-accuracy curve, one point per round, keyed by the
// subset size the accuracy was measured at.
func (c *Controller) Run() (*Subset, []AccuracyPoint, error) {
	if err := c.seedInitialSubset(); err != nil {
		return nil, nil, fmt.Errorf("al: initial acquisition: %w", err)
	}

	for c.subset.Len() < c.cfg.MaxTrainingSetSize {
		if err := c.runRound(); err != nil {
			return nil, nil, fmt.Errorf("al: round %d: %w", c.round, err)
		}
		c.round++
	}

	logrus.Infof("final training set size %d, acquired ids: %v", c.subset.Len(), c.subset.IDs())
	return c.subset, c.testCurve, nil
}

// seedInitialSubset acquires the initial training set with uniform scores
// when configured, before the first round.
func (c *Controller) seedInitialSubset() error {
	if c.cfg.InitialTrainingSetSize == 0 {
		return nil
	}

	pool := RunInference(c.collab.Apply, c.params, c.collab.Data.Pool(), false)
	scores := UniformScores(pool.Masks, c.rng.ForSubsystem(SubsystemInitialDraw))
	ids, idScores, err := Select(c.cfg.InitialTrainingSetSize, scores, pool.IDs, NewSubset())
	if err != nil {
		return err
	}
	c.subset.Add(ids...)
	logrus.Infof("seeded initial training set with %d ids: %v", len(ids), ids)
	c.collab.Sink.LogTable(c.subset.Len(), "initial_training_set", []string{"id", "score"}, acquisitionRows(ids, idScores))
	return nil
}

// runRound executes one acquisition round: fine-tune (when there is
// anything to fine-tune with), evaluate, score, select, grow.
func (c *Controller) runRound() error {
	size := c.subset.Len()
	logrus.Infof("[round %02d] training set size: %d", c.round, size)

	// Only fine-tune if there is anything to fine-tune with.
	if size > 0 {
		if err := c.finetuneRound(size); err != nil {
			return err
		}
	}

	testAcc := Accuracy(c.collab.Eval, c.params, c.collab.Data.Test())
	logrus.Infof("[round %02d] test accuracy at size %d: %.4f", c.round, size, testAcc)
	c.testCurve = append(c.testCurve, AccuracyPoint{Step: size, Accuracy: testAcc})
	c.collab.Sink.LogScalars(size, map[string]float64{"test_accuracy": testAcc})

	pool := RunInference(c.collab.Apply, c.params, c.collab.Data.Pool(), c.cfg.Method.NeedsFeatures())
	scores, err := c.scorePool(pool, size)
	if err != nil {
		return err
	}

	if stats, ok := ComputeScoreStats(scores); ok {
		logrus.Infof("[round %02d] score statistics pool set - min: %.6f, mean: %.6f, max: %.6f",
			c.round, stats.Min, stats.Mean, stats.Max)
	}

	ids, idScores, err := Select(c.cfg.AcquisitionBatchSize, scores, pool.IDs, c.subset)
	if err != nil {
		return err
	}
	logrus.Infof("[round %02d] data selected - ids: %v, scores: %v", c.round, ids, idScores)

	c.subset.Add(ids...)
	c.collab.Sink.LogTable(size, "acquisition_batch", []string{"id", "score"}, acquisitionRows(ids, idScores))
	return nil
}

// finetuneRound oversamples the subset into enough batches for the step
// budget, runs the fine-tune loop, and adopts its best snapshot as the
// round's model.
func (c *Controller) finetuneRound(size int) error {
	// ceil(totalSteps / (size / batchSize)) epochs bootstraps small
	// subsets into a full step budget's worth of batches.
	numBatches := float64(size) / float64(c.cfg.BatchSize)
	numRepeats := int(math.Ceil(float64(c.cfg.TotalSteps) / numBatches))
	logrus.Infof("[round %02d] repeating subset %d times", c.round, numRepeats)

	subsetIDs := c.subset.IDs()
	opts := FinetuneOpts{
		Update:     c.collab.Update,
		Eval:       c.collab.Eval,
		LR:         c.collab.LR,
		TotalSteps: c.cfg.TotalSteps,
		Patience:   c.cfg.EarlyStoppingPatience,
	}

	best, rng, info, err := Finetune(opts, c.params, c.loopRNG,
		c.collab.Data.Train(subsetIDs, numRepeats),
		func() DatasetStream { return c.collab.Data.TrainEval(subsetIDs) },
		c.collab.Data.Val)
	if err != nil {
		return err
	}
	c.params = best
	c.loopRNG = rng

	c.collab.Sink.LogTable(size, "finetune/train_accuracy", []string{"step", "train_accuracy"}, accuracyRows(info.TrainAccuracies))
	c.collab.Sink.LogTable(size, "finetune/val_accuracy", []string{"step", "val_accuracy"}, accuracyRows(info.ValAccuracies))
	c.collab.Sink.LogScalars(size, map[string]float64{
		"finetune/best_step":         float64(info.BestStep),
		"finetune/best_val_accuracy": info.BestValAccuracy,
	})
	return nil
}

// scorePool applies the configured acquisition method to the pool pass.
// Density falls back to uniform while the subset is empty; the fallback
// consumes the same per-round stream a uniform run would, so later rounds
// see identical seeds either way.
func (c *Controller) scorePool(pool InferenceResult, subsetSize int) ([]float64, error) {
	switch c.cfg.Method {
	case MethodUniform:
		return UniformScores(pool.Masks, c.rng.ForSubsystem(SubsystemRound(c.round))), nil
	case MethodEntropy:
		return EntropyScores(pool.Outputs, pool.Masks), nil
	case MethodMargin:
		return MarginScores(pool.Outputs, pool.Masks), nil
	case MethodDensity:
		if subsetSize == 0 {
			logrus.Infof("[round %02d] empty subset, substituting uniform scores for density", c.round)
			return UniformScores(pool.Masks, c.rng.ForSubsystem(SubsystemRound(c.round))), nil
		}
		train := RunInference(c.collab.Apply, c.params, c.collab.Data.TrainEval(c.subset.IDs()), true)
		return DensityScores(train, pool.Outputs, pool.Masks)
	default:
		return nil, fmt.Errorf("unknown acquisition method %q", c.cfg.Method)
	}
}
