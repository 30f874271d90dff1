package al

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// evalEvery is the fixed evaluation cadence of the fine-tune loop: train and
// validation accuracy are measured every evalEvery-th step.
const evalEvery = 5

// ErrNoBestSnapshot is returned when a fine-tune call finishes without a
// single evaluation having recorded a best snapshot, which can only happen
// when fewer than evalEvery steps run. Config.Validate rejects such budgets
// up front.
var ErrNoBestSnapshot = errors.New("al: fine-tuning recorded no validation snapshot")

// AccuracyPoint pairs an accuracy measurement with the step (or subset
// size) it was taken at.
type AccuracyPoint struct {
	Step     int
	Accuracy float64
}

// RoundInfo reports one fine-tune call, for logging only.
type RoundInfo struct {
	TrainAccuracies []AccuracyPoint
	ValAccuracies   []AccuracyPoint
	BestStep        int
	BestValAccuracy float64
	EarlyStopped    bool
}

// FinetuneOpts bundles the collaborators and budget shared by every
// fine-tune call of a run.
type FinetuneOpts struct {
	Update     UpdateFn
	Eval       EvalFn
	LR         LRSchedule
	TotalSteps int
	Patience   int // steps without validation improvement before stopping
}

// Finetune runs gradient updates over the train stream for up to
// opts.TotalSteps steps, evaluating train and validation accuracy every
// evalEvery steps. The best-by-validation-accuracy snapshot wins, with ties
// going to the newer snapshot; when Patience steps pass without a new best,
// the loop stops early. Returns the best snapshot (never the last-seen
// parameters), the advanced update RNG state, and the accuracy curves.
//
// The train stream is consumed as far as needed; if it runs dry before
// TotalSteps the loop ends there. trainEval and val are factories because
// each evaluation needs a fresh pass.
func Finetune(opts FinetuneOpts, params Params, rng int64, train DatasetStream, trainEval, val StreamFn) (Params, int64, RoundInfo, error) {
	var (
		info       RoundInfo
		bestParams Params
		haveBest   bool
	)
	bestStep := 1
	bestValAcc := -1.0

	for step := 1; step <= opts.TotalSteps; step++ {
		batch, ok := train.Next()
		if !ok {
			break
		}
		params, _, rng, _ = opts.Update(params, opts.LR(step), batch.Images, batch.Labels, rng)

		if step%evalEvery == 0 {
			trainAcc := Accuracy(opts.Eval, params, trainEval())
			valAcc := Accuracy(opts.Eval, params, val())
			logrus.Debugf("[step %04d] accuracy - train: %.4f, val: %.4f", step, trainAcc, valAcc)
			info.TrainAccuracies = append(info.TrainAccuracies, AccuracyPoint{Step: step, Accuracy: trainAcc})
			info.ValAccuracies = append(info.ValAccuracies, AccuracyPoint{Step: step, Accuracy: valAcc})

			if valAcc >= bestValAcc {
				bestStep = step
				bestValAcc = valAcc
				bestParams = params
				haveBest = true
			}
		}

		// Patience counts steps, not evaluations, so a stale best stops
		// the loop even between evaluation ticks.
		if haveBest && step-bestStep >= opts.Patience {
			logrus.Infof("[step %04d] early stopping, best val %.4f at step %d", step, bestValAcc, bestStep)
			info.EarlyStopped = true
			break
		}
	}

	if !haveBest {
		return nil, rng, RoundInfo{}, ErrNoBestSnapshot
	}

	info.BestStep = bestStep
	info.BestValAccuracy = bestValAcc
	return bestParams, rng, info, nil
}
