package al

import (
	"errors"
	"fmt"
)

// ErrInsufficientDevices is returned when fewer compute devices are
// available than the configured replication minimum. Checked once at
// startup, before any round.
var ErrInsufficientDevices = errors.New("al: insufficient compute devices")

// Config holds the acquisition-loop parameters. Model and data
// hyperparameters live with the collaborators; the loop only needs budgets,
// the method, and the seed.
type Config struct {
	Method                 Method
	AcquisitionBatchSize   int   // ids acquired per round
	InitialTrainingSetSize int   // ids seeded uniformly before round 0 (0 = start empty)
	MaxTrainingSetSize     int   // loop exits once the subset reaches this size
	BatchSize              int   // training batch size, for the oversampling repeat count
	TotalSteps             int   // fine-tune step budget per round
	EarlyStoppingPatience  int   // steps without validation improvement before stopping
	Seed                   int64 // master seed for every derived RNG stream

	// DeviceCount is the number of compute devices the collaborators report;
	// MinDevices is the replication minimum required to run. MinDevices = 0
	// skips the check.
	DeviceCount int
	MinDevices  int
}

// Validate checks the configuration. Any error here is fatal and must be
// raised before the first round executes.
func (c Config) Validate() error {
	if _, err := ParseMethod(c.Method.String()); err != nil {
		return err
	}
	if c.AcquisitionBatchSize <= 0 {
		return fmt.Errorf("al: acquisition batch size must be positive, got %d", c.AcquisitionBatchSize)
	}
	if c.InitialTrainingSetSize < 0 {
		return fmt.Errorf("al: initial training set size must be non-negative, got %d", c.InitialTrainingSetSize)
	}
	if c.MaxTrainingSetSize <= c.InitialTrainingSetSize {
		return fmt.Errorf("al: max training set size %d must exceed initial size %d",
			c.MaxTrainingSetSize, c.InitialTrainingSetSize)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("al: batch size must be positive, got %d", c.BatchSize)
	}
	if c.TotalSteps < evalEvery {
		return fmt.Errorf("al: total steps %d is below the evaluation cadence %d; no best snapshot could ever be recorded",
			c.TotalSteps, evalEvery)
	}
	if c.EarlyStoppingPatience <= 0 {
		return fmt.Errorf("al: early stopping patience must be positive, got %d", c.EarlyStoppingPatience)
	}
	if c.MinDevices > 0 && c.DeviceCount < c.MinDevices {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientDevices, c.DeviceCount, c.MinDevices)
	}
	return nil
}
