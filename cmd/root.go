package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/al-loop/al-loop/al"
	"github.com/al-loop/al-loop/al/synth"
)

var (
	// CLI flags for the acquisition loop
	seed                   int64   // Master seed for every derived RNG stream
	logLevel               string  // Log verbosity level
	acquisitionMethod      string  // Scoring strategy: uniform, entropy, margin, density
	acquisitionBatchSize   int     // Ids acquired per round
	initialTrainingSetSize int     // Ids seeded uniformly before round 0
	maxTrainingSetSize     int     // Stop once the labeled subset reaches this size
	earlyStoppingPatience  int     // Steps without val improvement before stopping
	totalSteps             int     // Fine-tune step budget per round
	batchSize              int     // Training batch size
	lrBase                 float64 // Constant learning rate
	minDevices             int     // Minimum compute devices required
	modelInit              string  // Optional pretrained checkpoint (YAML)
	reinitParams           []string

	// CLI flags for the synthetic task
	taskClasses    int
	taskFeatureDim int
	taskPoolSize   int
	taskValSize    int
	taskTestSize   int
	taskSpread     float64

	// experiment preset file
	experimentsPath string
	presetName      string
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "al-loop",
	Short: "Active-learning acquisition loop for image classifiers",
}

// runCmd executes one acquisition-loop experiment using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the acquisition loop on the synthetic task",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if presetName != "" {
			applyPreset(cmd)
		}

		// Resolve the acquisition method once, before any round.
		method, err := al.ParseMethod(acquisitionMethod)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		cfg := al.Config{
			Method:                 method,
			AcquisitionBatchSize:   acquisitionBatchSize,
			InitialTrainingSetSize: initialTrainingSetSize,
			MaxTrainingSetSize:     maxTrainingSetSize,
			BatchSize:              batchSize,
			TotalSteps:             totalSteps,
			EarlyStoppingPatience:  earlyStoppingPatience,
			Seed:                   seed,
			DeviceCount:            runtime.NumCPU(),
			MinDevices:             minDevices,
		}

		taskCfg := synth.TaskConfig{
			Classes:    taskClasses,
			FeatureDim: taskFeatureDim,
			PoolSize:   taskPoolSize,
			ValSize:    taskValSize,
			TestSize:   taskTestSize,
			BatchSize:  batchSize,
			Spread:     taskSpread,
			Seed:       seed,
		}
		task, err := synth.NewTask(taskCfg)
		if err != nil {
			logrus.Fatalf("Invalid task configuration: %v", err)
		}

		model := synth.Model{Classes: taskClasses, FeatureDim: taskFeatureDim}
		params, err := model.LoadCheckpoint(model.Init(), modelInit, reinitParams)
		if err != nil {
			logrus.Fatalf("Failed to load checkpoint: %v", err)
		}

		logrus.Infof("Starting acquisition loop: method=%s, batch=%d, initial=%d, max=%d, seed=%d",
			method, acquisitionBatchSize, initialTrainingSetSize, maxTrainingSetSize, seed)

		controller, err := al.NewController(cfg, params, al.Collaborators{
			Apply:  model.Apply,
			Update: model.Update,
			Eval:   model.Eval,
			Data:   task,
			LR:     al.ConstantLR(lrBase),
			Sink:   al.LogSink{},
		})
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		subset, curve, err := controller.Run()
		if err != nil {
			logrus.Fatalf("Acquisition loop failed: %v", err)
		}

		printSummary(subset, curve)
		logrus.Info("Acquisition loop complete.")
	},
}

// methodsCmd lists the recognized acquisition methods
var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List valid acquisition methods",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range al.ValidMethodNames() {
			fmt.Println(name)
		}
	},
}

// applyPreset overlays a named preset from the experiments file onto every
// flag the user did not set explicitly. CLI flags win over the preset.
func applyPreset(cmd *cobra.Command) {
	preset, err := LoadPreset(experimentsPath, presetName)
	if err != nil {
		logrus.Fatalf("Failed to load preset: %v", err)
	}

	flags := cmd.Flags()
	if preset.AcquisitionMethod != "" && !flags.Changed("acquisition-method") {
		acquisitionMethod = preset.AcquisitionMethod
	}
	if preset.AcquisitionBatchSize != 0 && !flags.Changed("acquisition-batch-size") {
		acquisitionBatchSize = preset.AcquisitionBatchSize
	}
	if preset.InitialTrainingSetSize != 0 && !flags.Changed("initial-training-set-size") {
		initialTrainingSetSize = preset.InitialTrainingSetSize
	}
	if preset.MaxTrainingSetSize != 0 && !flags.Changed("max-training-set-size") {
		maxTrainingSetSize = preset.MaxTrainingSetSize
	}
	if preset.EarlyStoppingPatience != 0 && !flags.Changed("early-stopping-patience") {
		earlyStoppingPatience = preset.EarlyStoppingPatience
	}
	if preset.TotalSteps != 0 && !flags.Changed("total-steps") {
		totalSteps = preset.TotalSteps
	}
	if preset.BatchSize != 0 && !flags.Changed("batch-size") {
		batchSize = preset.BatchSize
	}
	if preset.LRBase != 0 && !flags.Changed("lr-base") {
		lrBase = preset.LRBase
	}
	if preset.Task.Classes != 0 && !flags.Changed("classes") {
		taskClasses = preset.Task.Classes
	}
	if preset.Task.FeatureDim != 0 && !flags.Changed("feature-dim") {
		taskFeatureDim = preset.Task.FeatureDim
	}
	if preset.Task.PoolSize != 0 && !flags.Changed("pool-size") {
		taskPoolSize = preset.Task.PoolSize
	}
	if preset.Task.ValSize != 0 && !flags.Changed("val-size") {
		taskValSize = preset.Task.ValSize
	}
	if preset.Task.TestSize != 0 && !flags.Changed("test-size") {
		taskTestSize = preset.Task.TestSize
	}
	if preset.Task.Spread != 0 && !flags.Changed("spread") {
		taskSpread = preset.Task.Spread
	}
}

// printSummary displays the outcome of a completed run.
func printSummary(subset *al.Subset, curve []al.AccuracyPoint) {
	fmt.Println("=== Acquisition Summary ===")
	fmt.Printf("Rounds executed      : %d\n", len(curve))
	fmt.Printf("Final subset size    : %d\n", subset.Len())
	for _, point := range curve {
		fmt.Printf("Test accuracy @ %4d : %.4f\n", point.Step, point.Accuracy)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for all derived RNG streams")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Acquisition loop configs
	runCmd.Flags().StringVar(&acquisitionMethod, "acquisition-method", "uniform", "Acquisition method (uniform, entropy, margin, density)")
	runCmd.Flags().IntVar(&acquisitionBatchSize, "acquisition-batch-size", 5, "Ids acquired per round")
	runCmd.Flags().IntVar(&initialTrainingSetSize, "initial-training-set-size", 0, "Ids seeded uniformly before the first round")
	runCmd.Flags().IntVar(&maxTrainingSetSize, "max-training-set-size", 100, "Stop once the labeled subset reaches this size")
	runCmd.Flags().IntVar(&earlyStoppingPatience, "early-stopping-patience", 15, "Fine-tune steps without validation improvement before stopping")
	runCmd.Flags().IntVar(&totalSteps, "total-steps", 50, "Fine-tune step budget per round")
	runCmd.Flags().IntVar(&batchSize, "batch-size", 16, "Training batch size")
	runCmd.Flags().Float64Var(&lrBase, "lr-base", 0.05, "Constant learning rate")
	runCmd.Flags().IntVar(&minDevices, "min-devices", 1, "Minimum compute devices required to run")
	runCmd.Flags().StringVar(&modelInit, "model-init", "", "Pretrained checkpoint to load (YAML)")
	runCmd.Flags().StringSliceVar(&reinitParams, "reinit-params", nil, "Checkpoint tensors to reinitialize (weights, bias)")

	// Synthetic task configs
	runCmd.Flags().IntVar(&taskClasses, "classes", 4, "Number of classes")
	runCmd.Flags().IntVar(&taskFeatureDim, "feature-dim", 8, "Feature dimensionality")
	runCmd.Flags().IntVar(&taskPoolSize, "pool-size", 500, "Candidate pool size")
	runCmd.Flags().IntVar(&taskValSize, "val-size", 100, "Validation split size")
	runCmd.Flags().IntVar(&taskTestSize, "test-size", 200, "Held-out test split size")
	runCmd.Flags().Float64Var(&taskSpread, "spread", 1.0, "Within-class standard deviation")

	// Experiment presets
	runCmd.Flags().StringVar(&experimentsPath, "experiments", "experiments.yaml", "Path to the experiments preset file")
	runCmd.Flags().StringVar(&presetName, "preset", "", "Preset name to load from the experiments file")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(methodsCmd)
}
