package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/al-loop/al-loop/al/synth"
)

// Preset is one named experiment preset in an experiments YAML file.
// Zero-valued fields fall back to the CLI flag defaults.
type Preset struct {
	AcquisitionMethod      string           `yaml:"acquisition_method"`
	AcquisitionBatchSize   int              `yaml:"acquisition_batch_size"`
	InitialTrainingSetSize int              `yaml:"initial_training_set_size"`
	MaxTrainingSetSize     int              `yaml:"max_training_set_size"`
	EarlyStoppingPatience  int              `yaml:"early_stopping_patience"`
	TotalSteps             int              `yaml:"total_steps"`
	BatchSize              int              `yaml:"batch_size"`
	LRBase                 float64          `yaml:"lr_base"`
	Task                   synth.TaskConfig `yaml:"task"`
}

// ExperimentsFile is the full structure of an experiments YAML file. All
// top-level sections must be listed to satisfy KnownFields(true) strict
// parsing: a typo in a preset must be an error, not a silent default.
type ExperimentsFile struct {
	Version string            `yaml:"version"`
	Presets map[string]Preset `yaml:"presets"`
}

// LoadPreset reads an experiments file and returns the named preset.
func LoadPreset(path, name string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read experiments file: %w", err)
	}

	var file ExperimentsFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return Preset{}, fmt.Errorf("parse experiments file %s: %w", path, err)
	}

	preset, ok := file.Presets[name]
	if !ok {
		names := make([]string, 0, len(file.Presets))
		for n := range file.Presets {
			names = append(names, n)
		}
		return Preset{}, fmt.Errorf("preset %q not found in %s (have %v)", name, path, names)
	}
	return preset, nil
}
