package synth

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/al-loop/al-loop/al"
)

// checkpointFile is the YAML layout of a saved linear model.
type checkpointFile struct {
	Weights [][]float64 `yaml:"weights"`
	Bias    []float64   `yaml:"bias"`
}

// LoadCheckpoint is the al.CheckpointLoader for the linear model: it reads
// pretrained weights from a YAML file shaped like the initial parameters,
// then re-zeroes the tensors named in reinitParams ("weights", "bias") the
// way a fine-tune run reinitializes its classification head. An empty
// sourceURI returns init unchanged.
func (m Model) LoadCheckpoint(init al.Params, sourceURI string, reinitParams []string) (al.Params, error) {
	if sourceURI == "" {
		return init, nil
	}

	data, err := os.ReadFile(sourceURI)
	if err != nil {
		return nil, fmt.Errorf("synth: read checkpoint: %w", err)
	}

	var ckpt checkpointFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ckpt); err != nil {
		return nil, fmt.Errorf("synth: parse checkpoint %s: %w", sourceURI, err)
	}
	if len(ckpt.Weights) != m.Classes || len(ckpt.Bias) != m.Classes {
		return nil, fmt.Errorf("synth: checkpoint shape %dx%d does not match model %d classes",
			len(ckpt.Weights), len(ckpt.Bias), m.Classes)
	}
	for c, row := range ckpt.Weights {
		if len(row) != m.FeatureDim {
			return nil, fmt.Errorf("synth: checkpoint row %d has dim %d, want %d", c, len(row), m.FeatureDim)
		}
	}

	loaded := &weights{w: ckpt.Weights, b: ckpt.Bias}
	for _, name := range reinitParams {
		switch name {
		case "weights":
			for c := range loaded.w {
				loaded.w[c] = make([]float64, m.FeatureDim)
			}
		case "bias":
			loaded.b = make([]float64, m.Classes)
		default:
			return nil, fmt.Errorf("synth: unknown reinit parameter %q", name)
		}
	}
	return loaded, nil
}

// SaveCheckpoint writes the parameters as a YAML checkpoint file.
func (m Model) SaveCheckpoint(params al.Params, path string) error {
	w := params.(*weights)
	data, err := yaml.Marshal(checkpointFile{Weights: w.w, Bias: w.b})
	if err != nil {
		return fmt.Errorf("synth: marshal checkpoint: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("synth: write checkpoint: %w", err)
	}
	return nil
}

var _ al.CheckpointLoader = Model{}.LoadCheckpoint
