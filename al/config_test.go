package al

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Method:                 MethodUniform,
		AcquisitionBatchSize:   5,
		InitialTrainingSetSize: 0,
		MaxTrainingSetSize:     20,
		BatchSize:              8,
		TotalSteps:             25,
		EarlyStoppingPatience:  15,
		Seed:                   42,
		DeviceCount:            8,
		MinDevices:             1,
	}
}

func TestConfig_Valid(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown method", func(c *Config) { c.Method = Method(99) }},
		{"zero acquisition batch", func(c *Config) { c.AcquisitionBatchSize = 0 }},
		{"negative initial size", func(c *Config) { c.InitialTrainingSetSize = -1 }},
		{"max not above initial", func(c *Config) { c.InitialTrainingSetSize = 20 }},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"steps below eval cadence", func(c *Config) { c.TotalSteps = 4 }},
		{"zero patience", func(c *Config) { c.EarlyStoppingPatience = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_DeviceCheck(t *testing.T) {
	cfg := validConfig()
	cfg.MinDevices = 8
	cfg.DeviceCount = 4
	assert.ErrorIs(t, cfg.Validate(), ErrInsufficientDevices)

	// MinDevices = 0 skips the check entirely.
	cfg.MinDevices = 0
	cfg.DeviceCount = 0
	assert.NoError(t, cfg.Validate())
}
