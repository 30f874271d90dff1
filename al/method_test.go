package al

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod_ValidNames(t *testing.T) {
	tests := []struct {
		input string
		want  Method
	}{
		{"uniform", MethodUniform},
		{"entropy", MethodEntropy},
		{"margin", MethodMargin},
		{"density", MethodDensity},
		{"  Entropy ", MethodEntropy}, // trimmed, case-insensitive
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := ParseMethod(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestParseMethod_UnknownName(t *testing.T) {
	for _, input := range []string{"", "bald", "random"} {
		_, err := ParseMethod(input)
		assert.Error(t, err)
	}
}

func TestValidMethodNames_Sorted(t *testing.T) {
	names := ValidMethodNames()
	assert.Equal(t, []string{"density", "entropy", "margin", "uniform"}, names)
}

func TestMethod_RoundTripsThroughString(t *testing.T) {
	for _, m := range []Method{MethodUniform, MethodEntropy, MethodMargin, MethodDensity} {
		parsed, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

func TestMethod_NeedsFeatures(t *testing.T) {
	assert.True(t, MethodDensity.NeedsFeatures())
	assert.False(t, MethodUniform.NeedsFeatures())
	assert.False(t, MethodEntropy.NeedsFeatures())
	assert.False(t, MethodMargin.NeedsFeatures())
}
