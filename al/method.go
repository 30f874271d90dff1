package al

import (
	"fmt"
	"sort"
	"strings"
)

// Method selects the acquisition scoring strategy. The method is resolved
// from its name exactly once at startup; an unknown name is a configuration
// error raised before any round executes.
type Method int

const (
	// MethodUniform scores every valid pool example with an independent
	// U[0,1) draw. Baseline random acquisition, and the fallback whenever
	// a score needs labeled data that does not exist yet.
	MethodUniform Method = iota

	// MethodEntropy scores by Shannon entropy of the predictive
	// distribution, in nats.
	MethodEntropy

	// MethodMargin scores by the negated gap between the top two class
	// probabilities.
	MethodMargin

	// MethodDensity scores by distance from a class-conditional Gaussian
	// density fitted on the labeled subset's features.
	MethodDensity
)

// validMethodNames maps acquisition method names to their Method value.
// Unexported to prevent mutation.
var validMethodNames = map[string]Method{
	"uniform": MethodUniform,
	"entropy": MethodEntropy,
	"margin":  MethodMargin,
	"density": MethodDensity,
}

// ParseMethod resolves an acquisition method name. Matching is
// case-insensitive. Returns an error listing the valid names on failure.
func ParseMethod(name string) (Method, error) {
	m, ok := validMethodNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown acquisition method %q; valid: %s",
			name, strings.Join(ValidMethodNames(), ", "))
	}
	return m, nil
}

// ValidMethodNames returns the sorted list of recognized method names.
func ValidMethodNames() []string {
	names := make([]string, 0, len(validMethodNames))
	for name := range validMethodNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns the canonical name of the method.
func (m Method) String() string {
	switch m {
	case MethodUniform:
		return "uniform"
	case MethodEntropy:
		return "entropy"
	case MethodMargin:
		return "margin"
	case MethodDensity:
		return "density"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// NeedsFeatures reports whether the method scores pre-logit features
// instead of logits, which tells the pool inference pass what to collect.
func (m Method) NeedsFeatures() bool {
	return m == MethodDensity
}
