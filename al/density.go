package al

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoLabeledFeatures is returned when density scoring is asked to fit
	// on a subset with no valid examples. The controller substitutes
	// uniform scoring before this can happen in a normal run.
	ErrNoLabeledFeatures = errors.New("al: density scoring needs at least one valid labeled example")

	// ErrSingularCovariance is returned when the shared covariance cannot
	// be factorized even after diagonal regularization.
	ErrSingularCovariance = errors.New("al: covariance matrix is not positive definite")
)

// densityModel is a linear-discriminant-style generative model: one mean
// feature vector per observed class and a single covariance shared across
// classes, fitted on the labeled subset.
type densityModel struct {
	means []*mat.VecDense
	chol  mat.Cholesky
	dim   int
}

// fitDensityModel estimates per-class means and the shared covariance from
// the valid entries of a feature inference pass over the labeled subset.
// Classes are taken from the argmax of the label vectors.
func fitDensityModel(train InferenceResult) (*densityModel, error) {
	byClass := make(map[int][]int)
	var rows []int
	for i, valid := range train.Masks {
		if !valid {
			continue
		}
		rows = append(rows, i)
		byClass[argmax(train.Labels[i])] = append(byClass[argmax(train.Labels[i])], i)
	}
	if len(rows) == 0 {
		return nil, ErrNoLabeledFeatures
	}

	dim := len(train.Outputs[rows[0]])

	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	model := &densityModel{dim: dim}
	meanOf := make(map[int]*mat.VecDense, len(classes))
	for _, c := range classes {
		mean := mat.NewVecDense(dim, nil)
		for _, i := range byClass[c] {
			mean.AddVec(mean, mat.NewVecDense(dim, train.Outputs[i]))
		}
		mean.ScaleVec(1/float64(len(byClass[c])), mean)
		meanOf[c] = mean
		model.means = append(model.means, mean)
	}

	// Shared covariance of class-centered features over all valid rows.
	cov := mat.NewSymDense(dim, nil)
	diff := mat.NewVecDense(dim, nil)
	for _, i := range rows {
		diff.SubVec(mat.NewVecDense(dim, train.Outputs[i]), meanOf[argmax(train.Labels[i])])
		cov.SymRankOne(cov, 1, diff)
	}
	cov.ScaleSym(1/float64(len(rows)), cov)

	if err := model.factorize(cov); err != nil {
		return nil, err
	}
	return model, nil
}

// factorize Cholesky-factorizes cov, adding increasing diagonal jitter when
// the few-sample covariance is rank deficient.
func (m *densityModel) factorize(cov *mat.SymDense) error {
	if m.chol.Factorize(cov) {
		return nil
	}
	for jitter := 1e-9; jitter <= 1e-3; jitter *= 100 {
		for i := 0; i < m.dim; i++ {
			cov.SetSym(i, i, cov.At(i, i)+jitter)
		}
		if m.chol.Factorize(cov) {
			return nil
		}
	}
	return ErrSingularCovariance
}

// logLikelihood returns logsumexp over classes of -mahalanobis(x, class)/2.
func (m *densityModel) logLikelihood(feature []float64) (float64, error) {
	x := mat.NewVecDense(m.dim, feature)
	diff := mat.NewVecDense(m.dim, nil)
	solved := mat.NewVecDense(m.dim, nil)
	perClass := make([]float64, len(m.means))
	for c, mean := range m.means {
		diff.SubVec(x, mean)
		if err := m.chol.SolveVecTo(solved, diff); err != nil {
			return 0, fmt.Errorf("al: mahalanobis solve: %w", err)
		}
		perClass[c] = -mat.Dot(diff, solved) / 2
	}
	return floats.LogSumExp(perClass), nil
}

// DensityScores fits a class-conditional Gaussian on the labeled subset's
// features and scores every valid pool example by how unlikely it is under
// that fit. Raw log-likelihoods are normalized within the valid entries to
// (max observed - raw), so the least likely examples score highest. Masked
// entries score -Inf.
func DensityScores(train InferenceResult, poolFeatures [][]float64, poolMasks []bool) ([]float64, error) {
	model, err := fitDensityModel(train)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(poolFeatures))
	maxRaw := math.Inf(-1)
	for i, feature := range poolFeatures {
		if !poolMasks[i] {
			scores[i] = ninfScore
			continue
		}
		raw, err := model.logLikelihood(feature)
		if err != nil {
			return nil, err
		}
		scores[i] = raw
		if raw > maxRaw {
			maxRaw = raw
		}
	}
	for i, valid := range poolMasks {
		if valid {
			scores[i] = maxRaw - scores[i]
		}
	}
	return scores, nil
}

// argmax returns the index of the largest element, lowest index on ties.
func argmax(xs []float64) int {
	best, bestVal := 0, math.Inf(-1)
	for i, x := range xs {
		if x > bestVal {
			best, bestVal = i, x
		}
	}
	return best
}
