package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearFixture builds a neighborhood with two informative binary columns,
// one constant column, and one weak column, with y = 3*x0 - 2*x1 + 1.
func linearFixture(n int) (indicators [][]float64, target, weights []float64) {
	indicators = make([][]float64, n)
	target = make([]float64, n)
	weights = make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := float64(i % 2)
		x1 := float64((i / 2) % 2)
		weak := float64((i / 4) % 2 * (i % 3) % 2)
		indicators[i] = []float64{x0, x1, 0, weak}
		target[i] = 3*x0 - 2*x1 + 1
		weights[i] = 1
	}
	return indicators, target, weights
}

func TestFitSurrogateRecoversLinearRelation(t *testing.T) {
	indicators, target, weights := linearFixture(200)

	fit := FitSurrogate(indicators, target, weights, 2, 0.01)
	require.Equal(t, []int{0, 1}, fit.FeatureIndices)
	assert.InDelta(t, 3.0, fit.Coefficients[0], 0.1)
	assert.InDelta(t, -2.0, fit.Coefficients[1], 0.1)
	assert.InDelta(t, 1.0, fit.Intercept, 0.15)
	assert.Greater(t, fit.LocalFidelity, 0.95)
}

func TestFitSurrogateKeepsAllWhenKeepIsZero(t *testing.T) {
	indicators, target, weights := linearFixture(100)
	fit := FitSurrogate(indicators, target, weights, 0, 1)
	assert.Len(t, fit.FeatureIndices, 4)
}

func TestFitSurrogateRankingTieBreaksByIndex(t *testing.T) {
	// Two identical columns tie on correlation; the earliest index wins.
	n := 80
	indicators := make([][]float64, n)
	target := make([]float64, n)
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i % 2)
		indicators[i] = []float64{x, x}
		target[i] = x
		weights[i] = 1
	}

	fit := FitSurrogate(indicators, target, weights, 1, 1)
	require.Equal(t, []int{0}, fit.FeatureIndices)
}

func TestFitSurrogateToleratesSingularDesign(t *testing.T) {
	// Duplicate columns make the unregularized normal equations singular;
	// the ridge term must still produce a finite solution without erroring.
	n := 60
	indicators := make([][]float64, n)
	target := make([]float64, n)
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i % 2)
		indicators[i] = []float64{x, x, 1}
		target[i] = 2 * x
		weights[i] = 1
	}

	fit := FitSurrogate(indicators, target, weights, 3, 1)
	require.Len(t, fit.Coefficients, 3)
	for _, c := range fit.Coefficients {
		assert.False(t, c != c, "coefficient is NaN")
	}
	assert.GreaterOrEqual(t, fit.LocalFidelity, 0.0)
}

func TestFitSurrogateConstantTarget(t *testing.T) {
	n := 40
	indicators := make([][]float64, n)
	target := make([]float64, n)
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		indicators[i] = []float64{float64(i % 2)}
		target[i] = 7
		weights[i] = 1
	}

	fit := FitSurrogate(indicators, target, weights, 1, 1)
	assert.InDelta(t, 0.0, fit.Coefficients[0], 1e-9)
	assert.InDelta(t, 7.0, fit.Intercept, 1e-9)
}
