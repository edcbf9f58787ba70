package tabular

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// defaultRidge is the L2 strength used when the config leaves it zero. Any
// positive value guarantees a unique solution even for a singular design
// matrix.
const defaultRidge = 1.0

// SurrogateFit is the result of one weighted ridge fit in indicator space:
// the retained feature indices with their signed coefficients, the intercept,
// and the weighted R² of the fit over the synthetic neighborhood. The R² is a
// diagnostic for the caller to judge reliability, never a failure condition.
type SurrogateFit struct {
	FeatureIndices []int
	Coefficients   []float64
	Intercept      float64
	LocalFidelity  float64
}

// FitSurrogate fits a weighted, ridge-regularized linear model of the target
// predictions on the indicator columns. Candidate features are first ranked
// by absolute weighted correlation with the target and only the top keep
// survive, which holds overfitting down in high-dimensional indicator
// spaces. Ranking ties break by earliest feature index.
//
// Numerical edge cases (constant columns, duplicate columns, tiny
// neighborhoods) never error: regularization keeps the normal equations
// solvable, and a failed Cholesky retries with a heavier diagonal.
func FitSurrogate(indicators [][]float64, target, weights []float64, keep int, ridge float64) *SurrogateFit {
	n := len(indicators)
	numFeatures := 0
	if n > 0 {
		numFeatures = len(indicators[0])
	}
	if keep <= 0 || keep > numFeatures {
		keep = numFeatures
	}
	if ridge <= 0 {
		ridge = defaultRidge
	}

	selected := rankFeatures(indicators, target, weights, keep)

	// Weighted means for centering; the intercept is recovered afterwards so
	// it never gets penalized.
	yMean := stat.Mean(target, weights)
	xMeans := make([]float64, len(selected))
	col := make([]float64, n)
	for j, f := range selected {
		for i := 0; i < n; i++ {
			col[i] = indicators[i][f]
		}
		xMeans[j] = stat.Mean(col, weights)
	}

	coefs := solveRidge(indicators, target, weights, selected, xMeans, yMean, ridge)

	intercept := yMean
	for j := range coefs {
		intercept -= coefs[j] * xMeans[j]
	}

	// Weighted R² of the surrogate against the neighborhood.
	estimates := make([]float64, n)
	for i := 0; i < n; i++ {
		yhat := intercept
		for j, f := range selected {
			yhat += coefs[j] * indicators[i][f]
		}
		estimates[i] = yhat
	}
	fidelity := stat.RSquaredFrom(estimates, target, weights)
	if math.IsNaN(fidelity) || math.IsInf(fidelity, 0) {
		fidelity = 0
	}

	return &SurrogateFit{
		FeatureIndices: selected,
		Coefficients:   coefs,
		Intercept:      intercept,
		LocalFidelity:  fidelity,
	}
}

// rankFeatures orders candidate columns by |weighted correlation with the
// target| and returns the top keep indices in ascending index order.
func rankFeatures(indicators [][]float64, target, weights []float64, keep int) []int {
	n := len(indicators)
	numFeatures := 0
	if n > 0 {
		numFeatures = len(indicators[0])
	}

	type scored struct {
		index int
		score float64
	}
	scores := make([]scored, numFeatures)
	col := make([]float64, n)
	for f := 0; f < numFeatures; f++ {
		for i := 0; i < n; i++ {
			col[i] = indicators[i][f]
		}
		r := stat.Correlation(col, target, weights)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			r = 0
		}
		scores[f] = scored{index: f, score: math.Abs(r)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].index < scores[j].index
	})

	selected := make([]int, 0, keep)
	for _, s := range scores[:keep] {
		selected = append(selected, s.index)
	}
	sort.Ints(selected)
	return selected
}

// solveRidge solves (Xc'WXc + λI)β = Xc'Wyc on the centered, selected
// columns via Cholesky, thickening the diagonal on the rare factorization
// failure.
func solveRidge(indicators [][]float64, target, weights []float64, selected []int, xMeans []float64, yMean, ridge float64) []float64 {
	n := len(indicators)
	k := len(selected)
	if k == 0 {
		return nil
	}

	// Gram matrix and moment vector on centered data.
	gram := mat.NewSymDense(k, nil)
	moment := make([]float64, k)
	for a := 0; a < k; a++ {
		fa := selected[a]
		for b := a; b < k; b++ {
			fb := selected[b]
			sum := 0.0
			for i := 0; i < n; i++ {
				xa := indicators[i][fa] - xMeans[a]
				xb := indicators[i][fb] - xMeans[b]
				sum += weights[i] * xa * xb
			}
			if a == b {
				sum += ridge
			}
			gram.SetSym(a, b, sum)
		}
		msum := 0.0
		for i := 0; i < n; i++ {
			msum += weights[i] * (indicators[i][fa] - xMeans[a]) * (target[i] - yMean)
		}
		moment[a] = msum
	}

	var chol mat.Cholesky
	factorized := false
	for attempt := 0; attempt < 4 && !factorized; attempt++ {
		factorized = chol.Factorize(gram)
		if !factorized {
			// Thicken the diagonal and retry; with enough regularization
			// the matrix is always SPD.
			for d := 0; d < k; d++ {
				gram.SetSym(d, d, gram.At(d, d)+ridge*math.Pow(10, float64(attempt+1)))
			}
		}
	}

	coefs := make([]float64, k)
	if !factorized {
		return coefs
	}
	var solution mat.VecDense
	if err := chol.SolveVecTo(&solution, mat.NewVecDense(k, moment)); err != nil {
		// Unreachable in practice after diagonal thickening; fall back to
		// the zero surrogate rather than erroring.
		return coefs
	}
	for j := 0; j < k; j++ {
		coefs[j] = solution.AtVec(j)
	}
	return coefs
}
