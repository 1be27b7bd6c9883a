package autocorr

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sells-group/spatial-cli/internal/model"
	"github.com/sells-group/spatial-cli/internal/spatial"
)

// Global computes Moran's I for one attribute over one weights structure,
// with expectation, variance, z-score, and two-tailed p-value under the
// randomization assumption. Pure function of its inputs.
func Global(values []float64, w *spatial.Weights) (*model.GlobalResult, error) {
	m, err := newMoments(values, w)
	if err != nil {
		return nil, err
	}

	n := float64(m.n)

	var num float64
	for i := 0; i < w.N(); i++ {
		if !m.eligible[i] {
			continue
		}
		num += m.z[i] * m.lagged(w, i)
	}
	moranI := (n / m.s0) * num / m.sumZ2

	expectation := -1.0 / (n - 1)
	variance := randomizationVariance(m, w)

	zScore, pValue := normalTest(moranI, expectation, variance)

	return &model.GlobalResult{
		I:           moranI,
		Expectation: expectation,
		Variance:    variance,
		ZScore:      zScore,
		PValue:      pValue,
		N:           m.n,
		Islands:     len(w.Islands),
	}, nil
}

// randomizationVariance evaluates the standard randomization-assumption
// variance of Moran's I from S0, S1, S2, and the attribute kurtosis.
func randomizationVariance(m *moments, w *spatial.Weights) float64 {
	n := float64(m.n)
	s0 := m.s0

	// S1 sums (w_ij + w_ji)² once per unordered pair.
	type pairKey struct{ a, b int }
	pairs := make(map[pairKey]float64)
	colSums := make([]float64, w.N())
	for i := 0; i < w.N(); i++ {
		for _, wn := range w.Rows[i] {
			a, b := i, wn.Index
			if a > b {
				a, b = b, a
			}
			pairs[pairKey{a, b}] += wn.Weight
			colSums[wn.Index] += wn.Weight
		}
	}
	var s1 float64
	for _, sum := range pairs {
		s1 += sum * sum
	}

	// S2 sums the squared combined row and column totals.
	var s2 float64
	for i := 0; i < w.N(); i++ {
		t := w.RowSum(i) + colSums[i]
		s2 += t * t
	}

	a := n * ((n*n-3*n+3)*s1 - n*s2 + 3*s0*s0)
	b := m.b2 * ((n*n-n)*s1 - 2*n*s2 + 6*s0*s0)
	denom := (n - 1) * (n - 2) * (n - 3) * s0 * s0
	expectation := -1.0 / (n - 1)

	return (a-b)/denom - expectation*expectation
}

// normalTest standardizes a statistic against its reference moments and
// returns the z-score with a two-tailed normal p-value. A non-positive
// variance means the statistic cannot deviate under permutation, so the
// result carries no evidence against the null.
func normalTest(stat, expectation, variance float64) (zScore, pValue float64) {
	if variance <= 0 || math.IsNaN(variance) {
		return 0, 1
	}
	zScore = (stat - expectation) / math.Sqrt(variance)
	pValue = 2 * distuv.UnitNormal.Survival(math.Abs(zScore))
	return zScore, pValue
}
