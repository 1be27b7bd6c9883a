package autocorr

import (
	"github.com/sells-group/spatial-cli/internal/model"
	"github.com/sells-group/spatial-cli/internal/spatial"
)

// Local computes the local Moran's I decomposition: one statistic and p-value
// per unit, index-aligned with the input. Island units receive an undefined
// result (Defined=false) rather than a zero, which would be indistinguishable
// from a genuine absence of autocorrelation. The defined statistics sum to
// S0 times the global I, the standard identity used as a correctness check.
func Local(values []float64, w *spatial.Weights) ([]model.LocalResult, error) {
	m, err := newMoments(values, w)
	if err != nil {
		return nil, err
	}

	n := float64(m.n)
	m2 := m.sumZ2 / n

	results := make([]model.LocalResult, w.N())
	for i := 0; i < w.N(); i++ {
		results[i] = model.LocalResult{Index: i}
		if !m.eligible[i] {
			continue
		}

		localI := m.z[i] / m2 * m.lagged(w, i)

		rowSum := w.RowSum(i)
		var rowSum2 float64
		for _, wn := range w.Rows[i] {
			rowSum2 += wn.Weight * wn.Weight
		}

		expectation := -rowSum / (n - 1)
		variance := rowSum2*(n-m.b2)/(n-1) +
			(rowSum*rowSum-rowSum2)*(2*m.b2-n)/((n-1)*(n-2)) -
			(rowSum/(n-1))*(rowSum/(n-1))

		zScore, pValue := normalTest(localI, expectation, variance)

		results[i] = model.LocalResult{
			Index:       i,
			Defined:     true,
			I:           localI,
			Expectation: expectation,
			Variance:    variance,
			ZScore:      zScore,
			PValue:      pValue,
		}
	}
	return results, nil
}
