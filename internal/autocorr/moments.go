package autocorr

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/spatial-cli/internal/spatial"
)

// moments holds the attribute deviations and weight sums shared by the global
// and local statistics. Islands are excluded from every term; their slots in
// z are left at zero and must not be read.
type moments struct {
	n        int       // connected units
	eligible []bool    // index-aligned eligibility mask
	z        []float64 // deviations from the mean over connected units
	sumZ2    float64
	sumZ4    float64
	b2       float64 // kurtosis ratio n·Σz⁴/(Σz²)²
	s0       float64 // total weight
}

// newMoments validates the (values, weights) pair and computes the shared
// terms. The randomization variance formulas divide by (n-1)(n-2)(n-3), so
// fewer than four connected units is insufficient data.
func newMoments(values []float64, w *spatial.Weights) (*moments, error) {
	if len(values) != w.N() {
		return nil, eris.Errorf("autocorr: %d values for %d units", len(values), w.N())
	}

	m := &moments{eligible: make([]bool, w.N()), z: make([]float64, w.N())}
	var mean float64
	for i := range values {
		if w.IsIsland(i) {
			continue
		}
		m.eligible[i] = true
		m.n++
		mean += values[i]
	}
	if m.n < 4 {
		return nil, eris.Wrapf(ErrInsufficientData, "%d connected units, need at least 4", m.n)
	}
	mean /= float64(m.n)

	for i := range values {
		if !m.eligible[i] {
			continue
		}
		z := values[i] - mean
		m.z[i] = z
		m.sumZ2 += z * z
		m.sumZ4 += z * z * z * z
	}
	if m.sumZ2 == 0 {
		return nil, eris.Wrap(ErrDegenerateAttribute, "all connected units share one value")
	}
	m.b2 = float64(m.n) * m.sumZ4 / (m.sumZ2 * m.sumZ2)

	for i := 0; i < w.N(); i++ {
		m.s0 += w.RowSum(i)
	}
	return m, nil
}

// lagged returns the spatially lagged deviation Σ_j w_ij z_j for unit i.
func (m *moments) lagged(w *spatial.Weights, i int) float64 {
	var lag float64
	for _, wn := range w.Rows[i] {
		lag += wn.Weight * m.z[wn.Index]
	}
	return lag
}
