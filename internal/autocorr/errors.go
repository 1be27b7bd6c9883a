// Package autocorr computes global and local Moran's I under the
// randomization assumption and classifies hot/cold spots.
package autocorr

import "github.com/rotisserie/eris"

// ErrInsufficientData marks a weights structure too sparse for inference:
// the randomization moments are undefined unless at least four units carry a
// neighbor. Sweep callers skip the specification and continue.
var ErrInsufficientData = eris.New("autocorr: insufficient connected units")

// ErrDegenerateAttribute marks an attribute with zero variance among the
// connected units; the statistic's denominator vanishes.
var ErrDegenerateAttribute = eris.New("autocorr: attribute has zero variance")
