package autocorr

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/spatial-cli/internal/model"
	"github.com/sells-group/spatial-cli/internal/spatial"
)

// DefaultAlpha is the conventional significance threshold. It is only a
// default: classification is sensitive to the cutoff, so callers compare
// labelings across thresholds.
const DefaultAlpha = 0.05

// Classify labels each unit from its local statistic sign and significance.
// Undefined local results stay undefined; lowering alpha can only demote
// units to not-significant, never promote them.
func Classify(locals []model.LocalResult, alpha float64) ([]model.Label, error) {
	if err := ValidateAlpha(alpha); err != nil {
		return nil, err
	}
	labels := make([]model.Label, len(locals))
	for i, lr := range locals {
		switch {
		case !lr.Defined:
			labels[i] = model.LabelUndefined
		case lr.PValue < alpha && lr.I > 0:
			labels[i] = model.LabelHotspot
		case lr.PValue < alpha && lr.I < 0:
			labels[i] = model.LabelColdspot
		default:
			labels[i] = model.LabelNotSignificant
		}
	}
	return labels, nil
}

// ValidateAlpha rejects significance thresholds outside (0, 1).
func ValidateAlpha(alpha float64) error {
	if !(alpha > 0 && alpha < 1) {
		return eris.Wrapf(spatial.ErrConfiguration, "alpha %g outside (0, 1)", alpha)
	}
	return nil
}
