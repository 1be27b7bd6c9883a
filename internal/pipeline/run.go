// Package pipeline orchestrates one analysis run: centroids, neighbor graph,
// weights, global and local statistics, classification. Each run is a pure
// function of (dataset, spec); nothing is shared or mutated across runs, so
// side-by-side comparisons of specifications always start from fresh
// structures.
package pipeline

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/spatial-cli/internal/autocorr"
	"github.com/sells-group/spatial-cli/internal/model"
	"github.com/sells-group/spatial-cli/internal/spatial"
)

// Spec is one analytical specification: which attribute, which neighbor
// rule, and the significance threshold for labeling.
type Spec struct {
	Attribute string
	Rule      model.RuleSpec
	Alpha     float64
}

// Run executes the full pipeline for one specification. Configuration
// problems surface before any distance is computed; statistical degeneracies
// surface as their typed errors so callers can skip and continue.
func Run(ds *model.Dataset, spec Spec) (*model.RunResult, error) {
	if err := autocorr.ValidateAlpha(spec.Alpha); err != nil {
		return nil, err
	}
	rule, err := spatial.RuleFromSpec(spec.Rule)
	if err != nil {
		return nil, err
	}
	if err := rule.Validate(ds.Len()); err != nil {
		return nil, err
	}

	values, err := ds.Column(spec.Attribute)
	if err != nil {
		return nil, err
	}

	points, err := spatial.Centroids(ds.Units)
	if err != nil {
		return nil, err
	}

	graph, err := rule.Build(points)
	if err != nil {
		return nil, err
	}
	weights := spatial.RowStandardize(graph)

	global, err := autocorr.Global(values, weights)
	if err != nil {
		return nil, err
	}
	locals, err := autocorr.Local(values, weights)
	if err != nil {
		return nil, err
	}
	labels, err := autocorr.Classify(locals, spec.Alpha)
	if err != nil {
		return nil, err
	}

	units := make([]model.UnitResult, ds.Len())
	for i := range units {
		units[i] = model.UnitResult{
			Index:  i,
			UnitID: ds.Units[i].ID,
			Local:  locals[i],
			Label:  labels[i],
		}
	}

	zap.L().Info("pipeline: run complete",
		zap.String("attribute", spec.Attribute),
		zap.String("rule", string(spec.Rule.Kind)),
		zap.Float64("moran_i", global.I),
		zap.Float64("z_score", global.ZScore),
		zap.Float64("p_value", global.PValue),
		zap.Int("islands", global.Islands),
	)

	return &model.RunResult{Global: *global, Units: units}, nil
}

// DeriveLog appends a natural-log transform of an attribute as a new column
// named "log_<attr>". Non-positive values cannot be logged and fail the
// derivation.
func DeriveLog(ds *model.Dataset, attr string) (*model.Dataset, string, error) {
	values, err := ds.Column(attr)
	if err != nil {
		return nil, "", err
	}
	logged := make([]float64, len(values))
	for i, v := range values {
		if v <= 0 {
			return nil, "", eris.Errorf("pipeline: attribute %q has non-positive value %g at unit %d, cannot log-transform", attr, v, i)
		}
		logged[i] = math.Log(v)
	}
	name := "log_" + attr
	out, err := ds.WithDerived(name, logged)
	if err != nil {
		return nil, "", err
	}
	return out, name, nil
}
