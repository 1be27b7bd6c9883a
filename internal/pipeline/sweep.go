package pipeline

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/spatial-cli/internal/autocorr"
	"github.com/sells-group/spatial-cli/internal/model"
	"github.com/sells-group/spatial-cli/internal/spatial"
)

// SweepOutcome is the result of one specification within a sweep: either a
// completed run or the typed error that disqualified it.
type SweepOutcome struct {
	Spec   Spec
	Result *model.RunResult
	Err    error
}

// Failed reports whether the specification produced no result.
func (o SweepOutcome) Failed() bool { return o.Err != nil }

// Reason summarizes why a specification failed, in terms of the error
// taxonomy rather than raw error text.
func (o SweepOutcome) Reason() string {
	switch {
	case o.Err == nil:
		return ""
	case eris.Is(o.Err, spatial.ErrConfiguration):
		return "configuration"
	case eris.Is(o.Err, autocorr.ErrInsufficientData):
		return "insufficient_data"
	case eris.Is(o.Err, autocorr.ErrDegenerateAttribute):
		return "degenerate_attribute"
	case eris.Is(o.Err, model.ErrUnknownAttribute):
		return "unknown_attribute"
	default:
		return "error"
	}
}

// Sweep evaluates each specification independently against the same dataset.
// A failed specification is recorded and skipped; the sweep always continues
// to the end, which is the whole point of comparing thresholds.
func Sweep(ds *model.Dataset, specs []Spec) []SweepOutcome {
	outcomes := make([]SweepOutcome, 0, len(specs))
	for _, spec := range specs {
		result, err := Run(ds, spec)
		if err != nil {
			zap.L().Warn("pipeline: specification skipped",
				zap.String("attribute", spec.Attribute),
				zap.String("rule", string(spec.Rule.Kind)),
				zap.String("reason", (SweepOutcome{Err: err}).Reason()),
				zap.Error(err),
			)
		}
		outcomes = append(outcomes, SweepOutcome{Spec: spec, Result: result, Err: err})
	}
	return outcomes
}
