package main

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/spatial-cli/internal/loader"
	"github.com/sells-group/spatial-cli/internal/model"
)

// errNoSpecs rejects a sweep invocation with nothing to compare.
var errNoSpecs = eris.New("sweep: no specifications; pass --thresholds and/or --k-values")

// datasetFlags are the loading flags shared by analyze, sweep, and export.
type datasetFlags struct {
	input     string
	idField   string
	nameField string
}

// ruleFlags describe a neighbor rule on the command line.
type ruleFlags struct {
	kind    string
	k       int
	minDist float64
	maxDist float64
}

// loadDataset reads the shapefile named by flags, falling back to config.
func loadDataset(f datasetFlags) (*model.Dataset, error) {
	path := f.input
	if path == "" {
		path = cfg.Input.Path
	}
	if path == "" {
		return nil, eris.New("no input dataset: pass --input or set input.path in config")
	}
	idField := f.idField
	if idField == "" {
		idField = cfg.Input.IDField
	}
	nameField := f.nameField
	if nameField == "" {
		nameField = cfg.Input.NameField
	}
	return loader.LoadShapefile(path, loader.Options{IDField: idField, NameField: nameField})
}

// resolveRule builds a RuleSpec from flags, falling back to the configured
// default rule when no flag was set.
func resolveRule(f ruleFlags) model.RuleSpec {
	switch model.RuleKind(f.kind) {
	case model.RuleDistanceBand:
		return model.RuleSpec{Kind: model.RuleDistanceBand, MinDist: f.minDist, MaxDist: f.maxDist}
	case model.RuleKNearest:
		return model.RuleSpec{Kind: model.RuleKNearest, K: f.k}
	default:
		return cfg.Analysis.Rule
	}
}

// resolveAttribute falls back to the configured default attribute.
func resolveAttribute(attr string) (string, error) {
	if attr != "" {
		return attr, nil
	}
	if cfg.Analysis.Attribute != "" {
		return cfg.Analysis.Attribute, nil
	}
	return "", eris.New("no attribute: pass --attribute or set analysis.attribute in config")
}

// resolveAlpha falls back to the configured significance threshold.
func resolveAlpha(alpha float64) float64 {
	if alpha > 0 {
		return alpha
	}
	return cfg.Analysis.Alpha
}
