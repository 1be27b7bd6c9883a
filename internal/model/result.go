package model

import "time"

// Label classifies one unit from its local statistic and p-value.
type Label string

const (
	LabelHotspot        Label = "hotspot"
	LabelColdspot       Label = "coldspot"
	LabelNotSignificant Label = "not_significant"
	LabelUndefined      Label = "undefined" // unit had no neighbors; statistic is missing, not zero
)

// RuleKind names a neighbor rule family.
type RuleKind string

const (
	RuleDistanceBand RuleKind = "distance_band"
	RuleKNearest     RuleKind = "k_nearest"
)

// RuleSpec is the serializable description of a neighbor rule, carried in
// config, run records, and sweep tables. Exactly one family's fields apply.
type RuleSpec struct {
	Kind    RuleKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	MinDist float64  `json:"min_dist,omitempty" yaml:"min_dist" mapstructure:"min_dist"`
	MaxDist float64  `json:"max_dist,omitempty" yaml:"max_dist" mapstructure:"max_dist"`
	K       int      `json:"k,omitempty" yaml:"k" mapstructure:"k"`
}

// GlobalResult is the global Moran's I statistic with its inference under the
// randomization assumption. Immutable once produced.
type GlobalResult struct {
	I           float64 `json:"i"`
	Expectation float64 `json:"expectation"`
	Variance    float64 `json:"variance"`
	ZScore      float64 `json:"z_score"`
	PValue      float64 `json:"p_value"`
	N           int     `json:"n"`       // units with at least one neighbor
	Islands     int     `json:"islands"` // units excluded for having none
}

// LocalResult is one unit's local Moran's I contribution. Defined is false
// for zero-neighbor units, whose statistic and p-value carry no meaning and
// must never be read as zeros.
type LocalResult struct {
	Index       int     `json:"index"`
	Defined     bool    `json:"defined"`
	I           float64 `json:"i,omitempty"`
	Expectation float64 `json:"expectation,omitempty"`
	Variance    float64 `json:"variance,omitempty"`
	ZScore      float64 `json:"z_score,omitempty"`
	PValue      float64 `json:"p_value,omitempty"`
}

// UnitResult is one output row of a run: the unit's local statistic joined
// with its classification, index-aligned to the input dataset.
type UnitResult struct {
	Index  int         `json:"index"`
	UnitID string      `json:"unit_id"`
	Local  LocalResult `json:"local"`
	Label  Label       `json:"label"`
}

// RunResult is the complete output of one (rule, attribute) analysis.
type RunResult struct {
	Global GlobalResult `json:"global"`
	Units  []UnitResult `json:"units"`
}

// Run is a persisted analysis run: the specification that produced it plus
// its result.
type Run struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	Attribute string     `json:"attribute"`
	Rule      RuleSpec   `json:"rule"`
	Alpha     float64    `json:"alpha"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
