// Package model defines the core domain types shared across the analysis pipeline.
package model

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ErrUnknownAttribute is returned when an attribute name is not present on a dataset.
// Callers distinguish it with eris.Is.
var ErrUnknownAttribute = eris.New("model: unknown attribute")

// SpatialUnit is one areal unit of the study region: a polygon geometry plus
// its named numeric attributes. Units are immutable after load; derived values
// (local statistics, labels) live on RunResult rows keyed by the unit's Index.
type SpatialUnit struct {
	Index    int                `json:"index"`
	ID       string             `json:"id"`
	Name     string             `json:"name,omitempty"`
	Geometry *geom.MultiPolygon `json:"-"`
	Attrs    map[string]float64 `json:"attrs"`
}

// Dataset is an ordered, index-aligned collection of spatial units. Order is
// established at load time and preserved through the whole pipeline: result
// rows join back to units by position.
type Dataset struct {
	Units  []SpatialUnit
	Source string // path or descriptor of the origin file
}

// Len returns the number of units.
func (d *Dataset) Len() int { return len(d.Units) }

// Column extracts one named numeric attribute as a slice index-aligned with
// Units. A name missing from any unit fails with ErrUnknownAttribute rather
// than yielding a silent NA.
func (d *Dataset) Column(name string) ([]float64, error) {
	out := make([]float64, len(d.Units))
	for i := range d.Units {
		v, ok := d.Units[i].Attrs[name]
		if !ok {
			return nil, eris.Wrapf(ErrUnknownAttribute, "attribute %q on unit %d", name, i)
		}
		out[i] = v
	}
	return out, nil
}

// AttributeNames returns the sorted set of attribute names present on the
// first unit. Loaders guarantee every unit carries the same attribute set.
func (d *Dataset) AttributeNames() []string {
	if len(d.Units) == 0 {
		return nil
	}
	names := make([]string, 0, len(d.Units[0].Attrs))
	for name := range d.Units[0].Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithDerived returns a copy of the dataset with one extra attribute column
// appended to every unit. The receiver is not modified.
func (d *Dataset) WithDerived(name string, values []float64) (*Dataset, error) {
	if len(values) != len(d.Units) {
		return nil, eris.Errorf("model: derived column %q has %d values for %d units", name, len(values), len(d.Units))
	}
	units := make([]SpatialUnit, len(d.Units))
	for i, u := range d.Units {
		attrs := make(map[string]float64, len(u.Attrs)+1)
		for k, v := range u.Attrs {
			attrs[k] = v
		}
		attrs[name] = values[i]
		u.Attrs = attrs
		units[i] = u
	}
	return &Dataset{Units: units, Source: d.Source}, nil
}

// Point is a planar coordinate pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointSet holds one representative point per unit, index-aligned with the
// dataset that produced it.
type PointSet []Point
