package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/spatial-cli/internal/model"
)

// GeoJSON renders a run as a FeatureCollection: one feature per unit, the
// polygon geometry joined with its local statistic and label. Undefined
// statistics are omitted from properties rather than written as zeros.
func GeoJSON(run *model.Run, units []model.SpatialUnit) ([]byte, error) {
	if run.Result == nil {
		return nil, eris.New("export: run has no result")
	}
	if len(units) != len(run.Result.Units) {
		return nil, eris.Errorf("export: %d units for %d result rows", len(units), len(run.Result.Units))
	}

	fc := geojson.FeatureCollection{}
	for i, u := range run.Result.Units {
		props := map[string]interface{}{
			"unit_id": u.UnitID,
			"label":   string(u.Label),
		}
		if u.Local.Defined {
			props["local_i"] = u.Local.I
			props["z_score"] = u.Local.ZScore
			props["p_value"] = u.Local.PValue
		}
		for name, v := range units[i].Attrs {
			props[name] = v
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         u.UnitID,
			Geometry:   units[i].Geometry,
			Properties: props,
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return nil, eris.Wrap(err, "export: marshal feature collection")
	}
	return data, nil
}

// WriteGeoJSON writes the FeatureCollection to a file.
func WriteGeoJSON(path string, run *model.Run, units []model.SpatialUnit) error {
	data, err := GeoJSON(run, units)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}
