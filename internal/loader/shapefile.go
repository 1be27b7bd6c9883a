// Package loader reads polygon datasets from shapefiles into spatial units.
package loader

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/spatial-cli/internal/model"
)

// Options configures shapefile loading.
type Options struct {
	IDField   string // attribute column used as the unit ID; record ordinal when empty
	NameField string // optional display-name column
}

// LoadShapefile reads every polygon record of a shapefile into a dataset.
// Attribute columns that parse as numeric on every record become unit
// attributes; the rest are dropped (logged at debug). Geometries are repaired
// on the way in: unclosed rings are closed and degenerate rings dropped, so
// downstream stages always see valid polygons.
func LoadShapefile(path string, opts Options) (*model.Dataset, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(strings.TrimRight(f.String(), "\x00"))
	}

	type record struct {
		id   string
		name string
		geom *shp.Polygon
		raw  []string
	}
	var records []record
	numericOK := make([]bool, len(fields))
	for i := range numericOK {
		numericOK[i] = true
	}

	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			return nil, eris.Errorf("loader: record %d of %s is not a polygon", len(records), path)
		}

		rec := record{geom: poly, raw: make([]string, len(fields))}
		for i := range fields {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			rec.raw[i] = val
			if numericOK[i] && val != "" {
				if _, perr := strconv.ParseFloat(val, 64); perr != nil {
					numericOK[i] = false
				}
			}
			switch names[i] {
			case strings.ToLower(opts.IDField):
				rec.id = val
			case strings.ToLower(opts.NameField):
				rec.name = val
			}
		}
		records = append(records, rec)
	}

	var dropped []string
	units := make([]model.SpatialUnit, len(records))
	for idx, rec := range records {
		attrs := make(map[string]float64)
		for i, name := range names {
			if !numericOK[i] {
				continue
			}
			v, perr := strconv.ParseFloat(rec.raw[i], 64)
			if perr != nil {
				// Empty cell in an otherwise numeric column.
				return nil, eris.Errorf("loader: record %d has no value for numeric attribute %q", idx, name)
			}
			attrs[name] = v
		}

		mp, gerr := polygonToMultiPolygon(rec.geom)
		if gerr != nil {
			return nil, eris.Wrapf(gerr, "loader: record %d geometry", idx)
		}

		id := rec.id
		if id == "" {
			id = strconv.Itoa(idx)
		}
		units[idx] = model.SpatialUnit{
			Index:    idx,
			ID:       id,
			Name:     rec.name,
			Geometry: mp,
			Attrs:    attrs,
		}
	}

	for i, name := range names {
		if !numericOK[i] {
			dropped = append(dropped, name)
		}
	}
	if len(dropped) > 0 {
		zap.L().Debug("loader: dropped non-numeric columns",
			zap.String("path", path),
			zap.Strings("columns", dropped),
		)
	}

	zap.L().Info("loader: shapefile loaded",
		zap.String("path", path),
		zap.Int("units", len(units)),
		zap.Int("attributes", len(names)-len(dropped)),
	)

	return &model.Dataset{Units: units, Source: path}, nil
}
