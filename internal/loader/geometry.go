package loader

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon,
// repairing rings on the way: unclosed rings are closed, consecutive
// duplicate vertices collapsed, and rings with fewer than four points
// dropped. Shapefile winding order assigns rings to polygons: clockwise
// rings open a new shell, counter-clockwise rings are holes of the current
// shell.
func polygonToMultiPolygon(p *shp.Polygon) (*geom.MultiPolygon, error) {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil, eris.New("empty polygon")
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		coords := repairRing(p.Points[start:end])
		if coords == nil {
			zap.L().Debug("loader: dropping degenerate ring", zap.Int32("part", i))
			continue
		}

		ring := geom.NewLinearRingFlat(geom.XY, coords)
		if clockwise(coords) || current == nil {
			if current != nil {
				if err := mp.Push(current); err != nil {
					return nil, eris.Wrap(err, "push polygon")
				}
			}
			current = geom.NewPolygon(geom.XY)
			if err := current.Push(ring); err != nil {
				return nil, eris.Wrap(err, "push shell ring")
			}
			continue
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("loader: dropping malformed hole ring", zap.Int32("part", i), zap.Error(err))
		}
	}

	if current != nil {
		if err := mp.Push(current); err != nil {
			return nil, eris.Wrap(err, "push polygon")
		}
	}
	if mp.NumPolygons() == 0 {
		return nil, eris.New("no valid rings")
	}
	return mp, nil
}

// repairRing returns closed, deduplicated flat coordinates, or nil if the
// ring collapses below four points.
func repairRing(points []shp.Point) []float64 {
	if len(points) < 3 {
		return nil
	}
	flat := make([]float64, 0, (len(points)+1)*2)
	for _, pt := range points {
		n := len(flat)
		if n >= 2 && flat[n-2] == pt.X && flat[n-1] == pt.Y {
			continue
		}
		flat = append(flat, pt.X, pt.Y)
	}
	// Close the ring if the shapefile left it open.
	if len(flat) >= 2 && (flat[0] != flat[len(flat)-2] || flat[1] != flat[len(flat)-1]) {
		flat = append(flat, flat[0], flat[1])
	}
	if len(flat) < 8 { // four points, closed
		return nil
	}
	return flat
}

// clockwise reports whether a flat closed ring winds clockwise, the shapefile
// convention for shells.
func clockwise(flat []float64) bool {
	var area float64
	for i := 0; i+3 < len(flat); i += 2 {
		area += flat[i]*flat[i+3] - flat[i+2]*flat[i+1]
	}
	return area < 0
}
