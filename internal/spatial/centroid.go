// Package spatial builds the geometric structures of the analysis pipeline:
// representative points, neighbor graphs, and row-standardized weights.
package spatial

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/spatial-cli/internal/model"
)

// Centroids reduces each unit's polygon to its area-weighted centroid. The
// returned point set is index-aligned with units and never re-sorted.
func Centroids(units []model.SpatialUnit) (model.PointSet, error) {
	points := make(model.PointSet, len(units))
	for i := range units {
		mp := units[i].Geometry
		if mp == nil || mp.NumPolygons() == 0 {
			return nil, eris.Errorf("spatial: unit %d has no geometry", i)
		}
		x, y, err := multiPolygonCentroid(mp)
		if err != nil {
			return nil, eris.Wrapf(err, "spatial: centroid of unit %d", i)
		}
		points[i] = model.Point{X: x, Y: y}
	}
	return points, nil
}

// multiPolygonCentroid computes the area-weighted centroid across all member
// polygons. The shell ring contributes positive area, interior rings subtract.
func multiPolygonCentroid(mp *geom.MultiPolygon) (float64, float64, error) {
	var sumA, sumX, sumY float64
	for p := 0; p < mp.NumPolygons(); p++ {
		poly := mp.Polygon(p)
		for r := 0; r < poly.NumLinearRings(); r++ {
			a, cx, cy := ringCentroid(poly.LinearRing(r).Coords())
			sign := 1.0
			if r > 0 {
				sign = -1.0
			}
			sumA += sign * math.Abs(a)
			sumX += sign * math.Abs(a) * cx
			sumY += sign * math.Abs(a) * cy
		}
	}
	if sumA > 0 {
		return sumX / sumA, sumY / sumA, nil
	}
	// Degenerate polygon: fall back to the vertex mean of the first shell.
	coords := mp.Polygon(0).LinearRing(0).Coords()
	if len(coords) == 0 {
		return 0, 0, eris.New("empty shell ring")
	}
	var mx, my float64
	for _, c := range coords {
		mx += c[0]
		my += c[1]
	}
	n := float64(len(coords))
	return mx / n, my / n, nil
}

// ringCentroid returns the shoelace area and centroid of one closed ring.
func ringCentroid(coords []geom.Coord) (area, cx, cy float64) {
	if len(coords) < 3 {
		return 0, 0, 0
	}
	var a, sx, sy float64
	for i := 0; i < len(coords)-1; i++ {
		x0, y0 := coords[i][0], coords[i][1]
		x1, y1 := coords[i+1][0], coords[i+1][1]
		cross := x0*y1 - x1*y0
		a += cross
		sx += (x0 + x1) * cross
		sy += (y0 + y1) * cross
	}
	a /= 2
	if a == 0 {
		return 0, 0, 0
	}
	return a, sx / (6 * a), sy / (6 * a)
}
