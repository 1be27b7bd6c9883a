package loader

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cwSquare returns a closed clockwise unit-square ring anchored at (x, y).
func cwSquare(x, y float64) []shp.Point {
	return []shp.Point{
		{X: x, Y: y},
		{X: x, Y: y + 1},
		{X: x + 1, Y: y + 1},
		{X: x + 1, Y: y},
		{X: x, Y: y},
	}
}

func TestPolygonToMultiPolygon_SingleRing(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 1,
		Parts:    []int32{0},
		Points:   cwSquare(0, 0),
	}

	mp, err := polygonToMultiPolygon(poly)
	require.NoError(t, err)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 1, mp.Polygon(0).NumLinearRings())
}

func TestPolygonToMultiPolygon_ShellWithHole(t *testing.T) {
	// Clockwise outer shell, counter-clockwise hole inside it.
	shell := []shp.Point{
		{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 0}, {X: 0, Y: 0},
	}
	hole := []shp.Point{
		{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}, {X: 1, Y: 1},
	}
	poly := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 5},
		Points:   append(append([]shp.Point{}, shell...), hole...),
	}

	mp, err := polygonToMultiPolygon(poly)
	require.NoError(t, err)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())
}

func TestPolygonToMultiPolygon_TwoShells(t *testing.T) {
	first := cwSquare(0, 0)
	second := cwSquare(10, 10)
	poly := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, int32(len(first))},
		Points:   append(append([]shp.Point{}, first...), second...),
	}

	mp, err := polygonToMultiPolygon(poly)
	require.NoError(t, err)
	assert.Equal(t, 2, mp.NumPolygons())
}

func TestPolygonToMultiPolygon_RepairsUnclosedRing(t *testing.T) {
	// Last vertex missing: the loader closes the ring itself.
	open := cwSquare(0, 0)[:4]
	poly := &shp.Polygon{
		NumParts: 1,
		Parts:    []int32{0},
		Points:   open,
	}

	mp, err := polygonToMultiPolygon(poly)
	require.NoError(t, err)
	require.Equal(t, 1, mp.NumPolygons())

	ring := mp.Polygon(0).LinearRing(0)
	coords := ring.FlatCoords()
	require.GreaterOrEqual(t, len(coords), 10)
	assert.Equal(t, coords[0], coords[len(coords)-2])
	assert.Equal(t, coords[1], coords[len(coords)-1])
}

func TestPolygonToMultiPolygon_DropsDegenerateRing(t *testing.T) {
	// A collapsed ring next to a valid one: the valid shell survives.
	valid := cwSquare(0, 0)
	collapsed := []shp.Point{
		{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5},
	}
	poly := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, int32(len(valid))},
		Points:   append(append([]shp.Point{}, valid...), collapsed...),
	}

	mp, err := polygonToMultiPolygon(poly)
	require.NoError(t, err)
	assert.Equal(t, 1, mp.NumPolygons())
}

func TestPolygonToMultiPolygon_AllDegenerate(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 1,
		Parts:    []int32{0},
		Points:   []shp.Point{{X: 1, Y: 1}, {X: 1, Y: 1}},
	}
	_, err := polygonToMultiPolygon(poly)
	require.Error(t, err)
}

func TestPolygonToMultiPolygon_Empty(t *testing.T) {
	_, err := polygonToMultiPolygon(&shp.Polygon{})
	require.Error(t, err)
	_, err = polygonToMultiPolygon(nil)
	require.Error(t, err)
}

func TestRepairRing_DeduplicatesVertices(t *testing.T) {
	points := []shp.Point{
		{X: 0, Y: 0}, {X: 0, Y: 0},
		{X: 0, Y: 1},
		{X: 1, Y: 1}, {X: 1, Y: 1},
		{X: 1, Y: 0},
		{X: 0, Y: 0},
	}
	flat := repairRing(points)
	require.NotNil(t, flat)
	assert.Len(t, flat, 10)
}

func TestClockwise(t *testing.T) {
	cw := repairRing(cwSquare(0, 0))
	require.NotNil(t, cw)
	assert.True(t, clockwise(cw))

	ccw := []float64{0, 0, 1, 0, 1, 1, 0, 1, 0, 0}
	assert.False(t, clockwise(ccw))
}
