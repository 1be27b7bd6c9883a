package spatial

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/spatial-cli/internal/model"
)

// gridPoints returns rows*cols points at integer coordinates, row-major.
func gridPoints(rows, cols int) model.PointSet {
	points := make(model.PointSet, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			points = append(points, model.Point{X: float64(c), Y: float64(r)})
		}
	}
	return points
}

func TestDistanceBand_RookAdjacency(t *testing.T) {
	points := gridPoints(3, 3)
	graph, err := DistanceBand{Min: 0, Max: 1.0}.Build(points)
	require.NoError(t, err)

	// Center cell touches all four orthogonal neighbors, corners touch two.
	assert.ElementsMatch(t, []int{1, 3, 5, 7}, graph.Neighbors[4])
	assert.ElementsMatch(t, []int{1, 3}, graph.Neighbors[0])
	assert.ElementsMatch(t, []int{5, 7}, graph.Neighbors[8])
}

func TestDistanceBand_Symmetric(t *testing.T) {
	points := model.PointSet{
		{X: 0, Y: 0}, {X: 0.5, Y: 2}, {X: 3, Y: 1}, {X: 1.5, Y: 0.25}, {X: 2, Y: 2},
	}
	graph, err := DistanceBand{Min: 0, Max: 2.1}.Build(points)
	require.NoError(t, err)

	for i, row := range graph.Neighbors {
		for _, j := range row {
			assert.Contains(t, graph.Neighbors[j], i, "edge %d->%d has no reverse", i, j)
		}
	}
}

func TestDistanceBand_NoSelfNeighbor(t *testing.T) {
	// Coincident points sit at distance zero from each other; the self pair
	// must still be excluded while the coincident pair is kept.
	points := model.PointSet{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 5, Y: 5}}
	graph, err := DistanceBand{Min: 0, Max: 0.5}.Build(points)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, graph.Neighbors[0])
	assert.Equal(t, []int{0}, graph.Neighbors[1])
	assert.Empty(t, graph.Neighbors[2])
}

func TestDistanceBand_AllEmptyGraph(t *testing.T) {
	points := gridPoints(2, 2)
	graph, err := DistanceBand{Min: 0, Max: 0.1}.Build(points)
	require.NoError(t, err)

	for i := range graph.Neighbors {
		assert.Empty(t, graph.Neighbors[i])
	}
}

func TestDistanceBand_InvalidRange(t *testing.T) {
	_, err := DistanceBand{Min: 2, Max: 1}.Build(gridPoints(2, 2))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrConfiguration))
}

func TestKNearest_Basic(t *testing.T) {
	points := model.PointSet{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 4, Y: 0}, {X: 10, Y: 0},
	}
	graph, err := KNearest{K: 2}.Build(points)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, graph.Neighbors[0])
	assert.Equal(t, []int{0, 2}, graph.Neighbors[1])
	assert.Equal(t, []int{0, 1}, graph.Neighbors[2])
	assert.Equal(t, []int{1, 2}, graph.Neighbors[3])
}

func TestKNearest_TieBreakByIndex(t *testing.T) {
	// Points 1 and 2 coincide, both at distance 1 from point 0; with k=1 the
	// lower index must win.
	points := model.PointSet{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0}, {X: 9, Y: 9},
	}
	graph, err := KNearest{K: 1}.Build(points)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, graph.Neighbors[0])
}

func TestKNearest_CoincidentNotSelf(t *testing.T) {
	// A point coincident with i is a valid neighbor at distance zero; i
	// itself never is.
	points := model.PointSet{
		{X: 2, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 3}, {X: 8, Y: 8},
	}
	graph, err := KNearest{K: 1}.Build(points)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, graph.Neighbors[0])
	assert.Equal(t, []int{0}, graph.Neighbors[1])
	for i, row := range graph.Neighbors {
		assert.NotContains(t, row, i)
	}
}

func TestKNearest_KTooLarge(t *testing.T) {
	_, err := KNearest{K: 4}.Build(gridPoints(2, 2))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrConfiguration))

	_, err = KNearest{K: 0}.Build(gridPoints(2, 2))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrConfiguration))
}

func TestRuleFromSpec(t *testing.T) {
	rule, err := RuleFromSpec(model.RuleSpec{Kind: model.RuleDistanceBand, MaxDist: 2})
	require.NoError(t, err)
	assert.Equal(t, DistanceBand{Min: 0, Max: 2}, rule)

	rule, err = RuleFromSpec(model.RuleSpec{Kind: model.RuleKNearest, K: 3})
	require.NoError(t, err)
	assert.Equal(t, KNearest{K: 3}, rule)

	_, err = RuleFromSpec(model.RuleSpec{Kind: "voronoi"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrConfiguration))
}
