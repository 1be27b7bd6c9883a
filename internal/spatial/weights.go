package spatial

// WeightedNeighbor is one entry of a weights row.
type WeightedNeighbor struct {
	Index  int
	Weight float64
}

// Weights is a row-standardized spatial weights structure. Rows are
// index-aligned with the graph that produced them. A unit with neighbors has
// a row summing to 1; an island (zero-neighbor unit) keeps an empty row and
// is listed in Islands so statistics can exclude it explicitly instead of
// dividing by zero.
type Weights struct {
	Rows    [][]WeightedNeighbor
	Islands []int
}

// RowStandardize converts raw adjacency into weights where each of a unit's m
// neighbors receives 1/m.
func RowStandardize(g *NeighborGraph) *Weights {
	w := &Weights{Rows: make([][]WeightedNeighbor, g.N())}
	for i, neighbors := range g.Neighbors {
		if len(neighbors) == 0 {
			w.Islands = append(w.Islands, i)
			continue
		}
		share := 1.0 / float64(len(neighbors))
		row := make([]WeightedNeighbor, len(neighbors))
		for k, j := range neighbors {
			row[k] = WeightedNeighbor{Index: j, Weight: share}
		}
		w.Rows[i] = row
	}
	return w
}

// N returns the number of units covered by the weights.
func (w *Weights) N() int { return len(w.Rows) }

// Connected returns the number of units with at least one neighbor.
func (w *Weights) Connected() int { return len(w.Rows) - len(w.Islands) }

// IsIsland reports whether unit i has no neighbors.
func (w *Weights) IsIsland(i int) bool { return len(w.Rows[i]) == 0 }

// RowSum returns the total weight of unit i's row: 1 for connected units
// under row standardization, 0 for islands.
func (w *Weights) RowSum(i int) float64 {
	var sum float64
	for _, wn := range w.Rows[i] {
		sum += wn.Weight
	}
	return sum
}

// Weight returns w_ij, zero when j is not a neighbor of i.
func (w *Weights) Weight(i, j int) float64 {
	for _, wn := range w.Rows[i] {
		if wn.Index == j {
			return wn.Weight
		}
	}
	return 0
}
