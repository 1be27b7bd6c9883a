package spatial

import (
	"math"
	"runtime"
	"sort"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/spatial-cli/internal/model"
)

// ErrConfiguration marks invalid analysis parameters: bad rule bounds, k out
// of range, alpha outside (0,1). It is raised before any computation starts
// so a sweep caller can skip the specification and continue.
var ErrConfiguration = eris.New("spatial: invalid configuration")

// NeighborGraph is the adjacency structure over unit indices produced by a
// neighbor rule. Rows are index-aligned with the point set; a row may be
// empty, and no row ever contains its own index.
type NeighborGraph struct {
	Neighbors [][]int
}

// N returns the number of units in the graph.
func (g *NeighborGraph) N() int { return len(g.Neighbors) }

// NeighborRule derives a neighbor graph from a point set.
type NeighborRule interface {
	// Validate rejects parameters that make no sense for n points. It runs
	// before any distance is computed.
	Validate(n int) error
	// Build produces the adjacency structure. Points are read-only.
	Build(points model.PointSet) (*NeighborGraph, error)
	// Spec returns the serializable description of the rule.
	Spec() model.RuleSpec
}

// RuleFromSpec constructs the neighbor rule described by a RuleSpec.
func RuleFromSpec(spec model.RuleSpec) (NeighborRule, error) {
	switch spec.Kind {
	case model.RuleDistanceBand:
		return DistanceBand{Min: spec.MinDist, Max: spec.MaxDist}, nil
	case model.RuleKNearest:
		return KNearest{K: spec.K}, nil
	default:
		return nil, eris.Wrapf(ErrConfiguration, "unknown rule kind %q", spec.Kind)
	}
}

// DistanceBand includes j as a neighbor of i when the Euclidean distance
// between their points lies in [Min, Max]. The result is symmetric.
type DistanceBand struct {
	Min float64
	Max float64
}

// Validate implements NeighborRule.
func (r DistanceBand) Validate(n int) error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return eris.Wrap(ErrConfiguration, "distance band bounds must not be NaN")
	}
	if r.Min < 0 {
		return eris.Wrapf(ErrConfiguration, "distance band min %g is negative", r.Min)
	}
	if r.Min > r.Max {
		return eris.Wrapf(ErrConfiguration, "distance band min %g exceeds max %g", r.Min, r.Max)
	}
	return nil
}

// Build implements NeighborRule. The pairwise scan is O(n²); rows are
// computed independently and in parallel since each row only writes its own
// slot.
func (r DistanceBand) Build(points model.PointSet) (*NeighborGraph, error) {
	if err := r.Validate(len(points)); err != nil {
		return nil, err
	}
	rows := make([][]int, len(points))
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range points {
		i := i
		eg.Go(func() error {
			var row []int
			for j := range points {
				if j == i {
					continue
				}
				d := distance(points[i], points[j])
				if d >= r.Min && d <= r.Max {
					row = append(row, j)
				}
			}
			rows[i] = row
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &NeighborGraph{Neighbors: rows}, nil
}

// Spec implements NeighborRule.
func (r DistanceBand) Spec() model.RuleSpec {
	return model.RuleSpec{Kind: model.RuleDistanceBand, MinDist: r.Min, MaxDist: r.Max}
}

// KNearest includes the K points closest to i, ties broken by lowest original
// index so results are deterministic. Self is always excluded, even when
// other points coincide with it at distance zero. The result may be
// asymmetric.
type KNearest struct {
	K int
}

// Validate implements NeighborRule.
func (r KNearest) Validate(n int) error {
	if r.K < 1 {
		return eris.Wrapf(ErrConfiguration, "k must be at least 1, got %d", r.K)
	}
	if r.K >= n {
		return eris.Wrapf(ErrConfiguration, "k %d requires more than %d points", r.K, n)
	}
	return nil
}

// Build implements NeighborRule.
func (r KNearest) Build(points model.PointSet) (*NeighborGraph, error) {
	if err := r.Validate(len(points)); err != nil {
		return nil, err
	}
	rows := make([][]int, len(points))
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range points {
		i := i
		eg.Go(func() error {
			type candidate struct {
				idx  int
				dist float64
			}
			cands := make([]candidate, 0, len(points)-1)
			for j := range points {
				if j == i {
					continue
				}
				cands = append(cands, candidate{idx: j, dist: distance(points[i], points[j])})
			}
			sort.Slice(cands, func(a, b int) bool {
				if cands[a].dist != cands[b].dist {
					return cands[a].dist < cands[b].dist
				}
				return cands[a].idx < cands[b].idx
			})
			row := make([]int, r.K)
			for k := 0; k < r.K; k++ {
				row[k] = cands[k].idx
			}
			sort.Ints(row)
			rows[i] = row
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &NeighborGraph{Neighbors: rows}, nil
}

// Spec implements NeighborRule.
func (r KNearest) Spec() model.RuleSpec {
	return model.RuleSpec{Kind: model.RuleKNearest, K: r.K}
}

func distance(a, b model.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
