package phtrees

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// indexResolver resolves a cell index to itself (as float64 for
// coordinates, "c<i>" for symbols), so that tests can read index sets back
// out of serialized volumes.
type indexResolver struct {
	kind  GeometryKind
	calls int
}

func (r *indexResolver) vertex(i int) Vertex {
	if r.kind == Coordinates {
		return float64(i)
	}
	return fmt.Sprintf("c%d", i)
}

func (r *indexResolver) ResolveCell(i int) (Simplex, error) {
	r.calls++
	return Simplex{r.vertex(i)}, nil
}

func (r *indexResolver) ResolveCells(indices []int) ([]Simplex, error) {
	r.calls++
	out := make([]Simplex, len(indices))
	for i, x := range indices {
		out[i] = Simplex{r.vertex(x)}
	}
	return out, nil
}

func (r *indexResolver) ResolveVertices(indices []int) ([]Vertex, error) {
	r.calls++
	out := make([]Vertex, len(indices))
	for i, x := range indices {
		out[i] = r.vertex(x)
	}
	return out, nil
}

func (r *indexResolver) Boundary(indices []int) ([]Simplex, error) {
	r.calls++
	s := make(Simplex, len(indices))
	for i, x := range indices {
		s[i] = r.vertex(x)
	}
	return []Simplex{s}, nil
}

func (r *indexResolver) BoundaryVertices(indices []int) ([]Vertex, error) {
	return r.ResolveVertices(indices)
}

func (r *indexResolver) BuildDrawer(count int, opts DrawOptions) (Drawer, error) {
	return &recordingDrawer{}, nil
}

func (r *indexResolver) DrawBoundary(d Drawer, indices []int, color Color, opts DrawOptions) error {
	points := make([][]float64, len(indices))
	for i, x := range indices {
		points[i] = []float64{float64(x)}
	}
	return d.DrawSimplex(points, color, opts)
}

type drawCall struct {
	vertices [][]float64
	color    Color
	opts     DrawOptions
}

type recordingDrawer struct {
	calls []drawCall
}

func (d *recordingDrawer) DrawSimplex(vertices [][]float64, color Color, opts DrawOptions) error {
	d.calls = append(d.calls, drawCall{vertices, color, opts})
	return nil
}

// failingResolver fails every call with err.
type failingResolver struct {
	indexResolver
	err error
}

func (r *failingResolver) Boundary([]int) ([]Simplex, error) {
	return nil, r.err
}

// fakeIndex is a SpatialIndex with canned answers.
type fakeIndex struct {
	nearest   map[[2]float64]int
	rectangle []int
}

func (ix *fakeIndex) NearestPair(x, y float64) (int, bool) {
	d, ok := ix.nearest[[2]float64{x, y}]
	return d, ok
}

func (ix *fakeIndex) InRectangle(xlo, xhi, ylo, yhi float64) []int {
	if xhi < xlo || yhi < ylo {
		return nil
	}
	return ix.rectangle
}

func chainTriples() []Triple {
	return []Triple{
		{BirthIndex: 0, DeathIndex: 5, ParentDeath: Inf},
		{BirthIndex: 1, DeathIndex: 4, ParentDeath: 5},
		{BirthIndex: 2, DeathIndex: 3, ParentDeath: 4},
	}
}

func chainLevels() map[int]float64 {
	return map[int]float64{0: 0, 1: 1, 2: 2, 3: 2.5, 4: 3, 5: 4}
}

func buildChain(t testing.TB) *Forest {
	f, err := Build(chainTriples(), &ForestConfig{
		Levels:      chainLevels(),
		Coordinates: &indexResolver{kind: Coordinates},
		Symbols:     &indexResolver{kind: Symbols},
		Degree:      1,
		Dimension:   2,
	})
	require.NoError(t, err)
	return f
}

// twoRoots has roots dying at 10 and 20 with one child each.
func twoRoots(t testing.TB) *Forest {
	f, err := Build([]Triple{
		{BirthIndex: 0, DeathIndex: 10, ParentDeath: Inf},
		{BirthIndex: 1, DeathIndex: 20, ParentDeath: Inf},
		{BirthIndex: 2, DeathIndex: 11, ParentDeath: 10},
		{BirthIndex: 3, DeathIndex: 21, ParentDeath: 20},
	}, &ForestConfig{
		Levels:      map[int]float64{0: 0, 1: 5, 2: 1, 3: 6, 10: 4, 11: 3, 20: 9, 21: 8},
		Coordinates: &indexResolver{kind: Coordinates},
		Symbols:     &indexResolver{kind: Symbols},
	})
	require.NoError(t, err)
	return f
}

// randomTriples builds n triples whose parents always come earlier in
// input order, so the result is acyclic. Birth indices are -1..-n and
// death indices 0..n-1 so that both share one level table.
func randomTriples(n int, parents []int, levels []float64) ([]Triple, map[int]float64) {
	triples := make([]Triple, n)
	lv := map[int]float64{}
	for i := 0; i < n; i++ {
		parent := Inf
		if i > 0 && parents[i]%(i+1) != i {
			parent = parents[i] % (i + 1)
		}
		triples[i] = Triple{BirthIndex: -i - 1, DeathIndex: i, ParentDeath: parent}
		lv[-i-1] = levels[i]
		lv[i] = levels[i] + 1
	}
	return triples, lv
}

func deaths(nodes []*Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.DeathIndex()
	}
	return out
}

func sortedIndices(v VolumeLike) []int {
	return slices.Sorted(v.VolumeIndices())
}
