// Package simplex resolves cell indices against an explicit simplicial
// complex: a table of cells, each a list of vertex ids, plus per-vertex
// coordinates and labels.
package simplex

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jrhy/phtrees"
)

// Complex is the geometry behind a forest. Cells maps a cell index to the
// ids of its vertices; vertex ids index Points and Labels.
type Complex struct {
	Points [][]float64
	Labels []string
	Cells  map[int][]int
}

// Coordinates returns a resolver producing vertex coordinates.
func (c *Complex) Coordinates() phtrees.Resolver {
	return &resolver{complex: c, kind: phtrees.Coordinates}
}

// Symbols returns a resolver producing vertex labels.
func (c *Complex) Symbols() phtrees.Resolver {
	return &resolver{complex: c, kind: phtrees.Symbols}
}

type resolver struct {
	complex *Complex
	kind    phtrees.GeometryKind
}

func (r *resolver) cell(index int) ([]int, error) {
	vs, ok := r.complex.Cells[index]
	if !ok {
		return nil, fmt.Errorf("cell %d: %w", index, phtrees.ErrNotFound)
	}
	return vs, nil
}

func (r *resolver) vertex(v int) (phtrees.Vertex, error) {
	switch r.kind {
	case phtrees.Coordinates:
		if v < 0 || v >= len(r.complex.Points) {
			return nil, fmt.Errorf("vertex %d has no coordinates: %w", v, phtrees.ErrNotFound)
		}
		return slices.Clone(r.complex.Points[v]), nil
	default:
		if v < 0 || v >= len(r.complex.Labels) {
			return nil, fmt.Errorf("vertex %d has no label: %w", v, phtrees.ErrNotFound)
		}
		return r.complex.Labels[v], nil
	}
}

func (r *resolver) simplex(vs []int) (phtrees.Simplex, error) {
	out := make(phtrees.Simplex, len(vs))
	for i, v := range vs {
		var err error
		if out[i], err = r.vertex(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *resolver) vertices(ids []int) ([]phtrees.Vertex, error) {
	out := make([]phtrees.Vertex, 0, len(ids))
	for _, v := range ids {
		x, err := r.vertex(v)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

func (r *resolver) ResolveCell(index int) (phtrees.Simplex, error) {
	vs, err := r.cell(index)
	if err != nil {
		return nil, err
	}
	return r.simplex(vs)
}

func (r *resolver) ResolveCells(indices []int) ([]phtrees.Simplex, error) {
	out := make([]phtrees.Simplex, 0, len(indices))
	for _, i := range indices {
		s, err := r.ResolveCell(i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ResolveVertices returns the distinct vertices of the cells, by vertex id.
func (r *resolver) ResolveVertices(indices []int) ([]phtrees.Vertex, error) {
	var ids []int
	for _, i := range indices {
		vs, err := r.cell(i)
		if err != nil {
			return nil, err
		}
		ids = append(ids, vs...)
	}
	slices.Sort(ids)
	return r.vertices(slices.Compact(ids))
}

// Boundary returns the codimension-1 faces that occur an odd number of
// times among the cells, in order of first occurrence.
func (r *resolver) Boundary(indices []int) ([]phtrees.Simplex, error) {
	faces, err := r.boundaryFaces(indices)
	if err != nil {
		return nil, err
	}
	out := make([]phtrees.Simplex, 0, len(faces))
	for _, f := range faces {
		s, err := r.simplex(f)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *resolver) BoundaryVertices(indices []int) ([]phtrees.Vertex, error) {
	faces, err := r.boundaryFaces(indices)
	if err != nil {
		return nil, err
	}
	var ids []int
	for _, f := range faces {
		ids = append(ids, f...)
	}
	slices.Sort(ids)
	return r.vertices(slices.Compact(ids))
}

func (r *resolver) BuildDrawer(count int, opts phtrees.DrawOptions) (phtrees.Drawer, error) {
	return NewVTKDrawer(count), nil
}

// DrawBoundary draws every boundary face in real coordinates, whatever the
// resolver's kind.
func (r *resolver) DrawBoundary(drawer phtrees.Drawer, indices []int, color phtrees.Color, opts phtrees.DrawOptions) error {
	faces, err := r.boundaryFaces(indices)
	if err != nil {
		return err
	}
	coords := &resolver{complex: r.complex, kind: phtrees.Coordinates}
	for _, f := range faces {
		points := make([][]float64, len(f))
		for i, v := range f {
			p, err := coords.vertex(v)
			if err != nil {
				return err
			}
			points[i] = p.([]float64)
		}
		if err := drawer.DrawSimplex(points, color, opts); err != nil {
			return fmt.Errorf("draw: %w", err)
		}
	}
	return nil
}

func (r *resolver) boundaryFaces(indices []int) ([][]int, error) {
	count := map[string]int{}
	var order []string
	faces := map[string][]int{}
	for _, i := range indices {
		vs, err := r.cell(i)
		if err != nil {
			return nil, err
		}
		for _, f := range facesOf(vs) {
			k := faceKey(f)
			if _, seen := faces[k]; !seen {
				faces[k] = f
				order = append(order, k)
			}
			count[k]++
		}
	}
	var out [][]int
	for _, k := range order {
		if count[k]%2 == 1 {
			out = append(out, faces[k])
		}
	}
	return out, nil
}

// facesOf returns the faces of a simplex obtained by dropping one vertex,
// each sorted by vertex id.
func facesOf(vs []int) [][]int {
	if len(vs) < 2 {
		return nil
	}
	sorted := slices.Sorted(slices.Values(vs))
	out := make([][]int, 0, len(sorted))
	for skip := range sorted {
		f := make([]int, 0, len(sorted)-1)
		f = append(f, sorted[:skip]...)
		f = append(f, sorted[skip+1:]...)
		out = append(out, f)
	}
	return out
}

func faceKey(f []int) string {
	var b strings.Builder
	for i, v := range f {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}
