package phtrees

import "fmt"

// GeometryKind selects how cell indices are rendered: as coordinate
// vectors or as symbolic vertex labels.
type GeometryKind int

const (
	Coordinates GeometryKind = iota
	Symbols
)

func (k GeometryKind) String() string {
	switch k {
	case Coordinates:
		return "coordinates"
	case Symbols:
		return "symbols"
	default:
		return fmt.Sprintf("GeometryKind(%d)", int(k))
	}
}

// ParseGeometryKind maps "coordinates" and "symbols" to their kinds.
func ParseGeometryKind(name string) (GeometryKind, error) {
	switch name {
	case "coordinates":
		return Coordinates, nil
	case "symbols":
		return Symbols, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownResolverKind)
}

// Vertex is one resolved vertex. Coordinate resolvers produce []float64,
// symbol resolvers produce string.
type Vertex = any

// Simplex is a cell given by its resolved vertices.
type Simplex = []Vertex

// Color is an RGB triple handed through to a Drawer.
type Color [3]uint8

// DrawOptions are passed through to the Drawer untouched.
type DrawOptions struct {
	Name  string
	Index int
}

// Drawer receives boundary simplices in real coordinates.
type Drawer interface {
	DrawSimplex(vertices [][]float64, color Color, opts DrawOptions) error
}

// Resolver turns abstract cell indices into geometry. The forest holds one
// resolver per GeometryKind; all methods take the index set of a volume.
type Resolver interface {
	ResolveCell(index int) (Simplex, error)
	ResolveCells(indices []int) ([]Simplex, error)
	ResolveVertices(indices []int) ([]Vertex, error)
	Boundary(indices []int) ([]Simplex, error)
	BoundaryVertices(indices []int) ([]Vertex, error)
	BuildDrawer(count int, opts DrawOptions) (Drawer, error)
	DrawBoundary(drawer Drawer, indices []int, color Color, opts DrawOptions) error
}
