package phtrees

import (
	"fmt"
	"math"
)

// Inf is the ParentDeath of a root triple.
const Inf = math.MaxInt

// Triple is one persistence pair together with the death index of the
// pair that encloses it, or Inf.
type Triple struct {
	BirthIndex  int
	DeathIndex  int
	ParentDeath int
}

// IsRoot reports whether the triple has no enclosing pair.
func (t Triple) IsRoot() bool {
	return t.ParentDeath == Inf
}

// ForestConfig carries the tables and collaborators a forest resolves
// against. Every field is optional.
type ForestConfig struct {
	// Levels maps a cell index to the filtration level at which it appears.
	Levels map[int]float64

	// Coordinates resolves cells into vertex coordinate vectors.
	Coordinates Resolver

	// Symbols resolves cells into vertex labels.
	Symbols Resolver

	// Degree of the homology the pairs were computed for.
	Degree int

	// Dimension of the ambient space.
	Dimension int

	// VolumeCache memoizes serialized volumes and may be shared across forests
	// only if their death indices never collide.
	VolumeCache VolumeCache
}

// Forest owns every Node of a PH-tree forest. Nodes live in a slice in
// input order; links between them are slice positions. A Forest is never
// modified after Build, so it is safe for concurrent readers.
type Forest struct {
	nodes       []Node
	byDeath     map[int]int
	roots       []int
	levels      map[int]float64
	coordinates Resolver
	symbols     Resolver
	degree      int
	dimension   int
	cache       VolumeCache
}

// Build creates one Node per triple and links every non-root node into its
// parent's children, in input order. Death indices must be unique and every
// ParentDeath other than Inf must name a triple in the list. Cycles through
// ParentDeath are not detected.
func Build(triples []Triple, cfg *ForestConfig) (*Forest, error) {
	if cfg == nil {
		cfg = &ForestConfig{}
	}
	f := &Forest{
		nodes:       make([]Node, len(triples)),
		byDeath:     make(map[int]int, len(triples)),
		levels:      cfg.Levels,
		coordinates: cfg.Coordinates,
		symbols:     cfg.Symbols,
		degree:      cfg.Degree,
		dimension:   cfg.Dimension,
		cache:       cfg.VolumeCache,
	}
	if f.levels == nil {
		f.levels = map[int]float64{}
	}
	for i, t := range triples {
		if prev, ok := f.byDeath[t.DeathIndex]; ok {
			return nil, fmt.Errorf("triples %d and %d: %w %d", prev, i, ErrDuplicateKey, t.DeathIndex)
		}
		f.byDeath[t.DeathIndex] = i
		f.nodes[i] = Node{forest: f, triple: t, pos: i, parent: -1}
	}
	for i := range f.nodes {
		n := &f.nodes[i]
		if n.IsRoot() {
			f.roots = append(f.roots, i)
			continue
		}
		p, ok := f.byDeath[n.triple.ParentDeath]
		if !ok {
			return nil, fmt.Errorf("parent %d of pair %d: %w", n.triple.ParentDeath, n.triple.DeathIndex, ErrNotFound)
		}
		n.parent = p
		f.nodes[p].children = append(f.nodes[p].children, i)
	}
	return f, nil
}

// Node returns the node whose death index is d.
func (f *Forest) Node(d int) (*Node, error) {
	i, ok := f.byDeath[d]
	if !ok {
		return nil, fmt.Errorf("death index %d: %w", d, ErrNotFound)
	}
	return &f.nodes[i], nil
}

// ParentOf returns the parent of n, or false for a root.
func (f *Forest) ParentOf(n *Node) (*Node, bool) {
	if n.parent < 0 {
		return nil, false
	}
	return &f.nodes[n.parent], true
}

// Nodes returns every node in input order.
func (f *Forest) Nodes() []*Node {
	return f.at(allPositions(len(f.nodes)))
}

// Roots returns the roots in input order.
func (f *Forest) Roots() []*Node {
	return f.at(f.roots)
}

// Len is the number of nodes.
func (f *Forest) Len() int {
	return len(f.nodes)
}

func (f *Forest) Degree() int    { return f.degree }
func (f *Forest) Dimension() int { return f.dimension }

// Level returns the filtration level of a cell index, or NaN if the index
// has no level.
func (f *Forest) Level(index int) float64 {
	if l, ok := f.levels[index]; ok {
		return l
	}
	return math.NaN()
}

// GeometryResolver returns the resolver configured for kind.
func (f *Forest) GeometryResolver(kind GeometryKind) (Resolver, error) {
	var r Resolver
	switch kind {
	case Coordinates:
		r = f.coordinates
	case Symbols:
		r = f.symbols
	default:
		return nil, fmt.Errorf("%v: %w", kind, ErrUnknownResolverKind)
	}
	if r == nil {
		return nil, fmt.Errorf("no %v resolver: %w", kind, ErrConfiguration)
	}
	return r, nil
}

func (f *Forest) at(positions []int) []*Node {
	out := make([]*Node, len(positions))
	for i, p := range positions {
		out[i] = &f.nodes[p]
	}
	return out
}

func allPositions(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}
