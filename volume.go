package phtrees

import (
	"fmt"
	"iter"
	"strconv"
)

// VolumeLike is implemented by a plain Node and by views over one, such as
// StableVolume.
type VolumeLike interface {
	Root() *Node
	BirthIndex() int
	DeathIndex() int
	BirthTime() float64
	DeathTime() float64
	Lifetime() float64
	Children() []*Node
	VolumeNodes() []*Node
	VolumeIndices() iter.Seq[int]
	Boundary(GeometryKind) ([]Simplex, error)
	BoundaryVertices(GeometryKind) ([]Vertex, error)
	Vertices(GeometryKind) ([]Vertex, error)
	Simplices(GeometryKind) ([]Simplex, error)
	DrawVolume(Drawer, Color, DrawOptions) error
	ToDict() (*VolumeDict, error)
	ToChildDict() *ChildDict
}

// VolumeVariant builds a view over root restricted to the given children.
type VolumeVariant func(root *Node, epsilon float64, children []*Node) VolumeLike

// StableVolume is a root node with a filtered list of direct children.
// Each surviving child still contributes its whole subtree.
type StableVolume struct {
	root     *Node
	epsilon  float64
	children []*Node
}

var _ VolumeLike = (*StableVolume)(nil)

// NewStableVolume wraps root with children, which must be a subset of
// root.Children() in the same order.
func NewStableVolume(root *Node, epsilon float64, children []*Node) *StableVolume {
	return &StableVolume{root: root, epsilon: epsilon, children: children}
}

// StableVolumeVariant adapts NewStableVolume to VolumeVariant.
func StableVolumeVariant(root *Node, epsilon float64, children []*Node) VolumeLike {
	return NewStableVolume(root, epsilon, children)
}

func (s *StableVolume) Root() *Node        { return s.root }
func (s *StableVolume) Epsilon() float64   { return s.epsilon }
func (s *StableVolume) BirthIndex() int    { return s.root.BirthIndex() }
func (s *StableVolume) DeathIndex() int    { return s.root.DeathIndex() }
func (s *StableVolume) BirthTime() float64 { return s.root.BirthTime() }
func (s *StableVolume) DeathTime() float64 { return s.root.DeathTime() }
func (s *StableVolume) Lifetime() float64  { return s.root.Lifetime() }

func (s *StableVolume) Children() []*Node {
	return s.children
}

func (s *StableVolume) VolumeIndices() iter.Seq[int] {
	return func(yield func(int) bool) {
		if !yield(s.root.DeathIndex()) {
			return
		}
		for _, c := range s.children {
			for d := range c.VolumeIndices() {
				if !yield(d) {
					return
				}
			}
		}
	}
}

func (s *StableVolume) VolumeNodes() []*Node {
	out := []*Node{s.root}
	for _, c := range s.children {
		out = append(out, c.VolumeNodes()...)
	}
	return out
}

func (s *StableVolume) Boundary(kind GeometryKind) ([]Simplex, error) {
	return resolveVolume(s.root.forest, kind, s.VolumeIndices(), Resolver.Boundary)
}

func (s *StableVolume) BoundaryVertices(kind GeometryKind) ([]Vertex, error) {
	return resolveVolume(s.root.forest, kind, s.VolumeIndices(), Resolver.BoundaryVertices)
}

func (s *StableVolume) Vertices(kind GeometryKind) ([]Vertex, error) {
	return resolveVolume(s.root.forest, kind, s.VolumeIndices(), Resolver.ResolveVertices)
}

func (s *StableVolume) Simplices(kind GeometryKind) ([]Simplex, error) {
	return resolveVolume(s.root.forest, kind, s.VolumeIndices(), Resolver.ResolveCells)
}

func (s *StableVolume) DrawVolume(drawer Drawer, color Color, opts DrawOptions) error {
	return drawVolume(s.root.forest, s.VolumeIndices(), drawer, color, opts)
}

func (s *StableVolume) ToDict() (*VolumeDict, error) {
	key := fmt.Sprintf("stable-volume/%s/%d", strconv.FormatFloat(s.epsilon, 'g', -1, 64), s.DeathIndex())
	return cachedVolumeDict(s.root.forest, key, s)
}

func (s *StableVolume) ToChildDict() *ChildDict {
	return childDict(s, s.children)
}
