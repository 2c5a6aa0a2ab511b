package phtrees

import (
	"fmt"
	"iter"
	"slices"
	"sync/atomic"
)

// Node is one persistence pair in a forest. Its optimal volume is the pair
// itself plus the volumes of all its descendants.
type Node struct {
	forest   *Forest
	triple   Triple
	pos      int
	parent   int
	children []int
	volume   atomic.Pointer[[]int]
}

var _ VolumeLike = (*Node)(nil)

func (n *Node) Root() *Node      { return n }
func (n *Node) Triple() Triple   { return n.triple }
func (n *Node) BirthIndex() int  { return n.triple.BirthIndex }
func (n *Node) DeathIndex() int  { return n.triple.DeathIndex }
func (n *Node) ParentDeath() int { return n.triple.ParentDeath }
func (n *Node) Forest() *Forest  { return n.forest }

func (n *Node) BirthTime() float64 { return n.forest.Level(n.triple.BirthIndex) }
func (n *Node) DeathTime() float64 { return n.forest.Level(n.triple.DeathIndex) }
func (n *Node) Lifetime() float64  { return n.DeathTime() - n.BirthTime() }

// IsRoot reports whether the node has no enclosing pair.
func (n *Node) IsRoot() bool {
	return n.triple.IsRoot()
}

// Parent returns the enclosing node, or nil for a root.
func (n *Node) Parent() *Node {
	p, _ := n.forest.ParentOf(n)
	return p
}

// Children returns the direct children in input order.
func (n *Node) Children() []*Node {
	return n.forest.at(n.children)
}

// Ancestors returns the chain of enclosing nodes, nearest first.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

// Descendants returns every node below n in pre-order.
func (n *Node) Descendants() []*Node {
	return n.VolumeNodes()[1:]
}

// VolumeIndices yields the death indices of n's subtree in pre-order: n
// first, then each child's subtree in children order. The walk runs anew
// on every iteration.
func (n *Node) VolumeIndices() iter.Seq[int] {
	return func(yield func(int) bool) {
		nodes := n.forest.nodes
		stack := []int{n.pos}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(nodes[top].triple.DeathIndex) {
				return
			}
			kids := nodes[top].children
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, kids[i])
			}
		}
	}
}

// VolumeNodes returns the subtree in the order of VolumeIndices. The
// positions are computed once; concurrent first calls may each compute
// them, and any of the identical results wins.
func (n *Node) VolumeNodes() []*Node {
	if p := n.volume.Load(); p != nil {
		return n.forest.at(*p)
	}
	positions := make([]int, 0, len(n.children)+1)
	for d := range n.VolumeIndices() {
		positions = append(positions, n.forest.byDeath[d])
	}
	n.volume.CompareAndSwap(nil, &positions)
	return n.forest.at(*n.volume.Load())
}

func (n *Node) Boundary(kind GeometryKind) ([]Simplex, error) {
	return resolveVolume(n.forest, kind, n.VolumeIndices(), Resolver.Boundary)
}

func (n *Node) BoundaryVertices(kind GeometryKind) ([]Vertex, error) {
	return resolveVolume(n.forest, kind, n.VolumeIndices(), Resolver.BoundaryVertices)
}

func (n *Node) Vertices(kind GeometryKind) ([]Vertex, error) {
	return resolveVolume(n.forest, kind, n.VolumeIndices(), Resolver.ResolveVertices)
}

func (n *Node) Simplices(kind GeometryKind) ([]Simplex, error) {
	return resolveVolume(n.forest, kind, n.VolumeIndices(), Resolver.ResolveCells)
}

// StableVolume keeps only the direct children born more than epsilon after
// n. Grandchildren are not filtered.
func (n *Node) StableVolume(epsilon float64) *StableVolume {
	return NewStableVolume(n, epsilon, n.stableChildren(epsilon))
}

// StableVolumeAs is StableVolume with a caller-chosen wrapper type.
func (n *Node) StableVolumeAs(epsilon float64, variant VolumeVariant) VolumeLike {
	return variant(n, epsilon, n.stableChildren(epsilon))
}

func (n *Node) stableChildren(epsilon float64) []*Node {
	threshold := n.BirthTime() + epsilon
	var kept []*Node
	for _, c := range n.Children() {
		if c.BirthTime() > threshold {
			kept = append(kept, c)
		}
	}
	return kept
}

// DrawVolume hands the boundary of the volume to drawer through the
// coordinates resolver.
func (n *Node) DrawVolume(drawer Drawer, color Color, opts DrawOptions) error {
	return drawVolume(n.forest, n.VolumeIndices(), drawer, color, opts)
}

func (n *Node) ToDict() (*VolumeDict, error) {
	return cachedVolumeDict(n.forest, fmt.Sprintf("optimal-volume/%d", n.DeathIndex()), n)
}

func (n *Node) ToChildDict() *ChildDict {
	return childDict(n, n.Children())
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(%d, %d)", n.triple.BirthIndex, n.triple.DeathIndex)
}

func resolveVolume[T any](f *Forest, kind GeometryKind, indices iter.Seq[int], fn func(Resolver, []int) (T, error)) (T, error) {
	r, err := f.GeometryResolver(kind)
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(r, slices.Collect(indices))
}

func drawVolume(f *Forest, indices iter.Seq[int], drawer Drawer, color Color, opts DrawOptions) error {
	r, err := f.GeometryResolver(Coordinates)
	if err != nil {
		return fmt.Errorf("draw volume: %w", err)
	}
	return r.DrawBoundary(drawer, slices.Collect(indices), color, opts)
}
