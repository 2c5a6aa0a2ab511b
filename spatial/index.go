// Package spatial provides a planar index over persistence pairs, keyed by
// (birth time, death time), for point and rectangle queries.
package spatial

import (
	"math"

	"github.com/jrhy/phtrees"
)

// Pair is one point of a persistence diagram.
type Pair struct {
	Birth, Death float64
	DeathIndex   int
}

// Index answers nearest-pair and rectangle searches by scanning its pairs
// in insertion order. Pairs with NaN coordinates are never returned.
type Index struct {
	pairs []Pair
}

var _ phtrees.SpatialIndex = (*Index)(nil)

func New(pairs []Pair) *Index {
	kept := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if math.IsNaN(p.Birth) || math.IsNaN(p.Death) {
			continue
		}
		kept = append(kept, p)
	}
	return &Index{pairs: kept}
}

// FromForest indexes every node of f at (BirthTime, DeathTime), in the
// forest's input order.
func FromForest(f *phtrees.Forest) *Index {
	pairs := make([]Pair, 0, f.Len())
	for _, n := range f.Nodes() {
		pairs = append(pairs, Pair{Birth: n.BirthTime(), Death: n.DeathTime(), DeathIndex: n.DeathIndex()})
	}
	return New(pairs)
}

func (ix *Index) Len() int {
	return len(ix.pairs)
}

// NearestPair returns the pair closest to (x, y) in the Euclidean metric.
// On a tie the earlier pair wins.
func (ix *Index) NearestPair(x, y float64) (int, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, p := range ix.pairs {
		dx, dy := p.Birth-x, p.Death-y
		if d := dx*dx + dy*dy; d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return 0, false
	}
	return ix.pairs[best].DeathIndex, true
}

// InRectangle returns the pairs with xlo <= birth <= xhi and
// ylo <= death <= yhi, in insertion order. A box with hi < lo on either
// axis is empty.
func (ix *Index) InRectangle(xlo, xhi, ylo, yhi float64) []int {
	var out []int
	for _, p := range ix.pairs {
		if xlo <= p.Birth && p.Birth <= xhi && ylo <= p.Death && p.Death <= yhi {
			out = append(out, p.DeathIndex)
		}
	}
	return out
}
