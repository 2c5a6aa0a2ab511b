package phtrees

import "fmt"

// SpatialIndex searches persistence pairs by their (birth time, death time)
// coordinates.
type SpatialIndex interface {
	// NearestPair returns the death index of the pair closest to (x, y), or
	// false if the index is empty.
	NearestPair(x, y float64) (int, bool)
	// InRectangle returns the death indices of the pairs inside the box.
	InRectangle(xlo, xhi, ylo, yhi float64) []int
}

// QueryOptions adds optional sections to every result of a query.
type QueryOptions struct {
	// AncestorPairs adds the chain of enclosing pairs as "ancestors".
	AncestorPairs bool
	// QueryChildren adds the full volume of each direct child as
	// "children-volumes".
	QueryChildren bool
}

// Query is a point or rectangle query. It moves from unresolved to resolved
// exactly once, on the first successful Invoke.
type Query interface {
	Invoke() error
	Resolved() bool
	Result() []VolumeLike
	Draw(Drawer) error
	ToDict() (*QueryDict, error)
}

var (
	_ Query = (*PointQuery)(nil)
	_ Query = (*RectangleQuery)(nil)
)

var palette = []Color{
	{255, 0, 0}, {0, 0, 255}, {0, 160, 0}, {255, 160, 0}, {160, 0, 255}, {0, 200, 200},
}

type query struct {
	index    SpatialIndex
	selector VolumeSelector
	options  QueryOptions
	resolved bool
	result   []VolumeLike
}

func newQuery(index SpatialIndex, selector VolumeSelector, opts *QueryOptions) query {
	q := query{index: index, selector: selector}
	if opts != nil {
		q.options = *opts
	}
	return q
}

// Resolved reports whether Invoke has succeeded.
func (q *query) Resolved() bool {
	return q.resolved
}

// Result returns the resolved volumes; it is empty before Invoke.
func (q *query) Result() []VolumeLike {
	return q.result
}

func (q *query) resolve(deaths []int, err error) error {
	if q.resolved {
		return ErrAlreadyResolved
	}
	if err != nil {
		return err
	}
	result := make([]VolumeLike, 0, len(deaths))
	for _, d := range deaths {
		v, err := q.selector.Resolve(d)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", q.selector.QueryTargetName(), err)
		}
		result = append(result, v)
	}
	q.result = result
	q.resolved = true
	return nil
}

// Draw hands the boundary of every resolved volume to drawer, cycling
// through a fixed palette.
func (q *query) Draw(drawer Drawer) error {
	for i, v := range q.result {
		opts := DrawOptions{Name: fmt.Sprintf("volume-%d", v.DeathIndex()), Index: i}
		if err := v.DrawVolume(drawer, palette[i%len(palette)], opts); err != nil {
			return fmt.Errorf("draw volume %d: %w", v.DeathIndex(), err)
		}
	}
	return nil
}

func (q *query) toDict(info QueryInfo) (*QueryDict, error) {
	if !q.resolved {
		return nil, fmt.Errorf("query not invoked: %w", ErrConfiguration)
	}
	f := q.selector.Forest()
	info.QueryTarget = q.selector.QueryTargetName()
	info.Degree = f.Degree()
	info.AncestorPairs = q.options.AncestorPairs
	info.QueryChildren = q.options.QueryChildren
	if s, ok := q.selector.(*StableVolumeSelector); ok {
		eps := s.Epsilon
		info.Epsilon = &eps
	}
	out := &QueryDict{
		FormatVersion: FormatVersion,
		Query:         info,
		Dimension:     f.Dimension(),
		Result:        make([]*VolumeDict, 0, len(q.result)),
	}
	for _, v := range q.result {
		d, err := q.volumeDict(v)
		if err != nil {
			return nil, fmt.Errorf("volume %d: %w", v.DeathIndex(), err)
		}
		out.Result = append(out.Result, d)
	}
	return out, nil
}

func (q *query) volumeDict(v VolumeLike) (*VolumeDict, error) {
	cached, err := v.ToDict()
	if err != nil {
		return nil, err
	}
	d := *cached
	if q.options.AncestorPairs {
		d.Ancestors = []*ChildDict{}
		for _, a := range v.Root().Ancestors() {
			d.Ancestors = append(d.Ancestors, childDict(a, nil))
		}
	}
	if q.options.QueryChildren {
		d.ChildrenVolumes = []*VolumeDict{}
		for _, c := range v.Children() {
			cd, err := c.ToDict()
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", c.DeathIndex(), err)
			}
			d.ChildrenVolumes = append(d.ChildrenVolumes, cd)
		}
	}
	return &d, nil
}

// PointQuery resolves the pair nearest to (X, Y).
type PointQuery struct {
	query
	X, Y float64
}

func NewPointQuery(x, y float64, index SpatialIndex, selector VolumeSelector, opts *QueryOptions) *PointQuery {
	return &PointQuery{query: newQuery(index, selector, opts), X: x, Y: y}
}

// Invoke runs the query once. A query cannot be re-run; build a new one.
func (q *PointQuery) Invoke() error {
	if q.resolved {
		return ErrAlreadyResolved
	}
	d, ok := q.index.NearestPair(q.X, q.Y)
	if !ok {
		return q.resolve(nil, fmt.Errorf("point (%g, %g): %w", q.X, q.Y, ErrNoMatch))
	}
	return q.resolve([]int{d}, nil)
}

// ToDict serializes the resolved query. The "signle" query type is kept
// as existing readers expect it.
func (q *PointQuery) ToDict() (*QueryDict, error) {
	x, y := q.X, q.Y
	return q.toDict(QueryInfo{QueryType: "signle", Birth: &x, Death: &y})
}

// RectangleQuery resolves every pair with birth in XRange and death in
// YRange, in the order the spatial index returns them.
type RectangleQuery struct {
	query
	XRange, YRange Range
}

func NewRectangleQuery(xr, yr Range, index SpatialIndex, selector VolumeSelector, opts *QueryOptions) *RectangleQuery {
	return &RectangleQuery{query: newQuery(index, selector, opts), XRange: xr, YRange: yr}
}

// Invoke runs the query once. An empty box yields an empty result.
func (q *RectangleQuery) Invoke() error {
	if q.resolved {
		return ErrAlreadyResolved
	}
	return q.resolve(q.index.InRectangle(q.XRange.Lo, q.XRange.Hi, q.YRange.Lo, q.YRange.Hi), nil)
}

func (q *RectangleQuery) ToDict() (*QueryDict, error) {
	xr, yr := q.XRange, q.YRange
	return q.toDict(QueryInfo{QueryType: "rectangle", BirthRange: &xr, DeathRange: &yr})
}
