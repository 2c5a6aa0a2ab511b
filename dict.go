package phtrees

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FormatVersion is written as "format-version" in every query document.
const FormatVersion = 2

// VolumeDict is the serialized form of a volume. Geometry fields whose
// resolver is not configured stay nil and encode as null.
type VolumeDict struct {
	BirthIndex                int          `json:"birth-index"`
	DeathIndex                int          `json:"death-index"`
	BirthTime                 float64      `json:"birth-time"`
	DeathTime                 float64      `json:"death-time"`
	Boundary                  []Simplex    `json:"boundary"`
	BoundaryBySymbols         []Simplex    `json:"boundary-by-symbols"`
	BoundaryVertices          []Vertex     `json:"boundary-vertices"`
	BoundaryVerticesBySymbols []Vertex     `json:"boundary-vertices-by-symbols"`
	Vertices                  []Vertex     `json:"vertices"`
	VerticesBySymbols         []Vertex     `json:"vertices-by-symbols"`
	Simplices                 []Simplex    `json:"simplices"`
	SimplicesBySymbols        []Simplex    `json:"simplices-by-symbols"`
	Children                  []*ChildDict `json:"children"`

	// Set by queries with ancestor-pairs.
	Ancestors []*ChildDict `json:"ancestors,omitempty"`
	// Set by queries with query-children.
	ChildrenVolumes []*VolumeDict `json:"children-volumes,omitempty"`
}

// ChildDict is the geometry-free form of a volume used for nested children.
type ChildDict struct {
	BirthIndex int          `json:"birth-index"`
	DeathIndex int          `json:"death-index"`
	BirthTime  float64      `json:"birth-time"`
	DeathTime  float64      `json:"death-time"`
	Children   []*ChildDict `json:"children"`
}

// Range is a closed interval, encoded as [lo, hi].
type Range struct {
	Lo, Hi float64
}

func (r Range) Contains(x float64) bool {
	return r.Lo <= x && x <= r.Hi
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{r.Lo, r.Hi})
}

func (r *Range) UnmarshalJSON(b []byte) error {
	var a [2]float64
	if err := json.Unmarshal(b, &a); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	r.Lo, r.Hi = a[0], a[1]
	return nil
}

// QueryInfo describes the query that produced a QueryDict.
type QueryInfo struct {
	QueryType     string   `json:"query-type"`
	QueryTarget   string   `json:"query-target"`
	Degree        int      `json:"degree"`
	Birth         *float64 `json:"birth,omitempty"`
	Death         *float64 `json:"death,omitempty"`
	BirthRange    *Range   `json:"birth-range,omitempty"`
	DeathRange    *Range   `json:"death-range,omitempty"`
	Epsilon       *float64 `json:"epsilon,omitempty"`
	AncestorPairs bool     `json:"ancestor-pairs"`
	QueryChildren bool     `json:"query-children"`
}

// QueryDict is the document a resolved query serializes to.
type QueryDict struct {
	FormatVersion int           `json:"format-version"`
	Query         QueryInfo     `json:"query"`
	Dimension     int           `json:"dimension"`
	Result        []*VolumeDict `json:"result"`
}

func childDict(v VolumeLike, children []*Node) *ChildDict {
	d := &ChildDict{
		BirthIndex: v.BirthIndex(),
		DeathIndex: v.DeathIndex(),
		BirthTime:  v.BirthTime(),
		DeathTime:  v.DeathTime(),
		Children:   make([]*ChildDict, 0, len(children)),
	}
	for _, c := range children {
		d.Children = append(d.Children, c.ToChildDict())
	}
	return d
}

func cachedVolumeDict(f *Forest, key string, v VolumeLike) (*VolumeDict, error) {
	if f.cache != nil {
		if d, ok := f.cache.Get(key); ok {
			return d.(*VolumeDict), nil
		}
	}
	d, err := volumeDict(v)
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		f.cache.Add(key, d)
	}
	return d, nil
}

func volumeDict(v VolumeLike) (*VolumeDict, error) {
	d := &VolumeDict{
		BirthIndex: v.BirthIndex(),
		DeathIndex: v.DeathIndex(),
		BirthTime:  v.BirthTime(),
		DeathTime:  v.DeathTime(),
	}
	for _, kind := range []GeometryKind{Coordinates, Symbols} {
		boundary, err := optional(v.Boundary(kind))
		if err != nil {
			return nil, fmt.Errorf("boundary by %v: %w", kind, err)
		}
		boundaryVertices, err := optional(v.BoundaryVertices(kind))
		if err != nil {
			return nil, fmt.Errorf("boundary vertices by %v: %w", kind, err)
		}
		vertices, err := optional(v.Vertices(kind))
		if err != nil {
			return nil, fmt.Errorf("vertices by %v: %w", kind, err)
		}
		simplices, err := optional(v.Simplices(kind))
		if err != nil {
			return nil, fmt.Errorf("simplices by %v: %w", kind, err)
		}
		if kind == Coordinates {
			d.Boundary, d.BoundaryVertices, d.Vertices, d.Simplices = boundary, boundaryVertices, vertices, simplices
		} else {
			d.BoundaryBySymbols, d.BoundaryVerticesBySymbols, d.VerticesBySymbols, d.SimplicesBySymbols = boundary, boundaryVertices, vertices, simplices
		}
	}
	d.Children = v.ToChildDict().Children
	return d, nil
}

// optional turns a missing resolver into a nil result.
func optional[T any](v T, err error) (T, error) {
	if errors.Is(err, ErrConfiguration) {
		var zero T
		return zero, nil
	}
	return v, err
}
