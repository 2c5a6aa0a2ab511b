package phtrees_test

import (
	"fmt"
	"slices"

	"github.com/jrhy/phtrees"
	"github.com/jrhy/phtrees/simplex"
	"github.com/jrhy/phtrees/spatial"
)

func squareForest() *phtrees.Forest {
	c := &simplex.Complex{
		Points: [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		Labels: []string{"a", "b", "c", "d"},
		Cells: map[int][]int{
			7:  {0, 1, 2},
			8:  {1, 2, 3},
			9:  {1, 2},
			10: {0, 3},
		},
	}
	f, err := phtrees.Build([]phtrees.Triple{
		{BirthIndex: 10, DeathIndex: 7, ParentDeath: phtrees.Inf},
		{BirthIndex: 9, DeathIndex: 8, ParentDeath: 7},
	}, &phtrees.ForestConfig{
		Levels:      map[int]float64{10: 0.5, 9: 1, 8: 2, 7: 3},
		Coordinates: c.Coordinates(),
		Symbols:     c.Symbols(),
		Degree:      1,
		Dimension:   2,
	})
	if err != nil {
		panic(err)
	}
	return f
}

func ExamplePointQuery() {
	f := squareForest()
	q := phtrees.NewPointQuery(0.5, 3, spatial.FromForest(f), phtrees.GetOptimalVolume(f), nil)
	if err := q.Invoke(); err != nil {
		panic(err)
	}
	v := q.Result()[0]
	fmt.Println(v.DeathIndex(), slices.Collect(v.VolumeIndices()))
	b, err := v.Boundary(phtrees.Symbols)
	if err != nil {
		panic(err)
	}
	fmt.Println(b)
	// Output:
	// 7 [7 8]
	// [[a c] [a b] [c d] [b d]]
}

func ExampleNode_StableVolume() {
	root, err := squareForest().Node(7)
	if err != nil {
		panic(err)
	}
	sv := root.StableVolume(0.6)
	fmt.Println(len(sv.Children()), slices.Collect(sv.VolumeIndices()))
	b, err := sv.Boundary(phtrees.Symbols)
	if err != nil {
		panic(err)
	}
	fmt.Println(b)
	// Output:
	// 0 [7]
	// [[b c] [a c] [a b]]
}
