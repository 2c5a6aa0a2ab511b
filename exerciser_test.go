package phtrees

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/commands"
	"github.com/leanovate/gopter/gen"
	"github.com/stretchr/testify/assert"
)

// The exerciser runs random queries against a forest with a small volume
// cache and checks every answer against an identical forest without one.

type expected struct {
	size int
}

type system struct {
	cached   *Forest
	plain    *Forest
	cmdCount int
}

const (
	exerciserCacheSize = 8
	maxExerciserForest = 64
)

var exerciserCommands uint

func exerciserForest(size int, cache VolumeCache) (*Forest, error) {
	parents := make([]int, size)
	levels := make([]float64, size)
	for i := range parents {
		parents[i] = i*31 + 7
		levels[i] = float64(i*37%100) / 10
	}
	triples, lv := randomTriples(size, parents, levels)
	return Build(triples, &ForestConfig{
		Levels:      lv,
		Coordinates: &indexResolver{kind: Coordinates},
		Symbols:     &indexResolver{kind: Symbols},
		VolumeCache: cache,
	})
}

// onePair is a spatial index holding a single pair.
type onePair int

func (p onePair) NearestPair(x, y float64) (int, bool) { return int(p), true }

func (p onePair) InRectangle(xlo, xhi, ylo, yhi float64) []int { return []int{int(p)} }

func sameDicts(cached, plain VolumeSelector, d int, opts *QueryOptions) error {
	q1 := NewPointQuery(0, 0, onePair(d), cached, opts)
	q2 := NewRectangleQuery(Range{}, Range{}, onePair(d), plain, opts)
	for _, q := range []Query{q1, q2} {
		if err := q.Invoke(); err != nil {
			return err
		}
	}
	d1, err := q1.ToDict()
	if err != nil {
		return err
	}
	d2, err := q2.ToDict()
	if err != nil {
		return err
	}
	if !assert.ObjectsAreEqual(d1.Result, d2.Result) {
		return fmt.Errorf("volume %d: cached result differs", d)
	}
	return nil
}

func postCondition(name string, result commands.Result) *gopter.PropResult {
	if result != nil {
		fmt.Printf("%s PostCondition: %v\n", name, result)
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	return &gopter.PropResult{Status: gopter.PropTrue}
}

type optimalCommand uint

func (c optimalCommand) Run(s commands.SystemUnderTest) commands.Result {
	sys := s.(*system)
	sys.cmdCount++
	d := int(c) % sys.cached.Len()
	return sameDicts(GetOptimalVolume(sys.cached), GetOptimalVolume(sys.plain), d, nil)
}

func (c optimalCommand) NextState(state commands.State) commands.State { return state }
func (c optimalCommand) PreCondition(state commands.State) bool        { return true }
func (c optimalCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return postCondition("optimal", result)
}
func (c optimalCommand) String() string { return fmt.Sprintf("Optimal(%d)", uint(c)) }

type stableCommand struct {
	Death   uint
	Epsilon float64
}

func (c stableCommand) Run(s commands.SystemUnderTest) commands.Result {
	sys := s.(*system)
	sys.cmdCount++
	d := int(c.Death) % sys.cached.Len()
	return sameDicts(GetStableVolume(sys.cached, c.Epsilon), GetStableVolume(sys.plain, c.Epsilon), d, nil)
}

func (c stableCommand) NextState(state commands.State) commands.State { return state }
func (c stableCommand) PreCondition(state commands.State) bool        { return true }
func (c stableCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return postCondition("stable", result)
}
func (c stableCommand) String() string { return fmt.Sprintf("Stable(%d,%g)", c.Death, c.Epsilon) }

type familyCommand uint

func (c familyCommand) Run(s commands.SystemUnderTest) commands.Result {
	sys := s.(*system)
	sys.cmdCount++
	d := int(c) % sys.cached.Len()
	return sameDicts(GetOptimalVolume(sys.cached), GetOptimalVolume(sys.plain), d,
		&QueryOptions{AncestorPairs: true, QueryChildren: true})
}

func (c familyCommand) NextState(state commands.State) commands.State { return state }
func (c familyCommand) PreCondition(state commands.State) bool        { return true }
func (c familyCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	return postCondition("family", result)
}
func (c familyCommand) String() string { return fmt.Sprintf("Family(%d)", uint(c)) }

var (
	genOptimal = gen.UIntRange(0, maxExerciserForest).Map(func(d uint) commands.Command { return optimalCommand(d) })
	genFamily  = gen.UIntRange(0, maxExerciserForest).Map(func(d uint) commands.Command { return familyCommand(d) })
	genStable  = gen.UIntRange(0, maxExerciserForest).FlatMap(func(v interface{}) gopter.Gen {
		return gen.Float64Range(-1, 11).Map(func(eps float64) commands.Command {
			return stableCommand{Death: v.(uint), Epsilon: eps}
		})
	}, reflect.TypeOf((*commands.Command)(nil)).Elem())

	phtreeCommands = &commands.ProtoCommands{
		NewSystemUnderTestFunc: func(initialState commands.State) commands.SystemUnderTest {
			size := initialState.(*expected).size
			cached, err := exerciserForest(size, NewVolumeCache(exerciserCacheSize))
			if err != nil {
				return err
			}
			plain, err := exerciserForest(size, nil)
			if err != nil {
				return err
			}
			return &system{cached: cached, plain: plain}
		},
		DestroySystemUnderTestFunc: func(s commands.SystemUnderTest) {
			exerciserCommands += uint(s.(*system).cmdCount)
		},
		InitialStateGen: gen.IntRange(1, maxExerciserForest).Map(func(size int) *expected {
			return &expected{size: size}
		}),
		GenCommandFunc: func(state commands.State) gopter.Gen {
			return gen.Weighted([]gen.WeightedGen{
				{Weight: 100, Gen: genOptimal},
				{Weight: 100, Gen: genStable},
				{Weight: 20, Gen: genFamily},
			})
		},
	}
)

func TestExerciser(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	if !testing.Short() {
		parameters.MaxSize = 512
	}
	properties := gopter.NewProperties(parameters)
	properties.Property("cached volumes match uncached", commands.Prop(phtreeCommands))
	properties.TestingRun(t)
	if !t.Failed() {
		assert.Positive(t, exerciserCommands)
	}
}
