package ts

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	gprop "github.com/leanovate/gopter/prop"
)

const propStates = 6

// randomTS decodes edges as from*propStates+to over states 0..propStates-1.
func randomTS(edges, initial []int) *TransitionSystem[int, string, string] {
	ts := New[int, string, string]()
	for i := 0; i < propStates; i++ {
		ts.AddState(i)
	}
	ts.AddAction("a")
	for _, s := range initial {
		_ = ts.AddInitialState(s)
	}
	for _, e := range edges {
		_ = ts.AddTransition(Transition[int, string]{From: e / propStates, Action: "a", To: e % propStates})
	}
	return ts
}

func TestReachProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	edges := gen.SliceOf(gen.IntRange(0, propStates*propStates-1))
	initial := gen.SliceOf(gen.IntRange(0, propStates-1))

	properties.Property("reach is idempotent on the restricted system", gprop.ForAll(
		func(es, init []int) bool {
			ts := randomTS(es, init)
			r := ts.Reach()
			return ts.Restrict(r).Reach().Equal(r)
		},
		edges, initial,
	))

	properties.Property("reach is closed under post", gprop.ForAll(
		func(es, init []int) bool {
			ts := randomTS(es, init)
			r := ts.Reach()
			post, err := ts.PostSet(r)
			if err != nil {
				return false
			}
			return post.Difference(r).Len() == 0
		},
		edges, initial,
	))

	properties.Property("initial states are reachable", gprop.ForAll(
		func(es, init []int) bool {
			ts := randomTS(es, init)
			r := ts.Reach()
			for _, s := range ts.InitialStates() {
				if !r.Has(s) {
					return false
				}
			}
			return true
		},
		edges, initial,
	))

	properties.TestingRun(t)
}
