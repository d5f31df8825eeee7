package compose

import (
	"testing"

	"github.com/blackwell-systems/opsem/pg"
	"github.com/blackwell-systems/opsem/ts"
	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

const (
	nStates  = 3
	nActions = 3
)

var actionNames = []string{"a", "b", "sync"}

// system decodes each edge as (from*nActions+action)*nStates+to.
func system(name string, edges, initial []int) *ts.TransitionSystem[string, string, string] {
	t := ts.New[string, string, string]()
	t.Name = name
	state := func(i int) string { return name + string(rune('0'+i)) }
	for i := 0; i < nStates; i++ {
		t.AddState(state(i))
	}
	t.AddActions(actionNames...)
	t.AddAtomicPropositions(name)
	_ = t.AddToLabel(state(0), name)
	for _, s := range initial {
		_ = t.AddInitialState(state(s))
	}
	for _, e := range edges {
		to := e % nStates
		a := (e / nStates) % nActions
		from := e / (nStates * nActions)
		_ = t.AddTransition(ts.Transition[string, string]{From: state(from), Action: actionNames[a], To: state(to)})
	}
	return t
}

func TestInterleaveSimple(t *testing.T) {
	t1 := ts.New[string, string, string]()
	t1.AddStates("S1", "S2")
	t1.AddActions("A1")
	t1.AddAtomicPropositions("P")
	require.NoError(t, t1.AddInitialState("S1"))
	require.NoError(t, t1.AddToLabel("S2", "P"))
	require.NoError(t, t1.AddTransition(ts.Transition[string, string]{From: "S1", Action: "A1", To: "S2"}))

	t2 := ts.New[string, string, string]()
	t2.AddStates("T1", "T2")
	t2.AddActions("A1", "A2")
	t2.AddAtomicPropositions("Q")
	require.NoError(t, t2.AddInitialState("T1"))
	require.NoError(t, t2.AddToLabel("T2", "Q"))
	require.NoError(t, t2.AddTransition(ts.Transition[string, string]{From: "T1", Action: "A2", To: "T2"}))
	require.NoError(t, t2.AddTransition(ts.Transition[string, string]{From: "T2", Action: "A1", To: "T1"}))

	out, err := Interleave(t1, t2)
	require.NoError(t, err)
	require.Equal(t, 4, out.NumStates())
	require.Equal(t, []ts.Pair[string, string]{ts.PairOf("S1", "T1")}, out.InitialStates())
	require.True(t, out.Label(ts.PairOf("S2", "T2")).Equal(ts.NewSet("P", "Q")))
	// |T1|*|S2| + |T2|*|S1|
	require.Equal(t, 1*2+2*2, out.NumTransitions())

	hs, err := InterleaveHandshake(t1, t2, ts.NewSet("A1"))
	require.NoError(t, err)
	want := []ts.Transition[ts.Pair[string, string], string]{
		{From: ts.PairOf("S1", "T1"), Action: "A2", To: ts.PairOf("S1", "T2")},
		{From: ts.PairOf("S2", "T1"), Action: "A2", To: ts.PairOf("S2", "T2")},
		{From: ts.PairOf("S1", "T2"), Action: "A1", To: ts.PairOf("S2", "T1")},
	}
	if diff := cmp.Diff(want, hs.Transitions()); diff != "" {
		t.Errorf("handshake transitions mismatch (-want +got):\n%s", diff)
	}
	require.True(t, hs.Reach().Equal(ts.NewSet(
		ts.PairOf("S1", "T1"), ts.PairOf("S1", "T2"), ts.PairOf("S2", "T1"), ts.PairOf("S2", "T2"))))
}

func TestInterleaveProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150
	properties := gopter.NewProperties(parameters)

	edges := gen.SliceOf(gen.IntRange(0, nStates*nActions*nStates-1))
	initial := gen.SliceOf(gen.IntRange(0, nStates-1))

	properties.Property("states and initial states are Cartesian products", prop.ForAll(
		func(e1, i1, e2, i2 []int) bool {
			t1, t2 := system("s", e1, i1), system("t", e2, i2)
			out, err := Interleave(t1, t2)
			if err != nil {
				return false
			}
			if out.NumStates() != t1.NumStates()*t2.NumStates() {
				return false
			}
			if len(out.InitialStates()) != len(t1.InitialStates())*len(t2.InitialStates()) {
				return false
			}
			for _, s := range out.InitialStates() {
				if !t1.IsInitial(s.First) || !t2.IsInitial(s.Second) {
					return false
				}
			}
			for _, s := range out.States() {
				if !out.Label(s).Equal(t1.Label(s.First).Union(t2.Label(s.Second))) {
					return false
				}
			}
			return true
		},
		edges, initial, edges, initial,
	))

	properties.Property("handshake actions move both sides", prop.ForAll(
		func(e1, i1, e2, i2 []int) bool {
			t1, t2 := system("s", e1, i1), system("t", e2, i2)
			out, err := InterleaveHandshake(t1, t2, ts.NewSet("sync"))
			if err != nil {
				return false
			}
			for _, tr := range out.Transitions() {
				left := ts.Transition[string, string]{From: tr.From.First, Action: tr.Action, To: tr.To.First}
				right := ts.Transition[string, string]{From: tr.From.Second, Action: tr.Action, To: tr.To.Second}
				if tr.Action == "sync" {
					if !t1.HasTransition(left) || !t2.HasTransition(right) {
						return false
					}
					continue
				}
				// Exactly one side moves; the other stays put.
				moved1 := t1.HasTransition(left) && tr.From.Second == tr.To.Second
				moved2 := t2.HasTransition(right) && tr.From.First == tr.To.First
				if !moved1 && !moved2 {
					return false
				}
			}
			return true
		},
		edges, initial, edges, initial,
	))

	properties.TestingRun(t)
}

func TestInterleaveGraphs(t *testing.T) {
	g1 := pg.New[string]()
	g1.SetInitial("a0")
	g1.AddTransition(pg.Transition[string]{From: "a0", Cond: "x < 1", Action: "x := x + 1", To: "a1"})
	g1.AddInitialization("x := 0")
	g1.AddInitialization("x := 5")

	g2 := pg.New[string]()
	g2.SetInitial("b0")
	g2.AddTransition(pg.Transition[string]{From: "b0", Action: "y := 1", To: "b1"})
	g2.AddInitialization("y := 0", "z := 0")

	out := InterleaveGraphs(g1, g2)
	require.Len(t, out.Locations(), 4)
	require.Equal(t, []ts.Pair[string, string]{ts.PairOf("a0", "b0")}, out.InitialLocations())
	require.Len(t, out.Transitions(), 4)
	require.True(t, out.HasTransition(pg.Transition[ts.Pair[string, string]]{
		From: ts.PairOf("a0", "b1"), Cond: "x < 1", Action: "x := x + 1", To: ts.PairOf("a1", "b1"),
	}))
	require.Equal(t, [][]string{
		{"x := 0", "y := 0", "z := 0"},
		{"x := 5", "y := 0", "z := 0"},
	}, out.Initializations)

	require.Equal(t, [][]string{{"a"}}, CrossInitializations(nil, [][]string{{"a"}}))
	require.Nil(t, CrossInitializations(nil, nil))
}
