// Package compose builds the interleaving of two transition systems or two
// program graphs.
package compose

import (
	"github.com/blackwell-systems/opsem/pg"
	"github.com/blackwell-systems/opsem/ts"
)

// Interleave returns the asynchronous product of t1 and t2: every
// transition of one side fires against every state of the other.
func Interleave[S1, S2, A, P comparable](t1 *ts.TransitionSystem[S1, A, P], t2 *ts.TransitionSystem[S2, A, P]) (*ts.TransitionSystem[ts.Pair[S1, S2], A, P], error) {
	return InterleaveHandshake(t1, t2, ts.NewSet[A]())
}

// InterleaveHandshake is Interleave where the actions in h only fire
// jointly: a transition labeled a ∈ h moves both sides at once, and neither
// side may take it alone.
func InterleaveHandshake[S1, S2, A, P comparable](t1 *ts.TransitionSystem[S1, A, P], t2 *ts.TransitionSystem[S2, A, P], h ts.Set[A]) (*ts.TransitionSystem[ts.Pair[S1, S2], A, P], error) {
	out := ts.New[ts.Pair[S1, S2], A, P]()
	if t1.Name != "" || t2.Name != "" {
		out.Name = t1.Name + " ||| " + t2.Name
	}

	out.AddActions(t1.Actions()...)
	out.AddActions(t2.Actions()...)
	out.AddAtomicPropositions(t1.AtomicPropositions()...)
	out.AddAtomicPropositions(t2.AtomicPropositions()...)

	states1, states2 := t1.States(), t2.States()
	for _, s1 := range states1 {
		for _, s2 := range states2 {
			s := ts.PairOf(s1, s2)
			out.AddState(s)
			for _, p := range t1.LabelSlice(s1) {
				if err := out.AddToLabel(s, p); err != nil {
					return nil, err
				}
			}
			for _, p := range t2.LabelSlice(s2) {
				if err := out.AddToLabel(s, p); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, s1 := range t1.InitialStates() {
		for _, s2 := range t2.InitialStates() {
			if err := out.AddInitialState(ts.PairOf(s1, s2)); err != nil {
				return nil, err
			}
		}
	}

	add := func(from, to ts.Pair[S1, S2], a A) error {
		return out.AddTransition(ts.Transition[ts.Pair[S1, S2], A]{From: from, Action: a, To: to})
	}
	trs1, trs2 := t1.Transitions(), t2.Transitions()
	for _, tr := range trs1 {
		if h.Has(tr.Action) {
			continue
		}
		for _, s2 := range states2 {
			if err := add(ts.PairOf(tr.From, s2), ts.PairOf(tr.To, s2), tr.Action); err != nil {
				return nil, err
			}
		}
	}
	for _, tr := range trs2 {
		if h.Has(tr.Action) {
			continue
		}
		for _, s1 := range states1 {
			if err := add(ts.PairOf(s1, tr.From), ts.PairOf(s1, tr.To), tr.Action); err != nil {
				return nil, err
			}
		}
	}
	for _, x := range trs1 {
		if !h.Has(x.Action) {
			continue
		}
		for _, y := range trs2 {
			if y.Action != x.Action {
				continue
			}
			if err := add(ts.PairOf(x.From, y.From), ts.PairOf(x.To, y.To), x.Action); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// InterleaveGraphs returns the asynchronous product of two program graphs.
// Initializations are combined pairwise by concatenation; a graph without
// initializations leaves the other's unchanged.
func InterleaveGraphs[L1, L2 comparable](g1 *pg.ProgramGraph[L1], g2 *pg.ProgramGraph[L2]) *pg.ProgramGraph[ts.Pair[L1, L2]] {
	out := pg.New[ts.Pair[L1, L2]]()
	if g1.Name != "" || g2.Name != "" {
		out.Name = g1.Name + " ||| " + g2.Name
	}
	locs1, locs2 := g1.Locations(), g2.Locations()
	for _, l1 := range locs1 {
		for _, l2 := range locs2 {
			out.AddLocation(ts.PairOf(l1, l2))
		}
	}
	for _, l1 := range g1.InitialLocations() {
		for _, l2 := range g2.InitialLocations() {
			out.SetInitial(ts.PairOf(l1, l2))
		}
	}
	for _, t := range g1.Transitions() {
		for _, l2 := range locs2 {
			out.AddTransition(pg.Transition[ts.Pair[L1, L2]]{From: ts.PairOf(t.From, l2), Cond: t.Cond, Action: t.Action, To: ts.PairOf(t.To, l2)})
		}
	}
	for _, t := range g2.Transitions() {
		for _, l1 := range locs1 {
			out.AddTransition(pg.Transition[ts.Pair[L1, L2]]{From: ts.PairOf(l1, t.From), Cond: t.Cond, Action: t.Action, To: ts.PairOf(l1, t.To)})
		}
	}
	out.Initializations = CrossInitializations(g1.Initializations, g2.Initializations)
	return out
}

// CrossInitializations concatenates every initialization of a with every
// initialization of b. An empty side acts as the identity.
func CrossInitializations(a, b [][]string) [][]string {
	switch {
	case len(a) == 0:
		return copyInits(b)
	case len(b) == 0:
		return copyInits(a)
	}
	out := make([][]string, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			seq := make([]string, 0, len(x)+len(y))
			seq = append(seq, x...)
			seq = append(seq, y...)
			out = append(out, seq)
		}
	}
	return out
}

func copyInits(in [][]string) [][]string {
	if len(in) == 0 {
		return nil
	}
	out := make([][]string, len(in))
	for i, seq := range in {
		out[i] = append([]string(nil), seq...)
	}
	return out
}
