// Package channel compiles systems of communicating program graphs into a
// single transition system.
package channel

import (
	"github.com/blackwell-systems/opsem/compose"
	"github.com/blackwell-systems/opsem/expr"
	"github.com/blackwell-systems/opsem/pg"
)

// System is an ordered set of processes sharing one environment.
type System struct {
	Name   string
	Graphs []*pg.ProgramGraph[string]
}

// Classifier reports the channel operation performed by a one-sided
// action. Actions it rejects interleave freely.
type Classifier func(action string) (expr.ChannelOp, bool)

// Lift turns a process graph into a graph over 1-tuples.
func Lift(g *pg.ProgramGraph[string]) *pg.ProgramGraph[Tuple] {
	out := pg.New[Tuple]()
	out.Name = g.Name
	for _, l := range g.Locations() {
		out.AddLocation(TupleOf(l))
	}
	for _, l := range g.InitialLocations() {
		out.SetInitial(TupleOf(l))
	}
	for _, t := range g.Transitions() {
		out.AddTransition(pg.Transition[Tuple]{From: TupleOf(t.From), Cond: t.Cond, Action: t.Action, To: TupleOf(t.To)})
	}
	out.Initializations = compose.CrossInitializations(g.Initializations, nil)
	return out
}

// Merge folds process g into the accumulated graph acc. Every transition of
// either side interleaves against every location of the other, one-sided
// ones included so that later processes can still pair with them. A send
// on one side and a receive on the same channel on the other side also
// fire together as the action "left|right" under the conjunction of both
// guards.
func Merge(acc *pg.ProgramGraph[Tuple], g *pg.ProgramGraph[string], classify Classifier) *pg.ProgramGraph[Tuple] {
	out := pg.New[Tuple]()
	switch {
	case acc.Name == "":
		out.Name = g.Name
	case g.Name == "":
		out.Name = acc.Name
	default:
		out.Name = acc.Name + " ||| " + g.Name
	}

	accLocs, locs := acc.Locations(), g.Locations()
	for _, a := range accLocs {
		for _, l := range locs {
			out.AddLocation(a.Append(l))
		}
	}
	for _, a := range acc.InitialLocations() {
		for _, l := range g.InitialLocations() {
			out.SetInitial(a.Append(l))
		}
	}

	accTrs, trs := acc.Transitions(), g.Transitions()
	for _, t := range accTrs {
		for _, l := range locs {
			out.AddTransition(pg.Transition[Tuple]{From: t.From.Append(l), Cond: t.Cond, Action: t.Action, To: t.To.Append(l)})
		}
	}
	for _, t := range trs {
		for _, a := range accLocs {
			out.AddTransition(pg.Transition[Tuple]{From: a.Append(t.From), Cond: t.Cond, Action: t.Action, To: a.Append(t.To)})
		}
	}

	for _, ta := range accTrs {
		opA, ok := classify(ta.Action)
		if !ok {
			continue
		}
		for _, tb := range trs {
			opB, ok := classify(tb.Action)
			if !ok || opA.Channel != opB.Channel || opA.Send == opB.Send {
				continue
			}
			out.AddTransition(pg.Transition[Tuple]{
				From:   ta.From.Append(tb.From),
				Cond:   expr.And(ta.Cond, tb.Cond),
				Action: ta.Action + "|" + tb.Action,
				To:     ta.To.Append(tb.To),
			})
		}
	}

	out.Initializations = compose.CrossInitializations(acc.Initializations, g.Initializations)
	return out
}

// prune drops the one-sided transitions that never found a partner.
func prune(g *pg.ProgramGraph[Tuple], classify Classifier) (*pg.ProgramGraph[Tuple], int) {
	out := pg.New[Tuple]()
	out.Name = g.Name
	for _, l := range g.Locations() {
		out.AddLocation(l)
	}
	for _, l := range g.InitialLocations() {
		out.SetInitial(l)
	}
	dropped := 0
	for _, t := range g.Transitions() {
		if _, ok := classify(t.Action); ok {
			dropped++
			continue
		}
		out.AddTransition(t)
	}
	out.Initializations = g.Initializations
	return out, dropped
}
