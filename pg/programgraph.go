// Package pg defines program graphs and compiles them into transition
// systems through pluggable action and condition evaluators.
package pg

import (
	"fmt"

	"github.com/emicklei/dot"
)

// Transition is a guarded edge of a program graph. Cond and Action are
// opaque tokens interpreted by the evaluators.
type Transition[L comparable] struct {
	From   L
	Cond   string
	Action string
	To     L
}

// ProgramGraph is a control-flow graph over locations L whose edges carry
// guard and action tokens.
type ProgramGraph[L comparable] struct {
	Name string

	locations   []L
	locIndex    map[L]struct{}
	initial     []L
	initIndex   map[L]struct{}
	transitions []Transition[L]
	trIndex     map[Transition[L]]struct{}
	out         map[L][]Transition[L]

	// Initializations are alternative sequences of actions run from an
	// empty environment to produce the initial environments.
	Initializations [][]string
}

// New returns an empty program graph.
func New[L comparable]() *ProgramGraph[L] {
	return &ProgramGraph[L]{
		locIndex:  make(map[L]struct{}),
		initIndex: make(map[L]struct{}),
		trIndex:   make(map[Transition[L]]struct{}),
		out:       make(map[L][]Transition[L]),
	}
}

// AddLocation registers l and reports whether it was new.
func (g *ProgramGraph[L]) AddLocation(l L) bool {
	if _, ok := g.locIndex[l]; ok {
		return false
	}
	g.locIndex[l] = struct{}{}
	g.locations = append(g.locations, l)
	return true
}

// SetInitial registers l and marks it as an initial location.
func (g *ProgramGraph[L]) SetInitial(l L) {
	g.AddLocation(l)
	if _, ok := g.initIndex[l]; ok {
		return
	}
	g.initIndex[l] = struct{}{}
	g.initial = append(g.initial, l)
}

// AddTransition adds t, registering both endpoints.
func (g *ProgramGraph[L]) AddTransition(t Transition[L]) bool {
	if _, ok := g.trIndex[t]; ok {
		return false
	}
	g.AddLocation(t.From)
	g.AddLocation(t.To)
	g.trIndex[t] = struct{}{}
	g.transitions = append(g.transitions, t)
	g.out[t.From] = append(g.out[t.From], t)
	return true
}

// AddInitialization appends an alternative initialization sequence.
func (g *ProgramGraph[L]) AddInitialization(actions ...string) {
	g.Initializations = append(g.Initializations, append([]string(nil), actions...))
}

func (g *ProgramGraph[L]) Locations() []L {
	return append([]L(nil), g.locations...)
}

func (g *ProgramGraph[L]) InitialLocations() []L {
	return append([]L(nil), g.initial...)
}

func (g *ProgramGraph[L]) Transitions() []Transition[L] {
	return append([]Transition[L](nil), g.transitions...)
}

// Outgoing returns the transitions leaving l in insertion order.
func (g *ProgramGraph[L]) Outgoing(l L) []Transition[L] {
	return append([]Transition[L](nil), g.out[l]...)
}

func (g *ProgramGraph[L]) HasLocation(l L) bool {
	_, ok := g.locIndex[l]
	return ok
}

func (g *ProgramGraph[L]) IsInitial(l L) bool {
	_, ok := g.initIndex[l]
	return ok
}

func (g *ProgramGraph[L]) HasTransition(t Transition[L]) bool {
	_, ok := g.trIndex[t]
	return ok
}

// Dot renders the graph as a Graphviz digraph with edges labeled
// "guard / action".
func (g *ProgramGraph[L]) Dot() string {
	d := dot.NewGraph(dot.Directed)
	d.Attr("rankdir", "LR")
	if g.Name != "" {
		d.Attr("label", g.Name)
	}
	nodes := make(map[L]dot.Node, len(g.locations))
	for i, l := range g.locations {
		nodes[l] = d.Node(fmt.Sprintf("l%d", i)).Label(locationName(l))
	}
	for i, l := range g.initial {
		start := d.Node(fmt.Sprintf("init%d", i)).Attr("shape", "point")
		d.Edge(start, nodes[l])
	}
	for _, t := range g.transitions {
		d.Edge(nodes[t.From], nodes[t.To]).Label(edgeLabel(t.Cond, t.Action))
	}
	return d.String()
}

func locationName[L comparable](l L) string {
	s := fmt.Sprint(l)
	if s == "" {
		return "(done)"
	}
	return s
}

func edgeLabel(cond, action string) string {
	if cond == "" {
		cond = "true"
	}
	if action == "" {
		return cond
	}
	return cond + " / " + action
}
