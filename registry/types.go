package registry

import (
	"github.com/blackwell-systems/opsem/channel"
	"github.com/blackwell-systems/opsem/circuit"
	"github.com/blackwell-systems/opsem/pg"
)

// Kind selects how a model is compiled.
type Kind string

const (
	KindProgramGraph  Kind = "program-graph"
	KindChannelSystem Kind = "channel-system"
	KindCircuit       Kind = "circuit"
)

// Invariant is a named boolean predicate over state.
type Invariant struct {
	Name string
	Expr string
}

// Model is a loaded model file. Exactly one of Graph, System or Circuit is
// set, according to Kind.
type Model struct {
	Name string
	Kind Kind

	Graph   *pg.ProgramGraph[string]
	System  channel.System
	Circuit *circuit.Netlist

	// RendezvousOnly leaves non-rendezvous channels of a channel system
	// as buffers.
	RendezvousOnly bool
	// Capacity bounds buffered channels when positive.
	Capacity int

	Invariants []Invariant
}
