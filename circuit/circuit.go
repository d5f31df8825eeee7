// Package circuit turns sequential boolean circuits into transition
// systems.
package circuit

import (
	"io"
	"log/slog"
	"strings"

	"github.com/blackwell-systems/opsem/ts"
	"github.com/cockroachdb/errors"
)

// Assignment maps port or register names to values. Missing names are
// false.
type Assignment map[string]bool

// Circuit is a sequential circuit: outputs are a function of the current
// inputs and registers, and registers latch a new value on every step.
type Circuit interface {
	InputPortNames() []string
	RegisterNames() []string
	OutputPortNames() []string
	ComputeOutputs(in, reg Assignment) Assignment
	UpdateRegisters(in, reg Assignment) Assignment
}

// Word is an assignment written as one '0' or '1' per name, in the order
// the names are declared.
type Word string

// WordOf encodes a over names.
func WordOf(names []string, a Assignment) Word {
	var b strings.Builder
	for _, n := range names {
		if a[n] {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return Word(b.String())
}

// Assignment decodes w over names.
func (w Word) Assignment(names []string) Assignment {
	a := make(Assignment, len(names))
	for i, n := range names {
		a[n] = i < len(w) && w[i] == '1'
	}
	return a
}

// words returns all 2^n words of length n in ascending binary order.
func words(n int) []Word {
	out := make([]Word, 0, 1<<n)
	buf := make([]byte, n)
	for k := 0; k < 1<<n; k++ {
		for i := 0; i < n; i++ {
			if k>>(n-1-i)&1 == 1 {
				buf[i] = '1'
			} else {
				buf[i] = '0'
			}
		}
		out = append(out, Word(buf))
	}
	return out
}

// State is a circuit state: the current input word and register word.
type State struct {
	Inputs    Word
	Registers Word
}

func (s State) String() string {
	return "[" + string(s.Inputs) + ", " + string(s.Registers) + "]"
}

// maxBits bounds the number of input and register bits Compile accepts.
const maxBits = 20

// Option configures Compile.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Compile builds the transition system of c. It has one state per input
// word and register word; the initial states are those with every
// register false. A state is labeled with its true inputs, registers and
// outputs. From every state there is one transition per possible next
// input word, labeled by that word, to the state holding that word and the
// updated registers.
func Compile(c Circuit, opts ...Option) (*ts.TransitionSystem[State, Word, string], error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, fn := range opts {
		fn(&o)
	}

	ins, regs, outs := c.InputPortNames(), c.RegisterNames(), c.OutputPortNames()
	if err := checkNames(ins, regs); err != nil {
		return nil, err
	}
	if len(ins)+len(regs) > maxBits {
		return nil, errors.Newf("circuit has %d input and register bits, limit is %d", len(ins)+len(regs), maxBits)
	}

	out := ts.New[State, Word, string]()
	inWords, regWords := words(len(ins)), words(len(regs))
	out.AddActions(inWords...)
	out.AddAtomicPropositions(ins...)
	out.AddAtomicPropositions(regs...)
	out.AddAtomicPropositions(outs...)

	zero := Word(strings.Repeat("0", len(regs)))
	for _, iw := range inWords {
		for _, rw := range regWords {
			s := State{Inputs: iw, Registers: rw}
			out.AddState(s)
			if rw == zero {
				if err := out.AddInitialState(s); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, s := range out.States() {
		in, reg := s.Inputs.Assignment(ins), s.Registers.Assignment(regs)
		outputs := c.ComputeOutputs(in, reg)
		for _, group := range []struct {
			names []string
			a     Assignment
		}{{ins, in}, {regs, reg}, {outs, outputs}} {
			for _, n := range group.names {
				if !group.a[n] {
					continue
				}
				if err := out.AddToLabel(s, n); err != nil {
					return nil, err
				}
			}
		}

		next := WordOf(regs, c.UpdateRegisters(in, reg))
		for _, iw := range inWords {
			t := ts.Transition[State, Word]{From: s, Action: iw, To: State{Inputs: iw, Registers: next}}
			if err := out.AddTransition(t); err != nil {
				return nil, err
			}
		}
	}

	o.logger.Debug("compiled circuit",
		slog.Int("inputs", len(ins)),
		slog.Int("registers", len(regs)),
		slog.Int("outputs", len(outs)),
		slog.Int("states", out.NumStates()),
		slog.Int("transitions", out.NumTransitions()))
	return out, nil
}

func checkNames(groups ...[]string) error {
	seen := make(map[string]struct{})
	for _, names := range groups {
		for _, n := range names {
			if n == "" {
				return errors.New("circuit has an empty port name")
			}
			if _, ok := seen[n]; ok {
				return errors.Newf("circuit declares %q twice", n)
			}
			seen[n] = struct{}{}
		}
	}
	return nil
}

// Func is a Circuit assembled from its port names and two functions.
type Func struct {
	Inputs    []string
	Registers []string
	Outputs   []string
	OutputFn  func(in, reg Assignment) Assignment
	UpdateFn  func(in, reg Assignment) Assignment
}

var _ Circuit = Func{}

func (f Func) InputPortNames() []string  { return f.Inputs }
func (f Func) RegisterNames() []string   { return f.Registers }
func (f Func) OutputPortNames() []string { return f.Outputs }

func (f Func) ComputeOutputs(in, reg Assignment) Assignment {
	if f.OutputFn == nil {
		return Assignment{}
	}
	return f.OutputFn(in, reg)
}

func (f Func) UpdateRegisters(in, reg Assignment) Assignment {
	if f.UpdateFn == nil {
		return reg
	}
	return f.UpdateFn(in, reg)
}
