package verify

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/blackwell-systems/opsem/channel"
	"github.com/blackwell-systems/opsem/circuit"
	"github.com/blackwell-systems/opsem/expr"
	"github.com/blackwell-systems/opsem/pg"
	"github.com/blackwell-systems/opsem/registry"
	"github.com/blackwell-systems/opsem/ts"
	"github.com/cockroachdb/errors"
)

// Option configures CheckModel.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger passed down to the compilers.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// InvariantResult is the outcome of one named invariant. The
// counterexample alternates printed states and actions.
type InvariantResult struct {
	Name           string
	Expr           string
	Holds          bool
	StatesChecked  int
	Counterexample []string
}

// Report summarizes the compiled state space of a model and its
// invariants.
type Report struct {
	Model       string
	Kind        registry.Kind
	States      int
	Initial     int
	Transitions int
	Invariants  []InvariantResult
}

// Pass reports whether every invariant holds.
func (r *Report) Pass() bool {
	for _, inv := range r.Invariants {
		if !inv.Holds {
			return false
		}
	}
	return true
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model:       %s (%s)\n", r.Model, r.Kind)
	fmt.Fprintf(&b, "States:      %d (%d initial)\n", r.States, r.Initial)
	fmt.Fprintf(&b, "Transitions: %d\n", r.Transitions)
	fmt.Fprintf(&b, "Invariants:  %d\n", len(r.Invariants))
	for _, inv := range r.Invariants {
		if inv.Holds {
			fmt.Fprintf(&b, "  PASS %s: %s (%d states)\n", inv.Name, inv.Expr, inv.StatesChecked)
			continue
		}
		fmt.Fprintf(&b, "  FAIL %s: %s\n", inv.Name, inv.Expr)
		fmt.Fprintf(&b, "       %s\n", strings.Join(inv.Counterexample, " -> "))
	}
	if r.Pass() {
		b.WriteString("Result: PASS\n")
	} else {
		b.WriteString("Result: FAIL\n")
	}
	return b.String()
}

// CheckModel compiles m according to its kind and checks its invariants.
// Invariants of graph models range over the variables of each state;
// invariants of circuits range over the input, register and output names.
func CheckModel(m *registry.Model, opts ...Option) (*Report, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, fn := range opts {
		fn(&o)
	}

	var (
		r   *Report
		err error
	)
	switch m.Kind {
	case registry.KindProgramGraph:
		t, cerr := pg.Compile(m.Graph, actionDefs(m.Capacity), expr.StandardConditions(), pg.WithLogger(o.logger))
		if cerr != nil {
			return nil, errors.Wrapf(cerr, "compiling %q", m.Name)
		}
		r, err = checkAll(m, t, envVars[string])

	case registry.KindChannelSystem:
		copts := []channel.Option{channel.WithActionDefs(actionDefs(m.Capacity)), channel.WithLogger(o.logger)}
		if m.RendezvousOnly {
			copts = append(copts, channel.RendezvousOnly())
		}
		t, cerr := channel.Compile(m.System, copts...)
		if cerr != nil {
			return nil, errors.Wrapf(cerr, "compiling %q", m.Name)
		}
		r, err = checkAll(m, t, envVars[channel.Tuple])

	case registry.KindCircuit:
		t, cerr := circuit.Compile(m.Circuit, circuit.WithLogger(o.logger))
		if cerr != nil {
			return nil, errors.Wrapf(cerr, "compiling %q", m.Name)
		}
		r, err = checkAll(m, t, func(s circuit.State) (pg.Vars, error) {
			return labelVars(t, s), nil
		})

	default:
		return nil, errors.Newf("model %q: unknown kind %q", m.Name, m.Kind)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Info("checked model",
		slog.String("model", m.Name),
		slog.Int("states", r.States),
		slog.Int("invariants", len(r.Invariants)),
		slog.Bool("pass", r.Pass()))
	return r, nil
}

func actionDefs(capacity int) pg.ActionDefs {
	return pg.ActionDefs{expr.HandshakeActionDef{}, expr.ActionDef{Capacity: capacity}}
}

func envVars[L comparable](s pg.State[L]) (pg.Vars, error) {
	return s.Env.Vars()
}

// labelVars binds every atomic proposition of t to whether s carries it.
func labelVars[S, A comparable](t *ts.TransitionSystem[S, A, string], s S) pg.Vars {
	label := t.Label(s)
	vars := make(pg.Vars)
	for _, p := range t.AtomicPropositions() {
		vars[p] = label.Has(p)
	}
	return vars
}

func checkAll[S, A comparable](m *registry.Model, t *ts.TransitionSystem[S, A, string], env func(S) (pg.Vars, error)) (*Report, error) {
	r := &Report{
		Model:       m.Name,
		Kind:        m.Kind,
		States:      t.NumStates(),
		Initial:     len(t.InitialStates()),
		Transitions: t.NumTransitions(),
	}
	for _, inv := range m.Invariants {
		node, err := expr.Parse(inv.Expr)
		if err != nil {
			return nil, errors.Wrapf(err, "invariant %q", inv.Name)
		}
		res, err := CheckInvariant(t, func(s S) (bool, error) {
			vars, err := env(s)
			if err != nil {
				return false, err
			}
			return expr.EvalBool(node, vars)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "invariant %q", inv.Name)
		}
		r.Invariants = append(r.Invariants, InvariantResult{
			Name:           inv.Name,
			Expr:           inv.Expr,
			Holds:          res.Holds,
			StatesChecked:  res.StatesChecked,
			Counterexample: render(res.Counterexample),
		})
	}
	return r, nil
}

func render[S, A comparable](q ts.AlternatingSequence[S, A]) []string {
	if q.IsEmpty() {
		return nil
	}
	out := make([]string, 0, len(q.States)+len(q.Actions))
	for i, s := range q.States {
		if i > 0 {
			out = append(out, fmt.Sprint(q.Actions[i-1]))
		}
		out = append(out, fmt.Sprint(s))
	}
	return out
}
