package channel

import (
	"io"
	"log/slog"

	"github.com/blackwell-systems/opsem/expr"
	"github.com/blackwell-systems/opsem/pg"
	"github.com/blackwell-systems/opsem/ts"
	"github.com/cockroachdb/errors"
)

// Option configures Build and Compile.
type Option func(*options)

type options struct {
	classify Classifier
	actions  pg.ActionDefs
	conds    pg.ConditionDefs
	logger   *slog.Logger
}

// WithClassifier overrides which actions are one-sided.
func WithClassifier(c Classifier) Option {
	return func(o *options) {
		if c != nil {
			o.classify = c
		}
	}
}

// WithOneSided marks the channel operations accepted by keep as one-sided.
// Every other action, channel operations included, interleaves freely.
func WithOneSided(keep func(op expr.ChannelOp) bool) Option {
	return WithClassifier(func(action string) (expr.ChannelOp, bool) {
		op, ok := expr.ClassifyChannelOp(action)
		if !ok || !keep(op) {
			return expr.ChannelOp{}, false
		}
		return op, true
	})
}

// RendezvousOnly treats only rendezvous channels as one-sided. Other
// channels then behave as FIFO queues in the shared environment.
func RendezvousOnly() Option {
	return WithOneSided(func(op expr.ChannelOp) bool {
		return expr.IsRendezvous(op.Channel)
	})
}

func WithActionDefs(defs pg.ActionDefs) Option {
	return func(o *options) {
		o.actions = defs
	}
}

func WithConditionDefs(defs pg.ConditionDefs) Option {
	return func(o *options) {
		o.conds = defs
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		classify: expr.ClassifyChannelOp,
		actions:  expr.StandardActions(),
		conds:    expr.StandardConditions(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Build merges the processes of sys, in order, into one program graph over
// location tuples. One-sided transitions left without a partner are
// removed.
func Build(sys System, opts ...Option) (*pg.ProgramGraph[Tuple], error) {
	o := buildOptions(opts)
	return build(sys, o)
}

func build(sys System, o options) (*pg.ProgramGraph[Tuple], error) {
	if len(sys.Graphs) == 0 {
		return nil, errors.Newf("channel system %q has no processes", sys.Name)
	}
	for i, g := range sys.Graphs {
		if g == nil {
			return nil, errors.Newf("channel system %q: process %d is nil", sys.Name, i)
		}
	}

	acc := Lift(sys.Graphs[0])
	for _, g := range sys.Graphs[1:] {
		acc = Merge(acc, g, o.classify)
	}
	dropped := 0
	if len(sys.Graphs) > 1 {
		acc, dropped = prune(acc, o.classify)
	}
	if sys.Name != "" {
		acc.Name = sys.Name
	}
	o.logger.Debug("merged channel system",
		slog.String("system", sys.Name),
		slog.Int("processes", len(sys.Graphs)),
		slog.Int("locations", len(acc.Locations())),
		slog.Int("transitions", len(acc.Transitions())),
		slog.Int("unpaired", dropped))
	return acc, nil
}

// Compile merges the processes of sys and explores the result.
func Compile(sys System, opts ...Option) (*ts.TransitionSystem[pg.State[Tuple], string, string], error) {
	o := buildOptions(opts)
	g, err := build(sys, o)
	if err != nil {
		return nil, err
	}
	out, err := pg.Compile(g, o.actions, o.conds, pg.WithLogger(o.logger))
	if err != nil {
		return nil, errors.Wrapf(err, "compiling channel system %q", sys.Name)
	}
	return out, nil
}
