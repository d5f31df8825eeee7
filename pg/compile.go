package pg

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/blackwell-systems/opsem/ts"
	"github.com/cockroachdb/errors"
)

// Option configures Compile.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for exploration summaries.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Compile explores every (location, environment) pair reachable from the
// initial locations and initializations of g.
//
// An empty guard is always true and an empty action leaves the environment
// unchanged; every other token goes to the registries. A transition whose
// action reports ErrNotApplicable does not fire. Each state is labeled with
// the printable name of its location and every explored guard that holds
// in its environment.
func Compile[L comparable](g *ProgramGraph[L], actions ActionDefs, conds ConditionDefs, opts ...Option) (*ts.TransitionSystem[State[L], string, string], error) {
	o := buildOptions(opts)
	c := &compiler[L]{
		g:       g,
		actions: actions,
		conds:   conds,
		out:     ts.New[State[L], string, string](),
		envs:    make(map[Env]Vars),
	}
	c.out.Name = g.Name

	inits, err := c.initialEnvs()
	if err != nil {
		return nil, err
	}
	var queue []State[L]
	for _, l := range g.initial {
		for _, env := range inits {
			s := State[L]{Loc: l, Env: env}
			if c.out.AddState(s) {
				queue = append(queue, s)
			}
			if err := c.out.AddInitialState(s); err != nil {
				return nil, err
			}
		}
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		next, err := c.expand(s)
		if err != nil {
			return nil, err
		}
		queue = append(queue, next...)
	}

	if err := c.label(); err != nil {
		return nil, err
	}
	o.logger.Debug("compiled program graph",
		slog.String("graph", g.Name),
		slog.Int("locations", len(g.locations)),
		slog.Int("states", c.out.NumStates()),
		slog.Int("transitions", c.out.NumTransitions()),
		slog.Int("initial", len(c.out.InitialStates())))
	return c.out, nil
}

type compiler[L comparable] struct {
	g       *ProgramGraph[L]
	actions ActionDefs
	conds   ConditionDefs
	out     *ts.TransitionSystem[State[L], string, string]

	envs   map[Env]Vars
	guards []string
	seen   map[string]struct{}
}

func (c *compiler[L]) initialEnvs() ([]Env, error) {
	if len(c.g.Initializations) == 0 {
		c.envs[EmptyEnv] = Vars{}
		return []Env{EmptyEnv}, nil
	}
	var out []Env
	for _, seq := range c.g.Initializations {
		vars := Vars{}
		blocked := false
		for _, a := range seq {
			next, err := c.effect(vars, a)
			if errors.Is(err, ErrNotApplicable) {
				blocked = true
				break
			}
			if err != nil {
				return nil, errors.Wrapf(err, "initialization %q", seq)
			}
			vars = next
		}
		if blocked {
			continue
		}
		env, err := c.freeze(vars)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}

// expand records every transition leaving s and returns the newly
// discovered successors.
func (c *compiler[L]) expand(s State[L]) ([]State[L], error) {
	vars, err := c.vars(s.Env)
	if err != nil {
		return nil, err
	}
	var discovered []State[L]
	for _, t := range c.g.out[s.Loc] {
		ok, err := c.holds(vars, t.Cond)
		if err != nil {
			return nil, errors.Wrapf(err, "guard of %v -> %v", t.From, t.To)
		}
		c.noteGuard(t.Cond)
		if !ok {
			continue
		}
		post, err := c.effect(vars.Clone(), t.Action)
		if errors.Is(err, ErrNotApplicable) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "action of %v -> %v", t.From, t.To)
		}
		env, err := c.freeze(post)
		if err != nil {
			return nil, err
		}
		succ := State[L]{Loc: t.To, Env: env}
		if c.out.AddState(succ) {
			discovered = append(discovered, succ)
		}
		c.out.AddAction(t.Action)
		if err := c.out.AddTransition(ts.Transition[State[L], string]{From: s, Action: t.Action, To: succ}); err != nil {
			return nil, err
		}
	}
	return discovered, nil
}

func (c *compiler[L]) label() error {
	for _, s := range c.out.States() {
		name := fmt.Sprint(s.Loc)
		c.out.AddAtomicProposition(name)
		if err := c.out.AddToLabel(s, name); err != nil {
			return err
		}
		vars, err := c.vars(s.Env)
		if err != nil {
			return err
		}
		for _, g := range c.guards {
			ok, err := c.holds(vars, g)
			if err != nil {
				return errors.Wrapf(err, "labeling %v", s)
			}
			if !ok {
				continue
			}
			c.out.AddAtomicProposition(g)
			if err := c.out.AddToLabel(s, g); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compiler[L]) noteGuard(g string) {
	if g == "" {
		return
	}
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	if _, ok := c.seen[g]; ok {
		return
	}
	c.seen[g] = struct{}{}
	c.guards = append(c.guards, g)
}

func (c *compiler[L]) holds(vars Vars, cond string) (bool, error) {
	if cond == "" {
		return true, nil
	}
	return c.conds.Evaluate(vars, cond)
}

func (c *compiler[L]) effect(vars Vars, action string) (Vars, error) {
	if action == "" {
		return vars, nil
	}
	return c.actions.Effect(vars, action)
}

func (c *compiler[L]) freeze(v Vars) (Env, error) {
	env, err := Freeze(v)
	if err != nil {
		return "", err
	}
	if _, ok := c.envs[env]; !ok {
		c.envs[env] = v
	}
	return env, nil
}

// vars returns a private copy of the environment behind env.
func (c *compiler[L]) vars(env Env) (Vars, error) {
	if v, ok := c.envs[env]; ok {
		return v.Clone(), nil
	}
	v, err := env.Vars()
	if err != nil {
		return nil, err
	}
	c.envs[env] = v
	return v.Clone(), nil
}
