package pg

import "github.com/cockroachdb/errors"

var (
	// ErrNotApplicable is returned by ActionDef.Effect when the action is
	// blocked in the given environment, e.g. a receive from an empty
	// channel. The compiler skips such transitions.
	ErrNotApplicable = errors.New("action not applicable")

	// ErrUnrecognizedToken means no registered evaluator claimed a guard or
	// action.
	ErrUnrecognizedToken = errors.New("unrecognized token")
)

// ActionDef gives meaning to action tokens.
type ActionDef interface {
	Matches(action string) bool
	Effect(env Vars, action string) (Vars, error)
}

// ConditionDef gives meaning to guard tokens.
type ConditionDef interface {
	Recognizes(cond string) bool
	Evaluate(env Vars, cond string) (bool, error)
}

// ActionDefs is an ordered registry; the first matching definition wins.
type ActionDefs []ActionDef

// Effect applies action with the first definition that matches it.
func (ds ActionDefs) Effect(env Vars, action string) (Vars, error) {
	for _, d := range ds {
		if d.Matches(action) {
			return d.Effect(env, action)
		}
	}
	return nil, errors.Mark(errors.Newf("no action definition matches %q", action), ErrUnrecognizedToken)
}

// ConditionDefs is an ordered registry; the first recognizing definition wins.
type ConditionDefs []ConditionDef

func (ds ConditionDefs) Evaluate(env Vars, cond string) (bool, error) {
	for _, d := range ds {
		if d.Recognizes(cond) {
			return d.Evaluate(env, cond)
		}
	}
	return false, errors.Mark(errors.Newf("no condition definition recognizes %q", cond), ErrUnrecognizedToken)
}

// ActionFunc adapts a pair of functions to ActionDef.
type ActionFunc struct {
	MatchFn  func(action string) bool
	EffectFn func(env Vars, action string) (Vars, error)
}

func (f ActionFunc) Matches(action string) bool {
	return f.MatchFn(action)
}

func (f ActionFunc) Effect(env Vars, action string) (Vars, error) {
	return f.EffectFn(env, action)
}

// ConditionFunc adapts a pair of functions to ConditionDef.
type ConditionFunc struct {
	RecognizeFn func(cond string) bool
	EvaluateFn  func(env Vars, cond string) (bool, error)
}

func (f ConditionFunc) Recognizes(cond string) bool {
	return f.RecognizeFn(cond)
}

func (f ConditionFunc) Evaluate(env Vars, cond string) (bool, error) {
	return f.EvaluateFn(env, cond)
}
