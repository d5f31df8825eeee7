package ts

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// AlternatingSequence is a finite path s0 a0 s1 a1 ... sn through a
// transition system. An empty sequence has no states and no actions.
type AlternatingSequence[S, A comparable] struct {
	States  []S
	Actions []A
}

// NewAlternatingSequence validates that there is exactly one action less
// than there are states.
func NewAlternatingSequence[S, A comparable](states []S, actions []A) (AlternatingSequence[S, A], error) {
	if len(states) == 0 && len(actions) == 0 {
		return AlternatingSequence[S, A]{}, nil
	}
	if len(actions) != len(states)-1 {
		return AlternatingSequence[S, A]{}, errors.Newf(
			"alternating sequence with %d states needs %d actions, got %d",
			len(states), max(len(states)-1, 0), len(actions))
	}
	return AlternatingSequence[S, A]{States: states, Actions: actions}, nil
}

// Len returns the number of states.
func (q AlternatingSequence[S, A]) Len() int {
	return len(q.States)
}

func (q AlternatingSequence[S, A]) IsEmpty() bool {
	return len(q.States) == 0
}

// Head returns the first state.
func (q AlternatingSequence[S, A]) Head() (S, bool) {
	var zero S
	if q.IsEmpty() {
		return zero, false
	}
	return q.States[0], true
}

// Last returns the final state.
func (q AlternatingSequence[S, A]) Last() (S, bool) {
	var zero S
	if q.IsEmpty() {
		return zero, false
	}
	return q.States[len(q.States)-1], true
}

func (q AlternatingSequence[S, A]) String() string {
	var b strings.Builder
	for i, s := range q.States {
		if i > 0 {
			fmt.Fprintf(&b, " -%v-> ", q.Actions[i-1])
		}
		fmt.Fprint(&b, s)
	}
	return b.String()
}

// IsExecutionFragment reports whether every step of seq is a transition.
// All states and actions of seq must be registered.
func (t *TransitionSystem[S, A, P]) IsExecutionFragment(seq AlternatingSequence[S, A]) (bool, error) {
	if len(seq.States) > 0 && len(seq.Actions) != len(seq.States)-1 {
		return false, errors.Newf("malformed alternating sequence: %d states, %d actions",
			len(seq.States), len(seq.Actions))
	}
	for _, s := range seq.States {
		if !t.states.has(s) {
			return false, stateNotFound(s)
		}
	}
	for _, a := range seq.Actions {
		if !t.actions.has(a) {
			return false, actionNotFound(a)
		}
	}
	for i, a := range seq.Actions {
		tr := Transition[S, A]{From: seq.States[i], Action: a, To: seq.States[i+1]}
		if !t.transitions.has(tr) {
			return false, nil
		}
	}
	return true, nil
}

// IsInitialExecutionFragment additionally requires seq to start in an
// initial state.
func (t *TransitionSystem[S, A, P]) IsInitialExecutionFragment(seq AlternatingSequence[S, A]) (bool, error) {
	ok, err := t.IsExecutionFragment(seq)
	if err != nil || !ok {
		return false, err
	}
	head, nonEmpty := seq.Head()
	if !nonEmpty {
		return true, nil
	}
	return t.initial.has(head), nil
}

// IsMaximalExecutionFragment additionally requires seq to end in a terminal
// state.
func (t *TransitionSystem[S, A, P]) IsMaximalExecutionFragment(seq AlternatingSequence[S, A]) (bool, error) {
	ok, err := t.IsExecutionFragment(seq)
	if err != nil || !ok {
		return false, err
	}
	last, nonEmpty := seq.Last()
	if !nonEmpty {
		return true, nil
	}
	return len(t.out[last]) == 0, nil
}

// IsExecution reports whether seq is an initial and maximal execution
// fragment.
func (t *TransitionSystem[S, A, P]) IsExecution(seq AlternatingSequence[S, A]) (bool, error) {
	ok, err := t.IsInitialExecutionFragment(seq)
	if err != nil || !ok {
		return false, err
	}
	return t.IsMaximalExecutionFragment(seq)
}
