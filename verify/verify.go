// Package verify checks safety properties of compiled transition systems
// and of models loaded through package registry.
package verify

import (
	"github.com/blackwell-systems/opsem/ts"
	"github.com/cockroachdb/errors"
)

// Result holds the outcome of checking one property.
type Result[S, A comparable] struct {
	Holds bool
	// Counterexample is an initial execution fragment ending in a state
	// that violates the property. It is empty when the property holds.
	Counterexample ts.AlternatingSequence[S, A]
	StatesChecked  int
}

// CheckInvariant explores the reachable states of t breadth first and
// stops at the first state where holds is false. The counterexample is a
// shortest path to that state.
func CheckInvariant[S, A, P comparable](t *ts.TransitionSystem[S, A, P], holds func(S) (bool, error)) (Result[S, A], error) {
	var res Result[S, A]
	parent := make(map[S]link[S, A])
	var queue []S
	for _, s := range t.InitialStates() {
		if _, ok := parent[s]; ok {
			continue
		}
		parent[s] = link[S, A]{root: true}
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		res.StatesChecked++
		ok, err := holds(s)
		if err != nil {
			return res, errors.Wrapf(err, "evaluating invariant at %v", s)
		}
		if !ok {
			res.Counterexample = trace(parent, s)
			return res, nil
		}
		for _, tr := range t.Outgoing(s) {
			if _, seen := parent[tr.To]; seen {
				continue
			}
			parent[tr.To] = link[S, A]{prev: s, action: tr.Action}
			queue = append(queue, tr.To)
		}
	}
	res.Holds = true
	return res, nil
}

// link records how the search first reached a state.
type link[S, A comparable] struct {
	prev   S
	action A
	root   bool
}

// trace walks parent links back from s to an initial state.
func trace[S, A comparable](parent map[S]link[S, A], s S) ts.AlternatingSequence[S, A] {
	states := []S{s}
	var actions []A
	for l := parent[s]; !l.root; l = parent[l.prev] {
		states = append(states, l.prev)
		actions = append(actions, l.action)
	}
	reverse(states)
	reverse(actions)
	return ts.AlternatingSequence[S, A]{States: states, Actions: actions}
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
