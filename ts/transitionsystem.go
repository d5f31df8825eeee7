// Package ts implements labeled transition systems and the query algebra
// over them: post/pre images, reachability, determinism checks and
// execution validation.
package ts

import "fmt"

// Transition is a single step (From, Action, To) of a transition system.
type Transition[S, A comparable] struct {
	From   S
	Action A
	To     S
}

// TransitionSystem is a labeled transition system over states S, actions A
// and atomic propositions P.
//
// Every transition must refer to registered states and actions, every
// initial state must be registered and labels may only use registered
// states and propositions. Iteration order of the accessors is insertion
// order.
type TransitionSystem[S, A, P comparable] struct {
	Name string

	states      ordered[S]
	initial     ordered[S]
	actions     ordered[A]
	props       ordered[P]
	transitions ordered[Transition[S, A]]
	labels      map[S]*ordered[P]

	out map[S][]Transition[S, A]
	in  map[S][]Transition[S, A]
}

// New returns an empty transition system.
func New[S, A, P comparable]() *TransitionSystem[S, A, P] {
	return &TransitionSystem[S, A, P]{
		states:      newOrdered[S](),
		initial:     newOrdered[S](),
		actions:     newOrdered[A](),
		props:       newOrdered[P](),
		transitions: newOrdered[Transition[S, A]](),
		labels:      make(map[S]*ordered[P]),
		out:         make(map[S][]Transition[S, A]),
		in:          make(map[S][]Transition[S, A]),
	}
}

// AddState registers s. It reports whether s was new.
func (t *TransitionSystem[S, A, P]) AddState(s S) bool {
	return t.states.add(s)
}

// AddStates registers every state in ss.
func (t *TransitionSystem[S, A, P]) AddStates(ss ...S) {
	for _, s := range ss {
		t.states.add(s)
	}
}

// AddInitialState marks a registered state as initial.
func (t *TransitionSystem[S, A, P]) AddInitialState(s S) error {
	if !t.states.has(s) {
		return stateNotFound(s)
	}
	t.initial.add(s)
	return nil
}

func (t *TransitionSystem[S, A, P]) AddAction(a A) bool {
	return t.actions.add(a)
}

func (t *TransitionSystem[S, A, P]) AddActions(as ...A) {
	for _, a := range as {
		t.actions.add(a)
	}
}

func (t *TransitionSystem[S, A, P]) AddAtomicProposition(p P) bool {
	return t.props.add(p)
}

func (t *TransitionSystem[S, A, P]) AddAtomicPropositions(ps ...P) {
	for _, p := range ps {
		t.props.add(p)
	}
}

// AddToLabel adds proposition p to the label of state s.
func (t *TransitionSystem[S, A, P]) AddToLabel(s S, p P) error {
	if !t.states.has(s) {
		return stateNotFound(s)
	}
	if !t.props.has(p) {
		return propositionNotFound(p)
	}
	l, ok := t.labels[s]
	if !ok {
		o := newOrdered[P]()
		l = &o
		t.labels[s] = l
	}
	l.add(p)
	return nil
}

// AddTransition adds tr. Both endpoints and the action must be registered.
func (t *TransitionSystem[S, A, P]) AddTransition(tr Transition[S, A]) error {
	if !t.states.has(tr.From) {
		return stateNotFound(tr.From)
	}
	if !t.states.has(tr.To) {
		return stateNotFound(tr.To)
	}
	if !t.actions.has(tr.Action) {
		return actionNotFound(tr.Action)
	}
	if t.transitions.add(tr) {
		t.out[tr.From] = append(t.out[tr.From], tr)
		t.in[tr.To] = append(t.in[tr.To], tr)
	}
	return nil
}

// RemoveState removes s unless a transition or a label still refers to it.
// Removing a state also drops its initial mark.
func (t *TransitionSystem[S, A, P]) RemoveState(s S) error {
	if !t.states.has(s) {
		return stateNotFound(s)
	}
	if len(t.out[s]) > 0 || len(t.in[s]) > 0 {
		return attached("state", s, "a transition")
	}
	if l, ok := t.labels[s]; ok && len(l.items) > 0 {
		return attached("state", s, "its label")
	}
	delete(t.labels, s)
	t.initial.remove(s)
	t.states.remove(s)
	return nil
}

func (t *TransitionSystem[S, A, P]) RemoveInitialState(s S) error {
	if !t.states.has(s) {
		return stateNotFound(s)
	}
	t.initial.remove(s)
	return nil
}

// RemoveAction removes a unless a transition is labeled with it.
func (t *TransitionSystem[S, A, P]) RemoveAction(a A) error {
	if !t.actions.has(a) {
		return actionNotFound(a)
	}
	for _, tr := range t.transitions.items {
		if tr.Action == a {
			return attached("action", a, "a transition")
		}
	}
	t.actions.remove(a)
	return nil
}

// RemoveAtomicProposition removes p unless some state is labeled with it.
func (t *TransitionSystem[S, A, P]) RemoveAtomicProposition(p P) error {
	if !t.props.has(p) {
		return propositionNotFound(p)
	}
	for s, l := range t.labels {
		if l.has(p) {
			return attached("atomic proposition", p, fmt.Sprintf("the label of %v", s))
		}
	}
	t.props.remove(p)
	return nil
}

func (t *TransitionSystem[S, A, P]) RemoveTransition(tr Transition[S, A]) bool {
	if !t.transitions.remove(tr) {
		return false
	}
	t.out[tr.From] = removeTransition(t.out[tr.From], tr)
	t.in[tr.To] = removeTransition(t.in[tr.To], tr)
	return true
}

func (t *TransitionSystem[S, A, P]) RemoveLabel(s S, p P) error {
	if !t.states.has(s) {
		return stateNotFound(s)
	}
	if l, ok := t.labels[s]; ok {
		l.remove(p)
	}
	return nil
}

func removeTransition[S, A comparable](ts []Transition[S, A], tr Transition[S, A]) []Transition[S, A] {
	for i, x := range ts {
		if x == tr {
			return append(ts[:i:i], ts[i+1:]...)
		}
	}
	return ts
}

// States returns the registered states in insertion order.
func (t *TransitionSystem[S, A, P]) States() []S {
	return t.states.slice()
}

func (t *TransitionSystem[S, A, P]) InitialStates() []S {
	return t.initial.slice()
}

func (t *TransitionSystem[S, A, P]) Actions() []A {
	return t.actions.slice()
}

func (t *TransitionSystem[S, A, P]) AtomicPropositions() []P {
	return t.props.slice()
}

func (t *TransitionSystem[S, A, P]) Transitions() []Transition[S, A] {
	return t.transitions.slice()
}

func (t *TransitionSystem[S, A, P]) HasState(s S) bool {
	return t.states.has(s)
}

func (t *TransitionSystem[S, A, P]) IsInitial(s S) bool {
	return t.initial.has(s)
}

func (t *TransitionSystem[S, A, P]) HasAction(a A) bool {
	return t.actions.has(a)
}

func (t *TransitionSystem[S, A, P]) HasAtomicProposition(p P) bool {
	return t.props.has(p)
}

func (t *TransitionSystem[S, A, P]) HasTransition(tr Transition[S, A]) bool {
	return t.transitions.has(tr)
}

// NumStates returns the number of registered states.
func (t *TransitionSystem[S, A, P]) NumStates() int { return len(t.states.items) }

// NumTransitions returns the number of transitions.
func (t *TransitionSystem[S, A, P]) NumTransitions() int { return len(t.transitions.items) }

// Label returns a copy of the label of s. Unlabeled states yield an empty set.
func (t *TransitionSystem[S, A, P]) Label(s S) Set[P] {
	l, ok := t.labels[s]
	if !ok {
		return NewSet[P]()
	}
	return l.set()
}

// LabelSlice returns the label of s in insertion order.
func (t *TransitionSystem[S, A, P]) LabelSlice(s S) []P {
	l, ok := t.labels[s]
	if !ok {
		return nil
	}
	return l.slice()
}

// Outgoing returns the transitions leaving s.
func (t *TransitionSystem[S, A, P]) Outgoing(s S) []Transition[S, A] {
	return append([]Transition[S, A](nil), t.out[s]...)
}

// Incoming returns the transitions entering s.
func (t *TransitionSystem[S, A, P]) Incoming(s S) []Transition[S, A] {
	return append([]Transition[S, A](nil), t.in[s]...)
}

// Restrict returns the sub-system induced by the states in keep: those
// states, the initial ones among them, every transition between them and
// their labels. Actions and propositions are copied unchanged.
func (t *TransitionSystem[S, A, P]) Restrict(keep Set[S]) *TransitionSystem[S, A, P] {
	r := New[S, A, P]()
	r.Name = t.Name
	r.AddActions(t.actions.items...)
	r.AddAtomicPropositions(t.props.items...)
	// States, actions and propositions are registered before use, so the
	// discarded errors below cannot occur.
	for _, s := range t.states.items {
		if !keep.Has(s) {
			continue
		}
		r.AddState(s)
		if l, ok := t.labels[s]; ok {
			for _, p := range l.items {
				_ = r.AddToLabel(s, p)
			}
		}
	}
	for _, s := range t.initial.items {
		if keep.Has(s) {
			_ = r.AddInitialState(s)
		}
	}
	for _, tr := range t.transitions.items {
		if keep.Has(tr.From) && keep.Has(tr.To) {
			_ = r.AddTransition(tr)
		}
	}
	return r
}
