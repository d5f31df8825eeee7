package ts

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

type state string
type action string
type prop string

const (
	s1 state = "S1"
	s2 state = "S2"
	s3 state = "S3"

	a1 action = "A1"
	a2 action = "A2"

	p prop = "P"
	q prop = "Q"
)

func newTS(t *testing.T, states []state, initial []state, trs ...Transition[state, action]) *TransitionSystem[state, action, prop] {
	t.Helper()
	ts := New[state, action, prop]()
	ts.AddStates(states...)
	ts.AddActions(a1, a2)
	ts.AddAtomicPropositions(p, q)
	for _, s := range initial {
		require.NoError(t, ts.AddInitialState(s))
	}
	for _, tr := range trs {
		require.NoError(t, ts.AddTransition(tr))
	}
	return ts
}

func tr(from state, a action, to state) Transition[state, action] {
	return Transition[state, action]{From: from, Action: a, To: to}
}

func TestAddRequiresRegisteredEntities(t *testing.T) {
	ts := New[state, action, prop]()
	ts.AddState(s1)

	err := ts.AddInitialState(s2)
	require.True(t, errors.Is(err, ErrStateNotFound))

	err = ts.AddTransition(tr(s1, a1, s1))
	require.True(t, errors.Is(err, ErrActionNotFound))

	ts.AddAction(a1)
	err = ts.AddTransition(tr(s1, a1, s2))
	require.True(t, errors.Is(err, ErrStateNotFound))

	err = ts.AddToLabel(s1, p)
	require.True(t, errors.Is(err, ErrPropositionNotFound))

	require.False(t, ts.AddState(s1))
	require.Equal(t, []state{s1}, ts.States())
}

func TestRemoveAttached(t *testing.T) {
	ts := newTS(t, []state{s1, s2, s3}, []state{s1}, tr(s1, a1, s2))
	require.NoError(t, ts.AddToLabel(s3, p))

	require.True(t, errors.Is(ts.RemoveState(s1), ErrAttachedEntity))
	require.True(t, errors.Is(ts.RemoveState(s3), ErrAttachedEntity))
	require.True(t, errors.Is(ts.RemoveAction(a1), ErrAttachedEntity))
	require.True(t, errors.Is(ts.RemoveAtomicProposition(p), ErrAttachedEntity))

	require.NoError(t, ts.RemoveAction(a2))
	require.NoError(t, ts.RemoveLabel(s3, p))
	require.NoError(t, ts.RemoveAtomicProposition(p))
	require.NoError(t, ts.RemoveState(s3))

	require.True(t, ts.RemoveTransition(tr(s1, a1, s2)))
	require.False(t, ts.RemoveTransition(tr(s1, a1, s2)))
	require.NoError(t, ts.RemoveState(s1))
	require.False(t, ts.IsInitial(s1))
	require.Equal(t, []state{s2}, ts.States())
	require.Empty(t, ts.InitialStates())

	require.True(t, errors.Is(ts.RemoveState(s1), ErrStateNotFound))
}

func TestIsStateTerminal(t *testing.T) {
	ts := newTS(t, []state{s1, s2, s3}, []state{s1},
		tr(s1, a1, s2), tr(s1, a1, s3), tr(s2, a1, s1))

	for s, want := range map[state]bool{s1: false, s2: false, s3: true} {
		got, err := ts.IsStateTerminal(s)
		require.NoError(t, err)
		require.Equal(t, want, got, "state %s", s)
	}
	_, err := ts.IsStateTerminal("S9")
	require.True(t, errors.Is(err, ErrStateNotFound))
}

func TestPostPre(t *testing.T) {
	ts := newTS(t, []state{s1, s2, s3}, []state{s1},
		tr(s1, a1, s2), tr(s2, a2, s3), tr(s2, a1, s1))

	post, err := ts.Post(s2)
	require.NoError(t, err)
	require.True(t, post.Equal(NewSet(s1, s3)))

	post, err = ts.PostSet(NewSet(s1, s3))
	require.NoError(t, err)
	require.True(t, post.Equal(NewSet(s2)))

	post, err = ts.PostAction(s2, a2)
	require.NoError(t, err)
	require.True(t, post.Equal(NewSet(s3)))

	post, err = ts.PostSetAction(NewSet(s1, s2), a1)
	require.NoError(t, err)
	require.True(t, post.Equal(NewSet(s1, s2)))

	pre, err := ts.Pre(s1)
	require.NoError(t, err)
	require.True(t, pre.Equal(NewSet(s2)))

	pre, err = ts.PreAction(s3, a1)
	require.NoError(t, err)
	require.Equal(t, 0, pre.Len())

	pre, err = ts.PreSet(NewSet(s2, s3))
	require.NoError(t, err)
	require.True(t, pre.Equal(NewSet(s1, s2)))

	pre, err = ts.PreSetAction(NewSet(s2, s3), a2)
	require.NoError(t, err)
	require.True(t, pre.Equal(NewSet(s2)))

	_, err = ts.PostSet(NewSet[state]("S9"))
	require.True(t, errors.Is(err, ErrStateNotFound))
	_, err = ts.PostAction(s1, "A9")
	require.True(t, errors.Is(err, ErrActionNotFound))
}

func TestReach(t *testing.T) {
	ts := newTS(t, []state{s1, s2, s3, "S4"}, []state{s1},
		tr(s1, a1, s2), tr(s2, a1, s1), tr("S4", a1, s3))
	require.True(t, ts.Reach().Equal(NewSet(s1, s2)))

	empty := New[state, action, prop]()
	require.Equal(t, 0, empty.Reach().Len())
}

func TestActionDeterminism(t *testing.T) {
	ts := newTS(t, []state{s1, s2, s3}, []state{s3},
		tr(s1, a1, s2), tr(s1, a1, s1))
	require.False(t, ts.IsActionDeterministic())

	ts = newTS(t, []state{s1, s2, s3}, []state{s3},
		tr(s1, a1, s2), tr(s2, a1, s1))
	require.True(t, ts.IsActionDeterministic())
	require.NoError(t, ts.AddInitialState(s1))
	require.False(t, ts.IsActionDeterministic())
	require.False(t, ts.IsAPDeterministic())
}

func TestAPDeterminism(t *testing.T) {
	ts := newTS(t, []state{s1, s2, s3}, []state{s3},
		tr(s1, a1, s2), tr(s2, a1, s3))
	require.NoError(t, ts.AddToLabel(s2, p))
	require.NoError(t, ts.AddToLabel(s3, q))
	require.True(t, ts.IsAPDeterministic())

	ts = newTS(t, []state{s1, s2, s3}, []state{s3},
		tr(s1, a1, s2), tr(s1, a1, s1))
	require.NoError(t, ts.AddToLabel(s2, p))
	require.NoError(t, ts.AddToLabel(s1, p))
	require.False(t, ts.IsAPDeterministic())

	// Same successors under different actions do not conflict.
	ts = newTS(t, []state{s1, s2, s3}, []state{s1},
		tr(s1, a1, s2), tr(s1, a2, s3))
	require.True(t, ts.IsAPDeterministic())
}

func TestExecutions(t *testing.T) {
	ts := newTS(t, []state{s1, s2, s3}, []state{s1},
		tr(s1, a1, s2), tr(s1, a1, s1), tr(s1, a1, s3), tr(s2, a1, s1))

	seq := func(states []state, actions []action) AlternatingSequence[state, action] {
		q, err := NewAlternatingSequence(states, actions)
		require.NoError(t, err)
		return q
	}
	notFragment := seq([]state{s1, s2, s3}, []action{a1, a1})
	notInitialNotMaximal := seq([]state{s2, s1, s2}, []action{a1, a1})
	initialNotMaximal := seq([]state{s1, s1, s2}, []action{a1, a1})
	notInitialMaximal := seq([]state{s2, s1, s3}, []action{a1, a1})
	execution := seq([]state{s1, s1, s3}, []action{a1, a1})

	check := func(f func(AlternatingSequence[state, action]) (bool, error), q AlternatingSequence[state, action], want bool) {
		t.Helper()
		got, err := f(q)
		require.NoError(t, err)
		require.Equal(t, want, got, "%s", q)
	}
	check(ts.IsExecutionFragment, notFragment, false)
	check(ts.IsExecutionFragment, notInitialNotMaximal, true)
	check(ts.IsInitialExecutionFragment, notInitialNotMaximal, false)
	check(ts.IsInitialExecutionFragment, initialNotMaximal, true)
	check(ts.IsMaximalExecutionFragment, initialNotMaximal, false)
	check(ts.IsMaximalExecutionFragment, notInitialMaximal, true)
	check(ts.IsExecution, execution, true)
	check(ts.IsExecution, notInitialMaximal, false)

	empty := AlternatingSequence[state, action]{}
	check(ts.IsExecutionFragment, empty, true)
	check(ts.IsExecution, empty, true)

	_, err := ts.IsExecutionFragment(seq([]state{s1, s1, s2}, []action{"A9", a1}))
	require.True(t, errors.Is(err, ErrActionNotFound))
	_, err = ts.IsExecutionFragment(seq([]state{s1, "S9"}, []action{a1}))
	require.True(t, errors.Is(err, ErrStateNotFound))

	_, err = NewAlternatingSequence[state, action]([]state{s1, s2}, nil)
	require.Error(t, err)
}

func TestRestrictAndDot(t *testing.T) {
	ts := newTS(t, []state{s1, s2, s3}, []state{s1, s3},
		tr(s1, a1, s2), tr(s2, a1, s3))
	require.NoError(t, ts.AddToLabel(s2, p))

	r := ts.Restrict(NewSet(s1, s2))
	require.Equal(t, []state{s1, s2}, r.States())
	require.Equal(t, []state{s1}, r.InitialStates())
	require.Equal(t, []Transition[state, action]{tr(s1, a1, s2)}, r.Transitions())
	require.True(t, r.Label(s2).Equal(NewSet(p)))

	out := ts.Dot()
	require.Contains(t, out, "digraph")
	require.Contains(t, out, "{P}")
	require.Contains(t, out, "A1")
}
