package nanopromela

import (
	"testing"

	"github.com/blackwell-systems/opsem/expr"
	"github.com/blackwell-systems/opsem/pg"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func tr(from, cond, action, to string) pg.Transition[string] {
	return pg.Transition[string]{From: from, Cond: cond, Action: action, To: to}
}

func TestLowerBase(t *testing.T) {
	g, err := Lower(Assign{Var: "x", Expr: "0"})
	require.NoError(t, err)
	require.Equal(t, []string{"x := 0"}, g.InitialLocations())
	require.ElementsMatch(t, []string{"x := 0", Done}, g.Locations())
	require.Equal(t, []pg.Transition[string]{tr("x := 0", "true", "x := 0", Done)}, g.Transitions())
}

func TestLowerSeq(t *testing.T) {
	prog := Sequence(Assign{Var: "x", Expr: "0"}, Assign{Var: "y", Expr: "x + 1"})
	g, err := Lower(prog)
	require.NoError(t, err)

	want := []pg.Transition[string]{
		tr("x := 0; y := x + 1", "true", "x := 0", "y := x + 1"),
		tr("y := x + 1", "true", "y := x + 1", Done),
	}
	if diff := cmp.Diff(want, g.Transitions()); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}

	out, err := Compile(prog)
	require.NoError(t, err)
	require.Equal(t, 3, out.NumStates())

	final, err := pg.Freeze(pg.Vars{"x": 0, "y": 1})
	require.NoError(t, err)
	require.True(t, out.HasState(pg.State[string]{Loc: Done, Env: final}))
	term, err := out.IsStateTerminal(pg.State[string]{Loc: Done, Env: final})
	require.NoError(t, err)
	require.True(t, term)
}

func TestLowerDoExitGuard(t *testing.T) {
	loop := Do{Options: []Option{
		{Guard: "x < 3", Body: Assign{Var: "x", Expr: "x + 1"}},
		{Guard: "y == 1", Body: Skip{}},
	}}
	g, err := Lower(loop)
	require.NoError(t, err)

	text := "do :: x < 3 -> x := x + 1 :: y == 1 -> skip od"
	require.Equal(t, text, loop.Text())
	want := []pg.Transition[string]{
		tr(text, "x < 3", "x := x + 1", text),
		tr(text, "y == 1", "skip", text),
		tr(text, "!(x < 3) && !(y == 1)", "", Done),
	}
	if diff := cmp.Diff(want, g.Transitions()); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}

	// The exit guard holds exactly when no option guard does.
	exit, err := expr.Parse(want[2].Cond)
	require.NoError(t, err)
	for x := 0; x < 5; x++ {
		for y := 0; y < 2; y++ {
			env := pg.Vars{"x": x, "y": y}
			got, err := expr.EvalBool(exit, env)
			require.NoError(t, err)
			require.Equal(t, !(x < 3) && !(y == 1), got, "x=%d y=%d", x, y)
		}
	}
}

func TestLowerNested(t *testing.T) {
	inner := Sequence(
		If{Options: []Option{{
			Guard: "x != y",
			Body: Do{Options: []Option{
				{Guard: "x < 3", Body: Assign{Var: "x", Expr: "x + 1"}},
			}},
		}}},
		Assign{Var: "y", Expr: "9"},
	)
	prog := If{Options: []Option{
		{Guard: "a == c", Body: Assign{Var: "bb", Expr: "1"}},
		{Guard: "a == b", Body: inner},
	}}
	g, err := Lower(prog)
	require.NoError(t, err)

	root := prog.Text()
	do := "do :: x < 3 -> x := x + 1 od"
	residual := do + "; y := 9"
	want := []pg.Transition[string]{
		tr(root, "a == c", "bb := 1", Done),
		tr(root, "(a == b) && ((x != y) && (x < 3))", "x := x + 1", residual),
		tr(root, "(a == b) && ((x != y) && (!(x < 3)))", "", "y := 9"),
		tr(residual, "x < 3", "x := x + 1", residual),
		tr(residual, "!(x < 3)", "", "y := 9"),
		tr("y := 9", "true", "y := 9", Done),
	}
	if diff := cmp.Diff(want, g.Transitions()); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}

	// From the all-zero environment only the first option can fire.
	out, err := Compile(prog)
	require.NoError(t, err)
	require.Equal(t, 2, out.NumStates())
}

func TestLowerLoopCompiles(t *testing.T) {
	prog := Sequence(
		Assign{Var: "x", Expr: "0"},
		Do{Options: []Option{{Guard: "x < 3", Body: Assign{Var: "x", Expr: "x + 1"}}}},
	)
	out, err := Compile(prog)
	require.NoError(t, err)

	done, err := pg.Freeze(pg.Vars{"x": 3})
	require.NoError(t, err)
	require.True(t, out.HasState(pg.State[string]{Loc: Done, Env: done}))
	// start, loop head for x=0..3, done
	require.Equal(t, 6, out.NumStates())
}

func TestLowerRejectsMalformed(t *testing.T) {
	_, err := Lower(nil)
	require.Error(t, err)
	_, err = Lower(If{})
	require.Error(t, err)
	_, err = Lower(Do{})
	require.Error(t, err)
	_, err = Lower(Atomic{Body: []Stmt{nil}})
	require.Error(t, err)
	_, err = Lower(Atomic{Body: []Stmt{Do{Options: []Option{{Guard: "true", Body: Skip{}}}}}})
	require.Error(t, err)
}

func TestAtomicAndChannels(t *testing.T) {
	prog := Sequence(
		Atomic{Body: []Stmt{Send{Chan: "c", Expr: "5"}, Receive{Chan: "c", Var: "y"}}},
		Raw{Src: "z := y * 2"},
	)
	require.Equal(t, "atomic{c!5; c?y}; z := y * 2", prog.Text())

	out, err := Compile(prog)
	require.NoError(t, err)
	final, err := pg.Freeze(pg.Vars{"y": 5, "z": 10})
	require.NoError(t, err)
	require.True(t, out.HasState(pg.State[string]{Loc: Done, Env: final}))
}
