package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/opsem/pg"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const mutex = `
model:
  name: mutex
  kind: channel-system
  rendezvous-only: true
  capacity: 2
  processes:
    worker:
      initial: [idle]
      initializations:
        - ["x := 0"]
      transitions:
        - {from: idle, action: "_lock!1", to: busy}
        - {from: busy, guard: "x < 3", action: "x := x + 1", to: idle}
    lock:
      initial: [free]
      transitions:
        - {from: free, action: "_lock?owner", to: free}
  invariants:
    bounded:
      expr: "x <= 3"
    owned:
      expr: "owner >= 0"
`

func TestParseChannelSystem(t *testing.T) {
	m, err := Parse([]byte(mutex))
	require.NoError(t, err)
	require.Equal(t, "mutex", m.Name)
	require.Equal(t, KindChannelSystem, m.Kind)
	require.True(t, m.RendezvousOnly)
	require.Equal(t, 2, m.Capacity)
	require.Equal(t, "mutex", m.System.Name)

	// Processes keep their declaration order.
	require.Len(t, m.System.Graphs, 2)
	worker, lock := m.System.Graphs[0], m.System.Graphs[1]
	require.Equal(t, "worker", worker.Name)
	require.Equal(t, "lock", lock.Name)

	want := []pg.Transition[string]{
		{From: "idle", Action: "_lock!1", To: "busy"},
		{From: "busy", Cond: "x < 3", Action: "x := x + 1", To: "idle"},
	}
	if diff := cmp.Diff(want, worker.Transitions()); diff != "" {
		t.Errorf("worker transitions mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"idle"}, worker.InitialLocations())
	require.Equal(t, [][]string{{"x := 0"}}, worker.Initializations)
	require.Nil(t, lock.Initializations)

	require.Equal(t, []Invariant{
		{Name: "bounded", Expr: "x <= 3"},
		{Name: "owned", Expr: "owner >= 0"},
	}, m.Invariants)
}

func TestParseProgramGraph(t *testing.T) {
	m, err := Parse([]byte(`
model:
  name: counter
  kind: program-graph
  graph:
    initial: [loop]
    initializations:
      - ["x := 0"]
      - ["x := 2"]
    transitions:
      - {from: loop, guard: "x < 3", action: "x := x + 1", to: loop}
`))
	require.NoError(t, err)
	require.Equal(t, KindProgramGraph, m.Kind)
	require.Equal(t, "counter", m.Graph.Name)
	require.Len(t, m.Graph.Transitions(), 1)
	require.Equal(t, [][]string{{"x := 0"}, {"x := 2"}}, m.Graph.Initializations)
	require.Empty(t, m.Invariants)
}

const latch = `INPUT(x)
OUTPUT(y)
r = DFF(n)
n = OR(x, r)
y = XOR(x, r)
`

func TestParseCircuit(t *testing.T) {
	m, err := Parse([]byte(`
model:
  name: latch
  kind: circuit
  bench: |
    INPUT(x)
    OUTPUT(y)
    r = DFF(n)
    n = OR(x, r)
    y = XOR(x, r)
`))
	require.NoError(t, err)
	require.Equal(t, []string{"r"}, m.Circuit.RegisterNames())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latch.bench"), []byte(latch), 0o644))
	path := filepath.Join(dir, "latch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model:
  name: latch
  kind: circuit
  bench-file: latch.bench
`), 0o644))
	m, err = LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, m.Circuit.InputPortNames())
	require.Equal(t, []string{"y"}, m.Circuit.OutputPortNames())
}

func TestParseErrors(t *testing.T) {
	for name, src := range map[string]string{
		"not yaml":     "model: [",
		"no name":      "model: {kind: circuit}",
		"no kind":      "model: {name: m}",
		"unknown kind": "model: {name: m, kind: petri-net}",
		"no graph":     "model: {name: m, kind: program-graph}",
		"no initial":   "model: {name: m, kind: program-graph, graph: {transitions: []}}",
		"no processes": "model: {name: m, kind: channel-system}",
		"bad endpoint": "model: {name: m, kind: program-graph, graph: {initial: [a], transitions: [{from: a}]}}",
		"no bench":     "model: {name: m, kind: circuit}",
		"both benches": "model: {name: m, kind: circuit, bench: 'INPUT(a)', bench-file: a.bench}",
		"bad bench":    "model: {name: m, kind: circuit, bench: 'b = FOO(a)'}",
		"empty expr":   "model: {name: m, kind: circuit, bench: 'INPUT(a)', invariants: {i: {}}}",
		"negative cap": "model: {name: m, kind: circuit, bench: 'INPUT(a)', capacity: -1}",
		"missing file": "model: {name: m, kind: circuit, bench-file: /nonexistent/a.bench}",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			require.Error(t, err)
		})
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
