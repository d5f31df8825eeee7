package registry

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/opsem/channel"
	"github.com/blackwell-systems/opsem/circuit"
	"github.com/blackwell-systems/opsem/pg"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Raw YAML structures for unmarshaling.

type rawFile struct {
	Model rawModel `yaml:"model"`
}

type rawModel struct {
	Name           string                  `yaml:"name"`
	Kind           string                  `yaml:"kind"`
	Graph          *rawGraph               `yaml:"graph"`
	Processes      map[string]rawGraph     `yaml:"processes"`
	RendezvousOnly bool                    `yaml:"rendezvous-only"`
	Capacity       int                     `yaml:"capacity"`
	Bench          string                  `yaml:"bench"`
	BenchFile      string                  `yaml:"bench-file"`
	Invariants     map[string]rawInvariant `yaml:"invariants"`
}

type rawGraph struct {
	Initial         []string        `yaml:"initial"`
	Initializations [][]string      `yaml:"initializations"`
	Transitions     []rawTransition `yaml:"transitions"`
}

type rawTransition struct {
	From   string `yaml:"from"`
	Guard  string `yaml:"guard"`
	Action string `yaml:"action"`
	To     string `yaml:"to"`
}

type rawInvariant struct {
	Expr string `yaml:"expr"`
}

// LoadFile parses a model YAML file. A bench-file is resolved relative to
// the model file.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	m, err := parse(data, filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return m, nil
}

// Parse parses model YAML bytes. A bench-file is resolved relative to the
// working directory.
func Parse(data []byte) (*Model, error) {
	return parse(data, "")
}

func parse(data []byte, dir string) (*Model, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "yaml parse")
	}
	r := &raw.Model
	if r.Name == "" {
		return nil, errors.New("model must have a name")
	}
	if r.Capacity < 0 {
		return nil, errors.Newf("model %q: capacity must not be negative", r.Name)
	}

	m := &Model{
		Name:           r.Name,
		Kind:           Kind(r.Kind),
		RendezvousOnly: r.RendezvousOnly,
		Capacity:       r.Capacity,
	}

	switch m.Kind {
	case KindProgramGraph:
		if r.Graph == nil {
			return nil, errors.Newf("model %q: program-graph needs a graph", r.Name)
		}
		g, err := buildGraph(r.Name, *r.Graph)
		if err != nil {
			return nil, err
		}
		m.Graph = g

	case KindChannelSystem:
		names, err := orderedKeys(data, "processes")
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, errors.Newf("model %q: channel-system needs processes", r.Name)
		}
		m.System = channel.System{Name: r.Name}
		for _, name := range names {
			rg, ok := r.Processes[name]
			if !ok {
				return nil, errors.Newf("process %q not found", name)
			}
			g, err := buildGraph(name, rg)
			if err != nil {
				return nil, err
			}
			m.System.Graphs = append(m.System.Graphs, g)
		}

	case KindCircuit:
		src, err := benchSource(r, dir)
		if err != nil {
			return nil, err
		}
		n, err := circuit.ParseBench(bytes.NewReader(src))
		if err != nil {
			return nil, errors.Wrapf(err, "model %q", r.Name)
		}
		m.Circuit = n

	case "":
		return nil, errors.Newf("model %q has no kind", r.Name)
	default:
		return nil, errors.Newf("model %q: unknown kind %q", r.Name, r.Kind)
	}

	names, err := orderedKeys(data, "invariants")
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		ri, ok := r.Invariants[name]
		if !ok {
			return nil, errors.Newf("invariant %q not found", name)
		}
		if ri.Expr == "" {
			return nil, errors.Newf("invariant %q has no expr", name)
		}
		m.Invariants = append(m.Invariants, Invariant{Name: name, Expr: ri.Expr})
	}

	return m, nil
}

// orderedKeys returns the keys of the mapping under model.<field> in
// declaration order.
func orderedKeys(data []byte, field string) ([]string, error) {
	var doc struct {
		Model map[string]yaml.Node `yaml:"model"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "yaml parse")
	}
	node, ok := doc.Model[field]
	if !ok || node.Kind != yaml.MappingNode {
		return nil, nil
	}
	var keys []string
	for i := 0; i < len(node.Content)-1; i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys, nil
}

func buildGraph(name string, rg rawGraph) (*pg.ProgramGraph[string], error) {
	if len(rg.Initial) == 0 {
		return nil, errors.Newf("graph %q has no initial location", name)
	}
	g := pg.New[string]()
	g.Name = name
	for _, l := range rg.Initial {
		g.SetInitial(l)
	}
	for i, t := range rg.Transitions {
		if t.From == "" || t.To == "" {
			return nil, errors.Newf("graph %q: transition %d needs from and to", name, i)
		}
		g.AddTransition(pg.Transition[string]{From: t.From, Cond: t.Guard, Action: t.Action, To: t.To})
	}
	for _, seq := range rg.Initializations {
		g.AddInitialization(seq...)
	}
	return g, nil
}

func benchSource(r *rawModel, dir string) ([]byte, error) {
	switch {
	case r.Bench != "" && r.BenchFile != "":
		return nil, errors.Newf("model %q: set bench or bench-file, not both", r.Name)
	case r.Bench != "":
		return []byte(r.Bench), nil
	case r.BenchFile != "":
		path := r.BenchFile
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		return src, nil
	default:
		return nil, errors.Newf("model %q: circuit needs bench or bench-file", r.Name)
	}
}
