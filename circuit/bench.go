package circuit

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// Lines of a .bench netlist look like
//
//	INPUT(G0)
//	OUTPUT(G17)
//	G5 = DFF(G10)
//	G10 = NOR(G14, G11)
var (
	gateRE  = regexp.MustCompile(`^(\w+)\s*=\s*(\w+)\(\s*(\w+(?:\s*,\s*\w+)*)\s*\)$`)
	inOutRE = regexp.MustCompile(`^(INPUT|OUTPUT)\(\s*(\w+)\s*\)$`)
	argSep  = regexp.MustCompile(`\s*,\s*`)
)

type gate struct {
	op   string
	args []string
}

// Netlist is a circuit read from an ISCAS .bench file. Every DFF is a
// register named after its output wire.
type Netlist struct {
	inputs    []string
	outputs   []string
	registers []string
	gates     map[string]gate
	next      map[string]string
}

var _ Circuit = (*Netlist)(nil)

func (n *Netlist) InputPortNames() []string  { return n.inputs }
func (n *Netlist) RegisterNames() []string   { return n.registers }
func (n *Netlist) OutputPortNames() []string { return n.outputs }

// ParseBench reads a .bench netlist. Gates may appear in any order, but
// every wire must be defined once and combinational gates may not form a
// cycle.
func ParseBench(r io.Reader) (*Netlist, error) {
	n := &Netlist{
		gates: make(map[string]gate),
		next:  make(map[string]string),
	}
	defined := make(map[string]int)
	define := func(wire string, line int) error {
		if prev, ok := defined[wire]; ok {
			return errors.Newf("line %d: %q already defined on line %d", line, wire, prev)
		}
		defined[wire] = line
		return nil
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := inOutRE.FindStringSubmatch(line); m != nil {
			if m[1] == "OUTPUT" {
				n.outputs = append(n.outputs, m[2])
				continue
			}
			if err := define(m[2], lineNo); err != nil {
				return nil, err
			}
			n.inputs = append(n.inputs, m[2])
			continue
		}

		m := gateRE.FindStringSubmatch(line)
		if m == nil {
			return nil, errors.Newf("line %d: cannot parse %q", lineNo, line)
		}
		wire, op, args := m[1], strings.ToUpper(m[2]), argSep.Split(m[3], -1)
		if err := checkArity(op, len(args)); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		if err := define(wire, lineNo); err != nil {
			return nil, err
		}
		if op == "DFF" {
			n.registers = append(n.registers, wire)
			n.next[wire] = args[0]
			continue
		}
		n.gates[wire] = gate{op: op, args: args}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading netlist")
	}

	if err := n.validate(defined); err != nil {
		return nil, err
	}
	return n, nil
}

func checkArity(op string, n int) error {
	switch op {
	case "NOT", "BUFF", "DFF":
		if n != 1 {
			return errors.Newf("%s takes one input, got %d", op, n)
		}
	case "AND", "NAND", "OR", "NOR", "XOR", "XNOR":
	default:
		return errors.Newf("unknown gate %s", op)
	}
	return nil
}

// validate checks that every wire read is defined and that the
// combinational part is acyclic.
func (n *Netlist) validate(defined map[string]int) error {
	for _, o := range n.outputs {
		if _, ok := defined[o]; !ok {
			return errors.Newf("output %q is never defined", o)
		}
	}
	for reg, src := range n.next {
		if _, ok := defined[src]; !ok {
			return errors.Newf("register %q reads undefined wire %q", reg, src)
		}
	}

	const (
		unvisited = iota
		active
		finished
	)
	state := make(map[string]int)
	var visit func(wire string) error
	visit = func(wire string) error {
		g, ok := n.gates[wire]
		if !ok {
			return nil
		}
		switch state[wire] {
		case active:
			return errors.Newf("combinational cycle through %q", wire)
		case finished:
			return nil
		}
		state[wire] = active
		for _, a := range g.args {
			if _, ok := defined[a]; !ok {
				return errors.Newf("gate %q reads undefined wire %q", wire, a)
			}
			if err := visit(a); err != nil {
				return err
			}
		}
		state[wire] = finished
		return nil
	}
	for wire := range n.gates {
		if err := visit(wire); err != nil {
			return err
		}
	}
	return nil
}

// wires evaluates every gate under the given inputs and register values.
func (n *Netlist) wires(in, reg Assignment) map[string]bool {
	vals := make(map[string]bool, len(n.inputs)+len(n.registers)+len(n.gates))
	for _, w := range n.inputs {
		vals[w] = in[w]
	}
	for _, w := range n.registers {
		vals[w] = reg[w]
	}
	var eval func(wire string) bool
	eval = func(wire string) bool {
		if v, ok := vals[wire]; ok {
			return v
		}
		g := n.gates[wire]
		args := make([]bool, len(g.args))
		for i, a := range g.args {
			args[i] = eval(a)
		}
		v := apply(g.op, args)
		vals[wire] = v
		return v
	}
	for wire := range n.gates {
		eval(wire)
	}
	return vals
}

func apply(op string, args []bool) bool {
	all, some, odd := true, false, false
	for _, a := range args {
		all = all && a
		some = some || a
		odd = odd != a
	}
	switch op {
	case "AND":
		return all
	case "NAND":
		return !all
	case "OR":
		return some
	case "NOR":
		return !some
	case "XOR":
		return odd
	case "XNOR":
		return !odd
	case "NOT":
		return !args[0]
	default: // BUFF
		return args[0]
	}
}

func (n *Netlist) ComputeOutputs(in, reg Assignment) Assignment {
	vals := n.wires(in, reg)
	out := make(Assignment, len(n.outputs))
	for _, o := range n.outputs {
		out[o] = vals[o]
	}
	return out
}

func (n *Netlist) UpdateRegisters(in, reg Assignment) Assignment {
	vals := n.wires(in, reg)
	out := make(Assignment, len(n.registers))
	for _, r := range n.registers {
		out[r] = vals[n.next[r]]
	}
	return out
}
