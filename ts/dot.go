package ts

import (
	"fmt"
	"strings"

	"github.com/emicklei/dot"
)

// Dot renders t as a Graphviz digraph. Initial states are marked by an
// edge from a point node and each state shows its label.
func (t *TransitionSystem[S, A, P]) Dot() string {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "LR")
	if t.Name != "" {
		g.Attr("label", t.Name)
	}

	nodes := make(map[S]dot.Node, len(t.states.items))
	for i, s := range t.states.items {
		n := g.Node(fmt.Sprintf("s%d", i))
		text := fmt.Sprint(s)
		if props := t.LabelSlice(s); len(props) > 0 {
			parts := make([]string, len(props))
			for j, p := range props {
				parts[j] = fmt.Sprint(p)
			}
			text += "\n{" + strings.Join(parts, ", ") + "}"
		}
		n.Label(text)
		nodes[s] = n
	}

	for i, s := range t.initial.items {
		start := g.Node(fmt.Sprintf("init%d", i)).Attr("shape", "point")
		g.Edge(start, nodes[s])
	}

	for _, tr := range t.transitions.items {
		g.Edge(nodes[tr.From], nodes[tr.To]).Label(fmt.Sprint(tr.Action))
	}
	return g.String()
}
