// Package nanopromela lowers guarded-command programs into program graphs.
//
// Programs are built as ASTs, either by hand or by an external parser. Every
// node renders to source text, and the text of a (residual) program is the
// name of its program-graph location. The location "" means the program
// has terminated.
package nanopromela

import "strings"

// Stmt is a guarded-command statement.
type Stmt interface {
	// Text returns the statement's source rendering.
	Text() string
	stmt()
}

// Assign is "Var := Expr".
type Assign struct {
	Var  string
	Expr string
}

// Send is "Chan!Expr".
type Send struct {
	Chan string
	Expr string
}

// Receive is "Chan?Var".
type Receive struct {
	Chan string
	Var  string
}

// Skip does nothing.
type Skip struct{}

// Atomic runs its statements as one indivisible step. They must all be
// base statements.
type Atomic struct {
	Body []Stmt
}

// Raw is a base statement whose text comes from an external parser and is
// used verbatim as the action.
type Raw struct {
	Src string
}

// Option is one guarded alternative "Guard -> Body" of an if or do.
type Option struct {
	Guard string
	Body  Stmt
}

// If picks one option whose guard holds and blocks if none does.
type If struct {
	Options []Option
}

// Do repeats choosing an enabled option and exits when none is enabled.
type Do struct {
	Options []Option
}

// Seq runs First then Second.
type Seq struct {
	First, Second Stmt
}

func (s Assign) Text() string  { return s.Var + " := " + s.Expr }
func (s Send) Text() string    { return s.Chan + "!" + s.Expr }
func (s Receive) Text() string { return s.Chan + "?" + s.Var }
func (Skip) Text() string      { return "skip" }
func (s Raw) Text() string     { return s.Src }

func (s Atomic) Text() string {
	parts := make([]string, len(s.Body))
	for i, b := range s.Body {
		parts[i] = b.Text()
	}
	return "atomic{" + strings.Join(parts, "; ") + "}"
}

func (s If) Text() string { return "if" + optionsText(s.Options) + " fi" }
func (s Do) Text() string { return "do" + optionsText(s.Options) + " od" }

func (s Seq) Text() string { return s.First.Text() + "; " + s.Second.Text() }

func optionsText(opts []Option) string {
	var b strings.Builder
	for _, o := range opts {
		b.WriteString(" :: ")
		b.WriteString(o.Guard)
		b.WriteString(" -> ")
		b.WriteString(o.Body.Text())
	}
	return b.String()
}

func (Assign) stmt()  {}
func (Send) stmt()    {}
func (Receive) stmt() {}
func (Skip) stmt()    {}
func (Atomic) stmt()  {}
func (Raw) stmt()     {}
func (If) stmt()      {}
func (Do) stmt()      {}
func (Seq) stmt()     {}

// Sequence chains statements left to right into nested Seq nodes.
func Sequence(first Stmt, rest ...Stmt) Stmt {
	out := first
	for _, s := range rest {
		out = Seq{First: out, Second: s}
	}
	return out
}
