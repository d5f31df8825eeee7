package nanopromela

import (
	"strings"

	"github.com/blackwell-systems/opsem/expr"
	"github.com/blackwell-systems/opsem/pg"
	"github.com/cockroachdb/errors"
)

// Done is the location of a terminated program.
const Done = ""

const trueCond = expr.True

type transition = pg.Transition[string]

// table maps a location to its outgoing transitions, in insertion order and
// without duplicates.
type table struct {
	from map[string][]transition
	seen map[transition]struct{}
}

func newTable() *table {
	return &table{
		from: make(map[string][]transition),
		seen: make(map[transition]struct{}),
	}
}

func (t *table) add(tr transition) {
	if _, ok := t.seen[tr]; ok {
		return
	}
	t.seen[tr] = struct{}{}
	t.from[tr.From] = append(t.from[tr.From], tr)
}

func (t *table) merge(other *table) {
	for _, trs := range other.from {
		for _, tr := range trs {
			t.add(tr)
		}
	}
}

// exitGuard is the conjunction of the negated option guards of a do loop.
func exitGuard(opts []Option) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		g := o.Guard
		if g == "" {
			g = trueCond
		}
		parts[i] = "!(" + g + ")"
	}
	return strings.Join(parts, " && ")
}

// Lower builds the program graph of s. Its only initial location is the
// text of s; Done is reached when the program terminates.
func Lower(s Stmt) (*pg.ProgramGraph[string], error) {
	if s == nil {
		return nil, errors.New("cannot lower a nil statement")
	}
	tbl, err := sub(s)
	if err != nil {
		return nil, err
	}

	g := pg.New[string]()
	root := s.Text()
	g.SetInitial(root)
	visited := map[string]struct{}{root: {}}
	queue := []string{root}
	for len(queue) > 0 {
		loc := queue[0]
		queue = queue[1:]
		for _, tr := range tbl.from[loc] {
			g.AddTransition(tr)
			if _, ok := visited[tr.To]; ok || tr.To == Done {
				continue
			}
			visited[tr.To] = struct{}{}
			queue = append(queue, tr.To)
		}
	}
	return g, nil
}

// sub returns the transitions of every location that s can pass through,
// keyed by location text.
func sub(s Stmt) (*table, error) {
	switch s := s.(type) {
	case Assign, Send, Receive, Skip, Raw:
		return base(s), nil

	case Atomic:
		if len(s.Body) == 0 {
			return nil, errors.New("empty atomic block")
		}
		for _, b := range s.Body {
			if b == nil {
				return nil, errors.New("atomic block holds a nil statement")
			}
			if !isBase(b) {
				return nil, errors.Newf("atomic block may only hold base statements, got %q", b.Text())
			}
		}
		return base(s), nil

	case If:
		if len(s.Options) == 0 {
			return nil, errors.New("if without options")
		}
		text := s.Text()
		out := newTable()
		for _, o := range s.Options {
			body, err := sub(o.Body)
			if err != nil {
				return nil, err
			}
			out.merge(body)
			for _, tr := range body.from[o.Body.Text()] {
				out.add(transition{From: text, Cond: expr.And(o.Guard, tr.Cond), Action: tr.Action, To: tr.To})
			}
		}
		return out, nil

	case Do:
		if len(s.Options) == 0 {
			return nil, errors.New("do without options")
		}
		text := s.Text()
		out := newTable()
		for _, o := range s.Options {
			body, err := sub(o.Body)
			if err != nil {
				return nil, err
			}
			out.merge(body)
			splice(out, body, text, o.Body.Text(), text, o.Guard)
		}
		out.add(transition{From: text, Cond: exitGuard(s.Options), To: Done})
		return out, nil

	case Seq:
		if s.First == nil || s.Second == nil {
			return nil, errors.New("sequence with a missing statement")
		}
		first, err := sub(s.First)
		if err != nil {
			return nil, err
		}
		second, err := sub(s.Second)
		if err != nil {
			return nil, err
		}
		out := newTable()
		out.merge(first)
		out.merge(second)
		splice(out, first, s.Text(), s.First.Text(), s.Second.Text(), "")
		return out, nil

	default:
		return nil, errors.Newf("unsupported statement %T", s)
	}
}

func isBase(s Stmt) bool {
	switch s.(type) {
	case Assign, Send, Receive, Skip, Raw:
		return true
	}
	return false
}

func base(s Stmt) *table {
	out := newTable()
	text := s.Text()
	out.add(transition{From: text, Cond: trueCond, Action: text, To: Done})
	return out
}

// splice copies the subgraph rooted at src in front of next, writing it
// into out starting at loc. A transition of src that terminates moves to
// next instead; one that stops at a residual location r moves to "r; next",
// which is spliced in turn. cond guards only the first step.
func splice(out, src *table, loc, start, next, cond string) {
	type item struct {
		loc, src, cond string
	}
	visited := make(map[string]struct{})
	work := []item{{loc, start, cond}}
	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]
		if _, ok := visited[it.loc]; ok {
			continue
		}
		visited[it.loc] = struct{}{}
		for _, tr := range src.from[it.src] {
			to := next
			if tr.To != Done {
				to = tr.To + "; " + next
				work = append(work, item{to, tr.To, ""})
			}
			out.add(transition{From: it.loc, Cond: expr.And(it.cond, tr.Cond), Action: tr.Action, To: to})
		}
	}
}
