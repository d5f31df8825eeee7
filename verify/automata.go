package verify

import (
	"github.com/blackwell-systems/opsem/ts"
	"github.com/cockroachdb/errors"
)

// ErrUnsupported marks operations that need an automata back end this
// module does not provide.
var ErrUnsupported = errors.New("unsupported operation")

// Formula is a linear temporal logic formula in textual form.
type Formula string

// Automaton is an ω-automaton produced by an external translator.
type Automaton interface {
	Name() string
}

func unsupported(op string) error {
	return errors.Mark(errors.Newf("%s is not implemented", op), ErrUnsupported)
}

// LTLToNBA translates f into a nondeterministic Büchi automaton.
func LTLToNBA(f Formula) (Automaton, error) {
	return nil, unsupported("LTL to automaton translation")
}

// GNBAToNBA reduces a generalized Büchi automaton to a single acceptance
// set.
func GNBAToNBA(a Automaton) (Automaton, error) {
	return nil, unsupported("generalized Büchi reduction")
}

// Product builds the synchronous product of t with a.
func Product[S, A, P comparable](t *ts.TransitionSystem[S, A, P], a Automaton) (*ts.TransitionSystem[ts.Pair[S, string], A, string], error) {
	return nil, unsupported("product with an automaton")
}

// VerifyOmegaRegular checks t against the ω-regular property recognized
// by a.
func VerifyOmegaRegular[S, A, P comparable](t *ts.TransitionSystem[S, A, P], a Automaton) (Result[S, A], error) {
	return Result[S, A]{}, unsupported("ω-regular verification")
}
