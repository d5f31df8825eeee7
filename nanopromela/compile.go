package nanopromela

import (
	"github.com/blackwell-systems/opsem/expr"
	"github.com/blackwell-systems/opsem/pg"
	"github.com/blackwell-systems/opsem/ts"
	"github.com/cockroachdb/errors"
)

// Compile lowers s and explores it with the standard evaluators. The
// program starts from the empty environment, where every variable reads 0.
func Compile(s Stmt, opts ...pg.Option) (*ts.TransitionSystem[pg.State[string], string, string], error) {
	g, err := Lower(s)
	if err != nil {
		return nil, errors.Wrap(err, "lowering program")
	}
	return pg.Compile(g, expr.StandardActions(), expr.StandardConditions(), opts...)
}
