package sim

import (
	"fmt"

	"github.com/pouyapd/scanmc/cs"
	"github.com/pouyapd/scanmc/errs"
	"github.com/pouyapd/scanmc/pg"
	"github.com/pouyapd/scanmc/value"
)

// Predicate is one atom of the PMTL atom universe keyed by predicate
// index: a Boolean expression evaluated against one member PG's current
// variable valuation. The driver re-evaluates every Predicate after each
// committed transition to produce the state_bits vector the monitor's
// Atom(Predicate i) nodes read.
type Predicate struct {
	Pg   cs.PgID
	Expr value.Expr[pg.Var]
}

// evalPredicates evaluates every configured predicate against the current
// state of its owning PG, in order, returning the state_bits vector.
func evalPredicates(csi *cs.Instance, predicates []Predicate) ([]bool, error) {
	bits := make([]bool, len(predicates))
	for i, p := range predicates {
		pgi := csi.Pg(p.Pg)
		lookup := func(v pg.Var) (value.Val, error) { return pgi.Var(v) }
		val, err := value.Eval(p.Expr, lookup, nil)
		if err != nil {
			return nil, fmt.Errorf("evaluating predicate %d: %w", i, err)
		}
		b, err := val.Bool()
		if err != nil {
			return nil, fmt.Errorf("%w: predicate %d must evaluate to bool", errs.ErrTypeMismatch, i)
		}
		bits[i] = b
	}
	return bits, nil
}
