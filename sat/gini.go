package sat

import (
	"context"
	"fmt"
	"time"

	"github.com/irifrance/gini"
	"github.com/irifrance/gini/z"
)

// GiniSolver adapts github.com/irifrance/gini's Gini to the Solver
// interface. Variable and clause counts are tracked locally since gini's
// public surface does not expose a running tally; gini likewise does not
// publish conflict/decision/propagation counters, so those Stats fields
// stay zero under this backend.
type GiniSolver struct {
	g       *gini.Gini
	nVars   int64
	nClause int64
}

// NewGiniSolver returns a fresh, empty GiniSolver.
func NewGiniSolver() *GiniSolver {
	return &GiniSolver{g: gini.New()}
}

func (s *GiniSolver) NewVar() VarID {
	m := s.g.Lit()
	s.nVars++
	return VarID(m.Var())
}

func (s *GiniSolver) toZLit(l Literal) z.Lit {
	v := z.Var(l.Var())
	if l.Positive() {
		return v.Pos()
	}
	return v.Neg()
}

func (s *GiniSolver) AddClause(lits ...Literal) error {
	if len(lits) == 0 {
		return fmt.Errorf("sat: empty clause")
	}
	for _, l := range lits {
		s.g.Add(s.toZLit(l))
	}
	s.g.Add(z.LitNull)
	s.nClause++
	return nil
}

// Solve runs gini under the given assumptions. When ctx carries a
// deadline the solve is bounded to the remaining time via gini's Try and
// an expiry maps to the Aborted outcome with ErrAborted (spec §5: a
// timeout is observed as "abort", never as failure). Without a deadline
// the solve runs to completion; plain cancellation is only observed
// between calls.
func (s *GiniSolver) Solve(ctx context.Context, assumptions ...Literal) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Aborted, fmt.Errorf("%w: %v", ErrAborted, err)
	}
	for _, l := range assumptions {
		s.g.Assume(s.toZLit(l))
	}
	var result int
	if dl, ok := ctx.Deadline(); ok {
		budget := time.Until(dl)
		if budget <= 0 {
			return Aborted, fmt.Errorf("%w: %v", ErrAborted, context.DeadlineExceeded)
		}
		result = s.g.Try(budget)
	} else {
		result = s.g.Solve()
	}
	switch result {
	case 1:
		return Sat, nil
	case -1:
		return Unsat, nil
	default:
		return Aborted, ErrAborted
	}
}

// Value reads a literal's model value; meaningful only immediately after
// a Sat outcome, before further clauses or solves disturb the model.
func (s *GiniSolver) Value(lit Literal) (val int, defined bool) {
	if s.g.Value(s.toZLit(lit)) {
		return 1, true
	}
	return 0, true
}

func (s *GiniSolver) Stats() Stats {
	return Stats{
		Vars:    s.nVars,
		Clauses: s.nClause,
	}
}

// ForgetLearnt starts a fresh underlying gini instance, discarding all
// learnt clauses along with the problem clauses themselves; callers
// re-emit each fault instance's CNF from scratch afterwards rather than
// reusing raw VarIDs, which the engine's per-instance cnf.Builder already
// does by construction.
func (s *GiniSolver) ForgetLearnt() {
	s.g = gini.New()
	s.nVars = 0
	s.nClause = 0
}
