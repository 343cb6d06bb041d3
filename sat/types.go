package sat

import (
	"context"
	"errors"
)

// ErrAborted reports a Solve call that ran out of its wall-clock budget
// (or was cancelled) before reaching a verdict (spec §7 "SolverAborted").
// Always paired with the Aborted outcome, never with Sat/Unsat.
var ErrAborted = errors.New("sat: solve aborted")

// VarID is a solver-internal boolean variable handle, 1-based per the
// DIMACS convention most CDCL solvers (including gini) use internally.
type VarID int32

// Literal is a signed reference to a VarID: positive means the variable
// asserted true, negative means asserted false. Literal 0 is invalid.
type Literal int32

// Lit builds the positive or negative literal for v.
func Lit(v VarID, positive bool) Literal {
	if positive {
		return Literal(v)
	}
	return -Literal(v)
}

// Var returns the VarID a literal refers to, discarding polarity.
func (l Literal) Var() VarID {
	if l < 0 {
		return VarID(-l)
	}
	return VarID(l)
}

// Negate returns the complementary literal.
func (l Literal) Negate() Literal { return -l }

// Positive reports whether l asserts its variable true.
func (l Literal) Positive() bool { return l > 0 }

// Outcome is a single Solve call's result (spec §6 "solve returns SAT,
// UNSAT, or aborted").
type Outcome uint8

const (
	Unknown Outcome = iota
	Sat
	Unsat
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	case Aborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Stats is the solver's cumulative instrumentation (spec §6 "get_stats"),
// read by engine.Stats for the final report.
type Stats struct {
	Vars        int64
	Clauses     int64
	Decisions   int64
	Conflicts   int64
	Propagations int64
}

// Solver is the narrow interface the CNF Builder and ATPG Engine require
// (spec §6): new variable allocation, clause addition, a context-bounded
// solve under assumptions, statistics, and a way to drop learnt clauses
// between unrelated fault instances so one fault's learning does not bias
// the next (spec §4.E "Per-fault solver hygiene").
type Solver interface {
	NewVar() VarID
	AddClause(lits ...Literal) error
	Solve(ctx context.Context, assumptions ...Literal) (Outcome, error)
	Value(lit Literal) (val int, defined bool)
	Stats() Stats
	ForgetLearnt()
}
