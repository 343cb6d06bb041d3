package atpg

import (
	"context"
	"errors"

	"github.com/go-satpg/satpg/cnf"
	"github.com/go-satpg/satpg/gate"
	"github.com/go-satpg/satpg/hook"
	"github.com/go-satpg/satpg/netlist"
	"github.com/go-satpg/satpg/sat"
)

// Kind classifies any error this module can return into the taxonomy of
// spec §7, so a caller can branch on "what category of thing went wrong"
// without knowing which package actually raised it — mirroring how
// builder's per-constructor sentinels are all still errors.Is-checkable
// but documented centrally.
type Kind uint8

const (
	// Other is any error not recognized by Classify, including nil.
	Other Kind = iota
	// MalformedNetwork covers netlist parse/lowering failures: cycles,
	// dangling fanin, duplicate names, zero outputs.
	MalformedNetwork
	// SolverAborted covers a SAT call that exhausted its wall-clock or
	// conflict budget before reaching a verdict.
	SolverAborted
	// CnfBuildError covers a CNF Builder invariant violation (gate arity
	// mismatch, unreachable fault site, or similar encoder bug).
	CnfBuildError
	// HookError covers an error wrapping hook.ErrHook (the sentinel a hook
	// wraps its own failure in) or hook.ErrUnknownTag; a callback error
	// that does not wrap ErrHook classifies as Other.
	HookError
	// Untestable is not itself an error — Classify never returns it —
	// but is listed here because spec §7 groups it with the error
	// taxonomy as the terminal non-error outcome a caller must still
	// handle explicitly.
	Untestable
)

func (k Kind) String() string {
	switch k {
	case MalformedNetwork:
		return "malformed_network"
	case SolverAborted:
		return "solver_aborted"
	case CnfBuildError:
		return "cnf_build_error"
	case HookError:
		return "hook_error"
	case Untestable:
		return "untestable"
	default:
		return "other"
	}
}

// Classify maps err to its spec §7 Kind by walking errors.Is against
// every package's sentinel values, in the order a netlist flows through
// the pipeline: loader errors first, then encoder, then hook, then
// solver. Returns Other for nil or an error no package here recognizes.
func Classify(err error) Kind {
	if err == nil {
		return Other
	}
	switch {
	case errors.Is(err, netlist.ErrDuplicateName),
		errors.Is(err, netlist.ErrUnknownFanin),
		errors.Is(err, netlist.ErrUnresolvable),
		errors.Is(err, netlist.ErrNoOutputs),
		errors.Is(err, gate.ErrCycle),
		errors.Is(err, gate.ErrDanglingFanin),
		errors.Is(err, gate.ErrUnknownNode),
		errors.Is(err, gate.ErrBadArity),
		errors.Is(err, gate.ErrNoSuchOutput):
		return MalformedNetwork
	case errors.Is(err, cnf.ErrCnfBuild),
		errors.Is(err, cnf.ErrUnsupportedArity):
		return CnfBuildError
	case errors.Is(err, hook.ErrHook),
		errors.Is(err, hook.ErrUnknownTag):
		return HookError
	case errors.Is(err, sat.ErrAborted),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		// sat.GiniSolver pairs every Aborted outcome with sat.ErrAborted
		// (naming the context's error in the message, without wrapping
		// it, when the context was done before the solve began); the
		// bare context errors are kept for custom Solver backends that
		// return them directly.
		return SolverAborted
	default:
		return Other
	}
}
