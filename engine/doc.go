// Package engine drives the SAT-based ATPG strategies of spec §4.E: a
// Driver owns the shared per-run state (gate.Graph, fault.DB, sat.Solver
// factory, backtrace.Tracer, hook.Detect/Untest) and each strategy method
// (RunSingle, RunKDetect, RunPOSplit, RunMultiFFR, RunMFFC, RunConcurrent,
// and the parallel RunPartitioned) iterates the
// fault database's remaining faults, builds a per-instance cone and CNF,
// asks the solver for a model, and routes the outcome through the hook
// protocol (spec §4.H).
//
// Grounded on github.com/katalvlaran/lvlath's flow package (flow/dinic.go):
// an iterative augmenting-path driver accumulating Stats as it runs, with
// a FlowOptions struct and context cancellation checked every iteration —
// the same shape this package's Stats/Options and the per-fault solve
// loop follow, generalized from one flow network to one fault instance
// per iteration. The budget/abort split (a conflict or wall-clock bound
// distinct from "no solution") is grounded on tsp/bb.go's branch-and-bound
// search, whose explicit node/time budget and separate abort path map
// directly onto spec §5 "cancellation and timeouts" / §7 SolverAborted.
package engine
