package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-satpg/satpg/backtrace"
	"github.com/go-satpg/satpg/cnf"
	"github.com/go-satpg/satpg/cone"
	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/gate"
	"github.com/go-satpg/satpg/hook"
	"github.com/go-satpg/satpg/sat"
)

// Driver is the ATPG Engine of spec §4.E: one Driver binds a gate.Graph
// (read-mostly after construction, per spec §5) and a fault.DB (whose
// Status field the Driver is the sole mutator of) to a solver factory,
// backtracer, and hook pair, and exposes one method per strategy.
//
// mu guards d.db and d.stats mutation only: the single-threaded
// strategies (RunSingle, RunKDetect, RunPOSplit, ...) never contend on
// it, but RunPartitioned (spec §5 "an outer scheduler may run the engine
// on disjoint PO partitions in parallel... holding one Engine instance
// per worker") reuses one Driver across goroutines that each build and
// solve their own private instance (cone/solver/CNF) but must serialize
// writes to the shared fault.DB and Stats.
type Driver struct {
	g   *gate.Graph
	db  *fault.DB
	opt Options

	mu    sync.Mutex
	stats Stats
}

// NewDriver returns a Driver over g/db. WithSolverFactory is mandatory;
// NewDriver returns ErrNilSolverFactory if it was never supplied.
func NewDriver(g *gate.Graph, db *fault.DB, opts ...Option) (*Driver, error) {
	o := resolveOptions(opts...)
	if o.NewSolver == nil {
		return nil, ErrNilSolverFactory
	}
	if o.Tracer == nil {
		o.Tracer = backtrace.NewSimple(g)
	}
	return &Driver{g: g, db: db, opt: o, stats: newStats()}, nil
}

// Stats returns the cumulative per-mode statistics gathered so far (spec
// §6); valid to call between, or after, strategy runs.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// instance is one fault's built SAT problem: a solver, its CNF builder
// (and therefore VarMap), the cone it was built over, and, for the
// multi-fault strategies, the activation literal gating its clauses.
type instance struct {
	solver sat.Solver
	cb     *cnf.Builder
	cone   *cone.Cone
	act    sat.Literal
}

// retire permanently disables a gated instance's clauses on its shared
// solver once its fault is resolved, so the next fault in the region is
// not constrained by this one's injection or observability clauses.
func (inst *instance) retire() error {
	if inst.act == 0 {
		return nil
	}
	return inst.solver.AddClause(inst.act.Negate())
}

// buildInstance constructs a cone for site and a fresh solver+CNF
// encoding f's stuck-at defect over it (spec §4.D, the "build CNF once
// per cone" half of §4.E's shared assumption protocol — for the
// single-fault-per-call strategies, one cone is one fault).
func (d *Driver) buildInstance(m Mode, f *fault.Fault) (*instance, error) {
	return d.buildInstanceOn(d.opt.NewSolver(), m, f, false)
}

// buildInstanceOn is buildInstance parameterized on an already-live solver,
// letting the FFR/MFFC group strategies (spec §4.E MultiFFR/MFFC/
// Concurrent) amortize one solver's learnt clauses across every fault in
// one region instead of paying a fresh solver per fault. When guarded is
// true the instance's clauses are gated behind a fresh per-fault
// activation literal (spec §4.E "a per-fault activation variable k_f"),
// assumed during solve and retired afterwards, so successive faults on a
// shared solver never see each other's injection or observability
// clauses as hard constraints.
func (d *Driver) buildInstanceOn(s sat.Solver, m Mode, f *fault.Fault, guarded bool) (*instance, error) {
	start := time.Now()
	c, err := cone.Build(d.g, f.Node)
	if err != nil {
		return nil, err
	}
	var act sat.Literal
	var opts []cnf.Option
	if guarded {
		act = sat.Lit(s.NewVar(), true)
		opts = append(opts, cnf.WithActivation(act))
	}
	cb := cnf.NewBuilder(d.g, s, opts...)
	if err := cb.BuildFaultInstance(c, f); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	d.mu.Lock()
	ms := d.stats.forMode(m)
	ms.CnfBuilds++
	ms.CnfBuildTime += time.Since(start)
	d.mu.Unlock()
	return &instance{solver: s, cb: cb, cone: c, act: act}, nil
}

// solve runs inst's solver under assumptions, bounded by
// Options.SolveTimeout if set, recording SAT-call statistics for mode.
func (d *Driver) solve(ctx context.Context, m Mode, inst *instance, assumptions ...sat.Literal) (sat.Outcome, error) {
	solveCtx := ctx
	if d.opt.SolveTimeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, d.opt.SolveTimeout)
		defer cancel()
	}
	start := time.Now()
	outcome, err := inst.solver.Solve(solveCtx, assumptions...)
	elapsed := time.Since(start)
	d.mu.Lock()
	d.stats.forMode(m).recordSolve(elapsed, inst.solver.Stats())
	d.mu.Unlock()
	return outcome, err
}

// extractVector projects inst's satisfying model through the configured
// backtracer (spec §4.F): the tracer decides which of the cone's primary
// inputs stay assigned; every other input remains X. Must be called
// immediately after a Sat outcome, before anything disturbs the model.
func (d *Driver) extractVector(inst *instance, f *fault.Fault) (hook.TestVector, error) {
	model := func(v sat.VarID) int {
		val, _ := inst.solver.Value(sat.Lit(v, true))
		return val
	}
	assigned, err := d.opt.Tracer.Trace(inst.cone, inst.cb.VarMap(), f, model)
	if err != nil {
		return nil, err
	}
	return hook.TestVector(assigned), nil
}

// dispatchDetect marks r Detected (retiring everything it dominates),
// invokes the Detect hook, and logs (spec §4.H "every successful test
// generation invokes detect exactly once").
func (d *Driver) dispatchDetect(m Mode, r *fault.Fault, tv hook.TestVector) error {
	d.mu.Lock()
	if r.Status() == fault.Detected {
		d.mu.Unlock()
		return nil
	}
	d.db.MarkDetected(r)
	d.stats.forMode(m).Detected++
	d.mu.Unlock()
	d.opt.Logger.Debug().Str("mode", string(m)).Str("fault", r.String()).Str("status", "detected").Msg("fault outcome")
	if err := d.opt.Detect.OnDetect(r, tv); err != nil {
		return fmt.Errorf("engine: detect hook: %w", err)
	}
	return nil
}

// dispatchUntest marks f Untestable, invokes the Untest hook, and logs.
func (d *Driver) dispatchUntest(m Mode, f *fault.Fault) error {
	d.mu.Lock()
	d.db.SetStatus(f, fault.Untestable)
	d.stats.forMode(m).Untestable++
	d.mu.Unlock()
	d.opt.Logger.Debug().Str("mode", string(m)).Str("fault", f.String()).Str("status", "untestable").Msg("fault outcome")
	if err := d.opt.Untest.OnUntest(f, fault.Untestable); err != nil {
		return fmt.Errorf("engine: untest hook: %w", err)
	}
	return nil
}

// recordPartialUntest records that poIdx returned UNSAT for f (spec §4.E
// "partially untestable for this PO") under the shared lock, since a
// fault reachable from POs owned by different RunPartitioned workers may
// be touched from more than one goroutine.
func (d *Driver) recordPartialUntest(m Mode, f *fault.Fault, poIdx int) {
	d.mu.Lock()
	if f.UntestablePOs == nil {
		f.UntestablePOs = make(map[int]struct{})
	}
	f.UntestablePOs[poIdx] = struct{}{}
	d.stats.forMode(m).PartialUntest++
	d.mu.Unlock()
}

// untestablePOCount returns len(f.UntestablePOs) under the shared lock.
func (d *Driver) untestablePOCount(f *fault.Fault) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(f.UntestablePOs)
}

// dispatchAbort marks f Aborted and logs a Warn (spec §7 "SolverAborted
// is always caught and becomes a per-fault event"). The untest-count
// bookkeeping and the Aborted-to-Skipped promotion past the adaptive
// threshold belong to fault.DB.Update's sweep, not to the per-solve
// path, so repeated aborts within one run count once per Update.
func (d *Driver) dispatchAbort(m Mode, f *fault.Fault, st sat.Stats, reason string) {
	d.mu.Lock()
	d.stats.forMode(m).Aborted++
	d.db.SetStatus(f, fault.Aborted)
	d.mu.Unlock()
	d.opt.Logger.Warn().Str("mode", string(m)).Str("fault", f.String()).Int64("conflicts", st.Conflicts).
		Str("reason", reason).Msg("fault solve aborted")
}
