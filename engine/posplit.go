package engine

import (
	"context"
	"time"

	"github.com/go-satpg/satpg/cnf"
	"github.com/go-satpg/satpg/cone"
	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/sat"
)

// RunPOSplit is the output-partitioned engine (S2/M2) of spec §4.E: for
// each remaining fault, targets one reachable primary output at a time in
// TFI-size order (ascending, or descending if order is Descending),
// building CNF restricted to that PO's cone. A fault is Detected as soon
// as any PO returns SAT; it is terminally Untestable only once every
// reachable PO has returned UNSAT, and each UNSAT PO is recorded on
// fault.Fault.UntestablePOs (SPEC_FULL supplemented feature #4) so a
// partially-untestable fault's exact failing PO set survives the run.
func (d *Driver) RunPOSplit(ctx context.Context, order PartitionOrder) error {
	for _, f := range d.db.Remaining() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Status() != fault.Undetected {
			continue
		}
		if d.opt.ImplicationPrefilter && d.provedUntestable(f) {
			if err := d.dispatchUntest(ModePOSplit, f); err != nil {
				return err
			}
			continue
		}
		if err := d.poSplitFault(ctx, f, order); err != nil {
			return err
		}
	}
	d.db.Update()
	d.opt.Logger.Info().Interface("stats", d.stats.ByMode[ModePOSplit]).Msg("run complete")
	return nil
}

func (d *Driver) poSplitFault(ctx context.Context, f *fault.Fault, order PartitionOrder) error {
	full, err := cone.Build(d.g, f.Node)
	if err != nil {
		return err
	}
	if len(full.POs) == 0 {
		return d.dispatchUntest(ModePOSplit, f)
	}

	for _, poIdx := range poOrder(d.g, full.POs, order) {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.mu.Lock()
		_, already := f.UntestablePOs[poIdx]
		d.mu.Unlock()
		if already {
			continue
		}
		restricted := cone.RestrictToPO(full, d.g, poIdx)
		if len(restricted.POs) == 0 {
			continue
		}

		inst, solveErr := d.buildRestrictedInstance(ModePOSplit, restricted, f)
		if solveErr != nil {
			return solveErr
		}
		outcome, solveErr := d.solve(ctx, ModePOSplit, inst, siteDiffAssumption(inst)...)
		if solveErr != nil && outcome != sat.Aborted {
			return solveErr
		}
		switch outcome {
		case sat.Sat:
			tv, err := d.extractVector(inst, f)
			if err != nil {
				return err
			}
			return d.dispatchDetect(ModePOSplit, f, tv)
		case sat.Unsat:
			d.recordPartialUntest(ModePOSplit, f, poIdx)
		default: // sat.Aborted
			d.dispatchAbort(ModePOSplit, f, inst.solver.Stats(), "solver budget exceeded")
			return nil
		}
	}

	if d.untestablePOCount(f) == len(full.POs) {
		return d.dispatchUntest(ModePOSplit, f)
	}
	return nil
}

// buildRestrictedInstance is buildInstance's sibling for a cone already
// computed (and PO-restricted) by the caller, rather than one freshly
// built from a fault site.
func (d *Driver) buildRestrictedInstance(m Mode, c *cone.Cone, f *fault.Fault) (*instance, error) {
	start := time.Now()
	s := d.opt.NewSolver()
	cb := cnf.NewBuilder(d.g, s)
	if err := cb.BuildFaultInstance(c, f); err != nil {
		return nil, err
	}
	d.mu.Lock()
	ms := d.stats.forMode(m)
	ms.CnfBuilds++
	ms.CnfBuildTime += time.Since(start)
	d.mu.Unlock()
	return &instance{solver: s, cb: cb, cone: c}, nil
}

// siteDiffAssumption returns the "discrepancy originates at the fault
// site" unit assumption when the instance's variable map carries a d
// variable for it.
func siteDiffAssumption(inst *instance) []sat.Literal {
	if dv, ok := inst.cb.VarMap().Diff(inst.cone.Site); ok {
		return []sat.Literal{sat.Lit(dv, true)}
	}
	return nil
}

// poOrder returns pos (a fault's reachable PO index set) ordered per
// order, drawing the ascending TFI-size ranking from gate.Graph's
// precomputed OutputsBySize (SPEC_FULL supplemented feature #1).
func poOrder(g interface{ OutputsBySize() []int }, pos []int, order PartitionOrder) []int {
	if order == NoPartition {
		return pos
	}
	want := make(map[int]bool, len(pos))
	for _, p := range pos {
		want[p] = true
	}
	ranked := g.OutputsBySize()
	out := make([]int, 0, len(pos))
	if order == Ascending {
		for _, p := range ranked {
			if want[p] {
				out = append(out, p)
			}
		}
		return out
	}
	for i := len(ranked) - 1; i >= 0; i-- {
		if want[ranked[i]] {
			out = append(out, ranked[i])
		}
	}
	return out
}
