package engine

import (
	"context"

	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/gate"
	"github.com/go-satpg/satpg/sat"
)

// RunMultiFFR is the multi-fault-per-FFR engine of spec §4.E: faults are
// grouped by the fanout-free region (spec GLOSSARY "FFR") their site
// belongs to, and every fault in a group shares one sat.Solver so its
// learnt clauses carry over from one fault to the next within the same
// region (spec "reuse the solver across faults in that cone"). Each
// fault's clauses are gated behind a per-fault activation literal k_f:
// solving fault f assumes k_f, and resolving it retires k_f with a unit
// clause, so a region-mate's injection and observability clauses are
// never hard constraints on the next fault's solve. Learning is dropped
// between regions via ForgetLearnt so one FFR's clauses never bias an
// unrelated one.
func (d *Driver) RunMultiFFR(ctx context.Context) error {
	groups := groupByNodeSets(d.db.Remaining(), d.g.FFRRoots(), d.g.FFRNodes)
	if err := d.runGrouped(ctx, ModeMultiFFR, groups); err != nil {
		return err
	}
	d.db.Update()
	d.opt.Logger.Info().Interface("stats", d.stats.ByMode[ModeMultiFFR]).Msg("run complete")
	return nil
}

// RunMFFC is RunMultiFFR's sibling grouping by maximal fanout-free cone
// (spec GLOSSARY "MFFC") instead of FFR: every fault whose site lies in
// the same MFFC shares one solver. MFFC membership comes off the
// dominator tree, so the graph is re-activated whole-netlist first; a
// preceding strategy may have left activation scoped to a single output
// (the unique-sensitization heuristic does).
func (d *Driver) RunMFFC(ctx context.Context) error {
	d.g.ActivateAll()
	groups := groupByNodeSets(d.db.Remaining(), d.g.MFFCRoots(), d.g.MFFC)
	if err := d.runGrouped(ctx, ModeMFFC, groups); err != nil {
		return err
	}
	d.db.Update()
	d.opt.Logger.Info().Interface("stats", d.stats.ByMode[ModeMFFC]).Msg("run complete")
	return nil
}

// RunConcurrent is the concurrent-fault engine of spec §4.E: every
// remaining fault shares one session-wide solver with learning never
// reset, trading CNF-rebuild cost for an ever-growing clause database —
// "useful when CNF build cost dominates solve cost" (spec §4.E).
func (d *Driver) RunConcurrent(ctx context.Context) error {
	s := d.opt.NewSolver()
	for _, f := range d.db.Remaining() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Status() != fault.Undetected {
			continue
		}
		if d.opt.ImplicationPrefilter && d.provedUntestable(f) {
			if err := d.dispatchUntest(ModeConcurrent, f); err != nil {
				return err
			}
			continue
		}
		if err := d.solveGroupFault(ctx, ModeConcurrent, s, f); err != nil {
			return err
		}
	}
	d.db.Update()
	d.opt.Logger.Info().Interface("stats", d.stats.ByMode[ModeConcurrent]).Msg("run complete")
	return nil
}

// runGrouped drives groups in order on one long-lived solver: every
// fault within a group is a gated instance on that solver, and the
// solver's state (problem clauses and learning alike) is dropped via
// ForgetLearnt before the next group starts.
func (d *Driver) runGrouped(ctx context.Context, m Mode, groups [][]*fault.Fault) error {
	s := d.opt.NewSolver()
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, f := range group {
			if err := ctx.Err(); err != nil {
				return err
			}
			if f.Status() != fault.Undetected {
				continue
			}
			if d.opt.ImplicationPrefilter && d.provedUntestable(f) {
				if err := d.dispatchUntest(m, f); err != nil {
					return err
				}
				continue
			}
			if err := d.solveGroupFault(ctx, m, s, f); err != nil {
				return err
			}
		}
		s.ForgetLearnt()
	}
	return nil
}

// solveGroupFault builds one gated instance for f on the shared solver,
// solves, and retires the instance's activation literal regardless of
// outcome so later faults on the same solver start unconstrained.
func (d *Driver) solveGroupFault(ctx context.Context, m Mode, s sat.Solver, f *fault.Fault) error {
	inst, err := d.buildInstanceOn(s, m, f, true)
	if err != nil {
		return err
	}
	dispatchErr := d.solveAndDispatch(ctx, m, f, inst)
	if err := inst.retire(); err != nil && dispatchErr == nil {
		return err
	}
	return dispatchErr
}

// groupByNodeSets partitions remaining by which root's node set (as
// returned by members, e.g. gate.Graph.FFRNodes or MFFC) a fault's site
// belongs to. Faults whose site is not covered by any root (should not
// occur; every node belongs to exactly one FFR/MFFC) fall back to their
// own singleton group so no fault is silently dropped.
func groupByNodeSets(remaining []*fault.Fault, roots []gate.NodeID, members func(gate.NodeID) []gate.NodeID) [][]*fault.Fault {
	nodeGroup := make(map[gate.NodeID]int, len(remaining))
	for gi, root := range roots {
		for _, id := range members(root) {
			nodeGroup[id] = gi
		}
	}
	groups := make([][]*fault.Fault, len(roots))
	for _, f := range remaining {
		gi, ok := nodeGroup[f.Node]
		if !ok {
			groups = append(groups, []*fault.Fault{f})
			continue
		}
		groups[gi] = append(groups[gi], f)
	}
	return groups
}
