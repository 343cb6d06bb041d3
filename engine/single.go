package engine

import (
	"context"
	"errors"

	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/gate"
	"github.com/go-satpg/satpg/imply"
	"github.com/go-satpg/satpg/sat"
)

// RunSingle is the single-fault engine of spec §4.E: one SAT call per
// remaining representative fault, in the fault.DB's fixed iteration
// order (spec "Tie-breaks and ordering"). Faults iterate in enumeration
// order within a node and reverse topological order across nodes because
// that is the order fault.DB.Representatives/Remaining already carry.
func (d *Driver) RunSingle(ctx context.Context) error {
	for _, f := range d.db.Remaining() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Status() != fault.Undetected {
			continue
		}
		if d.opt.ImplicationPrefilter && d.provedUntestable(f) {
			if err := d.dispatchUntest(ModeSingle, f); err != nil {
				return err
			}
			continue
		}
		if err := d.runSingleFault(ctx, ModeSingle, f); err != nil {
			return err
		}
	}
	d.db.Update()
	d.opt.Logger.Info().Interface("stats", d.stats.ByMode[ModeSingle]).Msg("run complete")
	return nil
}

// runSingleFault builds f's cone/CNF, optionally pins d=1 along the fault
// site's dominator chain toward its (unique) observing output as a
// search heuristic (spec §4.E "unique-sensitization"; DESIGN.md Open
// Question #2: dominators are recomputed for this fault's own PO scope,
// never reused from a stale activation), solves, and routes the outcome.
func (d *Driver) runSingleFault(ctx context.Context, m Mode, f *fault.Fault) error {
	inst, err := d.buildInstance(m, f)
	if err != nil {
		return err
	}
	return d.solveAndDispatch(ctx, m, f, inst)
}

// solveAndDispatch runs inst's solver (with the unique-sensitization
// dominator assumptions when enabled and inst has exactly one observing
// PO) and routes the SAT/UNSAT/aborted outcome to the matching dispatch
// helper. Shared by RunSingle and the FFR/MFFC/Concurrent group
// strategies (spec §4.E), which differ only in how inst's solver is
// obtained and reused across faults.
func (d *Driver) solveAndDispatch(ctx context.Context, m Mode, f *fault.Fault, inst *instance) error {
	var assumptions []sat.Literal
	if inst.act != 0 {
		assumptions = append(assumptions, inst.act)
	}
	// The discrepancy must originate at the fault site (spec §4.E's
	// "d at fault-node = 1" unit assumption).
	if dv, ok := inst.cb.VarMap().Diff(inst.cone.Site); ok {
		assumptions = append(assumptions, sat.Lit(dv, true))
	}
	if d.opt.UniqueSensitization && len(inst.cone.POs) == 1 {
		assumptions = append(assumptions, d.dominatorAssumptions(inst)...)
	}

	outcome, err := d.solve(ctx, m, inst, assumptions...)
	if err != nil && outcome != sat.Aborted {
		return err
	}
	switch outcome {
	case sat.Sat:
		tv, err := d.extractVector(inst, f)
		if err != nil {
			return err
		}
		return d.dispatchDetect(m, f, tv)
	case sat.Unsat:
		return d.dispatchUntest(m, f)
	default: // sat.Aborted
		d.dispatchAbort(m, f, inst.solver.Stats(), "solver budget exceeded")
		return nil
	}
}

// provedUntestable runs the ternary implication engine on f's activation
// condition (spec §4.G, use (1): mandatory-assignment pre-filter ahead
// of SAT). A fixpoint conflict means no primary-input assignment can
// even activate the fault, so it is untestable without a SAT call.
func (d *Driver) provedUntestable(f *fault.Fault) bool {
	e := imply.New(d.g)
	want := imply.FromBit(1 - f.StuckAt)
	if f.IsOutput {
		e.Set(f.Node, want)
	} else {
		e.Set(d.g.Node(f.Node).Fanin[f.InputIdx], want)
	}
	return errors.Is(e.Imply(), imply.ErrConflict)
}

// dominatorAssumptions recomputes dominators scoped to inst.cone's single
// observing PO and returns unit assumptions pinning d=1 at every TFO node
// on the fault site's dominator chain toward it.
func (d *Driver) dominatorAssumptions(inst *instance) []sat.Literal {
	if err := d.g.ActivatePO(inst.cone.POs[0]); err != nil {
		return nil
	}
	var lits []sat.Literal
	for n := d.g.Node(inst.cone.Site); n != nil; {
		if !inst.cone.InTFO(n.ID) {
			break
		}
		if dv, ok := inst.cb.VarMap().Diff(n.ID); ok {
			lits = append(lits, sat.Lit(dv, true))
		}
		if n.Kind == gate.PrimaryOutput {
			break
		}
		next := n.Dominator
		if next < 0 {
			break
		}
		n = d.g.Node(next)
	}
	return lits
}
