package engine

import (
	"context"
	"fmt"

	"github.com/go-satpg/satpg/cnf"
	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/hook"
	"github.com/go-satpg/satpg/sat"
)

// RunKDetect is the k-detect engine of spec §4.E: the single-fault engine
// iterated up to k times per fault, adding a blocking clause after each
// SAT-True outcome that forbids the exact primary-input assignment just
// found, so a re-solve under the same instance must find a materially
// different vector. Stops early on UNSAT (fault proven untestable, or —
// if at least one vector was already found — simply exhausted) or abort.
func (d *Driver) RunKDetect(ctx context.Context, k int) error {
	if k < 1 {
		return ErrBadKDetectK
	}
	for _, f := range d.db.Remaining() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Status() != fault.Undetected {
			continue
		}
		if d.opt.ImplicationPrefilter && d.provedUntestable(f) {
			if err := d.dispatchUntest(ModeKDetect, f); err != nil {
				return err
			}
			continue
		}
		if err := d.kDetectFault(ctx, f, k); err != nil {
			return err
		}
	}
	d.db.Update()
	d.opt.Logger.Info().Interface("stats", d.stats.ByMode[ModeKDetect]).Msg("run complete")
	return nil
}

func (d *Driver) kDetectFault(ctx context.Context, f *fault.Fault, k int) error {
	inst, err := d.buildInstance(ModeKDetect, f)
	if err != nil {
		return err
	}

	var assumptions []sat.Literal
	if dv, ok := inst.cb.VarMap().Diff(inst.cone.Site); ok {
		assumptions = append(assumptions, sat.Lit(dv, true))
	}

	found := 0
	for i := 0; i < k; i++ {
		outcome, err := d.solve(ctx, ModeKDetect, inst, assumptions...)
		if err != nil && outcome != sat.Aborted {
			return err
		}
		switch outcome {
		case sat.Sat:
			tv, err := d.extractVector(inst, f)
			if err != nil {
				return err
			}
			if found == 0 {
				// The representative (and everything it dominates) is
				// Detected on the first vector; subsequent vectors are
				// additional patterns handed to the Detect hook without
				// a further status transition.
				if err := d.dispatchDetect(ModeKDetect, f, tv); err != nil {
					return err
				}
			} else if err := d.opt.Detect.OnDetect(f, tv); err != nil {
				return err
			}
			found++
			if err := blockVector(inst.solver, inst.cb, tv); err != nil {
				return err
			}
		case sat.Unsat:
			if found == 0 {
				return d.dispatchUntest(ModeKDetect, f)
			}
			return nil // exhausted this fault's distinct vectors before k
		default: // sat.Aborted
			d.dispatchAbort(ModeKDetect, f, inst.solver.Stats(), "solver budget exceeded")
			return nil
		}
	}
	return nil
}

// blockVector adds a clause forbidding the exact primary-input
// assignment captured in tv (spec §9 Open Question: "the safe choice is
// to block only the assigned bits" — X/don't-care bits left by the
// backtracer are not constrained, so a future vector may assign them
// either way).
func blockVector(s sat.Solver, cb *cnf.Builder, tv hook.TestVector) error {
	clause := make([]sat.Literal, 0, len(tv))
	for id, val := range tv {
		gv, ok := cb.VarMap().Good(id)
		if !ok {
			continue
		}
		// Negate the assigned bit: the blocking clause is satisfied by
		// any future model that disagrees with tv on at least one
		// assigned (non-X) primary input.
		clause = append(clause, sat.Lit(gv, val == 0))
	}
	if len(clause) == 0 {
		return fmt.Errorf("engine: k-detect: fully don't-care vector cannot be blocked")
	}
	return s.AddClause(clause...)
}
