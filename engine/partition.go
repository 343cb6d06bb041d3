package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/go-satpg/satpg/cone"
	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/sat"
)

// RunPartitioned is the parallel wrapper of spec §5: it splits the
// Output-partitioned engine's per-PO work across concurrency goroutines
// via golang.org/x/sync/errgroup, one logical worker per primary output
// partition, each building its own private cone/solver/CNF instance
// (spec §5 "each with its own Gate Graph view (read-only shared)") while
// routing every fault.DB/Stats mutation through Driver's shared mu so
// the engine remains correct under concurrent PO workers. concurrency
// bounds the number of POs processed at once; concurrency<=0 means
// unbounded (errgroup.SetLimit is skipped).
//
// Fault ownership across workers is intentionally overlapping, not
// partitioned: a multi-output fault is attempted independently by every
// PO worker that can reach it, and whichever worker's SAT call succeeds
// first calls dispatchDetect (itself idempotent under mu — a fault that
// is already Detected is neither counted nor reported again). This trades a
// bounded amount of duplicate SAT work for avoiding a second partition
// scheme of the fault list itself.
func (d *Driver) RunPartitioned(ctx context.Context, order PartitionOrder, concurrency int) error {
	pos := d.g.Outputs()
	poIndices := make([]int, len(pos))
	for i := range pos {
		poIndices[i] = i
	}
	poIndices = poOrder(d.g, poIndices, order)

	grp, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		grp.SetLimit(concurrency)
	}

	for _, poIdx := range poIndices {
		poIdx := poIdx
		grp.Go(func() error {
			return d.runPartitionWorker(gctx, poIdx)
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	d.mu.Lock()
	d.db.Update()
	d.mu.Unlock()
	d.opt.Logger.Info().Interface("stats", d.stats.ByMode[ModePOSplit]).Msg("partitioned run complete")
	return nil
}

// runPartitionWorker handles one primary output's share of the fault
// list: every remaining fault whose site lies in poIdx's TFI (spec §4.A
// in_tfi_of), restricted to that PO's cone via cone.RestrictToPO so no
// two workers ever share or mutate gate.Graph scratch state.
func (d *Driver) runPartitionWorker(ctx context.Context, poIdx int) error {
	for _, f := range d.db.Remaining() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Status() != fault.Undetected {
			continue
		}
		if !d.g.InTFIOf(f.Node, poIdx) {
			continue
		}
		d.mu.Lock()
		_, already := f.UntestablePOs[poIdx]
		stillUndetected := f.Status() == fault.Undetected
		d.mu.Unlock()
		if already || !stillUndetected {
			continue
		}

		full, err := cone.Build(d.g, f.Node)
		if err != nil {
			return err
		}
		restricted := cone.RestrictToPO(full, d.g, poIdx)
		if len(restricted.POs) == 0 {
			continue
		}

		inst, err := d.buildRestrictedInstance(ModePOSplit, restricted, f)
		if err != nil {
			return err
		}
		if err := d.dispatchPartitionOutcome(ctx, f, poIdx, len(full.POs), inst); err != nil {
			return err
		}
	}
	return nil
}

// dispatchPartitionOutcome mirrors poSplitFault's switch, but never
// declares a fault terminally Untestable on its own: a partial UNSAT
// only records poIdx via recordPartialUntest, since another worker's PO
// may still detect the same fault concurrently. Only once every one of
// f's totalPOs reachable outputs has reported UNSAT (tracked across
// workers under mu) is the fault finally dispatched as Untestable.
func (d *Driver) dispatchPartitionOutcome(ctx context.Context, f *fault.Fault, poIdx, totalPOs int, inst *instance) error {
	outcome, err := d.solve(ctx, ModePOSplit, inst, siteDiffAssumption(inst)...)
	if err != nil && outcome != sat.Aborted {
		return err
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
		if d.untestablePOCount(f) == totalPOs {
			return d.dispatchUntest(ModePOSplit, f)
		}
		return nil
	default: // sat.Aborted
		d.dispatchAbort(ModePOSplit, f, inst.solver.Stats(), "solver budget exceeded")
		return nil
	}
}
