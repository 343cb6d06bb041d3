package fault

import (
	"github.com/rs/zerolog"

	"github.com/go-satpg/satpg/gate"
)

// DB is the Fault Database (spec §4.B). It owns every Fault object for the
// lifetime of a netlist; only Status is ever mutated after Enumerate, and
// only by the driver (spec §5 "Shared resources").
type DB struct {
	g             *gate.Graph
	all           []*Fault
	reps          []*Fault
	remaining     []*Fault
	detected      []*Fault
	untestable    []*Fault
	skipThreshold int
	logger        zerolog.Logger
}

// Option configures a DB at construction (teacher's functional-option
// idiom; see lvlath core.GraphOption).
type Option func(*DB)

// WithLogger attaches a structured logger for status-transition diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(d *DB) { d.logger = l }
}

// WithSkipThreshold overrides DefaultSkipThreshold.
func WithSkipThreshold(n int) Option {
	return func(d *DB) { d.skipThreshold = n }
}

// NewDB creates an empty Fault Database bound to g. Call Enumerate before
// using it.
func NewDB(g *gate.Graph, opts ...Option) *DB {
	d := &DB{g: g, skipThreshold: DefaultSkipThreshold, logger: zerolog.Nop()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// nodeFaults holds the raw (pre-collapse) fault objects located on one node.
type nodeFaults struct {
	out [2]*Fault   // out[v] = node stuck-at-v
	in  [][2]*Fault // in[pin][v] = (node,pin) stuck-at-v
}

// Enumerate activates the entire graph, raw-enumerates two output faults
// per node and two input faults per fanin pin (spec §4.B "Enumeration"),
// then collapses in reverse topological order (spec §4.B "Collapsing").
func (d *DB) Enumerate() error {
	if d.g.NumNodes() == 0 {
		return ErrEmptyGraph
	}
	d.g.ActivateAll()
	order := d.g.Topological()

	byNode := make(map[gate.NodeID]*nodeFaults, len(order))
	nextID := 0
	newFault := func(n *gate.Node, isOutput bool, pin, val int) *Fault {
		f := &Fault{ID: nextID, Node: n.ID, IsOutput: isOutput, InputIdx: pin, StuckAt: val}
		f.rep = f
		nextID++
		d.all = append(d.all, f)
		return f
	}

	for _, id := range order {
		n := d.g.Node(id)
		nf := &nodeFaults{}
		nf.out[0] = newFault(n, true, -1, 0)
		nf.out[1] = newFault(n, true, -1, 1)
		nf.in = make([][2]*Fault, len(n.Fanin))
		for j := range n.Fanin {
			nf.in[j][0] = newFault(n, false, j, 0)
			nf.in[j][1] = newFault(n, false, j, 1)
		}
		byNode[id] = nf
	}

	// Collapse in reverse topological order: a node's single active
	// fanout (if any) has already been processed, so its input-pin
	// faults already carry their final representative.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		n := d.g.Node(id)
		nf := byNode[id]

		if len(n.Fanout) == 1 {
			consumer := d.g.Node(n.Fanout[0])
			cf := byNode[consumer.ID]
			ipos := faninIndex(consumer, id)
			mergeInto(nf.out[0], cf.in[ipos][0])
			mergeInto(nf.out[1], cf.in[ipos][1])
		}

		rep0, rep1 := gateRepRule(n.Kind, nf.out[0], nf.out[1])
		for j := range nf.in {
			mergeInto(nf.in[j][0], rep0)
			mergeInto(nf.in[j][1], rep1)
		}
	}

	// Representative iteration order is reverse topological across nodes
	// (outputs first) and enumeration order within one node (spec §4.E
	// "Tie-breaks and ordering"), so a dominated node's faults trail the
	// representatives that typically retire them by drop.
	for i := len(order) - 1; i >= 0; i-- {
		nf := byNode[order[i]]
		push := func(f *Fault) {
			if f.IsRep() {
				d.reps = append(d.reps, f)
			}
		}
		push(nf.out[0])
		push(nf.out[1])
		for j := range nf.in {
			push(nf.in[j][0])
			push(nf.in[j][1])
		}
	}
	d.remaining = append([]*Fault(nil), d.reps...)
	return nil
}

// faninIndex returns the position of needle in consumer's fanin list.
func faninIndex(consumer *gate.Node, needle gate.NodeID) int {
	for j, f := range consumer.Fanin {
		if f == needle {
			return j
		}
	}
	return 0
}

// gateRepRule returns the representative to fold a node's own input
// faults (sa0, sa1) into, given its own output faults out0/out1 and kind
// (spec §3 "Fault equivalence", §4.B "Collapsing rules").
func gateRepRule(k gate.Kind, out0, out1 *Fault) (rep0, rep1 *Fault) {
	switch k {
	case gate.PrimaryOutput, gate.Buf:
		return out0, out1
	case gate.Not:
		return out1, out0
	case gate.And:
		return out0, nil
	case gate.Nand:
		return out1, nil
	case gate.Or:
		return nil, out1
	case gate.Nor:
		// An input held at 1 (the controlling value) pins a NOR's output
		// at 0, so input sa1 folds into output sa0.
		return nil, out0
	default: // Xor, Xnor, PrimaryInput: no collapsible pairs
		return nil, nil
	}
}

// mergeInto folds f into candidate's equivalence class, flattening through
// any existing chain (path compression) so IsRep/Dominated stay O(1).
func mergeInto(f, candidate *Fault) {
	if candidate == nil {
		return
	}
	root := resolveRep(candidate)
	if root == f {
		return
	}
	f.rep = root
	root.dom = append(root.dom, f)
}

func resolveRep(f *Fault) *Fault {
	for f.rep != f {
		f = f.rep
	}
	return f
}

// Representatives returns every representative fault in the engine's
// iteration order (spec §4.E "Tie-breaks": enumeration order within a
// node, reverse topological across nodes, outputs first). Remaining()
// preserves this order across Update sweeps.
func (d *DB) Representatives() []*Fault { return d.reps }

// Remaining returns faults not yet Detected or Untestable, in the
// deterministic order fixed by the last Update call.
func (d *DB) Remaining() []*Fault { return d.remaining }

// Detected returns all faults promoted to Detected by Update so far.
func (d *DB) Detected() []*Fault { return d.detected }

// UntestableFaults returns all faults promoted to Untestable by Update so far.
func (d *DB) UntestableFaults() []*Fault { return d.untestable }

// SetStatus transitions f to status, the only mutation the driver is
// permitted to make to fault state (spec §5).
func (d *DB) SetStatus(f *Fault, status Status) {
	f.status = status
	d.logger.Debug().Str("fault", f.String()).Str("status", status.String()).Msg("fault status set")
}

// RecordAbort increments f's untest-count and returns true if it has now
// crossed the skip threshold (SPEC_FULL supplemented feature #2).
func (d *DB) RecordAbort(f *Fault) bool {
	f.untestCount++
	return f.untestCount > d.skipThreshold
}

// Update sweeps Remaining, demoting Aborted back to Undetected, promoting
// Detected/Untestable into their terminal lists, and discarding Skipped
// entries (spec §4.B "Status discipline"). After Update, Remaining()
// iteration is deterministic and stable.
func (d *DB) Update() {
	kept := d.remaining[:0]
	for _, f := range d.remaining {
		switch f.status {
		case Undetected:
			kept = append(kept, f)
		case Aborted:
			if d.RecordAbort(f) {
				d.SetStatus(f, Skipped)
				continue
			}
			d.SetStatus(f, Undetected)
			kept = append(kept, f)
		case Detected:
			d.detected = append(d.detected, f)
		case Untestable:
			d.untestable = append(d.untestable, f)
		case Skipped:
			// discarded
		}
	}
	d.remaining = kept
}

// MarkDetected transitions r (a representative) and every fault it
// dominates to Detected in one call (spec §3 "The 'detected' outcome for
// a representative implicitly retires all dominated faults").
func (d *DB) MarkDetected(r *Fault) {
	d.SetStatus(r, Detected)
	for _, f := range r.dom {
		d.SetStatus(f, Detected)
	}
}
