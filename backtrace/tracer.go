package backtrace

import (
	"errors"
	"fmt"

	"github.com/go-satpg/satpg/cnf"
	"github.com/go-satpg/satpg/cone"
	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/gate"
	"github.com/go-satpg/satpg/sat"
)

// ErrUnknownTag is returned by NewByTag for an unrecognized strategy tag
// (spec §6 "backtracer factories by string tag").
var ErrUnknownTag = errors.New("backtrace: unknown tracer tag")

// ErrNoWitness indicates the model marks no cone output with a
// discrepancy, which a satisfying assignment of a well-formed fault
// instance can never do; it guards against projecting a stale model.
var ErrNoWitness = errors.New("backtrace: model observes no output discrepancy")

// Model reads one variable's value out of the solver's satisfying
// assignment. Valid only immediately after a Sat outcome.
type Model func(sat.VarID) int

// Tracer projects a satisfying assignment onto a three-valued primary
// input test vector (spec §4.F): assigned bits come verbatim from the
// model, and every primary input the strategy leaves out stays X so a
// downstream fault simulator can exploit the don't-cares.
type Tracer interface {
	Trace(c *cone.Cone, vm *cnf.VarMap, f *fault.Fault, model Model) (map[gate.NodeID]int, error)
}

// simple copies the model's good value for every primary input in the
// cone; nothing is relaxed (spec §4.F BtSimple).
type simple struct {
	g *gate.Graph
}

// NewSimple returns the BtSimple strategy.
func NewSimple(g *gate.Graph) Tracer { return &simple{g: g} }

func (t *simple) Trace(c *cone.Cone, vm *cnf.VarMap, _ *fault.Fault, model Model) (map[gate.NodeID]int, error) {
	out := make(map[gate.NodeID]int, len(c.PIs))
	for _, id := range c.PIs {
		gv, ok := vm.Good(id)
		if !ok {
			continue
		}
		out[id] = model(gv)
	}
	return out, nil
}

// justifier walks the model backward from an observing output and marks
// only the primary inputs actually needed to reproduce the fault's
// activation and its propagation witness. pick decides which fanin to
// recurse into when a single controlling-value fanin suffices.
type justifier struct {
	g     *gate.Graph
	c     *cone.Cone
	vm    *cnf.VarMap
	model Model

	assign  map[gate.NodeID]int
	visited map[gate.NodeID]bool
	refs    map[gate.NodeID]int
	pick    func(cands []gate.NodeID, refs map[gate.NodeID]int) gate.NodeID
}

func (j *justifier) goodValue(id gate.NodeID) int {
	v, _ := j.vm.Good(id)
	return j.model(v)
}

// justify recursively derives a sufficient set of primary input values
// realizing node id's model value in the good circuit: for a gate whose
// output equals its controlling result, one controlling fanin is enough;
// otherwise (and always at XOR/XNOR) every fanin is needed. Model values
// are reused as-is, never recomputed, so the resulting vector's assigned
// bits are a subset of the model.
func (j *justifier) justify(id gate.NodeID) error {
	if j.refs != nil {
		j.refs[id]++
	}
	if j.visited[id] {
		return nil
	}
	j.visited[id] = true
	n := j.g.Node(id)
	switch n.Kind {
	case gate.PrimaryInput:
		j.assign[id] = j.goodValue(id)
		return nil
	case gate.Buf, gate.Not, gate.PrimaryOutput:
		return j.justify(n.Fanin[0])
	case gate.And, gate.Nand, gate.Or, gate.Nor:
		ctrl, _ := n.Kind.ControllingValue()
		base := j.goodValue(id)
		if n.Kind.Inverting() {
			base = 1 - base
		}
		// base equals ctrl exactly when some controlling fanin produced
		// the output (AND at 0, OR at 1); then one such fanin suffices.
		if base == ctrl {
			var cands []gate.NodeID
			for _, fi := range n.Fanin {
				if j.goodValue(fi) == ctrl {
					cands = append(cands, fi)
				}
			}
			if len(cands) == 0 {
				return fmt.Errorf("backtrace: node %d: model output disagrees with fanin values", id)
			}
			return j.justify(j.pick(cands, j.refs))
		}
		for _, fi := range n.Fanin {
			if err := j.justify(fi); err != nil {
				return err
			}
		}
		return nil
	default: // Xor, Xnor: every fanin contributes
		for _, fi := range n.Fanin {
			if err := j.justify(fi); err != nil {
				return err
			}
		}
		return nil
	}
}

// run justifies the fault's propagation witness and activation condition:
// it finds an output whose d variable the model set, retraces the
// sensitized path back to the fault site justifying each path gate's
// side inputs, then justifies the activation value at the site itself.
func (j *justifier) run(f *fault.Fault) error {
	outs := j.g.Outputs()
	observing := gate.NodeID(-1)
	for _, poIdx := range j.c.POs {
		id := outs[poIdx]
		if dv, ok := j.vm.Diff(id); ok && j.model(dv) == 1 {
			observing = id
			break
		}
	}
	if observing < 0 {
		return ErrNoWitness
	}

	cur := observing
	for cur != f.Node {
		n := j.g.Node(cur)
		next := gate.NodeID(-1)
		for _, fi := range n.Fanin {
			if !j.c.InTFO(fi) {
				continue
			}
			if dv, ok := j.vm.Diff(fi); ok && j.model(dv) == 1 {
				next = fi
				break
			}
		}
		for _, fi := range n.Fanin {
			if fi == next {
				continue
			}
			if err := j.justify(fi); err != nil {
				return err
			}
		}
		if next < 0 {
			break
		}
		cur = next
	}

	if f.IsOutput {
		return j.justify(f.Node)
	}
	site := j.g.Node(f.Node)
	for _, fi := range site.Fanin {
		if err := j.justify(fi); err != nil {
			return err
		}
	}
	return nil
}

// just1 is the greedy single-pass justification of spec §4.F BtJust1:
// when one controlling fanin suffices it takes the first in pin order.
type just1 struct {
	g *gate.Graph
}

// NewJust1 returns the BtJust1 strategy.
func NewJust1(g *gate.Graph) Tracer { return &just1{g: g} }

func (t *just1) Trace(c *cone.Cone, vm *cnf.VarMap, f *fault.Fault, model Model) (map[gate.NodeID]int, error) {
	j := &justifier{
		g: t.g, c: c, vm: vm, model: model,
		assign:  make(map[gate.NodeID]int),
		visited: make(map[gate.NodeID]bool),
		pick: func(cands []gate.NodeID, _ map[gate.NodeID]int) gate.NodeID {
			return cands[0]
		},
	}
	if err := j.run(f); err != nil {
		return nil, err
	}
	return j.assign, nil
}

// just2 is the two-pass variant of spec §4.F BtJust2: a counting pass
// records how often each node is demanded by some justification path,
// then the real pass prefers controlling fanins already required
// elsewhere (highest reference count), breaking ties toward the fanin
// closest to an output (largest level, then smallest id). Re-using
// already-demanded nodes trims the assigned set below BtJust1's.
type just2 struct {
	g *gate.Graph
}

// NewJust2 returns the BtJust2 strategy.
func NewJust2(g *gate.Graph) Tracer { return &just2{g: g} }

func (t *just2) Trace(c *cone.Cone, vm *cnf.VarMap, f *fault.Fault, model Model) (map[gate.NodeID]int, error) {
	count := &justifier{
		g: t.g, c: c, vm: vm, model: model,
		assign:  make(map[gate.NodeID]int),
		visited: make(map[gate.NodeID]bool),
		refs:    make(map[gate.NodeID]int),
		pick: func(cands []gate.NodeID, _ map[gate.NodeID]int) gate.NodeID {
			return cands[0]
		},
	}
	if err := count.run(f); err != nil {
		return nil, err
	}

	j := &justifier{
		g: t.g, c: c, vm: vm, model: model,
		assign:  make(map[gate.NodeID]int),
		visited: make(map[gate.NodeID]bool),
		pick: func(cands []gate.NodeID, _ map[gate.NodeID]int) gate.NodeID {
			best := cands[0]
			for _, cand := range cands[1:] {
				switch {
				case count.refs[cand] > count.refs[best]:
					best = cand
				case count.refs[cand] == count.refs[best]:
					bn, cn := t.g.Node(best), t.g.Node(cand)
					if cn.Level > bn.Level || (cn.Level == bn.Level && cand < best) {
						best = cand
					}
				}
			}
			return best
		},
	}
	if err := j.run(f); err != nil {
		return nil, err
	}
	return j.assign, nil
}

// NewByTag constructs a Tracer from a string tag (spec §6): "simple",
// "just1", "just2".
func NewByTag(tag string, g *gate.Graph) (Tracer, error) {
	switch tag {
	case "simple":
		return NewSimple(g), nil
	case "just1":
		return NewJust1(g), nil
	case "just2":
		return NewJust2(g), nil
	default:
		return nil, ErrUnknownTag
	}
}
