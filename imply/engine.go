package imply

import (
	"errors"

	"github.com/go-satpg/satpg/gate"
)

// ErrConflict indicates the current set of assignments is self-
// contradictory: some node's known value disagrees with what its fanins
// force via evalForward (spec §4.G "conflict detection").
var ErrConflict = errors.New("imply: conflicting assignment")

// maxFixpointIterations bounds the forward/backward loop the way
// fyerfyer-fan-atpg's ImplyValues caps its own loop, as a defense against
// a pathological netlist oscillating forever due to an encoding bug.
const maxFixpointIterations = 100

// Engine holds one fault instance's ternary assignment over a gate.Graph
// and propagates it to a fixpoint (spec §4.G).
type Engine struct {
	g      *gate.Graph
	values map[gate.NodeID]Value
}

// New returns an Engine with every node unassigned (X).
func New(g *gate.Graph) *Engine {
	return &Engine{g: g, values: make(map[gate.NodeID]Value)}
}

// Value returns node id's current ternary value.
func (e *Engine) Value(id gate.NodeID) Value {
	if v, ok := e.values[id]; ok {
		return v
	}
	return X
}

// Set forces node id's value, the entry point for both primary-input
// decisions and fault-site injection.
func (e *Engine) Set(id gate.NodeID, v Value) { e.values[id] = v }

// Reset clears every assignment back to X.
func (e *Engine) Reset() { e.values = make(map[gate.NodeID]Value) }

// Mandatory returns every node whose value Imply forced to non-X without
// an explicit Set call, keyed by node id. The ATPG Engine does not call
// it; its pre-filter only checks Imply for a conflict.
func (e *Engine) Mandatory(explicit map[gate.NodeID]bool) map[gate.NodeID]Value {
	out := make(map[gate.NodeID]Value)
	for id, v := range e.values {
		if v.Known() && !explicit[id] {
			out[id] = v
		}
	}
	return out
}

// Imply runs forward simulation and backward justification to a
// fixpoint, returning ErrConflict if the resulting assignment is
// inconsistent with the netlist's gate functions.
func (e *Engine) Imply() error {
	for i := 0; i < maxFixpointIterations; i++ {
		fwd := e.propagateForward()
		bwd := e.propagateBackward()
		if err := e.checkConflict(); err != nil {
			return err
		}
		if !fwd && !bwd {
			return nil
		}
	}
	return e.checkConflict()
}

func (e *Engine) propagateForward() bool {
	changed := false
	for _, id := range e.g.Topological() {
		n := e.g.Node(id)
		if n.Kind == gate.PrimaryInput {
			continue
		}
		in := make([]Value, len(n.Fanin))
		for i, f := range n.Fanin {
			in[i] = e.Value(f)
		}
		v := evalForward(n.Kind, in)
		if !v.Known() {
			continue
		}
		cur := e.Value(id)
		if !cur.Known() {
			e.values[id] = v
			changed = true
		}
	}
	return changed
}

func (e *Engine) propagateBackward() bool {
	changed := false
	order := e.g.Topological()
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		n := e.g.Node(id)
		out := e.Value(id)
		if !out.Known() || n.Kind == gate.PrimaryInput {
			continue
		}
		in := make([]Value, len(n.Fanin))
		for j, f := range n.Fanin {
			in[j] = e.Value(f)
		}
		for j, f := range n.Fanin {
			if e.Value(f).Known() {
				continue
			}
			forced := backwardInput(n.Kind, out, in, j)
			if forced.Known() {
				e.values[f] = forced
				in[j] = forced
				changed = true
			}
		}
	}
	return changed
}

func (e *Engine) checkConflict() error {
	for _, id := range e.g.Topological() {
		n := e.g.Node(id)
		if n.Kind == gate.PrimaryInput {
			continue
		}
		out := e.Value(id)
		if !out.Known() {
			continue
		}
		in := make([]Value, len(n.Fanin))
		for i, f := range n.Fanin {
			in[i] = e.Value(f)
		}
		// evalForward returns a known value as soon as the fanins
		// determine one (a controlling input decides the output even
		// with other fanins still X), so a partial assignment can
		// already contradict out.
		if expect := evalForward(n.Kind, in); expect.Known() && expect != out {
			return ErrConflict
		}
	}
	return nil
}
