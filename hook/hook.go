package hook

import (
	"errors"
	"fmt"

	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/gate"
)

// ErrUnknownTag is returned by NewDetectByTag/NewUntestByTag for an
// unrecognized strategy tag.
var ErrUnknownTag = errors.New("hook: unknown tag")

// ErrHook is the sentinel a hook wraps its own failure in (Verify does),
// so atpg.Classify reports it as a HookError (spec §7 "HookError
// propagates"). The engine returns a hook's error with a context prefix
// and does not add ErrHook itself.
var ErrHook = errors.New("hook: callback failed")

// TestVector is a compacted primary-input assignment, gate.NodeID
// meaningful only for primary inputs (0/1; absent keys are don't-cares).
type TestVector map[gate.NodeID]int

// Detect is called once per fault whose SAT instance was satisfiable.
type Detect interface {
	OnDetect(f *fault.Fault, tv TestVector) error
}

// Untest is called once per fault proven untestable (an UNSAT instance,
// or a conflict in the implication pre-filter). Aborted and Skipped
// faults do not reach it.
type Untest interface {
	OnUntest(f *fault.Fault, reason fault.Status) error
}

// Base is a no-op Detect/Untest implementation other hooks can embed to
// only override the callback they care about.
type Base struct{}

func (Base) OnDetect(*fault.Fault, TestVector) error  { return nil }
func (Base) OnUntest(*fault.Fault, fault.Status) error { return nil }

// Drop discards every outcome; useful when only aggregate Stats matter.
type Drop struct{ Base }

// NewDrop returns a Detect+Untest hook that does nothing.
func NewDrop() *Drop { return &Drop{} }

// TvList accumulates every detected test vector in detection order, the
// typical hook for a caller that wants the final pattern set (spec §6
// "test pattern output").
type TvList struct {
	Base
	Vectors []TestVector
	Faults  []*fault.Fault
}

// NewTvList returns an empty TvList collector.
func NewTvList() *TvList { return &TvList{} }

func (t *TvList) OnDetect(f *fault.Fault, tv TestVector) error {
	t.Vectors = append(t.Vectors, tv)
	t.Faults = append(t.Faults, f)
	return nil
}

// Verify simulates a detected vector through the good circuit on Eval
// and returns ErrHook wrapping a descriptive mismatch if the vector does
// not activate the fault: the good value on the faulty line (the node's
// output, or the fanin feeding the faulty pin) equals f.StuckAt. It is a
// defense against a CNF Builder bug silently producing a vacuous
// detection. It does not simulate the faulty circuit, so propagation to a
// primary output is not checked.
type Verify struct {
	Base
	g *gate.Graph
}

// NewVerify returns a Detect hook that forward-simulates tv through g
// and confirms it actually differentiates the faulty node's good value
// from f.StuckAt.
func NewVerify(g *gate.Graph) *Verify { return &Verify{g: g} }

func (v *Verify) OnDetect(f *fault.Fault, tv TestVector) error {
	good := simulate(v.g, tv)
	site := f.Node
	if !f.IsOutput {
		site = v.g.Node(f.Node).Fanin[f.InputIdx]
	}
	if got := good[site]; got == f.StuckAt {
		return fmt.Errorf("%w: vector does not differ from stuck-at value at node %d", ErrHook, site)
	}
	return nil
}

// simulate forward-evaluates g under tv (X for any PI not present),
// treating an unset PI as 0 for evaluation purposes since Verify only
// checks the activated value at one node.
func simulate(g *gate.Graph, tv TestVector) map[gate.NodeID]int {
	vals := make(map[gate.NodeID]int, g.NumNodes())
	for _, id := range g.Topological() {
		n := g.Node(id)
		if n.Kind == gate.PrimaryInput {
			vals[id] = tv[id]
			continue
		}
		in := make([]int, len(n.Fanin))
		for i, f := range n.Fanin {
			in[i] = vals[f]
		}
		vals[id] = gate.Eval(n.Kind, in)
	}
	return vals
}

// Skip counts untestable outcomes without storing anything, the
// companion to TvList when a caller wants only the untestable count.
type Skip struct {
	Base
	Count int
}

// NewSkip returns an Untest hook that tallies how many times it fires.
func NewSkip() *Skip { return &Skip{} }

func (s *Skip) OnUntest(*fault.Fault, fault.Status) error {
	s.Count++
	return nil
}

// NewDetectByTag constructs a Detect hook from a string tag (spec §6):
// "base", "drop", "tvlist", "verify".
func NewDetectByTag(tag string, g *gate.Graph) (Detect, error) {
	switch tag {
	case "base":
		return Base{}, nil
	case "drop":
		return NewDrop(), nil
	case "tvlist":
		return NewTvList(), nil
	case "verify":
		return NewVerify(g), nil
	default:
		return nil, ErrUnknownTag
	}
}

// NewUntestByTag constructs an Untest hook from a string tag: "base",
// "drop", "skip".
func NewUntestByTag(tag string) (Untest, error) {
	switch tag {
	case "base":
		return Base{}, nil
	case "drop":
		return NewDrop(), nil
	case "skip":
		return NewSkip(), nil
	default:
		return nil, ErrUnknownTag
	}
}
