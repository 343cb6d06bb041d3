package cnf

import (
	"errors"

	"github.com/go-satpg/satpg/gate"
	"github.com/go-satpg/satpg/sat"
)

// ErrCnfBuild is the umbrella sentinel for CNF construction failures (spec
// §7 "CnfBuildError"); the engine stops the whole run when it sees one.
var ErrCnfBuild = errors.New("cnf: build failed")

// ErrUnsupportedArity indicates a gate kind/fanin-count combination the
// Tseitin encoder does not know how to clause (should be unreachable for
// a graph that passed gate.Builder.Build's arity checks).
var ErrUnsupportedArity = errors.New("cnf: unsupported gate arity")

// VarMap records the SAT variable allocated for each (node, plane) pair a
// Builder has emitted so far: good-circuit, faulty-circuit (TFO nodes
// only), and D-chain difference (TFO nodes only).
type VarMap struct {
	good map[gate.NodeID]sat.VarID
	flt  map[gate.NodeID]sat.VarID
	d    map[gate.NodeID]sat.VarID
}

func newVarMap() *VarMap {
	return &VarMap{
		good: make(map[gate.NodeID]sat.VarID),
		flt:  make(map[gate.NodeID]sat.VarID),
		d:    make(map[gate.NodeID]sat.VarID),
	}
}

// Good returns the good-circuit variable for id, and whether it exists.
func (m *VarMap) Good(id gate.NodeID) (sat.VarID, bool) { v, ok := m.good[id]; return v, ok }

// Faulty returns the faulty-circuit variable for id, and whether it
// exists (only nodes in the fault's TFO get one).
func (m *VarMap) Faulty(id gate.NodeID) (sat.VarID, bool) { v, ok := m.flt[id]; return v, ok }

// Diff returns the D-chain variable for id, and whether it exists.
func (m *VarMap) Diff(id gate.NodeID) (sat.VarID, bool) { v, ok := m.d[id]; return v, ok }

// FaultyOrGood returns the faulty-plane variable for id if one was
// allocated (id is in the fault's TFO), else falls back to the
// good-circuit variable (outside TFO, faulty == good by construction).
func (m *VarMap) FaultyOrGood(id gate.NodeID) sat.VarID {
	if v, ok := m.flt[id]; ok {
		return v
	}
	return m.good[id]
}
