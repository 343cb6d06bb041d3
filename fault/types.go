package fault

import (
	"errors"
	"fmt"

	"github.com/go-satpg/satpg/gate"
)

// ErrEmptyGraph indicates Enumerate was called on a graph with no nodes
// (an empty netlist) — not an error condition per se, but guarded so
// callers see an explicit sentinel instead of a silently empty database.
var ErrEmptyGraph = errors.New("fault: graph has no nodes")

// Status is a fault's mutable lifecycle state (spec §3).
type Status uint8

const (
	Undetected Status = iota
	Detected
	Untestable
	Aborted
	Skipped
)

func (s Status) String() string {
	switch s {
	case Undetected:
		return "undetected"
	case Detected:
		return "detected"
	case Untestable:
		return "untestable"
	case Aborted:
		return "aborted"
	case Skipped:
		return "skipped"
	default:
		return "?"
	}
}

// DefaultSkipThreshold is the number of Aborted outcomes a fault may
// accumulate before DB.Update promotes it to Skipped (SPEC_FULL
// supplemented feature, grounded on original_source TpgFault.mUntestNum /
// DtpgSat.cc's abort handling, which uses the same small constant).
const DefaultSkipThreshold = 3

// Fault is a single stuck-at defect (spec §3). InputIdx is -1 for an
// output fault.
type Fault struct {
	ID       int
	Node     gate.NodeID
	IsOutput bool
	InputIdx int
	StuckAt  int

	status Status
	rep    *Fault
	dom    []*Fault

	untestCount int
	// UntestablePOs records, for a fault under PO-partitioned analysis,
	// which output indices have already returned UNSAT (SPEC_FULL
	// supplemented feature #4).
	UntestablePOs map[int]struct{}
}

// IsRep reports whether f is the representative of its equivalence class.
func (f *Fault) IsRep() bool { return f.rep == f }

// Rep returns f's representative (itself, if f is one).
func (f *Fault) Rep() *Fault { return f.rep }

// Dominated returns the faults f dominates; meaningful only when f IsRep.
func (f *Fault) Dominated() []*Fault { return f.dom }

// Status returns f's current status.
func (f *Fault) Status() Status { return f.status }

// UntestCount returns the number of times f has been driven Aborted.
func (f *Fault) UntestCount() int { return f.untestCount }

func (f *Fault) String() string {
	loc := fmt.Sprintf("node%d", f.Node)
	if !f.IsOutput {
		loc = fmt.Sprintf("node%d/in%d", f.Node, f.InputIdx)
	}
	return fmt.Sprintf("%s/sa%d", loc, f.StuckAt)
}
