package fault_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/gate"
)

type DBSuite struct {
	suite.Suite
}

func TestDBSuite(t *testing.T) {
	suite.Run(t, new(DBSuite))
}

// buildAND builds out = AND(in0, in1).
func buildAND(t *testing.T) (*gate.Graph, gate.NodeID, gate.NodeID, gate.NodeID, gate.NodeID) {
	t.Helper()
	b := gate.NewBuilder()
	in0 := b.AddInput("in0")
	in1 := b.AddInput("in1")
	and, err := b.AddGate("g0", gate.And, in0, in1)
	require.NoError(t, err)
	out, err := b.AddOutput("out", and)
	require.NoError(t, err)
	g, err := b.Build()
	require.NoError(t, err)
	return g, in0, in1, and, out
}

// AND's output sa0 should, through the PO buffer merge and the AND's own
// rep rule (rep0=out0), ultimately resolve to the PO node's own output
// fault object — the hand-traced example from FaultMgr.cc.
func (s *DBSuite) TestCollapseANDChainResolvesToPO() {
	g, in0, _, and, out := buildAND(s.T())
	_ = in0
	db := fault.NewDB(g)
	s.Require().NoError(db.Enumerate())

	var andOut0, poOut0 *fault.Fault
	for _, f := range allFaultsOf(db) {
		if f.Node == and && f.IsOutput && f.StuckAt == 0 {
			andOut0 = f
		}
		if f.Node == out && f.IsOutput && f.StuckAt == 0 {
			poOut0 = f
		}
	}
	s.Require().NotNil(andOut0)
	s.Require().NotNil(poOut0)
	s.Require().Equal(poOut0.Rep(), andOut0.Rep())
}

func (s *DBSuite) TestCollapseReducesRepresentativeCount() {
	g, _, _, _, _ := buildAND(s.T())
	db := fault.NewDB(g)
	s.Require().NoError(db.Enumerate())
	// 4 nodes (in0, in1, the AND, and the buf-equivalent PO) each contribute
	// 2 output faults plus fanin faults; collapsing must strictly reduce
	// below the raw count.
	s.Require().Less(len(db.Representatives()), rawFaultCount(g))
}

func (s *DBSuite) TestUpdateSweepDiscipline() {
	g, _, _, _, _ := buildAND(s.T())
	db := fault.NewDB(g, fault.WithSkipThreshold(1))
	s.Require().NoError(db.Enumerate())
	s.Require().NotEmpty(db.Remaining())

	f := db.Remaining()[0]
	db.SetStatus(f, fault.Detected)
	db.Update()
	s.Require().Contains(db.Detected(), f)
	s.Require().NotContains(db.Remaining(), f)
}

func (s *DBSuite) TestAbortedDemotesThenSkips() {
	g, _, _, _, _ := buildAND(s.T())
	db := fault.NewDB(g, fault.WithSkipThreshold(1))
	s.Require().NoError(db.Enumerate())
	f := db.Remaining()[0]

	db.SetStatus(f, fault.Aborted)
	db.Update()
	s.Require().Contains(db.Remaining(), f)
	s.Require().Equal(fault.Undetected, f.Status())

	db.SetStatus(f, fault.Aborted)
	db.Update()
	s.Require().NotContains(db.Remaining(), f)
	s.Require().Equal(fault.Skipped, f.Status())
}

func (s *DBSuite) TestMarkDetectedRetiresDominated() {
	g, _, _, _, _ := buildAND(s.T())
	db := fault.NewDB(g)
	s.Require().NoError(db.Enumerate())
	var rep *fault.Fault
	for _, f := range db.Representatives() {
		if len(f.Dominated()) > 0 {
			rep = f
			break
		}
	}
	s.Require().NotNil(rep, "AND netlist must produce at least one merged class")
	dominated := rep.Dominated()[0]
	db.MarkDetected(rep)
	s.Require().Equal(fault.Detected, dominated.Status())
}

// allFaultsOf re-enumerates reps plus their dominated sets to recover
// every fault object the DB constructed.
func allFaultsOf(db *fault.DB) []*fault.Fault {
	var out []*fault.Fault
	for _, r := range db.Representatives() {
		out = append(out, r)
		out = append(out, r.Dominated()...)
	}
	return out
}

func rawFaultCount(g *gate.Graph) int {
	n := 0
	for _, id := range g.Topological() {
		node := g.Node(id)
		n += 2 + 2*len(node.Fanin)
	}
	return n
}
