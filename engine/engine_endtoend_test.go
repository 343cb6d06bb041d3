package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/go-satpg/satpg/engine"
	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/gate"
	"github.com/go-satpg/satpg/hook"
	"github.com/go-satpg/satpg/sat"
)

// EndToEndSuite implements spec §8's six golden end-to-end scenarios.
type EndToEndSuite struct {
	suite.Suite
}

func TestEndToEndSuite(t *testing.T) {
	suite.Run(t, new(EndToEndSuite))
}

func newDriver(t *testing.T, g *gate.Graph, db *fault.DB, detect hook.Detect) *engine.Driver {
	t.Helper()
	d, err := engine.NewDriver(g, db,
		engine.WithSolverFactory(func() sat.Solver { return sat.NewGiniSolver() }),
		engine.WithDetectHook(detect),
	)
	require.NoError(t, err)
	return d
}

func findFault(db *fault.DB, node gate.NodeID, isOutput bool, inputIdx, stuckAt int) *fault.Fault {
	for _, r := range db.Representatives() {
		for _, f := range append([]*fault.Fault{r}, r.Dominated()...) {
			if f.Node == node && f.IsOutput == isOutput && f.InputIdx == inputIdx && f.StuckAt == stuckAt {
				return f.Rep()
			}
		}
	}
	return nil
}

// Scenario 1: out = AND(in0, in1); out stuck-at-0 -> vector (1,1).
func (s *EndToEndSuite) TestScenario1_ANDOutputStuckAt0() {
	b := gate.NewBuilder()
	in0 := b.AddInput("in0")
	in1 := b.AddInput("in1")
	and, err := b.AddGate("g0", gate.And, in0, in1)
	s.Require().NoError(err)
	out, err := b.AddOutput("out", and)
	s.Require().NoError(err)
	g, err := b.Build()
	s.Require().NoError(err)
	g.ActivateAll()

	db := fault.NewDB(g)
	s.Require().NoError(db.Enumerate())

	f := findFault(db, out, true, -1, 0)
	s.Require().NotNil(f, "out stuck-at-0 must exist as a representative or merge target")

	tv := hook.NewTvList()
	d := newDriver(s.T(), g, db, tv)
	s.Require().NoError(d.RunSingle(context.Background()))

	s.Require().Equal(fault.Detected, f.Status())
	vec := vectorFor(tv, f)
	s.Require().NotNil(vec)
	s.Require().Equal(1, (*vec)[in0])
	s.Require().Equal(1, (*vec)[in1])
}

// Scenario 2: same netlist, in0 stuck-at-1 -> vector (in0=0, in1=1).
func (s *EndToEndSuite) TestScenario2_ANDInputStuckAt1() {
	b := gate.NewBuilder()
	in0 := b.AddInput("in0")
	in1 := b.AddInput("in1")
	and, err := b.AddGate("g0", gate.And, in0, in1)
	s.Require().NoError(err)
	_, err = b.AddOutput("out", and)
	s.Require().NoError(err)
	g, err := b.Build()
	s.Require().NoError(err)
	g.ActivateAll()

	db := fault.NewDB(g)
	s.Require().NoError(db.Enumerate())

	f := findFault(db, and, false, 0, 1)
	s.Require().NotNil(f, "in0 stuck-at-1 (fanin 0 of g0) must exist")

	tv := hook.NewTvList()
	d := newDriver(s.T(), g, db, tv)
	s.Require().NoError(d.RunSingle(context.Background()))

	s.Require().Equal(fault.Detected, f.Status())
	vec := vectorFor(tv, f)
	s.Require().NotNil(vec)
	s.Require().Equal(0, (*vec)[in0])
	s.Require().Equal(1, (*vec)[in1])
}

// Scenario 3: out = OR(in0, in1); out stuck-at-1 -> vector (0,0).
func (s *EndToEndSuite) TestScenario3_ORStuckAt1() {
	b := gate.NewBuilder()
	in0 := b.AddInput("in0")
	in1 := b.AddInput("in1")
	or, err := b.AddGate("g0", gate.Or, in0, in1)
	s.Require().NoError(err)
	out, err := b.AddOutput("out", or)
	s.Require().NoError(err)
	g, err := b.Build()
	s.Require().NoError(err)
	g.ActivateAll()

	db := fault.NewDB(g)
	s.Require().NoError(db.Enumerate())

	f := findFault(db, out, true, -1, 1)
	s.Require().NotNil(f)

	tv := hook.NewTvList()
	d := newDriver(s.T(), g, db, tv)
	s.Require().NoError(d.RunSingle(context.Background()))

	s.Require().Equal(fault.Detected, f.Status())
	vec := vectorFor(tv, f)
	s.Require().NotNil(vec)
	s.Require().Equal(0, (*vec)[in0])
	s.Require().Equal(0, (*vec)[in1])
}

// Scenario 4: out = XOR(in0, in1); in0 stuck-at-0 -> a vector with in0=1
// (any in1) that differentiates good from faulty.
func (s *EndToEndSuite) TestScenario4_XORInputStuckAt0() {
	b := gate.NewBuilder()
	in0 := b.AddInput("in0")
	in1 := b.AddInput("in1")
	xor, err := b.AddGate("g0", gate.Xor, in0, in1)
	s.Require().NoError(err)
	_, err = b.AddOutput("out", xor)
	s.Require().NoError(err)
	g, err := b.Build()
	s.Require().NoError(err)
	g.ActivateAll()

	db := fault.NewDB(g)
	s.Require().NoError(db.Enumerate())

	f := findFault(db, xor, false, 0, 0)
	s.Require().NotNil(f)

	tv := hook.NewTvList()
	d := newDriver(s.T(), g, db, tv)
	s.Require().NoError(d.RunSingle(context.Background()))

	s.Require().Equal(fault.Detected, f.Status())
	vec := vectorFor(tv, f)
	s.Require().NotNil(vec)
	s.Require().Equal(1, (*vec)[in0], "XOR input stuck-at-0 requires in0=1 to sensitize")
}

// Scenario 5: out = AND(in0, NOT(in0)); out stuck-at-0 is Untestable
// since out is constant 0.
func (s *EndToEndSuite) TestScenario5_RedundantANDIsUntestable() {
	b := gate.NewBuilder()
	in0 := b.AddInput("in0")
	notIn0, err := b.AddGate("g0", gate.Not, in0)
	s.Require().NoError(err)
	and, err := b.AddGate("g1", gate.And, in0, notIn0)
	s.Require().NoError(err)
	out, err := b.AddOutput("out", and)
	s.Require().NoError(err)
	g, err := b.Build()
	s.Require().NoError(err)
	g.ActivateAll()

	db := fault.NewDB(g)
	s.Require().NoError(db.Enumerate())

	f := findFault(db, out, true, -1, 0)
	s.Require().NotNil(f)

	d := newDriver(s.T(), g, db, hook.NewDrop())
	s.Require().NoError(d.RunSingle(context.Background()))

	s.Require().Equal(fault.Untestable, f.Status())
}

// Scenario 6: y = NAND(in0,in1); out0 = BUF(y); out1 = NOT(y). A single
// vector driving y's good value to 1 (any input pair other than (1,1))
// must detect y stuck-at-0, with the discrepancy visible at both
// outputs, and the MFFC engine (whose root is the fanout stem y) must
// find it in one pass.
func (s *EndToEndSuite) TestScenario6_FanoutStemMFFC() {
	b := gate.NewBuilder()
	in0 := b.AddInput("in0")
	in1 := b.AddInput("in1")
	y, err := b.AddGate("y", gate.Nand, in0, in1)
	s.Require().NoError(err)
	buf, err := b.AddGate("g_buf", gate.Buf, y)
	s.Require().NoError(err)
	not, err := b.AddGate("g_not", gate.Not, y)
	s.Require().NoError(err)
	_, err = b.AddOutput("out0", buf)
	s.Require().NoError(err)
	_, err = b.AddOutput("out1", not)
	s.Require().NoError(err)
	g, err := b.Build()
	s.Require().NoError(err)
	g.ActivateAll()

	db := fault.NewDB(g)
	s.Require().NoError(db.Enumerate())

	f := findFault(db, y, true, -1, 0)
	s.Require().NotNil(f, "y stuck-at-0 must exist")

	tv := hook.NewTvList()
	d := newDriver(s.T(), g, db, tv)
	s.Require().NoError(d.RunMFFC(context.Background()))

	s.Require().Equal(fault.Detected, f.Status())
	vec := vectorFor(tv, f)
	s.Require().NotNil(vec)
	// y good must be 1 to differ from the stuck 0: NAND(in0,in1)=1 holds
	// for every input pair except (1,1).
	s.Require().False((*vec)[in0] == 1 && (*vec)[in1] == 1,
		"vector must drive the NAND stem to 1 in the good circuit")
}

func vectorFor(tv *hook.TvList, f *fault.Fault) *hook.TestVector {
	for i, ff := range tv.Faults {
		if ff == f {
			return &tv.Vectors[i]
		}
	}
	return nil
}
