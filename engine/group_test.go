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

type GroupSuite struct {
	suite.Suite
}

func TestGroupSuite(t *testing.T) {
	suite.Run(t, new(GroupSuite))
}

// buildTwoFFR builds two independent single-output gates (an AND and an
// OR) sharing no nodes, so FFR/MFFC grouping should place each gate's
// faults in its own group.
func buildTwoFFR(t *testing.T) (*gate.Graph, *fault.DB) {
	t.Helper()
	b := gate.NewBuilder()
	a0 := b.AddInput("a0")
	a1 := b.AddInput("a1")
	andA, err := b.AddGate("gA", gate.And, a0, a1)
	require.NoError(t, err)
	_, err = b.AddOutput("outA", andA)
	require.NoError(t, err)

	b0 := b.AddInput("b0")
	b1 := b.AddInput("b1")
	andB, err := b.AddGate("gB", gate.Or, b0, b1)
	require.NoError(t, err)
	_, err = b.AddOutput("outB", andB)
	require.NoError(t, err)

	g, err := b.Build()
	require.NoError(t, err)
	g.ActivateAll()

	db := fault.NewDB(g)
	require.NoError(t, db.Enumerate())
	return g, db
}

func (s *GroupSuite) TestRunMultiFFRDetectsEverything() {
	g, db := buildTwoFFR(s.T())
	tv := hook.NewTvList()
	d, err := engine.NewDriver(g, db,
		engine.WithSolverFactory(func() sat.Solver { return sat.NewGiniSolver() }),
		engine.WithDetectHook(tv),
	)
	s.Require().NoError(err)

	s.Require().NoError(d.RunMultiFFR(context.Background()))
	s.Require().Empty(db.Remaining())
	s.Require().NotEmpty(tv.Vectors)
}

func (s *GroupSuite) TestRunMFFCDetectsEverything() {
	g, db := buildTwoFFR(s.T())
	d, err := engine.NewDriver(g, db,
		engine.WithSolverFactory(func() sat.Solver { return sat.NewGiniSolver() }),
	)
	s.Require().NoError(err)

	s.Require().NoError(d.RunMFFC(context.Background()))
	s.Require().Empty(db.Remaining())
}

// buildRedundantCone builds out = AND(in0, NOT(in0)). The AND/NOT region
// below out is one FFR (the stem in0 forms its own) whose fault list
// mixes untestable faults (anything requiring out=1) with detectable ones
// (out stuck-at-1 differs on every vector), so every fault in that region
// lands on one shared solver in one group.
func buildRedundantCone(t *testing.T) (*gate.Graph, *fault.DB) {
	t.Helper()
	b := gate.NewBuilder()
	in0 := b.AddInput("in0")
	n0, err := b.AddGate("n0", gate.Not, in0)
	require.NoError(t, err)
	g1, err := b.AddGate("g1", gate.And, in0, n0)
	require.NoError(t, err)
	_, err = b.AddOutput("out", g1)
	require.NoError(t, err)
	g, err := b.Build()
	require.NoError(t, err)

	db := fault.NewDB(g)
	require.NoError(t, db.Enumerate())
	return g, db
}

// An UNSAT fault inside a region must not bleed into its region-mates:
// with the implication pre-filter disabled, every fault (testable and
// untestable alike) is decided by the shared solver, and the activation
// gating has to keep a retired instance's clauses from constraining the
// next fault.
func (s *GroupSuite) TestSharedSolverSurvivesUntestableRegionMate() {
	g, db := buildRedundantCone(s.T())
	outID := g.Outputs()[0]
	d, err := engine.NewDriver(g, db,
		engine.WithSolverFactory(func() sat.Solver { return sat.NewGiniSolver() }),
		engine.WithImplicationPrefilter(false),
	)
	s.Require().NoError(err)

	s.Require().NoError(d.RunMultiFFR(context.Background()))
	s.Require().Empty(db.Remaining())

	outSA1 := findFault(db, outID, true, -1, 1)
	s.Require().NotNil(outSA1)
	s.Require().Equal(fault.Detected, outSA1.Status(),
		"a constant-0 cone's stuck-at-1 differs on every vector")
	outSA0 := findFault(db, outID, true, -1, 0)
	s.Require().NotNil(outSA0)
	s.Require().Equal(fault.Untestable, outSA0.Status())
}

func (s *GroupSuite) TestRunConcurrentDetectsEverything() {
	g, db := buildTwoFFR(s.T())
	d, err := engine.NewDriver(g, db,
		engine.WithSolverFactory(func() sat.Solver { return sat.NewGiniSolver() }),
	)
	s.Require().NoError(err)

	s.Require().NoError(d.RunConcurrent(context.Background()))
	s.Require().Empty(db.Remaining())
}
