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

type DriverSuite struct {
	suite.Suite
}

func TestDriverSuite(t *testing.T) {
	suite.Run(t, new(DriverSuite))
}

// buildAND builds out = AND(in0, in1).
func buildAND(t *testing.T) (*gate.Graph, *fault.DB) {
	t.Helper()
	b := gate.NewBuilder()
	in0 := b.AddInput("in0")
	in1 := b.AddInput("in1")
	and, err := b.AddGate("g0", gate.And, in0, in1)
	require.NoError(t, err)
	_, err = b.AddOutput("out", and)
	require.NoError(t, err)
	g, err := b.Build()
	require.NoError(t, err)
	g.ActivateAll()

	db := fault.NewDB(g)
	require.NoError(t, db.Enumerate())
	return g, db
}

func (s *DriverSuite) TestNewDriverRequiresSolverFactory() {
	g, db := buildAND(s.T())
	_, err := engine.NewDriver(g, db)
	s.Require().ErrorIs(err, engine.ErrNilSolverFactory)
}

func (s *DriverSuite) TestRunSingleDetectsAllANDFaults() {
	g, db := buildAND(s.T())
	tv := hook.NewTvList()
	d, err := engine.NewDriver(g, db,
		engine.WithSolverFactory(func() sat.Solver { return sat.NewGiniSolver() }),
		engine.WithDetectHook(tv),
	)
	s.Require().NoError(err)

	s.Require().NoError(d.RunSingle(context.Background()))
	s.Require().Empty(db.Remaining())
	s.Require().NotEmpty(tv.Vectors)
	s.Require().Empty(db.UntestableFaults(), "every fault on a plain 2-input AND is testable")

	st := d.Stats()
	ms := st.ByMode[engine.ModeSingle]
	s.Require().NotNil(ms)
	s.Require().Greater(ms.CnfBuilds, int64(0))
	s.Require().Equal(ms.Detected, int64(len(tv.Vectors)))
}

func (s *DriverSuite) TestRunKDetectProducesExtraVectors() {
	g, db := buildAND(s.T())
	tv := hook.NewTvList()
	d, err := engine.NewDriver(g, db,
		engine.WithSolverFactory(func() sat.Solver { return sat.NewGiniSolver() }),
		engine.WithDetectHook(tv),
	)
	s.Require().NoError(err)

	s.Require().NoError(d.RunKDetect(context.Background(), 2))
	s.Require().Empty(db.Remaining())
	// Every representative is detected at least once, and faults with
	// more than one distinct detecting vector contribute extras.
	s.Require().GreaterOrEqual(len(tv.Vectors), len(db.Detected()))
}

func (s *DriverSuite) TestRunKDetectRejectsBadK() {
	g, db := buildAND(s.T())
	d, err := engine.NewDriver(g, db,
		engine.WithSolverFactory(func() sat.Solver { return sat.NewGiniSolver() }),
	)
	s.Require().NoError(err)
	s.Require().ErrorIs(d.RunKDetect(context.Background(), 0), engine.ErrBadKDetectK)
}

func (s *DriverSuite) TestRunPOSplitMatchesSingleOnSinglePO() {
	g, db := buildAND(s.T())
	d, err := engine.NewDriver(g, db,
		engine.WithSolverFactory(func() sat.Solver { return sat.NewGiniSolver() }),
	)
	s.Require().NoError(err)

	s.Require().NoError(d.RunPOSplit(context.Background(), engine.Ascending))
	s.Require().Empty(db.Remaining())
	s.Require().Empty(db.UntestableFaults())
}
