package imply_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/go-satpg/satpg/gate"
	"github.com/go-satpg/satpg/imply"
)

type EngineSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func buildAND(t *testing.T) (*gate.Graph, gate.NodeID, gate.NodeID, gate.NodeID) {
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
	return g, in0, in1, and
}

func (s *EngineSuite) TestForwardPropagatesControllingZero() {
	g, in0, in1, and := buildAND(s.T())
	e := imply.New(g)
	e.Set(in0, imply.Zero)
	s.Require().NoError(e.Imply())
	s.Require().Equal(imply.Zero, e.Value(and))
	s.Require().Equal(imply.X, e.Value(in1))
}

func (s *EngineSuite) TestBackwardJustifiesControllingOutput() {
	g, in0, in1, and := buildAND(s.T())
	e := imply.New(g)
	e.Set(and, imply.One)
	s.Require().NoError(e.Imply())
	s.Require().Equal(imply.One, e.Value(in0))
	s.Require().Equal(imply.One, e.Value(in1))
}

func (s *EngineSuite) TestConflictDetected() {
	g, in0, in1, and := buildAND(s.T())
	e := imply.New(g)
	e.Set(in0, imply.Zero)
	e.Set(in1, imply.One)
	e.Set(and, imply.One)
	s.Require().ErrorIs(e.Imply(), imply.ErrConflict)
}

// A conflict must surface even while some fanins are still X: a
// controlling 0 decides the AND regardless of the unassigned input.
func (s *EngineSuite) TestPartialConflictDetected() {
	g, in0, _, and := buildAND(s.T())
	e := imply.New(g)
	e.Set(in0, imply.Zero)
	e.Set(and, imply.One)
	s.Require().ErrorIs(e.Imply(), imply.ErrConflict)
}

func (s *EngineSuite) TestNandBackwardNonControlling() {
	b := gate.NewBuilder()
	in0 := b.AddInput("in0")
	in1 := b.AddInput("in1")
	y, err := b.AddGate("y", gate.Nand, in0, in1)
	s.Require().NoError(err)
	_, err = b.AddOutput("out", y)
	s.Require().NoError(err)
	g, err := b.Build()
	s.Require().NoError(err)

	e := imply.New(g)
	e.Set(y, imply.Zero) // non-controlling NAND output forces both inputs to 1
	s.Require().NoError(e.Imply())
	s.Require().Equal(imply.One, e.Value(in0))
	s.Require().Equal(imply.One, e.Value(in1))
}
