package hook_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/go-satpg/satpg/fault"
	"github.com/go-satpg/satpg/gate"
	"github.com/go-satpg/satpg/hook"
)

type HookSuite struct {
	suite.Suite
}

func TestHookSuite(t *testing.T) {
	suite.Run(t, new(HookSuite))
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

func (s *HookSuite) TestTvListAccumulates() {
	tv := hook.NewTvList()
	f := &fault.Fault{ID: 1}
	s.Require().NoError(tv.OnDetect(f, hook.TestVector{}))
	s.Require().Len(tv.Vectors, 1)
	s.Require().Equal(f, tv.Faults[0])
}

func (s *HookSuite) TestSkipCounts() {
	sk := hook.NewSkip()
	s.Require().NoError(sk.OnUntest(&fault.Fault{}, fault.Untestable))
	s.Require().NoError(sk.OnUntest(&fault.Fault{}, fault.Untestable))
	s.Require().Equal(2, sk.Count)
}

func (s *HookSuite) TestVerifyCatchesVacuousVector() {
	g, in0, in1, and := buildAND(s.T())
	v := hook.NewVerify(g)
	f := &fault.Fault{Node: and, IsOutput: true, StuckAt: 0}
	// in0=1,in1=1 -> AND good output is 1, which differs from stuck-at-0:
	// a genuine detection.
	err := v.OnDetect(f, hook.TestVector{in0: 1, in1: 1})
	s.Require().NoError(err)

	// in0=0 -> AND good output is 0, identical to stuck-at-0: vacuous.
	err = v.OnDetect(f, hook.TestVector{in0: 0, in1: 1})
	s.Require().ErrorIs(err, hook.ErrHook)
}

func (s *HookSuite) TestByTagFactories() {
	_, err := hook.NewDetectByTag("bogus", nil)
	s.Require().ErrorIs(err, hook.ErrUnknownTag)
	_, err = hook.NewUntestByTag("bogus")
	s.Require().ErrorIs(err, hook.ErrUnknownTag)

	d, err := hook.NewDetectByTag("tvlist", nil)
	s.Require().NoError(err)
	s.Require().NotNil(d)
}
