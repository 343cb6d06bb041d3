package sat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-satpg/satpg/sat"
)

func TestLiteralRoundTrip(t *testing.T) {
	v := sat.VarID(5)
	pos := sat.Lit(v, true)
	neg := sat.Lit(v, false)

	require.Equal(t, v, pos.Var())
	require.Equal(t, v, neg.Var())
	require.True(t, pos.Positive())
	require.False(t, neg.Positive())
	require.Equal(t, neg, pos.Negate())
	require.Equal(t, pos, neg.Negate())
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "SAT", sat.Sat.String())
	require.Equal(t, "UNSAT", sat.Unsat.String())
	require.Equal(t, "ABORTED", sat.Aborted.String())
	require.Equal(t, "UNKNOWN", sat.Unknown.String())
}
