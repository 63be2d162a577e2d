package irp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryReplaceCommitsImprovement(t *testing.T) {
	inst := testInstance(3, 1, 2, 1)
	// detour over customer 2 back to customer 1
	old := addTestRoute(inst, testRoute(inst, 0, 0,
		testStop(inst, 2, 0), testStop(inst, 1, 8)))
	direct := testRoute(inst, 0, 0, testStop(inst, 1, 8))

	costBefore := inst.Cost()
	gain, applied := inst.tryReplace([]*Route{old}, []*Route{direct}, 0)
	require.True(t, applied)
	require.Greater(t, gain, 0.0)
	require.InDelta(t, costBefore-gain, inst.Cost(), 1e-9)
	require.Equal(t, 1, inst.Solution.Len())
}

func TestTryReplaceRevertsWithoutResidue(t *testing.T) {
	inst := testInstance(3, 1, 2, 1)
	old := addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 8)))
	handle := old.Handle
	costBefore := inst.Cost()
	sentBefore := inst.Depots[0].QuantitySent[0][0]

	// the detour is strictly worse
	detour := testRoute(inst, 0, 0, testStop(inst, 2, 0), testStop(inst, 1, 8))
	gain, applied := inst.tryReplace([]*Route{old}, []*Route{detour}, 0)
	require.False(t, applied)
	require.Less(t, gain, 0.0)

	require.Equal(t, 1, inst.Solution.Len())
	require.Same(t, old, inst.Solution.Get(handle))
	require.Equal(t, handle, old.Handle)
	require.InDelta(t, costBefore, inst.Cost(), 1e-9)
	require.Equal(t, sentBefore, inst.Depots[0].QuantitySent[0][0])
}

func TestTryReplaceRejectsInfeasibleCandidate(t *testing.T) {
	inst := testInstance(3, 1, 1, 1)
	old := addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 8)))
	over := testRoute(inst, 0, 0, testStop(inst, 1, 200))
	_, applied := inst.tryReplace([]*Route{old}, []*Route{over}, 0)
	require.False(t, applied)
	require.Same(t, old, inst.Solution.Get(old.Handle))
}

func TestTryReplaceDropsEmptyCandidates(t *testing.T) {
	inst := testInstance(3, 1, 1, 1)
	old := addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 5)))

	// replacing with nothing deletes a pointless route
	gain, applied := inst.tryReplace([]*Route{old}, nil, 0)
	require.True(t, applied)
	require.Greater(t, gain, 0.0)
	require.Equal(t, 0, inst.Solution.Len())
}
