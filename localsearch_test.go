package irp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeRoutesUnderCapacity(t *testing.T) {
	inst := testInstance(3, 1, 2, 1)
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 40)))
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 2, 30)))
	stats := &Stats{}

	require.True(t, mergeRoutes(inst, 0, 0, 0.5, stats))
	require.Equal(t, 1, inst.Solution.Len())
	merged := inst.Solution.Routes()[0]
	require.Equal(t, 70.0, merged.TotalQuantity())
	require.Equal(t, 2, len(merged.Stops))
	require.Equal(t, 1, stats.Merge.Applied)
}

func TestMergeRoutesRespectsCapacity(t *testing.T) {
	inst := testInstance(3, 1, 2, 1)
	inst.VehicleCapacity = 60
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 40)))
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 2, 30)))
	stats := &Stats{}

	require.False(t, mergeRoutes(inst, 0, 0, 0.5, stats))
	require.Equal(t, 2, inst.Solution.Len())
}

func TestDeleteNonProfitableRoutes(t *testing.T) {
	inst := testInstance(3, 1, 2, 1)
	// nobody needs these units, the route cost buys nothing
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 5)))
	stats := &Stats{}

	require.True(t, deleteNonProfitableRoutes(inst, 0, stats))
	require.Equal(t, 0, inst.Solution.Len())
	require.Equal(t, 1, stats.DeleteRoute.Applied)
}

func TestDeleteKeepsRoutesCoveringDemand(t *testing.T) {
	inst := testInstance(3, 1, 1, 1)
	cu := inst.Customers[0]
	cu.InitialInventory[0] = 0
	for day := 0; day < 3; day++ {
		cu.Demand[0][day] = 10
	}
	cu.ShortageCost = 1000
	inst.InitDerived()
	inst.RecomputeState()
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 30)))
	stats := &Stats{}

	deleteNonProfitableRoutes(inst, 0, stats)
	require.Equal(t, 1, inst.Solution.Len())
}

func TestLocalSearchImprovesAndTerminates(t *testing.T) {
	inst := testInstance(4, 1, 3, 1)
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 20)))
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 2, 20)))
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 3, 20)))

	opts := DefaultOptions()
	opts.SampleProb = 0 // visit every pair
	rng := rand.New(rand.NewSource(1))
	stats := &Stats{}
	before := inst.Cost()
	LocalSearch(inst, &opts, rng, stats)
	require.LessOrEqual(t, inst.Cost(), before)

	ok, msg := inst.CheckSolution()
	require.True(t, ok, msg)
}

func TestReorderRoutesFindsShorterSequence(t *testing.T) {
	inst := testInstance(3, 1, 3, 1)
	// visiting 3 -> 1 -> 2 zigzags, 1 -> 2 -> 3 is a straight line
	addTestRoute(inst, testRoute(inst, 0, 0,
		testStop(inst, 3, 5), testStop(inst, 1, 5), testStop(inst, 2, 5)))
	stats := &Stats{}

	require.True(t, reorderRoutes(inst, stats))
	got := inst.Solution.Routes()[0]
	require.Equal(t, 1, got.Stops[0].Customer)
	require.Equal(t, 2, got.Stops[1].Customer)
	require.Equal(t, 3, got.Stops[2].Customer)
}

func TestPermutationsVisitsAll(t *testing.T) {
	seen := map[[3]int]bool{}
	Permutations(3, func(p []int) bool {
		seen[[3]int{p[0], p[1], p[2]}] = true
		return true
	})
	require.Len(t, seen, 6)
}

func TestPermutationsEarlyStop(t *testing.T) {
	count := 0
	Permutations(4, func(p []int) bool {
		count++
		return count < 5
	})
	require.Equal(t, 5, count)
}
