package irp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStopDepotCompatibility(t *testing.T) {
	inst := testInstance(3, 2, 1, 2)
	d1 := inst.Depots[1]
	d1.InitialInventory[1] = 0
	inst.InitDerived()
	require.False(t, d1.UsesCommodity(1))

	carries := testStop(inst, 2, 0, 5)
	require.True(t, stopDepotNotCompatible(inst, 1, carries))
	require.False(t, stopDepotNotCompatible(inst, 0, carries))

	onlyFirst := testStop(inst, 2, 5, 0)
	require.False(t, stopDepotNotCompatible(inst, 1, onlyFirst))
}

func TestShiftRouteDayRejectsOutOfHorizon(t *testing.T) {
	inst := testInstance(3, 1, 1, 1)
	r := addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 5)))
	stats := &Stats{}

	require.False(t, shiftRouteDay(inst, r, -1, stats))
	require.Equal(t, 1, stats.DayChange.Aborted)
	require.Equal(t, 0, r.Day)

	last := addTestRoute(inst, testRoute(inst, 0, 2, testStop(inst, 1, 5)))
	require.False(t, shiftRouteDay(inst, last, 1, stats))
	require.Equal(t, 2, last.Day)
}

func TestShiftRouteDayMovesDeliveryEarlier(t *testing.T) {
	inst := testInstance(3, 1, 1, 1)
	cu := inst.Customers[0]
	cu.InitialInventory[0] = 1
	cu.Demand[0][1] = 10
	inst.InitDerived()
	inst.RecomputeState()

	// delivering on day 1 misses the day-1 morning demand; day 0 covers it
	r := addTestRoute(inst, testRoute(inst, 0, 1, testStop(inst, 1, 10)))
	stats := &Stats{}
	require.True(t, shiftRouteDay(inst, r, -1, stats))
	require.Equal(t, 1, inst.Solution.Len())
	require.Equal(t, 0, inst.Solution.Routes()[0].Day)
}

func TestInsertStopsMultiDepotMovesToCloserDepot(t *testing.T) {
	inst := testInstance(3, 2, 2, 1)
	// depot 1 sits right next to customer 3; serving it from depot 0 zigzags
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 3, 5)))
	addTestRoute(inst, testRoute(inst, 1, 0, testStop(inst, 2, 5)))
	stats := &Stats{}
	rng := rand.New(rand.NewSource(1))

	require.True(t, insertStopsMultiDepot(inst, 0, 1.0, rng, stats))
	require.Greater(t, stats.InsertMD.Applied, 0)
	for _, r := range inst.Solution.Routes() {
		require.Equal(t, 1, r.Depot)
	}
}

func TestChangeRouteDaysKeepsValidState(t *testing.T) {
	inst := testInstance(4, 1, 2, 1)
	addTestRoute(inst, testRoute(inst, 0, 1, testStop(inst, 1, 5)))
	addTestRoute(inst, testRoute(inst, 0, 2, testStop(inst, 2, 5)))
	stats := &Stats{}
	rng := rand.New(rand.NewSource(7))

	changeRouteDays(inst, rng, stats)
	ok, msg := inst.CheckSolution()
	require.True(t, ok, msg)
}
