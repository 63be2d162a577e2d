package irp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRouteFeasibleChecks(t *testing.T) {
	inst := testInstance(3, 1, 6, 1)

	ok := testRoute(inst, 0, 0, testStop(inst, 1, 10))
	require.True(t, inst.RouteFeasible(ok))

	overloaded := testRoute(inst, 0, 0, testStop(inst, 1, 101))
	require.False(t, inst.RouteFeasible(overloaded))

	tooMany := testRoute(inst, 0, 0,
		testStop(inst, 1, 1), testStop(inst, 2, 1), testStop(inst, 3, 1),
		testStop(inst, 4, 1), testStop(inst, 5, 1), testStop(inst, 6, 1))
	require.False(t, inst.RouteFeasible(tooMany))

	empty := &Route{Day: 0, Depot: 0}
	require.False(t, inst.RouteFeasible(empty))

	staleDays := testRoute(inst, 0, 0, testStop(inst, 1, 1))
	staleDays.Stops[0].Day = 2 // contradicts the simulated arrival
	require.False(t, inst.RouteFeasible(staleDays))

	badDay := testRoute(inst, 0, 5, testStop(inst, 1, 1))
	require.False(t, inst.RouteFeasible(badDay))
}

func TestRouteFeasibleHorizonOverrun(t *testing.T) {
	inst := testInstance(2, 1, 1, 1)
	inst.Duration[0][1] = 17 // two full transport days
	r := testRoute(inst, 0, 0, testStop(inst, 1, 1))
	require.Equal(t, 2, r.Stops[0].Day)
	require.False(t, inst.RouteFeasible(r))
}

func TestCheckSolutionFlagsUnusedCommodity(t *testing.T) {
	inst := testInstance(3, 1, 2, 2)
	cu := inst.Customers[1]
	cu.InitialInventory[1] = 0
	inst.InitDerived()
	inst.RecomputeState()
	require.False(t, cu.UsesCommodity(1))

	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 2, 0, 5)))
	ok, msg := inst.CheckSolution()
	require.False(t, ok)
	require.NotEmpty(t, msg)
}

func TestCheckSolutionAcceptsConsistentState(t *testing.T) {
	inst := testInstance(4, 1, 2, 1)
	inst.Customers[0].Demand[0][2] = 2
	inst.InitDerived()
	inst.RecomputeState()
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 4), testStop(inst, 2, 3)))

	ok, msg := inst.CheckSolution()
	require.True(t, ok, msg)
}
