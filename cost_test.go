package irp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExcessInventoryCharged(t *testing.T) {
	inst := testInstance(3, 1, 1, 1)
	cu := inst.Customers[0]
	for day := 0; day < 3; day++ {
		cu.MaximumInventory[0][day] = 5
	}
	cu.ExcessCost[0] = 2
	addTestRoute(inst, testRoute(inst, 0, 1, testStop(inst, 1, 10)))

	// inventory is 11 on days 1 and 2, 6 units over the maximum each day
	require.Equal(t, 24.0, inst.ExcessInventoryCost(cu, inst.FullScope()))
}

func TestTotalCostSumsComponents(t *testing.T) {
	inst := testInstance(3, 1, 2, 1)
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 6)))
	sc := inst.FullScope()
	want := inst.RoutesCost(sc) + inst.InventoryCost(sc)
	require.InDelta(t, want, inst.Cost(), 1e-9)
	require.Greater(t, inst.Cost(), 0.0)
}

func TestCostStableUnderRecompute(t *testing.T) {
	inst := testInstance(4, 2, 3, 2)
	inst.Customers[1].Demand[0][1] = 4
	inst.InitDerived()
	inst.RecomputeState()
	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 2, 3, 2)))
	addTestRoute(inst, testRoute(inst, 1, 1, testStop(inst, 3, 5)))

	before := inst.Cost()
	inst.RecomputeState()
	require.InDelta(t, before, inst.Cost(), 1e-9)
}
