package irp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyRoutesAggregates(t *testing.T) {
	inst := testInstance(5, 1, 2, 1)
	addTestRoute(inst, testRoute(inst, 0, 1, testStop(inst, 1, 6), testStop(inst, 2, 4)))

	d := inst.Depots[0]
	require.Equal(t, 10.0, d.QuantitySent[0][1])
	require.Equal(t, 10000.0-10, d.Inventory[0][1])
	require.Equal(t, 10000.0-10, d.Inventory[0][4])

	cu := inst.Customers[0]
	require.Equal(t, 6.0, cu.QuantityReceived[0][1])
	require.Equal(t, 1.0, cu.Inventory[0][0])
	require.Equal(t, 7.0, cu.Inventory[0][1])
}

func TestDeleteUndoesAggregation(t *testing.T) {
	inst := testInstance(5, 1, 2, 1)
	r := addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 1, 6)))
	inst.ApplyRoutes([]*Route{r}, ActionDelete, true)

	require.Equal(t, 0, inst.Solution.Len())
	require.Equal(t, 0.0, inst.Depots[0].QuantitySent[0][0])
	require.Equal(t, 0.0, inst.Customers[0].QuantityReceived[0][0])
	require.Equal(t, 1.0, inst.Customers[0].Inventory[0][4])
}

func TestScopedUpdateMatchesFullRecompute(t *testing.T) {
	inst := testInstance(6, 2, 3, 2)
	inst.Customers[0].Demand[0][2] = 3
	inst.Customers[1].Demand[1][1] = 2
	inst.InitDerived()
	inst.RecomputeState()

	addTestRoute(inst, testRoute(inst, 0, 0, testStop(inst, 2, 5, 1)))
	addTestRoute(inst, testRoute(inst, 1, 2, testStop(inst, 3, 2, 4), testStop(inst, 4, 1)))
	addTestRoute(inst, testRoute(inst, 0, 4, testStop(inst, 4, 0, 2)))

	scoped := inst.Cost()
	inst.RecomputeState()
	require.InDelta(t, scoped, inst.Cost(), 1e-9)

	for _, c := range inst.Customers {
		for m := 0; m < inst.M; m++ {
			for day := 0; day < inst.T; day++ {
				require.GreaterOrEqual(t, c.Inventory[m][day], 0.0,
					"customer %d commodity %d day %d", c.Index, m, day)
			}
		}
	}
}

func TestShortageAbsorbedNotCarried(t *testing.T) {
	inst := testInstance(3, 1, 1, 1)
	cu := inst.Customers[0]
	cu.InitialInventory[0] = 0
	cu.Demand[0][0] = 10
	inst.InitDerived()
	inst.RecomputeState()

	// inventory is clipped at zero, the uncovered demand is only penalized
	require.Equal(t, 0.0, cu.Inventory[0][0])
	require.Equal(t, 0.0, cu.Inventory[0][2])
	require.Equal(t, 100.0, inst.ShortageCost(cu, inst.FullScope()))
}

func TestShortageUsesPriorEveningInventory(t *testing.T) {
	inst := testInstance(3, 1, 1, 1)
	cu := inst.Customers[0]
	cu.InitialInventory[0] = 4
	cu.Demand[0][1] = 10
	inst.InitDerived()
	inst.RecomputeState()

	// a same-day delivery arrives at noon and cannot serve the morning demand
	addTestRoute(inst, testRoute(inst, 0, 1, testStop(inst, 1, 20)))

	require.Equal(t, 60.0, inst.ShortageCost(cu, inst.FullScope()))
	require.Equal(t, 20.0, cu.Inventory[0][1])
}
