package irp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressMergesDuplicateVisits(t *testing.T) {
	inst := testInstance(5, 1, 3, 1)
	r := testRoute(inst, 0, 0,
		testStop(inst, 1, 3),
		testStop(inst, 2, 2),
		testStop(inst, 1, 4),
	)
	r.Compress(inst)
	require.Len(t, r.Stops, 2)
	require.Equal(t, 1, r.Stops[0].Customer)
	require.Equal(t, 7.0, r.Stops[0].Quantities[0])
	require.Equal(t, 2, r.Stops[1].Customer)

	before := len(r.Stops)
	r.Compress(inst)
	require.Len(t, r.Stops, before)
}

func TestSimulateDaysAcrossDayBoundary(t *testing.T) {
	inst := testInstance(5, 1, 2, 1)
	// 6h to the first stop, 6h onwards: the second stop spills into day 1
	inst.Duration[0][1] = 6
	inst.Duration[1][2] = 6
	r := testRoute(inst, 0, 0, testStop(inst, 1, 1), testStop(inst, 2, 1))
	require.Equal(t, 0, r.Stops[0].Day)
	require.Equal(t, 1, r.Stops[1].Day)
	require.Equal(t, 1, r.lastDay())
}

func TestUpdateOrderResimulates(t *testing.T) {
	inst := testInstance(5, 1, 2, 1)
	inst.Duration[0][2] = 9 // depot -> customer 2 direct takes past one day
	r := testRoute(inst, 0, 0, testStop(inst, 1, 1), testStop(inst, 2, 1))
	require.Equal(t, 0, r.Stops[1].Day)

	r.UpdateOrder(inst, []int{1, 0})
	require.Equal(t, 2, r.Stops[0].Customer)
	require.Equal(t, 1, r.Stops[0].Day)
}

func TestContentSizeUsesCommodityLength(t *testing.T) {
	inst := testInstance(5, 1, 1, 2)
	inst.Commodities[1].Length = 3
	r := testRoute(inst, 0, 0, testStop(inst, 1, 2, 4))
	require.Equal(t, 2.0+3*4.0, r.ContentSize(inst))
	require.Equal(t, 6.0, r.TotalQuantity())
}

func TestRouteCostFormula(t *testing.T) {
	inst := testInstance(5, 1, 2, 1)
	r := testRoute(inst, 0, 0, testStop(inst, 1, 1), testStop(inst, 2, 1))
	// vehicle 10 + 2 stops * 5 + 20 km * 1
	require.Equal(t, 40.0, inst.RouteCost(r))
}
