package irp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstFitDecreasing(t *testing.T) {
	items := []PackItem{
		{Customer: 1, Units: 30, Size: 30},
		{Customer: 2, Units: 60, Size: 60},
		{Customer: 3, Units: 50, Size: 50},
		{Customer: 4, Units: 40, Size: 40},
	}
	bins := FirstFitDecreasing(items, 100)
	require.Len(t, bins, 2)
	for _, bin := range bins {
		size := 0.0
		for _, it := range bin {
			size += it.Size
		}
		require.LessOrEqual(t, size, 100.0)
	}
}

func TestSplitOversize(t *testing.T) {
	inst := testInstance(3, 1, 1, 1)
	items := []PackItem{{Customer: 1, Comm: 0, Units: 250, Size: 250}}
	split := splitOversize(inst, items)
	require.Greater(t, len(split), 1)
	total := 0.0
	for _, it := range split {
		require.LessOrEqual(t, it.Size, inst.VehicleCapacity)
		total += it.Units
	}
	require.Equal(t, 250.0, total)
}

func TestPackIntoRoutesRespectsLimits(t *testing.T) {
	inst := testInstance(3, 1, 7, 1)
	var items []PackItem
	for i := 0; i < 7; i++ {
		items = append(items, PackItem{Customer: 1 + i, Comm: 0, Units: 30, Size: 30})
	}
	routes := packIntoRoutes(inst, 0, 0, items)
	delivered := 0.0
	for _, r := range routes {
		require.LessOrEqual(t, len(r.Stops), inst.MaxStops)
		require.LessOrEqual(t, r.ContentSize(inst), inst.VehicleCapacity+invEps)
		require.Equal(t, 0, r.Depot)
		require.Equal(t, 0, r.Day)
		delivered += r.TotalQuantity()
	}
	require.Equal(t, 210.0, delivered)
}

func TestPackIntoRoutesSplitsHorizonOverrun(t *testing.T) {
	inst := testInstance(2, 1, 2, 1)
	// 7h legs at 8h/day: each direct trip arrives on the departure day, but
	// chaining two stops pushes the second arrival past the last day
	for i := range inst.Duration {
		for j := range inst.Duration[i] {
			if i != j {
				inst.Duration[i][j] = 7
			}
		}
	}
	items := []PackItem{
		{Customer: 1, Comm: 0, Units: 30, Size: 30},
		{Customer: 2, Comm: 0, Units: 30, Size: 30},
	}
	routes := packIntoRoutes(inst, 0, 1, items)
	require.Len(t, routes, 2)
	for _, r := range routes {
		require.Len(t, r.Stops, 1)
		require.Less(t, r.lastDay(), inst.T)
		require.True(t, inst.RouteFeasible(r))
	}
	require.NotPanics(t, func() { inst.ApplyRoutes(routes, ActionAdd, true) })
	ok, msg := inst.CheckSolution()
	require.True(t, ok, msg)
}
