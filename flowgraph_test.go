package irp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlowGraphDeduplicatesNodes(t *testing.T) {
	g := NewFlowGraph()
	a := g.NodeID(FlowNode{Role: RoleMorning, Site: 3, Day: 2})
	b := g.NodeID(FlowNode{Role: RoleMorning, Site: 3, Day: 2})
	c := g.NodeID(FlowNode{Role: RoleEvening, Site: 3, Day: 2})
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, g.Nodes, 2)
}

func TestDirectArrival(t *testing.T) {
	inst := testInstance(3, 1, 1, 1)
	require.Equal(t, 0, directArrival(inst, 0, 1, 0))

	inst.Duration[0][1] = 9 // one transport day underway
	require.Equal(t, 1, directArrival(inst, 0, 1, 0))
	require.Equal(t, -1, directArrival(inst, 0, 1, 2))
}

// Every chain a builder emits must keep conservation satisfiable: the total
// pinned inflow of a site equals its pinned outflow plus what the closing
// sink->source arc can return.
func TestConstructionModelBalances(t *testing.T) {
	inst := testInstance(3, 1, 2, 1)
	inst.Customers[0].Demand[0][1] = 5
	inst.InitDerived()
	inst.RecomputeState()

	fm, refs := buildConstructionModel(inst, 0, false)
	require.Len(t, fm.Graphs, 1)
	require.False(t, fm.Integer[0])
	require.NotEmpty(t, refs)

	g := fm.Graphs[0]
	pinnedIn := 0.0  // source -> somewhere with min == max
	pinnedOut := 0.0 // somewhere -> sink with min == max
	src := g.NodeID(FlowNode{Role: RoleSource, Site: -1, Day: -1})
	snk := g.NodeID(FlowNode{Role: RoleSink, Site: -1, Day: -1})
	for _, a := range g.Arcs {
		if a.MinCap != a.MaxCap {
			continue
		}
		if a.From == src {
			pinnedIn += a.MinCap
		}
		if a.To == snk {
			pinnedOut += a.MinCap
		}
	}
	// production plus initial stock flows in, only demand is forced out
	require.Greater(t, pinnedIn, pinnedOut)

	for _, ref := range refs {
		require.Equal(t, ArcDirect, ref.Kind)
		require.Equal(t, 0, ref.Comm)
	}
}

func TestHeuristicUnitCostPositive(t *testing.T) {
	inst := testInstance(3, 1, 1, 1)
	cost := heuristicUnitCost(inst, 0, 0, 1)
	require.Greater(t, cost, 0.0)

	// a bulky commodity fits fewer units per trip, so each unit costs more
	inst.Commodities[0].Length = 10
	require.Greater(t, heuristicUnitCost(inst, 0, 0, 1), cost)
}
