package irp

// Shared fixtures: a small line-shaped instance (sites at x = 0, 10,
// 20, ...) with fast travel, so every route arrives on its departure day
// unless a test slows the durations down on purpose.

func testInstance(tc, d, c, m int) *IRPInstance {
	inst := &IRPInstance{
		Name: "test", T: tc, D: d, C: c, M: m,
		VehicleCapacity: 100, KmCost: 1, VehicleCost: 10, StopCost: 5,
		HoursPerDay: 8, MaxStops: 5,
	}
	for i := 0; i < m; i++ {
		inst.Commodities = append(inst.Commodities, Commodity{Index: i, Length: 1})
	}
	n := d + c
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i * 10)
	}
	inst.Dist = CalcSiteDistances(x, y)
	inst.Duration = make([][]float64, n)
	for i := range inst.Duration {
		inst.Duration[i] = make([]float64, n)
		for j := range inst.Duration[i] {
			inst.Duration[i][j] = inst.Dist[i][j] / 100
		}
	}
	for i := 0; i < d; i++ {
		dp := &Depot{Production: makeMatrix(m, tc)}
		dp.Index = i
		dp.X = x[i]
		dp.MaximumInventory = filledMatrix(m, tc, 100000)
		dp.ExcessCost = filled(m, 1)
		dp.InitialInventory = filled(m, 10000)
		inst.Depots = append(inst.Depots, dp)
	}
	for i := 0; i < c; i++ {
		cu := &Customer{Demand: makeMatrix(m, tc), ShortageCost: 10}
		cu.Index = d + i
		cu.X = x[d+i]
		cu.MaximumInventory = filledMatrix(m, tc, 1000)
		cu.ExcessCost = filled(m, 1)
		cu.InitialInventory = filled(m, 1)
		inst.Customers = append(inst.Customers, cu)
	}
	inst.InitDerived()
	inst.RecomputeState()
	return inst
}

func filled(n int, v float64) []float64 {
	a := make([]float64, n)
	for i := range a {
		a[i] = v
	}
	return a
}

func filledMatrix(m, t int, v float64) [][]float64 {
	a := makeMatrix(m, t)
	for i := range a {
		for j := range a[i] {
			a[i][j] = v
		}
	}
	return a
}

func testStop(inst *IRPInstance, v int, qty ...float64) *RouteStop {
	q := make([]float64, inst.M)
	copy(q, qty)
	return &RouteStop{Customer: v, Quantities: q}
}

func testRoute(inst *IRPInstance, depot, day int, stops ...*RouteStop) *Route {
	r := &Route{Day: day, Depot: depot, Stops: stops}
	r.SimulateDays(inst)
	return r
}

func addTestRoute(inst *IRPInstance, r *Route) *Route {
	inst.ApplyRoutes([]*Route{r}, ActionAdd, true)
	return r
}

// stubSolver replays the pinned flows of the warm-start phase: the pinned
// solve records them, the free solve returns them unchanged. That makes a
// ruin-and-recreate step reproduce the status quo exactly.
type stubSolver struct {
	lastPin [][]float64
	fail    bool
}

func (s *stubSolver) Solve(fm *FlowModel, p SolveParams) (*FlowResult, error) {
	if s.fail {
		return &FlowResult{Status: StatusNoSolution}, nil
	}
	if p.Pin != nil {
		s.lastPin = p.Pin
	}
	if s.lastPin == nil {
		return &FlowResult{Status: StatusNoSolution}, nil
	}
	flows := make([][]float64, len(fm.Graphs))
	for gi, g := range fm.Graphs {
		flows[gi] = make([]float64, len(g.Arcs))
		for ai := range flows[gi] {
			if gi < len(s.lastPin) && ai < len(s.lastPin[gi]) && s.lastPin[gi][ai] > 0 {
				flows[gi][ai] = s.lastPin[gi][ai]
			}
		}
	}
	return &FlowResult{Status: StatusFeasible, Flows: flows}, nil
}
