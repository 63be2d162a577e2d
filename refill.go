package irp

import "fmt"

// buildRefillModel assembles one commodity graph per commodity the depot
// handles, with a leg arc per kept stop, plus an integer indicator graph
// holding one 0/1 keep arc per route skeleton, costed at the route's full
// routing cost. A coupling row per route ties the loaded space to the
// vehicle capacity of its keep arc.
func buildRefillModel(inst *IRPInstance, d *Depot, routes []*Route) (*FlowModel, []ArcRef) {
	fm := &FlowModel{}
	var refs []ArcRef
	keep := NewFlowGraph()

	served := map[int]bool{}
	for _, r := range routes {
		for _, s := range r.Stops {
			served[s.Customer] = true
		}
	}
	couplings := make([][]Term, len(routes))
	for m := range inst.Commodities {
		if !d.UsesCommodity(m) {
			continue
		}
		b := newGraphBuilder(inst, m)
		b.depotChain(d, nil)
		for _, c := range inst.Customers {
			if served[c.Index] && c.UsesCommodity(m) {
				b.customerChain(c, c.QuantityReceived[m])
			}
		}
		length := inst.Commodities[m].Length
		for i, r := range routes {
			for pos, s := range r.Stops {
				if !inst.CustomerAt(s.Customer).UsesCommodity(m) {
					continue
				}
				arc := b.deliveryArc(ArcLeg, r.Depot, s.Customer, r.Day, s.Day,
					inst.VehicleCapacity/length, 0, i, pos)
				couplings[i] = append(couplings[i], Term{Graph: len(fm.Graphs), Arc: arc, Coef: length})
			}
		}
		b.close()
		for j := range b.refs {
			b.refs[j].Graph = len(fm.Graphs)
		}
		refs = append(refs, b.refs...)
		fm.AddGraph(b.g, false)
	}
	keepGraph := len(fm.Graphs)
	for i, r := range routes {
		arc := keep.AddArc(source(), sink(), 0, 1, inst.RouteCost(r))
		refs = append(refs, ArcRef{Graph: keepGraph, Arc: arc, Kind: ArcVehicle, Route: i})
		fm.Coupling = append(fm.Coupling, LinearConstraint{
			Name:  fmt.Sprintf("load_%d", i),
			Terms: append(couplings[i], Term{Graph: keepGraph, Arc: arc, Coef: -inst.VehicleCapacity}),
			Sense: lessEqual,
			RHS:   0,
		})
	}
	keep.AddArc(sink(), source(), 0, FlowInf, 0)
	fm.AddGraph(keep, true)
	return fm, refs
}

// pinnedRefillFlows reproduces the status quo: every leg carries its former
// quantity and every route is kept.
func pinnedRefillFlows(fm *FlowModel, refs []ArcRef, routes []*Route) [][]float64 {
	pin := make([][]float64, len(fm.Graphs))
	for gi, g := range fm.Graphs {
		pin[gi] = make([]float64, len(g.Arcs))
		for ai := range pin[gi] {
			pin[gi][ai] = -1
		}
	}
	for _, ref := range refs {
		switch ref.Kind {
		case ArcLeg:
			pin[ref.Graph][ref.Arc] = routes[ref.Route].Stops[ref.Pos].Quantities[ref.Comm]
		case ArcVehicle:
			pin[ref.Graph][ref.Arc] = 1
		}
	}
	return pin
}

// decodeRefillFlows rebuilds the kept routes with their new loads. Routes
// whose keep arc is off, and stops left without any delivery, are dropped.
func decodeRefillFlows(inst *IRPInstance, routes []*Route, refs []ArcRef, flows [][]float64) []*Route {
	kept := make([]bool, len(routes))
	loads := make([]map[int][]float64, len(routes)) // route -> pos -> [M]
	for _, ref := range refs {
		switch ref.Kind {
		case ArcVehicle:
			kept[ref.Route] = flows[ref.Graph][ref.Arc] > 0.5
		case ArcLeg:
			if loads[ref.Route] == nil {
				loads[ref.Route] = map[int][]float64{}
			}
			if loads[ref.Route][ref.Pos] == nil {
				loads[ref.Route][ref.Pos] = make([]float64, inst.M)
			}
			loads[ref.Route][ref.Pos][ref.Comm] = flows[ref.Graph][ref.Arc]
		}
	}
	var result []*Route
	for i, r := range routes {
		if !kept[i] {
			continue
		}
		cand := &Route{Day: r.Day, Depot: r.Depot}
		for pos, s := range r.Stops {
			ns := &RouteStop{Customer: s.Customer, Day: s.Day, Quantities: make([]float64, inst.M)}
			for m, q := range loads[i][pos] {
				if q > flowEps {
					ns.Quantities[m] = q
				}
			}
			total := 0.0
			for _, q := range ns.Quantities {
				total += q
			}
			if total > flowEps {
				cand.Stops = append(cand.Stops, ns)
			}
		}
		if len(cand.Stops) > 0 {
			cand.Compress(inst)
			result = append(result, cand)
		}
	}
	return result
}

// RefillDepot re-optimizes the loads of one depot's routes exactly, keeping
// the route skeletons but allowing individual routes to be dropped entirely.
// The result is only committed when it does not regress the true cost.
func RefillDepot(inst *IRPInstance, d int, opts *Options, stats *Stats) bool {
	depot := inst.Depots[d]
	var routes []*Route
	for _, r := range inst.Solution.Routes() {
		if r.Depot == d {
			routes = append(routes, r)
		}
	}
	if opts.Solver == nil || len(routes) == 0 {
		return false
	}
	guard := takeSnapshot(inst)
	costBefore := inst.Cost()

	// detach the skeletons, then clear the depot's deliveries from the state
	copies := make([]*Route, len(routes))
	for i, r := range routes {
		copies[i] = r.Copy()
	}
	inst.ApplyRoutes(routes, ActionDelete, true)

	fm, refs := buildRefillModel(inst, depot, copies)
	var warm [][]float64
	warmRes, err := opts.Solver.Solve(fm, SolveParams{
		TimeLimit: opts.SubTimeLimit, Pin: pinnedRefillFlows(fm, refs, copies),
		LogName: fmt.Sprintf("refill_%d_warm", d),
	})
	if err == nil && warmRes.HasSolution() {
		warm = warmRes.Flows
	}
	res, err := opts.Solver.Solve(fm, SolveParams{
		TimeLimit: opts.SubTimeLimit, MIPGap: opts.MIPGap, WarmStart: warm,
		LogName: fmt.Sprintf("refill_%d", d),
	})
	if err != nil || !res.HasSolution() {
		if err != nil {
			Log(1, "depot %d refill solve failed: %s", d, err.Error())
		}
		guard.restore()
		stats.Refill.record(0, false)
		return false
	}
	inst.ApplyRoutes(decodeRefillFlows(inst, copies, refs, res.Flows), ActionAdd, true)
	inst.RecomputeState()

	costAfter := inst.Cost()
	ok, _ := inst.CheckSolution()
	if !ok || costAfter > costBefore+invEps {
		guard.restore()
		stats.Refill.record(0, false)
		return false
	}
	stats.Refill.record(costBefore-costAfter, true)
	return true
}
