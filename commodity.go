package irp

import (
	"fmt"
	"sort"
)

// removedComm is one removed delivery of the target commodity.
type removedComm struct {
	route    int // trimmed route handle, 0 when the stop or route vanished
	depot    int
	day      int
	pos      int // stop position within the trimmed route
	customer int
	units    float64
}

// removeCommodity strips commodity m from every stop, dropping stops that
// become empty and routes that become empty, and returns the removal
// records for the warm-start pinning.
func removeCommodity(inst *IRPInstance, m int) []removedComm {
	var removed []removedComm
	for _, r := range inst.Solution.Routes() {
		carries := false
		for _, s := range r.Stops {
			if s.Quantities[m] > 0 {
				carries = true
				break
			}
		}
		if !carries {
			continue
		}
		trimmed := &Route{Day: r.Day, Depot: r.Depot}
		type rec struct {
			pos      int
			customer int
			units    float64
			kept     bool
		}
		var recs []rec
		for _, s := range r.Stops {
			units := s.Quantities[m]
			ns := s.Copy()
			ns.Quantities[m] = 0
			total := 0.0
			for _, q := range ns.Quantities {
				total += q
			}
			if total > 0 {
				if units > 0 {
					recs = append(recs, rec{pos: len(trimmed.Stops), customer: s.Customer, units: units, kept: true})
				}
				trimmed.Stops = append(trimmed.Stops, ns)
			} else if units > 0 {
				recs = append(recs, rec{customer: s.Customer, units: units})
			}
		}
		inst.ApplyRoutes([]*Route{r}, ActionDelete, true)
		handle := 0
		if len(trimmed.Stops) > 0 {
			trimmed.Compress(inst)
			inst.ApplyRoutes([]*Route{trimmed}, ActionAdd, true)
			handle = trimmed.Handle
		}
		for _, rc := range recs {
			h := 0
			if rc.kept {
				h = handle
			}
			removed = append(removed, removedComm{
				route: h, depot: r.Depot, day: r.Day, pos: rc.pos,
				customer: rc.customer, units: rc.units,
			})
		}
	}
	return removed
}

// buildCommodityModel assembles the exact single-commodity circulation over
// all sites using m, coupled to an integer vehicle-count graph for the new
// direct legs. Former-route legs cost nothing (those routes are already
// paid) and share the route's residual space through one coupling row per
// route.
func buildCommodityModel(inst *IRPInstance, m int) (*FlowModel, []ArcRef) {
	length := inst.Commodities[m].Length
	fm := &FlowModel{}
	b := newGraphBuilder(inst, m)
	veh := NewFlowGraph()
	var vehRefs []ArcRef

	for _, d := range inst.Depots {
		if !d.UsesCommodity(m) {
			continue
		}
		b.depotChain(d, nil)
		for _, c := range inst.Customers {
			if !c.UsesCommodity(m) {
				continue
			}
			for t := 0; t < inst.T; t++ {
				arrive := directArrival(inst, d.Index, c.Index, t)
				if arrive < 0 {
					continue
				}
				arc := b.deliveryArc(ArcDirect, d.Index, c.Index, t, arrive, FlowInf, 0, 0, -1)
				vehArc := veh.AddArc(source(), sink(), 0, FlowInf,
					inst.VehicleCost+inst.StopCost+inst.KmCost*inst.Dist[d.Index][c.Index])
				vehRefs = append(vehRefs, ArcRef{
					Graph: 1, Arc: vehArc, Kind: ArcVehicle, Comm: m,
					Depot: d.Index, Customer: c.Index, Day: t, Arrival: arrive,
				})
				// the commodity can only travel a new leg inside vehicles
				// assigned to it
				fm.Coupling = append(fm.Coupling, LinearConstraint{
					Name: fmt.Sprintf("veh_%d_%d_%d", d.Index, c.Index, t),
					Terms: []Term{
						{Graph: 0, Arc: arc, Coef: length},
						{Graph: 1, Arc: vehArc, Coef: -inst.VehicleCapacity},
					},
					Sense: lessEqual,
					RHS:   0,
				})
			}
		}
	}
	for _, c := range inst.Customers {
		if c.UsesCommodity(m) {
			b.customerChain(c, nil)
		}
	}
	// refill legs of the surviving routes
	for _, r := range inst.Solution.Routes() {
		if !inst.Depots[r.Depot].UsesCommodity(m) {
			continue
		}
		residual := inst.VehicleCapacity - r.ContentSize(inst)
		if residual <= invEps {
			continue
		}
		var terms []Term
		for pos, s := range r.Stops {
			if !inst.CustomerAt(s.Customer).UsesCommodity(m) {
				continue
			}
			arc := b.deliveryArc(ArcLeg, r.Depot, s.Customer, r.Day, s.Day, residual/length, 0, r.Handle, pos)
			terms = append(terms, Term{Graph: 0, Arc: arc, Coef: length})
		}
		if len(terms) > 0 {
			fm.Coupling = append(fm.Coupling, LinearConstraint{
				Name:  fmt.Sprintf("space_%d", r.Handle),
				Terms: terms,
				Sense: lessEqual,
				RHS:   residual,
			})
		}
	}
	b.close()
	veh.AddArc(sink(), source(), 0, FlowInf, 0)
	fm.AddGraph(b.g, false)
	fm.AddGraph(veh, true)
	refs := append(b.refs, vehRefs...)
	return fm, refs
}

// pinnedCommodityFlows pins the commodity graph's decision arcs to the
// former deliveries; the vehicle graph stays free, the solver re-derives
// the cheapest vehicle counts for the pinned quantities.
func pinnedCommodityFlows(fm *FlowModel, refs []ArcRef, removed []removedComm) [][]float64 {
	pin := make([][]float64, len(fm.Graphs))
	for gi, g := range fm.Graphs {
		pin[gi] = make([]float64, len(g.Arcs))
		for ai := range pin[gi] {
			pin[gi][ai] = -1
		}
	}
	for _, ref := range refs {
		if ref.Kind != ArcVehicle {
			pin[ref.Graph][ref.Arc] = 0
		}
	}
	for _, rm := range removed {
		for _, ref := range refs {
			match := false
			if rm.route != 0 {
				match = ref.Kind == ArcLeg && ref.Route == rm.route && ref.Pos == rm.pos
			} else {
				match = ref.Kind == ArcDirect && ref.Depot == rm.depot && ref.Day == rm.day && ref.Customer == rm.customer
			}
			if match {
				pin[ref.Graph][ref.Arc] += rm.units
				break
			}
		}
	}
	return pin
}

// decodeCommodityFlows loads leg flows back into their routes and bin-packs
// the direct flows into new routes. Vehicle-count flows are implied by the
// packing and not read back.
func decodeCommodityFlows(inst *IRPInstance, m int, refs []ArcRef, flows [][]float64) {
	fills := map[int]map[int]float64{} // route handle -> stop pos -> units
	type group struct{ depot, day int }
	direct := map[group][]PackItem{}
	for _, ref := range refs {
		units := flows[ref.Graph][ref.Arc]
		if units < flowEps {
			continue
		}
		switch ref.Kind {
		case ArcLeg:
			if fills[ref.Route] == nil {
				fills[ref.Route] = map[int]float64{}
			}
			fills[ref.Route][ref.Pos] += units
		case ArcDirect:
			direct[group{ref.Depot, ref.Day}] = append(direct[group{ref.Depot, ref.Day}], PackItem{
				Customer: ref.Customer, Comm: m,
				Units: units, Size: units * inst.Commodities[m].Length,
			})
		}
	}
	handles := make([]int, 0, len(fills))
	for handle := range fills {
		handles = append(handles, handle)
	}
	sort.Ints(handles)
	for _, handle := range handles {
		r := inst.Solution.Get(handle)
		if r == nil {
			panic("irp: leg flow on an unknown route")
		}
		cand := r.Copy()
		for pos, units := range fills[handle] {
			cand.Stops[pos].Quantities[m] += units
		}
		inst.ApplyRoutes([]*Route{r}, ActionDelete, true)
		inst.ApplyRoutes([]*Route{cand}, ActionAdd, true)
	}
	groups := make([]group, 0, len(direct))
	for g := range direct {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].depot != groups[j].depot {
			return groups[i].depot < groups[j].depot
		}
		return groups[i].day < groups[j].day
	})
	for _, g := range groups {
		routes := packIntoRoutes(inst, g.depot, g.day, direct[g])
		inst.ApplyRoutes(routes, ActionAdd, true)
	}
}

// ReinsertCommodity removes one commodity everywhere, re-solves its exact
// placement as a commodity flow coupled to integer vehicle counts, decodes
// the result and rolls back when the true cost regressed beyond the
// tolerance.
func ReinsertCommodity(inst *IRPInstance, m int, opts *Options, stats *Stats) bool {
	if opts.Solver == nil || !commodityUsedAnywhere(inst, m) {
		return false
	}
	guard := takeSnapshot(inst)
	costBefore := inst.Cost()

	removed := removeCommodity(inst, m)
	fm, refs := buildCommodityModel(inst, m)

	var warm [][]float64
	warmRes, err := opts.Solver.Solve(fm, SolveParams{
		TimeLimit: opts.SubTimeLimit, Pin: pinnedCommodityFlows(fm, refs, removed),
		LogName: fmt.Sprintf("comm_%d_warm", m),
	})
	if err == nil && warmRes.HasSolution() {
		warm = warmRes.Flows
	}
	res, err := opts.Solver.Solve(fm, SolveParams{
		TimeLimit: opts.SubTimeLimit, MIPGap: opts.MIPGap, WarmStart: warm,
		LogName: fmt.Sprintf("comm_%d", m),
	})
	if err != nil || !res.HasSolution() {
		if err != nil {
			Log(1, "commodity %d reinsertion solve failed: %s", m, err.Error())
		}
		guard.restore()
		stats.CommodityReinsert.record(0, false)
		return false
	}
	decodeCommodityFlows(inst, m, refs, res.Flows)
	inst.RecomputeState()

	costAfter := inst.Cost()
	ok, _ := inst.CheckSolution()
	if !ok || costAfter > costBefore*(1+opts.CommodityRegressTol) {
		Log(2, "commodity %d reinsertion regressed (%.2f -> %.2f), restoring", m, costBefore, costAfter)
		guard.restore()
		stats.CommodityReinsert.record(0, false)
		return false
	}
	stats.CommodityReinsert.record(costBefore-costAfter, true)
	return true
}
