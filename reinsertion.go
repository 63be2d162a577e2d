package irp

import (
	"fmt"
	"sort"
)

// removedDelivery records one former delivery of the target customer so the
// warm-start phase can pin the flow model back to the status quo.
type removedDelivery struct {
	route      int // handle of the trimmed route, 0 if the route vanished
	depot      int
	day        int // departure day
	pos        int // former stop position within the trimmed route
	quantities []float64
}

// insertCand is one precosted insertion position in a surviving route.
type insertCand struct {
	route    int // handle
	depot    int
	day      int // departure day
	pos      int
	arrival  int     // arrival day of the inserted stop
	cost     float64 // stop + km delta + delay-induced inventory cost
	residual float64 // free vehicle space
}

// snapshotGuard implements the snapshot/restore discipline of the
// ruin-and-recreate steps: acquire before the risky mutation, then either
// discard on success or restore on any exit path that failed.
type snapshotGuard struct {
	inst *IRPInstance
	sol  *Solution
}

func takeSnapshot(inst *IRPInstance) *snapshotGuard {
	return &snapshotGuard{inst: inst, sol: inst.Solution.Copy()}
}

func (g *snapshotGuard) restore() {
	g.inst.Solution = g.sol
	g.inst.RecomputeState()
}

// removeCustomer deletes every delivery to customer v, dropping routes that
// become empty and compressing the rest, and returns the removal records.
func removeCustomer(inst *IRPInstance, v int) []removedDelivery {
	var removed []removedDelivery
	for _, r := range inst.Solution.Visiting(v) {
		trimmed := &Route{Day: r.Day, Depot: r.Depot}
		type goneStop struct {
			pos int // position among the surviving stops
			s   *RouteStop
		}
		var gone []goneStop
		for _, s := range r.Stops {
			if s.Customer == v {
				gone = append(gone, goneStop{pos: len(trimmed.Stops), s: s})
				continue
			}
			trimmed.Stops = append(trimmed.Stops, s.Copy())
		}
		inst.ApplyRoutes([]*Route{r}, ActionDelete, true)
		handle := 0
		if len(trimmed.Stops) > 0 {
			trimmed.Compress(inst)
			inst.ApplyRoutes([]*Route{trimmed}, ActionAdd, true)
			handle = trimmed.Handle
		}
		for _, g := range gone {
			removed = append(removed, removedDelivery{
				route: handle, depot: r.Depot, day: r.Day, pos: g.pos,
				quantities: append([]float64{}, g.s.Quantities...),
			})
		}
	}
	return removed
}

// shiftedInventoryCost is the inventory-cost delta at customer cu when a
// delivery of q[.] units moves from arrival day t1 to t2. Computed on a
// scratch simulation; the caches stay untouched.
func shiftedInventoryCost(inst *IRPInstance, cu *Customer, q []float64, t1, t2 int) float64 {
	delta := 0.0
	tFrom := minInt(t1, t2)
	for m, units := range q {
		if units == 0 {
			continue
		}
		delta += cu.inventoryCostFrom(inst, m, tFrom, func(t int) float64 {
			recv := cu.QuantityReceived[m][t]
			if t == t1 {
				recv -= units
			}
			if t == t2 {
				recv += units
			}
			return recv
		})
		delta -= cu.inventoryCostFrom(inst, m, tFrom, func(t int) float64 {
			return cu.QuantityReceived[m][t]
		})
	}
	return delta
}

// inventoryCostFrom simulates the customer dynamics for one commodity from
// day tFrom with an arbitrary received profile and returns the excess plus
// shortage cost over the remaining horizon.
func (cu *Customer) inventoryCostFrom(inst *IRPInstance, m, tFrom int, received func(t int) float64) float64 {
	prev := cu.InitialInventory[m]
	if tFrom > 0 {
		prev = cu.Inventory[m][tFrom-1]
	}
	cost := 0.0
	for t := tFrom; t < inst.T; t++ {
		short := cu.Demand[m][t] - prev
		if short > 0 {
			cost += cu.ShortageCost * short
		}
		left := prev - cu.Demand[m][t]
		if left < 0 {
			left = 0
		}
		prev = left + received(t)
		if over := prev - cu.MaxInventory(m, t); over > 0 {
			cost += cu.ExcessCost[m] * over
		}
	}
	return cost
}

// insertionCandidates precosts, for every surviving route with room for one
// more stop, every insertion position of customer v: the routing delta, the
// resulting arrival day, and the delay-induced inventory cost of the stops
// pushed later.
func insertionCandidates(inst *IRPInstance, v int) []insertCand {
	var cands []insertCand
	for _, r := range inst.Solution.Routes() {
		if len(r.Stops) >= inst.MaxStops || r.Visits(v) {
			continue
		}
		residual := inst.VehicleCapacity - r.ContentSize(inst)
		if residual <= invEps {
			continue
		}
		for p := 0; p <= len(r.Stops); p++ {
			cand := r.Copy()
			stop := &RouteStop{Customer: v, Quantities: make([]float64, inst.M)}
			cand.Stops = append(cand.Stops[:p], append([]*RouteStop{stop}, cand.Stops[p:]...)...)
			cand.SimulateDays(inst)
			if cand.lastDay() >= inst.T {
				continue
			}
			cost := inst.StopCost + inst.KmCost*(cand.Distance(inst)-r.Distance(inst))
			for i := p + 1; i < len(cand.Stops); i++ {
				oldDay := r.Stops[i-1].Day
				newDay := cand.Stops[i].Day
				if oldDay != newDay {
					cu := inst.CustomerAt(cand.Stops[i].Customer)
					cost += shiftedInventoryCost(inst, cu, cand.Stops[i].Quantities, oldDay, newDay)
				}
			}
			cands = append(cands, insertCand{
				route: r.Handle, depot: r.Depot, day: r.Day, pos: p,
				arrival: cand.Stops[p].Day, cost: cost, residual: residual,
			})
		}
	}
	return cands
}

// buildCustomerModel assembles one graph per commodity the customer uses:
// pinned depot context, the customer's own chain, precosted insertion arcs
// and heuristic direct-route arcs, plus one coupling row per route bounding
// the shared residual space.
func buildCustomerModel(inst *IRPInstance, v int, cands []insertCand) (*FlowModel, []ArcRef) {
	cu := inst.CustomerAt(v)
	fm := &FlowModel{}
	var refs []ArcRef
	byRoute := map[int][]Term{}
	for m := 0; m < inst.M; m++ {
		if !cu.UsesCommodity(m) {
			continue
		}
		length := inst.Commodities[m].Length
		b := newGraphBuilder(inst, m)
		for _, d := range inst.Depots {
			if !d.UsesCommodity(m) {
				continue
			}
			b.depotChain(d, d.QuantitySent[m])
			for t := 0; t < inst.T; t++ {
				arrive := directArrival(inst, d.Index, v, t)
				if arrive < 0 {
					continue
				}
				b.deliveryArc(ArcDirect, d.Index, v, t, arrive,
					inst.VehicleCapacity/length, heuristicUnitCost(inst, m, d.Index, v), 0, -1)
			}
		}
		for _, c := range cands {
			if !inst.Depots[c.depot].UsesCommodity(m) {
				continue
			}
			arc := b.deliveryArc(ArcInsert, c.depot, v, c.day, c.arrival,
				c.residual/length, c.cost*length/c.residual, c.route, c.pos)
			byRoute[c.route] = append(byRoute[c.route], Term{Graph: len(fm.Graphs), Arc: arc, Coef: length})
		}
		b.customerChain(cu, nil)
		b.close()
		gi := fm.AddGraph(b.g, false)
		for i := range b.refs {
			b.refs[i].Graph = gi
		}
		refs = append(refs, b.refs...)
	}
	for handle, terms := range byRoute {
		r := inst.Solution.Get(handle)
		if r == nil {
			continue
		}
		fm.Coupling = append(fm.Coupling, LinearConstraint{
			Name:  fmt.Sprintf("space_%d", handle),
			Terms: terms,
			Sense: lessEqual,
			RHS:   inst.VehicleCapacity - r.ContentSize(inst),
		})
	}
	return fm, refs
}

// pinnedFlows maps the removed deliveries back onto the model's decision
// arcs, pinning everything else that is a decision arc to zero. Non-decision
// arcs stay free (negative entry).
func pinnedFlows(fm *FlowModel, refs []ArcRef, removed []removedDelivery) [][]float64 {
	pin := make([][]float64, len(fm.Graphs))
	for gi, g := range fm.Graphs {
		pin[gi] = make([]float64, len(g.Arcs))
		for ai := range pin[gi] {
			pin[gi][ai] = -1
		}
	}
	for _, ref := range refs {
		pin[ref.Graph][ref.Arc] = 0
	}
	for _, rm := range removed {
		for m, q := range rm.quantities {
			if q == 0 {
				continue
			}
			for _, ref := range refs {
				if ref.Comm != m {
					continue
				}
				match := false
				if rm.route != 0 {
					match = ref.Kind == ArcInsert && ref.Route == rm.route && ref.Pos == rm.pos
				} else {
					match = ref.Kind == ArcDirect && ref.Depot == rm.depot && ref.Day == rm.day
				}
				if match {
					pin[ref.Graph][ref.Arc] += q
					break
				}
			}
		}
	}
	return pin
}

// decodeDeliveries applies solved decision-arc flows: insertion flows become
// stops in their routes, direct flows are bin-packed into new routes.
func decodeDeliveries(inst *IRPInstance, v int, fm *FlowModel, refs []ArcRef, flows [][]float64) {
	type ins struct {
		pos int
		q   []float64
	}
	inserts := map[int][]ins{} // by route handle
	type group struct{ depot, day int }
	direct := map[group][]PackItem{}
	for _, ref := range refs {
		units := flows[ref.Graph][ref.Arc]
		if units < flowEps {
			continue
		}
		switch ref.Kind {
		case ArcInsert:
			q := make([]float64, inst.M)
			q[ref.Comm] = units
			inserts[ref.Route] = append(inserts[ref.Route], ins{pos: ref.Pos, q: q})
		case ArcDirect:
			direct[group{ref.Depot, ref.Day}] = append(direct[group{ref.Depot, ref.Day}], PackItem{
				Customer: v, Comm: ref.Comm,
				Units: units, Size: units * inst.Commodities[ref.Comm].Length,
			})
		}
	}
	handles := make([]int, 0, len(inserts))
	for handle := range inserts {
		handles = append(handles, handle)
	}
	sort.Ints(handles)
	for _, handle := range handles {
		list := inserts[handle]
		r := inst.Solution.Get(handle)
		if r == nil {
			panic("irp: insertion flow on an unknown route")
		}
		cand := r.Copy()
		// merge all commodity flows of one position into one stop; compress
		// folds duplicate visits afterwards
		byPos := map[int][]float64{}
		for _, in := range list {
			q, ok := byPos[in.pos]
			if !ok {
				q = make([]float64, inst.M)
				byPos[in.pos] = q
			}
			for m, u := range in.q {
				q[m] += u
			}
		}
		for p := len(cand.Stops); p >= 0; p-- {
			q, ok := byPos[p]
			if !ok {
				continue
			}
			stop := &RouteStop{Customer: v, Quantities: q}
			cand.Stops = append(cand.Stops[:p], append([]*RouteStop{stop}, cand.Stops[p:]...)...)
		}
		cand.Compress(inst)
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

// ReinsertCustomer removes all deliveries of one customer, re-solves their
// placement as a min-cost circulation, decodes the flows back into routes
// and rolls back when the true cost regressed beyond the tolerance.
func ReinsertCustomer(inst *IRPInstance, v int, opts *Options, stats *Stats) bool {
	if opts.Solver == nil {
		return false
	}
	guard := takeSnapshot(inst)
	costBefore := inst.Cost()

	removed := removeCustomer(inst, v)
	cands := insertionCandidates(inst, v)
	fm, refs := buildCustomerModel(inst, v, cands)

	var warm [][]float64
	warmRes, err := opts.Solver.Solve(fm, SolveParams{
		TimeLimit: opts.SubTimeLimit, Pin: pinnedFlows(fm, refs, removed),
		LogName: fmt.Sprintf("cust_%d_warm", v),
	})
	if err == nil && warmRes.HasSolution() {
		warm = warmRes.Flows
	}
	res, err := opts.Solver.Solve(fm, SolveParams{
		TimeLimit: opts.SubTimeLimit, MIPGap: opts.MIPGap, WarmStart: warm,
		LogName: fmt.Sprintf("cust_%d", v),
	})
	if err != nil || !res.HasSolution() {
		if err != nil {
			Log(1, "customer %d reinsertion solve failed: %s", v, err.Error())
		}
		guard.restore()
		stats.CustomerReinsert.record(0, false)
		return false
	}
	decodeDeliveries(inst, v, fm, refs, res.Flows)
	inst.RecomputeState()

	costAfter := inst.Cost()
	ok, _ := inst.CheckSolution()
	if !ok || costAfter > costBefore*(1+opts.CustomerRegressTol) {
		Log(2, "customer %d reinsertion regressed (%.2f -> %.2f), restoring", v, costBefore, costAfter)
		guard.restore()
		stats.CustomerReinsert.record(0, false)
		return false
	}
	stats.CustomerReinsert.record(costBefore-costAfter, true)
	return true
}
