package irp

// The updater keeps the per-site quantity and inventory caches consistent
// with the solution. The solution is the source of truth; the caches must
// never be read while stale.

// RecomputeState recomputes every quantity and inventory cache from scratch
// by re-aggregating over all routes. Used after large structural changes.
func (inst *IRPInstance) RecomputeState() {
	for _, d := range inst.Depots {
		zeroMatrix(d.QuantitySent)
	}
	for _, c := range inst.Customers {
		zeroMatrix(c.QuantityReceived)
	}
	for _, r := range inst.Solution.Routes() {
		inst.aggregateRoute(r, 1)
	}
	for _, d := range inst.Depots {
		for m := 0; m < inst.M; m++ {
			inst.recomputeDepotInventory(d, m, 0)
		}
	}
	for _, c := range inst.Customers {
		for m := 0; m < inst.M; m++ {
			inst.recomputeCustomerInventory(c, m, 0)
		}
	}
}

// ApplyRoutes applies the quantity deltas of the given routes (sign by
// action) and recomputes the inventories of the touched depots, customers
// and commodities from the earliest affected departure day onward. When
// alterSolution is set the routes are also added to or deleted from the
// solution store; otherwise the caller owns that step.
func (inst *IRPInstance) ApplyRoutes(routes []*Route, action string, alterSolution bool) {
	if len(routes) == 0 {
		return
	}
	sign := 1.0
	if action == ActionDelete {
		sign = -1.0
	}
	if alterSolution {
		for _, r := range routes {
			if action == ActionAdd {
				inst.Solution.Add(r)
			} else {
				inst.Solution.Delete(r)
			}
		}
	}
	tFrom := inst.T
	depots := map[int]bool{}
	customers := map[int]bool{}
	comms := map[int]bool{}
	for _, r := range routes {
		if r.Day < tFrom {
			tFrom = r.Day
		}
		depots[r.Depot] = true
		for _, s := range r.Stops {
			customers[s.Customer] = true
			for m, q := range s.Quantities {
				if q != 0 {
					comms[m] = true
				}
			}
		}
		inst.aggregateRoute(r, sign)
	}
	for d := range depots {
		for m := range comms {
			inst.recomputeDepotInventory(inst.Depots[d], m, tFrom)
		}
	}
	for v := range customers {
		for m := range comms {
			inst.recomputeCustomerInventory(inst.CustomerAt(v), m, tFrom)
		}
	}
}

// aggregateRoute adds sign times the route's quantities into the depot's
// sent and the customers' received caches.
func (inst *IRPInstance) aggregateRoute(r *Route, sign float64) {
	depot := inst.Depots[r.Depot]
	for _, s := range r.Stops {
		cust := inst.CustomerAt(s.Customer)
		for m, q := range s.Quantities {
			if q == 0 {
				continue
			}
			depot.QuantitySent[m][r.Day] += sign * q
			cust.QuantityReceived[m][s.Day] += sign * q
		}
	}
}

// Depot dynamics: inventory[t] = inventory[t-1] + production[t] - sent[t].
func (inst *IRPInstance) recomputeDepotInventory(d *Depot, m, tFrom int) {
	prev := d.InitialInventory[m]
	if tFrom > 0 {
		prev = d.Inventory[m][tFrom-1]
	}
	for t := tFrom; t < inst.T; t++ {
		prev += d.Production[m][t] - d.QuantitySent[m][t]
		d.Inventory[m][t] = prev
	}
}

// Customer dynamics: demand is served from the prior evening's inventory;
// any shortfall is absorbed (never carried negative) and penalized via the
// shortage cost, which is computed from demand minus prior inventory, not
// from the clipped value.
func (inst *IRPInstance) recomputeCustomerInventory(c *Customer, m, tFrom int) {
	prev := c.InitialInventory[m]
	if tFrom > 0 {
		prev = c.Inventory[m][tFrom-1]
	}
	for t := tFrom; t < inst.T; t++ {
		left := prev - c.Demand[m][t]
		if left < 0 {
			left = 0
		}
		prev = left + c.QuantityReceived[m][t]
		c.Inventory[m][t] = prev
	}
}

func zeroMatrix(a [][]float64) {
	for i := range a {
		for j := range a[i] {
			a[i][j] = 0
		}
	}
}
