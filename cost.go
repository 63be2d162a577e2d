package irp

// RouteCost is the fixed vehicle cost plus per-stop and per-km charges.
func (inst *IRPInstance) RouteCost(r *Route) float64 {
	return inst.VehicleCost + inst.StopCost*float64(len(r.Stops)) + inst.KmCost*r.Distance(inst)
}

// RoutesCost sums the route costs over the scope's depots and days.
func (inst *IRPInstance) RoutesCost(sc Scope) float64 {
	sol := sc.solution(inst)
	cost := 0.0
	for _, d := range sc.Depots {
		for t := sc.DayFrom; t < sc.DayTo; t++ {
			for _, r := range sol.At(t, d) {
				cost += inst.RouteCost(r)
			}
		}
	}
	return cost
}

// ExcessInventoryCost charges each unit of cached inventory above the
// site's day-specific maximum.
func (inst *IRPInstance) ExcessInventoryCost(s Site, sc Scope) float64 {
	cost := 0.0
	for _, m := range sc.Commodities {
		rate := s.ExcessCostRate(m)
		for t := sc.DayFrom; t < sc.DayTo; t++ {
			over := s.InventoryAt(m, t) - s.MaxInventory(m, t)
			if over > 0 {
				cost += rate * over
			}
		}
	}
	return cost
}

// ShortageCost charges demand not coverable from the prior evening's
// inventory. The cached (clipped) inventory of day t-1 is exactly that
// prior-evening value.
func (inst *IRPInstance) ShortageCost(c *Customer, sc Scope) float64 {
	cost := 0.0
	for _, m := range sc.Commodities {
		for t := sc.DayFrom; t < sc.DayTo; t++ {
			prior := c.InitialInventory[m]
			if t > 0 {
				prior = c.Inventory[m][t-1]
			}
			short := c.Demand[m][t] - prior
			if short > 0 {
				cost += c.ShortageCost * short
			}
		}
	}
	return cost
}

// InventoryCost is the excess plus shortage cost of the scoped sites.
func (inst *IRPInstance) InventoryCost(sc Scope) float64 {
	cost := 0.0
	for _, d := range sc.Depots {
		cost += inst.ExcessInventoryCost(inst.Depots[d], sc)
	}
	for _, v := range sc.Customers {
		c := inst.CustomerAt(v)
		cost += inst.ExcessInventoryCost(c, sc)
		cost += inst.ShortageCost(c, sc)
	}
	return cost
}

// TotalCost is the scoped objective: routing plus inventory terms.
func (inst *IRPInstance) TotalCost(sc Scope) float64 {
	return inst.RoutesCost(sc) + inst.InventoryCost(sc)
}

// Cost is the full objective of the current solution.
func (inst *IRPInstance) Cost() float64 {
	return inst.TotalCost(inst.FullScope())
}
