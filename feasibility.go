package irp

import "fmt"

// invEps absorbs float noise in inventory comparisons.
const invEps = 1e-6

// RouteFeasible checks the structural route invariants: stop count within
// [1, MaxStops], content within the vehicle capacity, every arrival day
// exactly as simulated from the stop order, and the final arrival within the
// horizon. A stale stop day (e.g. after a reorder that was not re-simulated)
// is a violation.
func (inst *IRPInstance) RouteFeasible(r *Route) bool {
	if len(r.Stops) < 1 || len(r.Stops) > inst.MaxStops {
		return false
	}
	if r.ContentSize(inst) > inst.VehicleCapacity+invEps {
		return false
	}
	if r.Day < 0 || r.Day >= inst.T {
		return false
	}
	hours := 0.0
	prev := r.Depot
	for _, s := range r.Stops {
		hours += inst.Duration[prev][s.Customer]
		if s.Day != r.Day+int(hours/inst.HoursPerDay) {
			return false
		}
		prev = s.Customer
	}
	return r.lastDay() < inst.T
}

// DepotFeasible requires non-negative cached inventory on the scoped days.
func (inst *IRPInstance) DepotFeasible(d *Depot, sc Scope) bool {
	for _, m := range sc.Commodities {
		for t := sc.DayFrom; t < sc.DayTo; t++ {
			if d.Inventory[m][t] < -invEps {
				return false
			}
		}
	}
	return true
}

// CustomerFeasible requires non-negative cached inventory, and rejects
// customers holding a commodity they never ordered: strictly positive
// inventory on every day with zero demand and zero initial inventory means
// the optimizer parked goods at a site with no incentive to refuse them.
func (inst *IRPInstance) CustomerFeasible(c *Customer, sc Scope) bool {
	for _, m := range sc.Commodities {
		for t := sc.DayFrom; t < sc.DayTo; t++ {
			if c.Inventory[m][t] < -invEps {
				return false
			}
		}
	}
	for m := 0; m < inst.M; m++ {
		if !c.UsesCommodity(m) && c.PositiveInventory(m) {
			return false
		}
	}
	return true
}

// Feasible is the conjunction of route and site feasibility over the scope.
// Callers must have updated the caches first.
func (inst *IRPInstance) Feasible(sc Scope) bool {
	sol := sc.solution(inst)
	for _, d := range sc.Depots {
		for t := sc.DayFrom; t < sc.DayTo; t++ {
			for _, r := range sol.At(t, d) {
				if !inst.RouteFeasible(r) {
					return false
				}
			}
		}
		if !inst.DepotFeasible(inst.Depots[d], sc) {
			return false
		}
	}
	for _, v := range sc.Customers {
		if !inst.CustomerFeasible(inst.CustomerAt(v), sc) {
			return false
		}
	}
	return true
}

// CheckSolution audits the full instance and reports the first violation.
// Used by the solver driver and the analyzer.
func (inst *IRPInstance) CheckSolution() (bool, string) {
	for _, r := range inst.Solution.Routes() {
		if !inst.RouteFeasible(r) {
			return false, fmt.Sprintf("route %d (day %d, depot %d) violates the structural invariants", r.Handle, r.Day, r.Depot)
		}
		for _, s := range r.Stops {
			for m, q := range s.Quantities {
				if q < 0 {
					return false, fmt.Sprintf("route %d delivers a negative quantity of commodity %d", r.Handle, m)
				}
				if q > 0 && !inst.CustomerAt(s.Customer).UsesCommodity(m) {
					return false, fmt.Sprintf("route %d delivers commodity %d to customer %d which does not use it", r.Handle, m, s.Customer)
				}
			}
		}
	}
	sc := inst.FullScope()
	for _, d := range inst.Depots {
		if !inst.DepotFeasible(d, sc) {
			return false, fmt.Sprintf("depot %d runs a negative inventory", d.Index)
		}
	}
	for _, c := range inst.Customers {
		if !inst.CustomerFeasible(c, sc) {
			return false, fmt.Sprintf("customer %d fails the inventory checks", c.Index)
		}
	}
	return true, ""
}
