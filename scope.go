package irp

// Scope restricts evaluation to a subset of depots, customers, commodities
// and days, and optionally to an alternate solution view. Scoped evaluation
// is a performance device: delta costs for a candidate move are computed
// before and after over the exact same scope.
type Scope struct {
	Depots      []int // depot indices
	Customers   []int // global site indices
	Commodities []int
	DayFrom     int // inclusive
	DayTo       int // exclusive
	Solution    *Solution // nil means the instance's live solution
}

// FullScope covers the whole instance.
func (inst *IRPInstance) FullScope() Scope {
	sc := Scope{DayFrom: 0, DayTo: inst.T}
	for d := 0; d < inst.D; d++ {
		sc.Depots = append(sc.Depots, d)
	}
	for c := 0; c < inst.C; c++ {
		sc.Customers = append(sc.Customers, inst.D+c)
	}
	for m := 0; m < inst.M; m++ {
		sc.Commodities = append(sc.Commodities, m)
	}
	return sc
}

// ScopeOfRoutes is the minimal scope touched by the given routes: their
// depots, their stops' customers, the commodities they actually carry, and
// the days from the earliest departure to the end of the horizon (inventory
// changes propagate forward only).
func (inst *IRPInstance) ScopeOfRoutes(routes ...*Route) Scope {
	depots := map[int]bool{}
	customers := map[int]bool{}
	comms := map[int]bool{}
	tFrom := inst.T
	for _, r := range routes {
		if r == nil {
			continue
		}
		depots[r.Depot] = true
		if r.Day < tFrom {
			tFrom = r.Day
		}
		for _, s := range r.Stops {
			customers[s.Customer] = true
			for m, q := range s.Quantities {
				if q != 0 {
					comms[m] = true
				}
			}
		}
	}
	sc := Scope{DayFrom: tFrom, DayTo: inst.T}
	for d := range depots {
		sc.Depots = append(sc.Depots, d)
	}
	for c := range customers {
		sc.Customers = append(sc.Customers, c)
	}
	for m := range comms {
		sc.Commodities = append(sc.Commodities, m)
	}
	return sc
}

func (sc Scope) solution(inst *IRPInstance) *Solution {
	if sc.Solution != nil {
		return sc.Solution
	}
	return inst.Solution
}
