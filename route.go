package irp

// RouteStop is one visit of a route: customer (global site index), arrival
// day and the delivered quantity per commodity. Owned by its route.
type RouteStop struct {
	Customer   int       `json:"customer"`
	Day        int       `json:"day"`
	Quantities []float64 `json:"quantities"` // [M]
}

func (s *RouteStop) Copy() *RouteStop {
	q := make([]float64, len(s.Quantities))
	copy(q, s.Quantities)
	return &RouteStop{Customer: s.Customer, Day: s.Day, Quantities: q}
}

// Route starts at depot Depot on day Day and visits Stops in order. The
// handle is 0 while the route is detached and is assigned by the solution
// store on Add; detached copies are used for what-if evaluation.
type Route struct {
	Handle int          `json:"id"`
	Day    int          `json:"day"`
	Depot  int          `json:"depot"`
	Stops  []*RouteStop `json:"stops"`
}

// Copy returns a detached twin with identical content and no handle.
func (r *Route) Copy() *Route {
	stops := make([]*RouteStop, len(r.Stops))
	for i, s := range r.Stops {
		stops[i] = s.Copy()
	}
	return &Route{Day: r.Day, Depot: r.Depot, Stops: stops}
}

// ContentSize is the vehicle space taken by all deliveries of the route.
func (r *Route) ContentSize(inst *IRPInstance) float64 {
	size := 0.0
	for _, s := range r.Stops {
		for m, q := range s.Quantities {
			size += q * inst.Commodities[m].Length
		}
	}
	return size
}

// TotalQuantity sums all delivered units over stops and commodities.
func (r *Route) TotalQuantity() float64 {
	total := 0.0
	for _, s := range r.Stops {
		for _, q := range s.Quantities {
			total += q
		}
	}
	return total
}

// Distance is the directed travel distance depot -> stop1 -> ... -> stopK.
func (r *Route) Distance(inst *IRPInstance) float64 {
	dist := 0.0
	prev := r.Depot
	for _, s := range r.Stops {
		dist += inst.Dist[prev][s.Customer]
		prev = s.Customer
	}
	return dist
}

// Visits reports whether the route has a stop at customer v.
func (r *Route) Visits(v int) bool {
	for _, s := range r.Stops {
		if s.Customer == v {
			return true
		}
	}
	return false
}

// UniqueStops counts distinct customers on the route.
func (r *Route) UniqueStops() int {
	seen := map[int]bool{}
	for _, s := range r.Stops {
		seen[s.Customer] = true
	}
	return len(seen)
}

// SimulateDays recomputes every stop's arrival day by walking the stop
// sequence from the depot. Stop order is the source of truth for arrival
// days, never the reverse.
func (r *Route) SimulateDays(inst *IRPInstance) {
	hours := 0.0
	prev := r.Depot
	for _, s := range r.Stops {
		hours += inst.Duration[prev][s.Customer]
		s.Day = r.Day + int(hours/inst.HoursPerDay)
		prev = s.Customer
	}
}

// UpdateOrder reorders the stops by the given permutation and re-simulates
// arrival days. It does not check feasibility.
func (r *Route) UpdateOrder(inst *IRPInstance, perm []int) {
	stops := make([]*RouteStop, len(r.Stops))
	for i, p := range perm {
		stops[i] = r.Stops[p]
	}
	r.Stops = stops
	r.SimulateDays(inst)
}

// Compress merges duplicate visits of the same customer into the earliest
// position, summing quantities, then re-simulates arrival days. Required
// after any move that may introduce duplicate stops. Idempotent.
func (r *Route) Compress(inst *IRPInstance) {
	first := map[int]*RouteStop{}
	stops := r.Stops[:0]
	for _, s := range r.Stops {
		if prior, ok := first[s.Customer]; ok {
			for m, q := range s.Quantities {
				prior.Quantities[m] += q
			}
			continue
		}
		first[s.Customer] = s
		stops = append(stops, s)
	}
	r.Stops = stops
	r.SimulateDays(inst)
}

// lastDay is the arrival day of the final stop, or the departure day for an
// empty route.
func (r *Route) lastDay() int {
	if len(r.Stops) == 0 {
		return r.Day
	}
	return r.Stops[len(r.Stops)-1].Day
}
