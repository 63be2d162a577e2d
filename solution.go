package irp

// Solution is the route store. Routes are held in an arena keyed by a stable
// integer handle assigned at insertion; the day-by-depot index is the primary
// view because most operators act within one (day, depot) bucket. Both views
// are kept mutually consistent.
type Solution struct {
	T int `json:"horizon"`
	D int `json:"depot_count"`

	nextHandle int
	byHandle   map[int]*Route

	// PerDayDepot[t][d] lists the routes departing depot d on day t.
	PerDayDepot [][][]*Route `json:"routes_per_day_and_depot"`
}

func NewSolution(t, d int) *Solution {
	s := &Solution{T: t, D: d, nextHandle: 1, byHandle: map[int]*Route{}}
	s.PerDayDepot = make([][][]*Route, t)
	for i := range s.PerDayDepot {
		s.PerDayDepot[i] = make([][]*Route, d)
	}
	return s
}

// Add registers a route and assigns it a handle. Panics on routes that are
// already registered or lie outside the horizon; both are orchestration bugs.
func (s *Solution) Add(r *Route) int {
	if r.Handle != 0 {
		panic("irp: route already registered")
	}
	if r.Day < 0 || r.Day >= s.T || r.Depot < 0 || r.Depot >= s.D {
		panic("irp: route outside the day/depot grid")
	}
	r.Handle = s.nextHandle
	s.nextHandle++
	s.byHandle[r.Handle] = r
	s.PerDayDepot[r.Day][r.Depot] = append(s.PerDayDepot[r.Day][r.Depot], r)
	return r.Handle
}

// Delete removes a route by identity. The route becomes detached again
// (handle reset to 0) so it can be re-added on revert. Returns false if the
// route is not in the store.
func (s *Solution) Delete(r *Route) bool {
	if _, ok := s.byHandle[r.Handle]; !ok {
		return false
	}
	delete(s.byHandle, r.Handle)
	bucket := s.PerDayDepot[r.Day][r.Depot]
	for i, o := range bucket {
		if o.Handle == r.Handle {
			s.PerDayDepot[r.Day][r.Depot] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	r.Handle = 0
	return true
}

// addWithHandle re-registers a route under a previously assigned handle.
// Used when reverting a rejected move, so route identity survives the
// delete/re-add round trip.
func (s *Solution) addWithHandle(r *Route, handle int) {
	if r.Handle != 0 || s.byHandle[handle] != nil {
		panic("irp: handle restore collision")
	}
	r.Handle = handle
	s.byHandle[handle] = r
	s.PerDayDepot[r.Day][r.Depot] = append(s.PerDayDepot[r.Day][r.Depot], r)
}

// Get returns the registered route with the given handle, or nil.
func (s *Solution) Get(handle int) *Route { return s.byHandle[handle] }

// Len is the number of registered routes.
func (s *Solution) Len() int { return len(s.byHandle) }

// Routes returns the flat view, ordered by day then depot then bucket order.
func (s *Solution) Routes() []*Route {
	out := make([]*Route, 0, len(s.byHandle))
	for t := 0; t < s.T; t++ {
		for d := 0; d < s.D; d++ {
			out = append(out, s.PerDayDepot[t][d]...)
		}
	}
	return out
}

// At returns the routes departing depot d on day t. The returned slice is
// the live bucket; callers must not mutate it.
func (s *Solution) At(t, d int) []*Route { return s.PerDayDepot[t][d] }

// AtDay returns all routes departing on day t.
func (s *Solution) AtDay(t int) []*Route {
	var out []*Route
	for d := 0; d < s.D; d++ {
		out = append(out, s.PerDayDepot[t][d]...)
	}
	return out
}

// OfDepot returns all routes of one depot across the horizon.
func (s *Solution) OfDepot(d int) []*Route {
	var out []*Route
	for t := 0; t < s.T; t++ {
		out = append(out, s.PerDayDepot[t][d]...)
	}
	return out
}

// Visiting returns all routes with a stop at customer v. Cross-cutting:
// scans every route.
func (s *Solution) Visiting(v int) []*Route {
	var out []*Route
	for _, r := range s.Routes() {
		if r.Visits(v) {
			out = append(out, r)
		}
	}
	return out
}

// Copy is a deep copy preserving handles, used for snapshots and for
// tracking the best-found solution.
func (s *Solution) Copy() *Solution {
	c := NewSolution(s.T, s.D)
	c.nextHandle = s.nextHandle
	for t := 0; t < s.T; t++ {
		for d := 0; d < s.D; d++ {
			for _, r := range s.PerDayDepot[t][d] {
				twin := r.Copy()
				twin.Handle = r.Handle
				c.byHandle[twin.Handle] = twin
				c.PerDayDepot[t][d] = append(c.PerDayDepot[t][d], twin)
			}
		}
	}
	return c
}
