package irp

import "math/rand"

// MultiDepotSearch runs the neighborhoods whose destination depot may differ
// from the source depot, plus the day-change neighborhood. Same sweep
// discipline as LocalSearch.
func MultiDepotSearch(inst *IRPInstance, opts *Options, rng *rand.Rand, stats *Stats) bool {
	improvedAny := false
	for {
		improved := false
		for t := 0; t < inst.T; t++ {
			if insertStopsMultiDepot(inst, t, opts.SampleProb, rng, stats) {
				improved = true
			}
			if swapStopsMultiDepot(inst, t, opts.SampleProb, rng, stats) {
				improved = true
			}
			if twoOptStarMultiDepot(inst, t, stats) {
				improved = true
			}
		}
		if changeRouteDays(inst, rng, stats) {
			improved = true
		}
		if !improved {
			break
		}
		improvedAny = true
	}
	return improvedAny
}

// stopDepotNotCompatible rejects moving a stop under a depot that can never
// supply one of the commodities the stop carries.
func stopDepotNotCompatible(inst *IRPInstance, d int, stop *RouteStop) bool {
	depot := inst.Depots[d]
	for m, q := range stop.Quantities {
		if q > 0 && !depot.UsesCommodity(m) {
			return true
		}
	}
	return false
}

// insertStopsMultiDepot relocates single stops between routes of the same
// day anchored at different depots.
func insertStopsMultiDepot(inst *IRPInstance, t int, prob float64, rng *rand.Rand, stats *Stats) bool {
	improved := false
	routes := append([]*Route{}, inst.Solution.AtDay(t)...)
	for i := 0; i < len(routes); i++ {
		for j := 0; j < len(routes); j++ {
			a, b := routes[i], routes[j]
			if i == j || a.Depot == b.Depot || rng.Float64() > prob {
				continue
			}
			if a.Handle == 0 || b.Handle == 0 {
				continue
			}
			done := false
			for si := 0; si < len(a.Stops) && !done; si++ {
				if stopDepotNotCompatible(inst, b.Depot, a.Stops[si]) {
					continue
				}
				for p := 0; p <= len(b.Stops) && !done; p++ {
					na, nb := relocateCandidate(inst, a, b, si, p)
					if nb == nil {
						continue
					}
					gain, ok := inst.tryReplace([]*Route{a, b}, []*Route{na, nb}, 0)
					stats.InsertMD.record(gain, ok)
					if ok {
						improved = true
						done = true
						routes[i], routes[j] = na, nb
					}
				}
			}
		}
	}
	return improved
}

// swapStopsMultiDepot exchanges one stop between routes of different depots
// on the same day, gated by the compatibility check on both sides.
func swapStopsMultiDepot(inst *IRPInstance, t int, prob float64, rng *rand.Rand, stats *Stats) bool {
	improved := false
	routes := append([]*Route{}, inst.Solution.AtDay(t)...)
	for i := 0; i < len(routes); i++ {
		for j := i + 1; j < len(routes); j++ {
			a, b := routes[i], routes[j]
			if a.Depot == b.Depot || rng.Float64() > prob {
				continue
			}
			if a.Handle == 0 || b.Handle == 0 {
				continue
			}
			done := false
			for si := 0; si < len(a.Stops) && !done; si++ {
				if stopDepotNotCompatible(inst, b.Depot, a.Stops[si]) {
					continue
				}
				for sj := 0; sj < len(b.Stops) && !done; sj++ {
					if stopDepotNotCompatible(inst, a.Depot, b.Stops[sj]) {
						continue
					}
					na := a.Copy()
					nb := b.Copy()
					na.Stops[si], nb.Stops[sj] = nb.Stops[sj], na.Stops[si]
					na.Compress(inst)
					nb.Compress(inst)
					if na.ContentSize(inst) > inst.VehicleCapacity+invEps ||
						nb.ContentSize(inst) > inst.VehicleCapacity+invEps ||
						na.lastDay() >= inst.T || nb.lastDay() >= inst.T {
						continue
					}
					gain, ok := inst.tryReplace([]*Route{a, b}, []*Route{na, nb}, 0)
					stats.SwapMD.record(gain, ok)
					if ok {
						improved = true
						done = true
						routes[i], routes[j] = na, nb
					}
				}
			}
		}
	}
	return improved
}

// twoOptStarMultiDepot exchanges tails between routes of different depots.
func twoOptStarMultiDepot(inst *IRPInstance, t int, stats *Stats) bool {
	improved := false
	routes := append([]*Route{}, inst.Solution.AtDay(t)...)
	for i := 0; i < len(routes); i++ {
		for j := i + 1; j < len(routes); j++ {
			a, b := routes[i], routes[j]
			if a.Depot == b.Depot || a.Handle == 0 || b.Handle == 0 {
				continue
			}
			done := false
			for ci := 1; ci < len(a.Stops) && !done; ci++ {
				for cj := 1; cj < len(b.Stops) && !done; cj++ {
					if tailNotCompatible(inst, b.Depot, a.Stops[ci:]) ||
						tailNotCompatible(inst, a.Depot, b.Stops[cj:]) {
						continue
					}
					na, nb := crossCandidates(inst, a, b, ci, cj, b.Day)
					if na == nil {
						continue
					}
					gain, ok := inst.tryReplace([]*Route{a, b}, []*Route{na, nb}, 0)
					stats.TwoOptMD.record(gain, ok)
					if ok {
						improved = true
						done = true
						routes[i], routes[j] = na, nb
					}
				}
			}
		}
	}
	return improved
}

func tailNotCompatible(inst *IRPInstance, d int, stops []*RouteStop) bool {
	for _, s := range stops {
		if stopDepotNotCompatible(inst, d, s) {
			return true
		}
	}
	return false
}

// changeRouteDays shifts route departure days by one, direction drawn at
// random. A backward shift of a day-0 route is always rejected; forward
// shifts are bounded by the horizon through the structural checks.
func changeRouteDays(inst *IRPInstance, rng *rand.Rand, stats *Stats) bool {
	improved := false
	for _, r := range inst.Solution.Routes() {
		if r.Handle == 0 {
			continue
		}
		delta := 1
		if rng.Float64() < 0.5 {
			delta = -1
		}
		if shiftRouteDay(inst, r, delta, stats) {
			improved = true
		}
	}
	return improved
}

func shiftRouteDay(inst *IRPInstance, r *Route, delta int, stats *Stats) bool {
	day := r.Day + delta
	if day < 0 || day >= inst.T {
		stats.DayChange.record(0, false)
		return false
	}
	cand := r.Copy()
	cand.Day = day
	cand.SimulateDays(inst)
	if cand.lastDay() >= inst.T {
		stats.DayChange.record(0, false)
		return false
	}
	gain, ok := inst.tryReplace([]*Route{r}, []*Route{cand}, 0)
	stats.DayChange.record(gain, ok)
	return ok
}
