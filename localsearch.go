package irp

import "math/rand"

// LocalSearch runs the single-depot neighborhoods (merge, multiday merge,
// delete, insert, swap, 2-opt*) in repeated sweeps until a full sweep finds
// no improving move. Returns whether anything improved.
func LocalSearch(inst *IRPInstance, opts *Options, rng *rand.Rand, stats *Stats) bool {
	improvedAny := false
	for {
		improved := false
		for t := 0; t < inst.T; t++ {
			for d := 0; d < inst.D; d++ {
				if mergeRoutes(inst, t, d, opts.MergeTol, stats) {
					improved = true
				}
				if insertStops(inst, t, d, opts.SampleProb, rng, stats) {
					improved = true
				}
				if swapStops(inst, t, d, opts.SampleProb, rng, stats) {
					improved = true
				}
				if twoOptStar(inst, t, d, stats) {
					improved = true
				}
			}
			if deleteNonProfitableRoutes(inst, t, stats) {
				improved = true
			}
		}
		for d := 0; d < inst.D; d++ {
			if mergeRoutesMultiday(inst, d, opts.MergeTol, stats) {
				improved = true
			}
		}
		if opts.Reorder && reorderRoutes(inst, stats) {
			improved = true
		}
		if !improved {
			break
		}
		improvedAny = true
	}
	return improvedAny
}

// mergedCandidate concatenates two routes into a detached candidate anchored
// at (day, depot), or nil if the structural bounds already rule it out.
func mergedCandidate(inst *IRPInstance, a, b *Route, day int) *Route {
	cand := a.Copy()
	cand.Day = day
	for _, s := range b.Stops {
		cand.Stops = append(cand.Stops, s.Copy())
	}
	cand.Compress(inst)
	if len(cand.Stops) > inst.MaxStops ||
		cand.ContentSize(inst) > inst.VehicleCapacity+invEps ||
		cand.lastDay() >= inst.T {
		return nil
	}
	return cand
}

// estimateMergeGain is the routing-cost-only gain of a merge, used to order
// candidates in the pairwise gain matrix before the exact scoped evaluation.
func estimateMergeGain(inst *IRPInstance, a, b, merged *Route) float64 {
	return inst.RouteCost(a) + inst.RouteCost(b) - inst.RouteCost(merged)
}

// mergeRoutes iteratively applies the best pairwise merge within one
// (day, depot) bucket. The pairwise gain matrix is updated incrementally: a
// committed merge only invalidates rows touching the two merged routes.
func mergeRoutes(inst *IRPInstance, t, d int, tol float64, stats *Stats) bool {
	routes := append([]*Route{}, inst.Solution.At(t, d)...)
	if len(routes) < 2 {
		return false
	}
	const dead = -1e18
	gains := make([][]float64, len(routes))
	cands := make([][]*Route, len(routes))
	pairGain := func(i, j int) (float64, *Route) {
		if routes[i] == nil || routes[j] == nil {
			return dead, nil
		}
		cand := mergedCandidate(inst, routes[i], routes[j], t)
		if cand == nil {
			return dead, nil
		}
		return estimateMergeGain(inst, routes[i], routes[j], cand), cand
	}
	for i := range routes {
		gains[i] = make([]float64, len(routes))
		cands[i] = make([]*Route, len(routes))
		for j := range routes {
			if j <= i {
				gains[i][j] = dead
				continue
			}
			gains[i][j], cands[i][j] = pairGain(i, j)
		}
	}
	improved := false
	for {
		bi, bj, best := -1, -1, tol
		for i := range routes {
			for j := range routes {
				if gains[i][j] > best {
					best, bi, bj = gains[i][j], i, j
				}
			}
		}
		if bi < 0 {
			break
		}
		gain, ok := inst.tryReplace([]*Route{routes[bi], routes[bj]}, []*Route{cands[bi][bj]}, tol)
		stats.Merge.record(gain, ok)
		if !ok {
			gains[bi][bj] = dead
			continue
		}
		improved = true
		Log(3, "merged routes at day %d depot %d with gain %.2f", t, d, gain)
		routes[bi] = cands[bi][bj]
		routes[bj] = nil
		for i := range routes {
			for j := range routes {
				if j <= i {
					continue
				}
				if i == bi || j == bi || i == bj || j == bj {
					gains[i][j], cands[i][j] = pairGain(i, j)
				}
			}
		}
	}
	return improved
}

// mergeRoutesMultiday merges route pairs of one depot across departure days,
// shifting the combined route to the earlier day.
func mergeRoutesMultiday(inst *IRPInstance, d int, tol float64, stats *Stats) bool {
	improved := false
	for {
		committed := false
		for t1 := 0; t1 < inst.T && !committed; t1++ {
			for t2 := t1 + 1; t2 < inst.T && !committed; t2++ {
				for _, a := range append([]*Route{}, inst.Solution.At(t1, d)...) {
					for _, b := range append([]*Route{}, inst.Solution.At(t2, d)...) {
						cand := mergedCandidate(inst, a, b, t1)
						if cand == nil {
							continue
						}
						gain, ok := inst.tryReplace([]*Route{a, b}, []*Route{cand}, tol)
						stats.MergeMultiday.record(gain, ok)
						if ok {
							committed = true
							improved = true
							break
						}
					}
					if committed {
						break
					}
				}
			}
		}
		if !committed {
			break
		}
	}
	return improved
}

// deleteNonProfitableRoutes removes, per day, routes whose routing cost
// exceeds what their deliveries save in inventory terms. Greedy single-route
// passes, repeated until none helps.
func deleteNonProfitableRoutes(inst *IRPInstance, t int, stats *Stats) bool {
	improved := false
	for {
		committed := false
		for _, r := range append([]*Route{}, inst.Solution.AtDay(t)...) {
			gain, ok := inst.tryReplace([]*Route{r}, nil, 0)
			stats.DeleteRoute.record(gain, ok)
			if ok {
				Log(3, "deleted non-profitable route at day %d with gain %.2f", t, gain)
				committed = true
				improved = true
			}
		}
		if !committed {
			break
		}
	}
	return improved
}

// relocateCandidate builds the pair of detached routes that results from
// moving stop si of a into position p of b. Returns nils if a loses its
// only stop and b would overflow anyway.
func relocateCandidate(inst *IRPInstance, a, b *Route, si, p int) (*Route, *Route) {
	na := a.Copy()
	nb := b.Copy()
	moved := na.Stops[si]
	na.Stops = append(na.Stops[:si], na.Stops[si+1:]...)
	na.SimulateDays(inst)
	nb.Stops = append(nb.Stops[:p], append([]*RouteStop{moved}, nb.Stops[p:]...)...)
	nb.Compress(inst)
	if len(nb.Stops) > inst.MaxStops || nb.ContentSize(inst) > inst.VehicleCapacity+invEps || nb.lastDay() >= inst.T {
		return nil, nil
	}
	return na, nb
}

// insertStops relocates single stops between sampled route pairs of one
// (day, depot) bucket, first improvement per pair.
func insertStops(inst *IRPInstance, t, d int, prob float64, rng *rand.Rand, stats *Stats) bool {
	improved := false
	routes := append([]*Route{}, inst.Solution.At(t, d)...)
	for i := 0; i < len(routes); i++ {
		for j := 0; j < len(routes); j++ {
			if i == j || rng.Float64() > prob {
				continue
			}
			a, b := routes[i], routes[j]
			if a.Handle == 0 || b.Handle == 0 {
				continue
			}
			done := false
			for si := 0; si < len(a.Stops) && !done; si++ {
				for p := 0; p <= len(b.Stops) && !done; p++ {
					na, nb := relocateCandidate(inst, a, b, si, p)
					if nb == nil {
						continue
					}
					gain, ok := inst.tryReplace([]*Route{a, b}, []*Route{na, nb}, 0)
					stats.Insert.record(gain, ok)
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

// swapStops exchanges one stop between sampled route pairs.
func swapStops(inst *IRPInstance, t, d int, prob float64, rng *rand.Rand, stats *Stats) bool {
	improved := false
	routes := append([]*Route{}, inst.Solution.At(t, d)...)
	for i := 0; i < len(routes); i++ {
		for j := i + 1; j < len(routes); j++ {
			if rng.Float64() > prob {
				continue
			}
			a, b := routes[i], routes[j]
			if a.Handle == 0 || b.Handle == 0 {
				continue
			}
			done := false
			for si := 0; si < len(a.Stops) && !done; si++ {
				for sj := 0; sj < len(b.Stops) && !done; sj++ {
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
					stats.Swap.record(gain, ok)
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

// twoOptStar exchanges route tails between pairs of routes in one bucket:
// A[:i]+B[j:] and B[:j]+A[i:].
func twoOptStar(inst *IRPInstance, t, d int, stats *Stats) bool {
	improved := false
	routes := append([]*Route{}, inst.Solution.At(t, d)...)
	for i := 0; i < len(routes); i++ {
		for j := i + 1; j < len(routes); j++ {
			a, b := routes[i], routes[j]
			if a.Handle == 0 || b.Handle == 0 {
				continue
			}
			done := false
			for ci := 1; ci < len(a.Stops) && !done; ci++ {
				for cj := 1; cj < len(b.Stops) && !done; cj++ {
					na, nb := crossCandidates(inst, a, b, ci, cj, b.Day)
					if na == nil {
						continue
					}
					gain, ok := inst.tryReplace([]*Route{a, b}, []*Route{na, nb}, 0)
					stats.TwoOpt.record(gain, ok)
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

// crossCandidates builds the 2-opt* tail exchange of a (cut at ci) and b
// (cut at cj); the second candidate keeps b's departure context (depot and
// day bDay) so the move also serves the multi-depot variant.
func crossCandidates(inst *IRPInstance, a, b *Route, ci, cj, bDay int) (*Route, *Route) {
	na := &Route{Day: a.Day, Depot: a.Depot}
	nb := &Route{Day: bDay, Depot: b.Depot}
	for _, s := range a.Stops[:ci] {
		na.Stops = append(na.Stops, s.Copy())
	}
	for _, s := range b.Stops[cj:] {
		na.Stops = append(na.Stops, s.Copy())
	}
	for _, s := range b.Stops[:cj] {
		nb.Stops = append(nb.Stops, s.Copy())
	}
	for _, s := range a.Stops[ci:] {
		nb.Stops = append(nb.Stops, s.Copy())
	}
	na.Compress(inst)
	nb.Compress(inst)
	for _, r := range []*Route{na, nb} {
		if len(r.Stops) > inst.MaxStops || r.ContentSize(inst) > inst.VehicleCapacity+invEps || r.lastDay() >= inst.T {
			return nil, nil
		}
	}
	return na, nb
}

// reorderRoutes brute-forces the stop permutation of every route, bounded by
// the small MaxStops. Opt-in post-pass.
func reorderRoutes(inst *IRPInstance, stats *Stats) bool {
	improved := false
	for _, r := range inst.Solution.Routes() {
		if len(r.Stops) < 3 {
			continue
		}
		bestDist := r.Distance(inst)
		var bestPerm []int
		Permutations(len(r.Stops), func(perm []int) bool {
			cand := r.Copy()
			cand.UpdateOrder(inst, perm)
			if cand.lastDay() >= inst.T {
				return true
			}
			if dist := cand.Distance(inst); dist < bestDist {
				bestDist = dist
				bestPerm = append(bestPerm[:0], perm...)
			}
			return true
		})
		if bestPerm == nil {
			continue
		}
		cand := r.Copy()
		cand.UpdateOrder(inst, bestPerm)
		gain, ok := inst.tryReplace([]*Route{r}, []*Route{cand}, 0)
		stats.Reorder.record(gain, ok)
		if ok {
			improved = true
		}
	}
	return improved
}
