package irp

// tryReplace evaluates swapping oldRoutes (registered) for newRoutes
// (detached candidates), commits iff the new configuration is feasible and
// improves the scoped cost by more than tol, and otherwise reverts without
// residue. Every neighborhood goes through here, so "evaluate then commit or
// revert" stays strict in one place.
//
// The gain is reported as (cost before - cost after) over the minimal scope
// touched by both route sets.
func (inst *IRPInstance) tryReplace(oldRoutes, newRoutes []*Route, tol float64) (float64, bool) {
	kept := newRoutes[:0]
	for _, r := range newRoutes {
		if len(r.Stops) == 0 || r.TotalQuantity() == 0 {
			continue
		}
		if !inst.RouteFeasible(r) {
			return 0, false
		}
		kept = append(kept, r)
	}
	newRoutes = kept

	all := append(append([]*Route{}, oldRoutes...), newRoutes...)
	sc := inst.ScopeOfRoutes(all...)
	before := inst.TotalCost(sc)

	handles := make([]int, len(oldRoutes))
	for i, r := range oldRoutes {
		handles[i] = r.Handle
	}

	inst.ApplyRoutes(oldRoutes, ActionDelete, true)
	inst.ApplyRoutes(newRoutes, ActionAdd, true)

	after := inst.TotalCost(sc)
	gain := before - after

	if gain <= tol || !inst.Feasible(sc) {
		inst.ApplyRoutes(newRoutes, ActionDelete, true)
		inst.applyRoutesRestoring(oldRoutes, handles)
		return gain, false
	}
	return gain, true
}

// applyRoutesRestoring re-adds previously deleted routes under their old
// handles, so a rejected move leaves the store byte-for-byte as it was.
func (inst *IRPInstance) applyRoutesRestoring(routes []*Route, handles []int) {
	for i, r := range routes {
		inst.Solution.addWithHandle(r, handles[i])
	}
	inst.ApplyRoutes(routes, ActionAdd, false)
}
