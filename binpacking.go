package irp

import "sort"

// PackItem is one delivery chunk to be packed into a vehicle trip.
type PackItem struct {
	Customer   int // global site index
	Comm       int
	Units      float64
	Size       float64 // Units * commodity length
}

// FirstFitDecreasing packs items into bins of the given capacity: items are
// placed largest first into the first bin with room. Items wider than the
// capacity must be split by the caller beforehand.
func FirstFitDecreasing(items []PackItem, capacity float64) [][]PackItem {
	sorted := append([]PackItem{}, items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Size > sorted[j].Size })
	var bins [][]PackItem
	var loads []float64
	for _, it := range sorted {
		placed := false
		for b := range bins {
			if loads[b]+it.Size <= capacity+invEps {
				bins[b] = append(bins[b], it)
				loads[b] += it.Size
				placed = true
				break
			}
		}
		if !placed {
			bins = append(bins, []PackItem{it})
			loads = append(loads, it.Size)
		}
	}
	return bins
}

// splitOversize cuts items wider than the capacity into capacity-sized
// pieces so FFD always has a feasible placement.
func splitOversize(inst *IRPInstance, items []PackItem) []PackItem {
	out := make([]PackItem, 0, len(items))
	for _, it := range items {
		l := inst.Commodities[it.Comm].Length
		maxUnits := inst.VehicleCapacity / l
		for it.Units > maxUnits {
			out = append(out, PackItem{Customer: it.Customer, Comm: it.Comm, Units: maxUnits, Size: maxUnits * l})
			it.Units -= maxUnits
			it.Size = it.Units * l
		}
		if it.Units > 0 {
			out = append(out, it)
		}
	}
	return out
}

// packIntoRoutes turns the delivery chunks of one (depot, departure day)
// into direct routes, one per bin. Items of the same customer and commodity
// within a bin are merged by Compress.
func packIntoRoutes(inst *IRPInstance, depot, day int, items []PackItem) []*Route {
	items = splitOversize(inst, items)
	bins := FirstFitDecreasing(items, inst.VehicleCapacity)
	var routes []*Route
	for _, bin := range bins {
		r := &Route{Day: day, Depot: depot}
		for _, it := range bin {
			q := make([]float64, inst.M)
			q[it.Comm] = it.Units
			r.Stops = append(r.Stops, &RouteStop{Customer: it.Customer, Quantities: q})
		}
		r.Compress(inst)
		if len(r.Stops) > inst.MaxStops || r.lastDay() >= inst.T {
			// more distinct customers than stops allowed, or the chained
			// travel times push an arrival past the horizon: split the bin
			// into single-stop routes
			for _, s := range r.Stops {
				single := &Route{Day: day, Depot: depot, Stops: []*RouteStop{s}}
				single.SimulateDays(inst)
				routes = append(routes, single)
			}
			continue
		}
		routes = append(routes, r)
	}
	return routes
}
