package irp

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// flowEps treats smaller primal values as zero.
const flowEps = 1e-6

// buildConstructionModel builds the per-commodity circulation used by the
// initial construction: no route structure exists yet, so candidate direct
// deliveries are priced at the heuristic per-unit trip cost.
func buildConstructionModel(inst *IRPInstance, m int, unitCost bool) (*FlowModel, []ArcRef) {
	b := newGraphBuilder(inst, m)
	length := inst.Commodities[m].Length
	for _, d := range inst.Depots {
		if !d.UsesCommodity(m) {
			continue
		}
		b.depotChain(d, nil)
		for _, c := range inst.Customers {
			if !c.UsesCommodity(m) {
				continue
			}
			for t := 0; t < inst.T; t++ {
				arrive := directArrival(inst, d.Index, c.Index, t)
				if arrive < 0 {
					continue
				}
				cost := 0.0
				if unitCost {
					cost = heuristicUnitCost(inst, m, d.Index, c.Index)
				}
				b.deliveryArc(ArcDirect, d.Index, c.Index, t, arrive, inst.VehicleCapacity/length, cost, 0, -1)
			}
		}
	}
	for _, c := range inst.Customers {
		if c.UsesCommodity(m) {
			b.customerChain(c, nil)
		}
	}
	b.close()
	fm := &FlowModel{}
	fm.AddGraph(b.g, false)
	return fm, b.refs
}

// BuildInitialSolution constructs a first feasible solution: one relaxed
// flow per commodity decides the delivery quantities, then the per-day
// per-depot chunks are bin-packed into direct routes.
func BuildInitialSolution(inst *IRPInstance, opts *Options, stats *Stats) error {
	if opts.Solver == nil {
		return fmt.Errorf("irp: no flow solver configured")
	}
	type group struct{ depot, day int }
	chunks := map[group][]PackItem{}
	for m := 0; m < inst.M; m++ {
		if !commodityUsedAnywhere(inst, m) {
			continue
		}
		fm, refs := buildConstructionModel(inst, m, true)
		res, err := opts.Solver.Solve(fm, SolveParams{TimeLimit: opts.SubTimeLimit, LogName: fmt.Sprintf("init_m%d", m)})
		if err != nil {
			return err
		}
		if !res.HasSolution() {
			return fmt.Errorf("irp: construction flow for commodity %d returned no solution", m)
		}
		for _, ref := range refs {
			units := res.Flows[0][ref.Arc]
			if units < flowEps {
				continue
			}
			g := group{depot: ref.Depot, day: ref.Day}
			chunks[g] = append(chunks[g], PackItem{
				Customer: ref.Customer, Comm: m,
				Units: units, Size: units * inst.Commodities[m].Length,
			})
		}
	}
	groups := make([]group, 0, len(chunks))
	for g := range chunks {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].depot != groups[j].depot {
			return groups[i].depot < groups[j].depot
		}
		return groups[i].day < groups[j].day
	})
	for _, g := range groups {
		routes := packIntoRoutes(inst, g.depot, g.day, chunks[g])
		inst.ApplyRoutes(routes, ActionAdd, true)
	}
	inst.RecomputeState()
	Log(2, "initial construction produced %d routes with cost %.2f", inst.Solution.Len(), inst.Cost())
	return nil
}

// FlowLowerBound sums the per-commodity inventory-only relaxations (delivery
// arcs at zero cost): no feasible plan can cost less in inventory terms, and
// routing is non-negative.
func FlowLowerBound(inst *IRPInstance, opts *Options) float64 {
	if opts.Solver == nil {
		return 0
	}
	bound := 0.0
	for m := 0; m < inst.M; m++ {
		if !commodityUsedAnywhere(inst, m) {
			continue
		}
		fm, _ := buildConstructionModel(inst, m, false)
		res, err := opts.Solver.Solve(fm, SolveParams{TimeLimit: opts.SubTimeLimit, LogName: fmt.Sprintf("lb_m%d", m)})
		if err != nil || !res.HasSolution() {
			continue
		}
		bound += res.Obj
	}
	return bound
}

func commodityUsedAnywhere(inst *IRPInstance, m int) bool {
	for _, c := range inst.Customers {
		if c.UsesCommodity(m) {
			return true
		}
	}
	return false
}

// GreedyLocalSearch builds the initial solution and polishes it with the
// single- and multi-depot local search. Mutates the instance's solution in
// place and returns the statistics record.
func GreedyLocalSearch(inst *IRPInstance, opts Options) (*Stats, error) {
	InitLoggers(opts.LogLevel)
	stats := &Stats{}
	fillSysInfo(stats)
	begin := time.Now()
	rng := rand.New(rand.NewSource(opts.Seed))
	if err := BuildInitialSolution(inst, &opts, stats); err != nil {
		return stats, err
	}
	stats.InitialCost = inst.Cost()
	t0 := time.Now()
	LocalSearch(inst, &opts, rng, stats)
	MultiDepotSearch(inst, &opts, rng, stats)
	stats.LocalSearchTime += time.Since(t0)
	stats.FinalCost = inst.Cost()
	stats.LBound = FlowLowerBound(inst, &opts)
	stats.Time = time.Since(begin).String()
	return stats, nil
}
