package irp

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

func fillSysInfo(stats *Stats) {
	hostStat, _ := host.Info()
	cpuStat, _ := cpu.Info()
	vmStat, _ := mem.VirtualMemory()
	if hostStat != nil {
		stats.System.Platform = hostStat.Platform
	}
	if len(cpuStat) > 0 {
		stats.System.CPU = cpuStat[0].ModelName
	}
	if vmStat != nil {
		stats.System.RAM = fmt.Sprintf("%d GB", vmStat.Total/1024/1024/1024)
	}
}

// customerOrder ranks the customers for the reinsertion sweep: a random
// permutation, or worst-first by the customer's current inventory cost
// contribution (shortage plus excess over the whole horizon).
func customerOrder(inst *IRPInstance, opts *Options, rng *rand.Rand) []int {
	order := make([]int, inst.C)
	for i := range order {
		order[i] = inst.D + i
	}
	if opts.CustomerOrder != OrderWorst {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		return order
	}
	sc := inst.FullScope()
	badness := make([]float64, inst.C)
	for i, c := range inst.Customers {
		badness[i] = inst.ShortageCost(c, sc) + inst.ExcessInventoryCost(c, sc)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return badness[order[i]-inst.D] > badness[order[j]-inst.D]
	})
	return order
}

// commodityOrder ranks the commodities for the reinsertion sweep, longest
// (bulkiest) first or randomly.
func commodityOrder(inst *IRPInstance, opts *Options, rng *rand.Rand) []int {
	order := make([]int, inst.M)
	for m := range order {
		order[m] = m
	}
	if opts.CommodityOrd == OrderLongest {
		sort.SliceStable(order, func(i, j int) bool {
			return inst.Commodities[order[i]].Length > inst.Commodities[order[j]].Length
		})
	} else {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return order
}

func timeUp(stats *Stats, opts *Options) bool {
	return opts.TimeLimit > 0 && stats.elapsed().Seconds() >= opts.TimeLimit
}

// lnsLoop alternates ruin-and-recreate sweeps with local search until the
// per-round improvement of the incumbent falls below the threshold or the
// wall-clock budget runs out. The incumbent is restored at the end, so a
// deteriorating last round never leaks into the final solution.
func lnsLoop(inst *IRPInstance, opts *Options, rng *rand.Rand, stats *Stats) {
	best := inst.Solution.Copy()
	bestCost := inst.Cost()
	track := func() {
		if c := inst.Cost(); c < bestCost {
			bestCost = c
			best = inst.Solution.Copy()
		}
	}
	for {
		stats.Rounds++
		roundStart := bestCost
		Log(2, "round %d starting at cost %.2f", stats.Rounds, roundStart)

		t0 := time.Now()
		for i, v := range customerOrder(inst, opts, rng) {
			if i >= opts.NIter || timeUp(stats, opts) {
				break
			}
			ReinsertCustomer(inst, v, opts, stats)
		}
		stats.CustomerTime += time.Since(t0)
		t0 = time.Now()
		LocalSearch(inst, opts, rng, stats)
		stats.LocalSearchTime += time.Since(t0)
		track()
		if timeUp(stats, opts) {
			break
		}

		t0 = time.Now()
		for i, m := range commodityOrder(inst, opts, rng) {
			if i >= opts.NIter || timeUp(stats, opts) {
				break
			}
			ReinsertCommodity(inst, m, opts, stats)
		}
		stats.CommodityTime += time.Since(t0)
		t0 = time.Now()
		LocalSearch(inst, opts, rng, stats)
		MultiDepotSearch(inst, opts, rng, stats)
		stats.LocalSearchTime += time.Since(t0)
		track()
		if timeUp(stats, opts) {
			break
		}

		t0 = time.Now()
		for d := range inst.Depots {
			if timeUp(stats, opts) {
				break
			}
			RefillDepot(inst, d, opts, stats)
		}
		stats.RefillTime += time.Since(t0)
		track()

		improvement := (roundStart - bestCost) / maxFloat(roundStart, 1)
		Log(2, "round %d finished at cost %.2f (improvement %.4f)", stats.Rounds, bestCost, improvement)
		if improvement < opts.ImproveTol || timeUp(stats, opts) {
			break
		}
	}
	inst.Solution = best
	inst.RecomputeState()
}

// LargeNeighborhoodSearch runs the ruin-and-recreate loop on the instance's
// existing solution. The caller provides the starting solution; use
// FullMatheuristic to construct one from scratch.
func LargeNeighborhoodSearch(inst *IRPInstance, opts Options) (*Stats, error) {
	InitLoggers(opts.LogLevel)
	if opts.Solver == nil {
		return nil, fmt.Errorf("irp: no flow solver configured")
	}
	if inst.Solution == nil || inst.Solution.Len() == 0 {
		return nil, fmt.Errorf("irp: no starting solution")
	}
	stats := &Stats{}
	fillSysInfo(stats)
	begin := time.Now()
	inst.RecomputeState()
	stats.InitialCost = inst.Cost()
	rng := rand.New(rand.NewSource(opts.Seed))
	lnsLoop(inst, &opts, rng, stats)
	stats.FinalCost = inst.Cost()
	stats.LBound = FlowLowerBound(inst, &opts)
	stats.Time = time.Since(begin).String()
	return stats, nil
}

// FullMatheuristic is the complete pipeline: flow-based construction, local
// search polish and the large-neighborhood loop.
func FullMatheuristic(inst *IRPInstance, opts Options) (*Stats, error) {
	InitLoggers(opts.LogLevel)
	if opts.Solver == nil {
		return nil, fmt.Errorf("irp: no flow solver configured")
	}
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
	lnsLoop(inst, &opts, rng, stats)
	stats.FinalCost = inst.Cost()
	stats.LBound = FlowLowerBound(inst, &opts)
	stats.Time = time.Since(begin).String()
	return stats, nil
}
