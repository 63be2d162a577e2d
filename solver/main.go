package main

import (
	"flag"
	"fmt"
	"strings"

	"git.solver4all.com/azaryc2s/irp"
)

var (
	inputF   *string
	outputF  *string
	strat    *string
	custOrd  *string
	commOrd  *string
	seed     *int64
	timeL    *float64
	subTimeL *float64
	mipGap   *float64
	niter    *int
	sample   *float64
	reorder  *bool
	logLvl   *int
)

func main() {
	inputF = flag.String("input", "input.json", "Path to the input instance")
	outputF = flag.String("output", "", "Path to the output file. By default the input file will be overwritten adding the solution")
	strat = flag.String("strat", irp.StratFull, "Strategy for solving. Possible: {LS, LNS, FULL}. Default FULL")
	custOrd = flag.String("custOrder", irp.OrderRandom, "Customer order for the reinsertion sweep. RANDOM|WORST")
	commOrd = flag.String("commOrder", irp.OrderLongest, "Commodity order for the reinsertion sweep. LONGEST|RANDOM")
	seed = flag.Int64("seed", 1, "Seed for the random number generator")
	timeL = flag.Float64("time", 3600, "Wall-clock budget in seconds")
	subTimeL = flag.Float64("subtime", 20, "Time limit per sub-problem MILP in seconds")
	mipGap = flag.Float64("gap", 0.01, "Relative MIP gap for the sub-problem solves")
	niter = flag.Int("niter", 10, "Customers per reinsertion sweep")
	sample = flag.Float64("sample", 0.25, "Pair sampling probability for insert/swap")
	reorder = flag.Bool("reorder", false, "Enable the brute-force stop-reorder post-pass")
	logLvl = flag.Int("log", 2, "Level of the logging output. Higher value is more verbose. Range 1-3")

	flag.Parse()

	irp.InitLoggers(*logLvl)
	inst, err := irp.ReadInstance(*inputF)
	if err != nil {
		irp.Log(1, "At %s: %s\n", *inputF, err.Error())
		return
	}

	solver, err := irp.NewGurobiSolver(strings.ReplaceAll(*inputF, ".json", ".log"))
	if err != nil {
		irp.Log(1, "At %s: %s\n", *inputF, err.Error())
		return
	}
	defer solver.Free()

	opts := irp.DefaultOptions()
	opts.Seed = *seed
	opts.TimeLimit = *timeL
	opts.SubTimeLimit = *subTimeL
	opts.MIPGap = *mipGap
	opts.NIter = *niter
	opts.CustomerOrder = *custOrd
	opts.CommodityOrd = *commOrd
	opts.SampleProb = *sample
	opts.Reorder = *reorder
	opts.LogLevel = *logLvl
	opts.Solver = solver

	var stats *irp.Stats
	switch *strat {
	case irp.StratLS:
		stats, err = irp.GreedyLocalSearch(inst, opts)
	case irp.StratLNS:
		stats, err = irp.LargeNeighborhoodSearch(inst, opts)
	case irp.StratFull:
		stats, err = irp.FullMatheuristic(inst, opts)
	default:
		irp.Log(1, "Unsupported strategy : %s\n", *strat)
		return
	}
	if err != nil {
		irp.Log(1, "At %s: %s\n", *inputF, err.Error())
		return
	}

	solValid, validComment := inst.CheckSolution()
	if !solValid {
		irp.Log(1, validComment)
	} else {
		irp.Log(1, "The computed solution is valid! ")
	}
	stats.Comment = fmt.Sprintf("Solver-Settings: SolverDev: Zarychta, Strat=%s, Seed=%d, NIter=%d, CustOrder=%s, CommOrder=%s", *strat, *seed, *niter, *custOrd, *commOrd)
	inst.Stats = stats

	fileName := *outputF
	if fileName == "" {
		fileName = *inputF
	}
	if err := irp.WriteInstance(inst, fileName); err != nil {
		irp.Log(1, "At %s: %s\n", fileName, err.Error())
		return
	}
	irp.Log(2, "Found an IRP-Solution with cost %.2f (lower bound %.2f)\n", stats.FinalCost, stats.LBound)
}
