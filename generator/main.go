package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"git.solver4all.com/azaryc2s/irp"
)

var customers irp.ArrayIntFlags
var depots irp.ArrayIntFlags
var commodities irp.ArrayIntFlags
var name *string
var output *string
var count *int
var horizon *int
var xTo *int
var yTo *int
var capacity *float64
var kmCost *float64
var vehCost *float64
var stopCost *float64
var hoursPerDay *float64
var maxStops *int
var demandMax *int
var invFactor *float64

func main() {
	flag.Var(&customers, "c", "List of number of customers")
	flag.Var(&depots, "d", "List of number of depots")
	flag.Var(&commodities, "m", "List of number of commodities")
	name = flag.String("name", "zarychta", "Name for the instance")
	output = flag.String("outputDir", ".", "Output directory")
	count = flag.Int("count", 1, "Number of instances per combination")
	horizon = flag.Int("t", 30, "Planning horizon in days")
	xTo = flag.Int("x", 10000, "Max value on the x-axis")
	yTo = flag.Int("y", 10000, "Max value on the y-axis")
	capacity = flag.Float64("cap", 100, "Vehicle capacity")
	kmCost = flag.Float64("kmCost", 0.1, "Cost per km driven")
	vehCost = flag.Float64("vehCost", 50, "Fixed cost per vehicle used")
	stopCost = flag.Float64("stopCost", 10, "Cost per stop")
	hoursPerDay = flag.Float64("hours", 8, "Transport hours per day")
	maxStops = flag.Int("maxStops", 5, "Max stops per route")
	demandMax = flag.Int("demandMax", 10, "Highest daily demand per customer and commodity")
	invFactor = flag.Float64("invFactor", 3, "Maximum inventory as a multiple of the daily demand")

	flag.Parse()

	for l := 0; l < *count; l++ {
		rand.Seed(time.Now().UnixNano())
		for i := 0; i < len(customers); i++ {
			n := customers[i]
			for j := 0; j < len(depots); j++ {
				d := depots[j]
				for k := 0; k < len(commodities); k++ {
					m := commodities[k]
					inst := generate(n, d, m, l)
					err := irp.WriteInstance(inst, fmt.Sprintf("%s/%s.json", *output, inst.Name))
					if err != nil {
						log.Fatal(err)
					}
				}
			}
		}
	}
}

func generate(c, d, m, nr int) *irp.IRPInstance {
	t := *horizon
	inst := &irp.IRPInstance{
		Name:            fmt.Sprintf("%s_%d_%d_%d_%d", *name, c, d, m, nr),
		Comment:         fmt.Sprintf("%s instance Nr. %d with %d customers, %d depots and %d commodities", *name, nr, c, d, m),
		Type:            "IRP",
		T:               t,
		D:               d,
		C:               c,
		M:               m,
		VehicleCapacity: *capacity,
		KmCost:          *kmCost,
		VehicleCost:     *vehCost,
		StopCost:        *stopCost,
		HoursPerDay:     *hoursPerDay,
		MaxStops:        *maxStops,
	}
	for i := 0; i < m; i++ {
		inst.Commodities = append(inst.Commodities, irp.Commodity{Index: i, Length: float64(1 + rand.Intn(4))})
	}

	x := make([]float64, 0, d+c)
	y := make([]float64, 0, d+c)
	for i := 0; i < d+c; i++ {
		x = append(x, float64(rand.Intn(*xTo)))
		y = append(y, float64(rand.Intn(*yTo)))
	}
	inst.Dist = irp.CalcSiteDistances(x, y)
	inst.Duration = make([][]float64, d+c)
	for i := range inst.Duration {
		inst.Duration[i] = make([]float64, d+c)
		for j := range inst.Duration[i] {
			// 50 km/h average travel speed
			inst.Duration[i][j] = inst.Dist[i][j] / 50.0
		}
	}

	// total daily demand per commodity, to balance the depot production
	totalDemand := make([]float64, m)
	for i := 0; i < c; i++ {
		cu := &irp.Customer{Demand: matrix(m, t), ShortageCost: 20 + float64(rand.Intn(30))}
		cu.Index = d + i
		cu.X = x[d+i]
		cu.Y = y[d+i]
		cu.MaximumInventory = matrix(m, t)
		cu.ExcessCost = make([]float64, m)
		cu.InitialInventory = make([]float64, m)
		for mi := 0; mi < m; mi++ {
			if rand.Float64() < 0.3 {
				continue // not every customer uses every commodity
			}
			daily := float64(1 + rand.Intn(*demandMax))
			for day := 0; day < t; day++ {
				dem := daily
				if rand.Float64() < 0.2 {
					dem = 0
				}
				cu.Demand[mi][day] = dem
				cu.MaximumInventory[mi][day] = daily * *invFactor
				totalDemand[mi] += dem / float64(t)
			}
			cu.ExcessCost[mi] = 1 + float64(rand.Intn(5))
			cu.InitialInventory[mi] = daily * (1 + float64(rand.Intn(int(*invFactor))))
		}
		inst.Customers = append(inst.Customers, cu)
	}
	for i := 0; i < d; i++ {
		dp := &irp.Depot{Production: matrix(m, t)}
		dp.Index = i
		dp.X = x[i]
		dp.Y = y[i]
		dp.MaximumInventory = matrix(m, t)
		dp.ExcessCost = make([]float64, m)
		dp.InitialInventory = make([]float64, m)
		for mi := 0; mi < m; mi++ {
			// each depot covers its share of the total demand
			daily := totalDemand[mi] / float64(d)
			for day := 0; day < t; day++ {
				dp.Production[mi][day] = daily
				dp.MaximumInventory[mi][day] = daily * *invFactor * 2
			}
			dp.ExcessCost[mi] = 1
			dp.InitialInventory[mi] = daily * 2
		}
		inst.Depots = append(inst.Depots, dp)
	}
	inst.InitDerived()
	return inst
}

func matrix(m, t int) [][]float64 {
	a := make([][]float64, m)
	for i := range a {
		a[i] = make([]float64, t)
	}
	return a
}
