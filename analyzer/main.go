package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"math"
	"os"
	"strings"

	"git.solver4all.com/azaryc2s/irp"
)

func main() {
	if len(os.Args) < 2 {
		log.Printf("No arguments passed!")
		return
	}
	dirName := os.Args[1]
	dir, err := ioutil.ReadDir(dirName)
	if err != nil {
		log.Printf("Couldn't open directory %s: %s\n", os.Args[1], err.Error())
		return
	}
	fmt.Printf("Name,Time,InitialCost,FinalCost,LBound,Gap,Rounds,Routes,Customers,Depots,Commodities,Comment\n")
	for _, f := range dir {
		fileName := dirName + "/" + f.Name()
		if !strings.Contains(fileName, ".json") {
			continue
		}
		inst, err := irp.ReadInstance(fileName)
		if err != nil {
			log.Printf("Couldn't read %s: %s\n", f.Name(), err.Error())
			return
		}
		if inst.Stats == nil {
			fmt.Printf("No solution for %s\n", inst.Name)
			continue
		}
		stats := inst.Stats
		solValid, validComment := inst.CheckSolution()
		if !solValid {
			stats.Comment = fmt.Sprintf("%s %s", stats.Comment, validComment)
		}
		gap := 0.0
		if stats.LBound > 0 {
			gap = math.Round((stats.FinalCost-stats.LBound)/stats.LBound*1000) / 1000.0
		}
		fmt.Printf("%s,%s,%.2f,%.2f,%.2f,%.4f,%d,%d,%d,%d,%d,%s\n",
			inst.Name, stats.Time, stats.InitialCost, stats.FinalCost, stats.LBound, gap,
			stats.Rounds, inst.Solution.Len(), inst.C, inst.D, inst.M, stats.Comment)
	}
}
