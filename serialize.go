package irp

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
)

// rebuild reconstructs the handle arena from the day-by-depot view after a
// JSON round trip. Routes without a handle get a fresh one.
func (s *Solution) rebuild() {
	s.byHandle = map[int]*Route{}
	s.nextHandle = 1
	for t := range s.PerDayDepot {
		for d := range s.PerDayDepot[t] {
			for _, r := range s.PerDayDepot[t][d] {
				if r.Handle > 0 {
					if s.byHandle[r.Handle] != nil {
						panic(fmt.Sprintf("irp: duplicate route id %d in input", r.Handle))
					}
					s.byHandle[r.Handle] = r
					if r.Handle >= s.nextHandle {
						s.nextHandle = r.Handle + 1
					}
				}
			}
		}
	}
	for t := range s.PerDayDepot {
		for d := range s.PerDayDepot[t] {
			for _, r := range s.PerDayDepot[t][d] {
				if r.Handle == 0 {
					r.Handle = s.nextHandle
					s.nextHandle++
					s.byHandle[r.Handle] = r
				}
			}
		}
	}
}

// ReadInstance loads an instance from a JSON file, computes the distance
// matrix from coordinates when none is given, and wires up the derived
// per-site state.
func ReadInstance(path string) (*IRPInstance, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	inst := &IRPInstance{}
	if err := json.Unmarshal(data, inst); err != nil {
		return nil, err
	}
	if len(inst.Dist) == 0 {
		x := make([]float64, 0, inst.D+inst.C)
		y := make([]float64, 0, inst.D+inst.C)
		for _, d := range inst.Depots {
			x = append(x, d.X)
			y = append(y, d.Y)
		}
		for _, c := range inst.Customers {
			x = append(x, c.X)
			y = append(y, c.Y)
		}
		inst.Dist = CalcSiteDistances(x, y)
		Log(4, "derived distance matrix:\n%s", Print2DArray(inst.Dist))
	}
	if len(inst.Duration) == 0 {
		inst.Duration = inst.Dist
	}
	inst.InitDerived()
	if inst.Solution != nil {
		inst.Solution.rebuild()
		for _, r := range inst.Solution.Routes() {
			r.SimulateDays(inst)
		}
		inst.RecomputeState()
	}
	return inst, nil
}

// WriteInstance writes the instance (and its solution, if any) back to a
// JSON file with inner arrays folded onto single lines.
func WriteInstance(inst *IRPInstance, path string) error {
	data, err := json.MarshalIndent(inst, "", "\t")
	if err != nil {
		return err
	}
	data = []byte(SanitizeJsonArrayLineBreaks(string(data)))
	return ioutil.WriteFile(path, data, 0644)
}
