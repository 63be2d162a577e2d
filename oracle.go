package irp

import (
	"fmt"
	"git.solver4all.com/azaryc2s/gorobi/gurobi"
)

// Constraint senses of coupling rows, aliased so model builders do not
// import the bindings directly.
const (
	lessEqual    = gurobi.LESS_EQUAL
	greaterEqual = gurobi.GREATER_EQUAL
	equalSense   = gurobi.EQUAL
)

// Termination statuses of a flow solve.
const (
	StatusOptimal = iota
	StatusFeasible
	StatusInfeasible
	StatusNoSolution
)

// SolveParams are the per-call solver controls. Pin, when set, fixes arc
// variables with non-negative pin values to them (min = max); negative
// entries leave the arc free. The warm-start phase reproduces the status quo
// by pinning all decision arcs to their former flows.
type SolveParams struct {
	TimeLimit float64 // seconds, 0 means no limit
	MIPGap    float64
	WarmStart [][]float64 // per graph, per arc; optional
	Pin       [][]float64 // per graph, per arc; optional, negative = free
	LogName   string
}

// FlowResult carries the termination status and, when a solution exists,
// the primal flow value of every arc variable.
type FlowResult struct {
	Status int
	Obj    float64
	Flows  [][]float64 // per graph, per arc
}

// HasSolution reports whether Flows is populated.
func (r *FlowResult) HasSolution() bool {
	return r.Status == StatusOptimal || r.Status == StatusFeasible
}

// FlowSolver is the external MILP/flow oracle. The engine tolerates any
// failure by restoring its pre-attempt snapshot.
type FlowSolver interface {
	Solve(model *FlowModel, params SolveParams) (*FlowResult, error)
}

// GurobiSolver solves flow models through the Gurobi bindings.
type GurobiSolver struct {
	Env *gurobi.Env
}

func NewGurobiSolver(logFile string) (*GurobiSolver, error) {
	env, err := gurobi.LoadEnv(logFile)
	if err != nil {
		return nil, err
	}
	env.SetIntParam("LogToConsole", int32(0))
	return &GurobiSolver{Env: env}, nil
}

func (s *GurobiSolver) Free() {
	if s.Env != nil {
		s.Env.Free()
	}
}

// Solve builds one Gurobi model from the flow model: one variable per arc
// bounded by its capacities, a conservation row per node, and the coupling
// rows across graphs.
func (s *GurobiSolver) Solve(fm *FlowModel, p SolveParams) (*FlowResult, error) {
	name := p.LogName
	if name == "" {
		name = "irpflow"
	}
	model, err := s.Env.NewModel(name, 0, nil, nil, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	defer model.Free()

	start := make([]int, len(fm.Graphs))
	varCount := 0
	for gi, g := range fm.Graphs {
		start[gi] = varCount
		var vtype int8 = gurobi.CONTINUOUS
		if fm.Integer[gi] {
			vtype = gurobi.INTEGER
		}
		for ai, a := range g.Arcs {
			lb, ub := a.MinCap, a.MaxCap
			if p.Pin != nil && p.Pin[gi][ai] >= 0 {
				lb = p.Pin[gi][ai]
				ub = p.Pin[gi][ai]
			}
			err = model.AddVar(nil, nil, a.Cost, lb, ub, vtype, fmt.Sprintf("F_%d_%d", gi, ai))
			if err != nil {
				return nil, err
			}
			varCount++
		}
	}

	err = model.SetIntAttr(gurobi.INT_ATTR_MODELSENSE, gurobi.MINIMIZE)
	if err != nil {
		return nil, err
	}

	// flow conservation at every node of every graph
	for gi, g := range fm.Graphs {
		in := make([][]int32, len(g.Nodes))
		out := make([][]int32, len(g.Nodes))
		for ai, a := range g.Arcs {
			idx := int32(start[gi] + ai)
			in[a.To] = append(in[a.To], idx)
			out[a.From] = append(out[a.From], idx)
		}
		for ni := range g.Nodes {
			ind := make([]int32, 0, len(in[ni])+len(out[ni]))
			val := make([]float64, 0, len(in[ni])+len(out[ni]))
			for _, idx := range in[ni] {
				ind = append(ind, idx)
				val = append(val, 1.0)
			}
			for _, idx := range out[ni] {
				ind = append(ind, idx)
				val = append(val, -1.0)
			}
			if len(ind) == 0 {
				continue
			}
			err = model.AddConstr(ind, val, gurobi.EQUAL, 0.0, fmt.Sprintf("cons_%d_%d", gi, ni))
			if err != nil {
				return nil, err
			}
		}
	}

	for ci, c := range fm.Coupling {
		ind := make([]int32, len(c.Terms))
		val := make([]float64, len(c.Terms))
		for i, term := range c.Terms {
			ind[i] = int32(start[term.Graph] + term.Arc)
			val[i] = term.Coef
		}
		cname := c.Name
		if cname == "" {
			cname = fmt.Sprintf("couple_%d", ci)
		}
		err = model.AddConstr(ind, val, c.Sense, c.RHS, cname)
		if err != nil {
			return nil, err
		}
	}

	if p.TimeLimit > 0 {
		model.SetDblParam("TimeLimit", p.TimeLimit)
	}
	if p.MIPGap > 0 {
		model.SetDblParam("MIPGap", p.MIPGap)
	}
	if p.WarmStart != nil {
		flat := make([]float64, 0, varCount)
		for gi := range fm.Graphs {
			flat = append(flat, p.WarmStart[gi]...)
		}
		err = model.SetDblAttrArray(gurobi.DBL_ATTR_START, 0, flat)
		if err != nil {
			Log(1, "Couldn't set the warm start: %s", err.Error())
		}
	}

	err = model.Optimize()
	if err != nil {
		return nil, err
	}

	res := &FlowResult{Status: StatusNoSolution}
	optimstatus, err := model.GetIntAttr(gurobi.INT_ATTR_STATUS)
	if err != nil {
		return nil, err
	}
	if optimstatus == gurobi.INF_OR_UNBD {
		res.Status = StatusInfeasible
		return res, nil
	}
	solcount, err := model.GetIntAttr(gurobi.INT_ATTR_SOLCOUNT)
	if err != nil {
		return nil, err
	}
	if solcount == 0 {
		return res, nil
	}
	if optimstatus == gurobi.OPTIMAL {
		res.Status = StatusOptimal
	} else {
		res.Status = StatusFeasible
	}
	res.Obj, err = model.GetDblAttr(gurobi.DBL_ATTR_OBJVAL)
	if err != nil {
		return nil, err
	}
	solA, err := model.GetDblAttrArray(gurobi.DBL_ATTR_X, 0, int32(varCount))
	if err != nil {
		return nil, err
	}
	res.Flows = make([][]float64, len(fm.Graphs))
	for gi, g := range fm.Graphs {
		res.Flows[gi] = make([]float64, len(g.Arcs))
		copy(res.Flows[gi], solA[start[gi]:start[gi]+len(g.Arcs)])
	}
	return res, nil
}
