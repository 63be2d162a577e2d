package irp

// FlowInf stands in for an uncapacitated arc bound.
const FlowInf = 1e9

// NodeRole closes the set of time-expanded node kinds. Node identity is by
// value, so logically identical states collapse to one vertex.
type NodeRole int

const (
	RoleSource NodeRole = iota
	RoleSink
	RoleMorning
	RoleNoon
	RoleEvening
	RoleFreeNight
	RoleVehicle
)

// FlowNode identifies one vertex of a time-expanded commodity graph.
// Site is the global site index (-1 for source/sink/vehicle nodes).
type FlowNode struct {
	Role NodeRole
	Site int
	Day  int
}

// Arc is a capacitated, optionally costed edge. A pinned arc has
// MinCap == MaxCap.
type Arc struct {
	From, To int
	MinCap   float64
	MaxCap   float64
	Cost     float64
}

// FlowGraph is a directed capacitated graph with value-deduplicated nodes.
// Conservation holds at every node; a sink->source arc closes the
// circulation.
type FlowGraph struct {
	Nodes []FlowNode
	Arcs  []Arc
	index map[FlowNode]int
}

func NewFlowGraph() *FlowGraph {
	return &FlowGraph{index: map[FlowNode]int{}}
}

// NodeID returns the vertex for n, creating it on first use.
func (g *FlowGraph) NodeID(n FlowNode) int {
	if id, ok := g.index[n]; ok {
		return id
	}
	id := len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	g.index[n] = id
	return id
}

// AddArc appends an arc between the (possibly new) endpoint nodes and
// returns its index.
func (g *FlowGraph) AddArc(from, to FlowNode, min, max, cost float64) int {
	g.Arcs = append(g.Arcs, Arc{From: g.NodeID(from), To: g.NodeID(to), MinCap: min, MaxCap: max, Cost: cost})
	return len(g.Arcs) - 1
}

// ArcKind tags the provenance of a decision arc for decoding.
type ArcKind int

const (
	// ArcDirect is a new direct depot->customer trip candidate.
	ArcDirect ArcKind = iota
	// ArcInsert inserts into an existing route at a given position.
	ArcInsert
	// ArcLeg reloads an existing stop of a kept route (refill).
	ArcLeg
	// ArcVehicle counts new vehicles on a leg (commodity reinsertion).
	ArcVehicle
)

// ArcRef records where a decision arc's flow must be decoded to.
type ArcRef struct {
	Graph    int
	Arc      int
	Kind     ArcKind
	Comm     int
	Depot    int
	Customer int // global site index
	Day      int // departure day
	Arrival  int
	Route    int // route handle for ArcInsert/ArcLeg
	Pos      int // insertion position / stop index
}

// Term references one arc variable of one graph in a coupling row.
type Term struct {
	Graph int
	Arc   int
	Coef  float64
}

// LinearConstraint couples arc variables, possibly across graphs.
type LinearConstraint struct {
	Name  string
	Terms []Term
	Sense int8 // gurobi sense constant
	RHS   float64
}

// FlowModel is the oracle's input: a set of circulations plus coupling rows.
type FlowModel struct {
	Graphs   []*FlowGraph
	Integer  []bool // per graph: integer arc variables
	Coupling []LinearConstraint
}

// AddGraph appends a graph and returns its index.
func (fm *FlowModel) AddGraph(g *FlowGraph, integer bool) int {
	fm.Graphs = append(fm.Graphs, g)
	fm.Integer = append(fm.Integer, integer)
	return len(fm.Graphs) - 1
}

// graphBuilder assembles the time-expanded graph of one commodity.
type graphBuilder struct {
	inst *IRPInstance
	m    int
	g    *FlowGraph
	refs []ArcRef
}

func newGraphBuilder(inst *IRPInstance, m int) *graphBuilder {
	return &graphBuilder{inst: inst, m: m, g: NewFlowGraph()}
}

func source() FlowNode { return FlowNode{Role: RoleSource, Site: -1, Day: -1} }
func sink() FlowNode   { return FlowNode{Role: RoleSink, Site: -1, Day: -1} }

// inventoryChain wires morning -> evening -> free_night -> next morning for
// one site, with the capacity-bypass arc carrying the excess-inventory cost,
// and drains the final evening into the sink.
func (b *graphBuilder) inventoryChain(s Site) {
	inst := b.inst
	v := s.SiteIndex()
	for t := 0; t < inst.T; t++ {
		morning := FlowNode{Role: RoleMorning, Site: v, Day: t}
		evening := FlowNode{Role: RoleEvening, Site: v, Day: t}
		b.g.AddArc(morning, evening, 0, FlowInf, 0)
		if t+1 < inst.T {
			night := FlowNode{Role: RoleFreeNight, Site: v, Day: t}
			next := FlowNode{Role: RoleMorning, Site: v, Day: t + 1}
			b.g.AddArc(evening, night, 0, s.MaxInventory(b.m, t), 0)
			b.g.AddArc(night, next, 0, FlowInf, 0)
			// inventory above the maximum bypasses the capacitated night
			// at the excess-cost rate
			b.g.AddArc(evening, next, 0, FlowInf, s.ExcessCostRate(b.m))
		} else {
			night := FlowNode{Role: RoleFreeNight, Site: v, Day: t}
			b.g.AddArc(evening, night, 0, s.MaxInventory(b.m, t), 0)
			b.g.AddArc(night, sink(), 0, FlowInf, 0)
			b.g.AddArc(evening, sink(), 0, FlowInf, s.ExcessCostRate(b.m))
		}
	}
}

// depotChain adds a depot's production inflow, its inventory chain, and a
// pinned outflow for deliveries that are part of the fixed context (sent to
// customers outside this sub-problem).
func (b *graphBuilder) depotChain(d *Depot, pinnedSent []float64) {
	inst := b.inst
	v := d.SiteIndex()
	for t := 0; t < inst.T; t++ {
		morning := FlowNode{Role: RoleMorning, Site: v, Day: t}
		inflow := d.Production[b.m][t]
		if t == 0 {
			inflow += d.InitialInventory[b.m]
		}
		b.g.AddArc(source(), morning, inflow, inflow, 0)
		if pinnedSent != nil && pinnedSent[t] > 0 {
			b.g.AddArc(morning, sink(), pinnedSent[t], pinnedSent[t], 0)
		}
	}
	b.inventoryChain(d)
}

// customerChain adds a customer's pinned demand outflow, the shortage
// compensation inflow, the noon receipt node, a pinned inflow for fixed
// deliveries, and the inventory chain.
func (b *graphBuilder) customerChain(c *Customer, pinnedRecv []float64) {
	inst := b.inst
	v := c.SiteIndex()
	for t := 0; t < inst.T; t++ {
		morning := FlowNode{Role: RoleMorning, Site: v, Day: t}
		noon := FlowNode{Role: RoleNoon, Site: v, Day: t}
		evening := FlowNode{Role: RoleEvening, Site: v, Day: t}
		if t == 0 {
			init := c.InitialInventory[b.m]
			b.g.AddArc(source(), morning, init, init, 0)
		}
		dem := c.Demand[b.m][t]
		if dem > 0 {
			b.g.AddArc(morning, sink(), dem, dem, 0)
			// demand not covered from the morning inventory is bought
			// back at the shortage rate
			b.g.AddArc(source(), morning, 0, dem, c.ShortageCost)
		}
		b.g.AddArc(noon, evening, 0, FlowInf, 0)
		if pinnedRecv != nil && pinnedRecv[t] > 0 {
			b.g.AddArc(source(), noon, pinnedRecv[t], pinnedRecv[t], 0)
		}
	}
	b.inventoryChain(c)
}

// deliveryArc adds a decision arc depot-morning -> customer-noon and records
// its provenance for decoding.
func (b *graphBuilder) deliveryArc(kind ArcKind, depot, customer, depart, arrive int, maxUnits, cost float64, route, pos int) int {
	from := FlowNode{Role: RoleMorning, Site: depot, Day: depart}
	to := FlowNode{Role: RoleNoon, Site: customer, Day: arrive}
	arc := b.g.AddArc(from, to, 0, maxUnits, cost)
	b.refs = append(b.refs, ArcRef{
		Arc: arc, Kind: kind, Comm: b.m,
		Depot: depot, Customer: customer, Day: depart, Arrival: arrive,
		Route: route, Pos: pos,
	})
	return arc
}

// close adds the circulation-closing arc.
func (b *graphBuilder) close() {
	b.g.AddArc(sink(), source(), 0, FlowInf, 0)
}

// directArrival is the arrival day of a direct depot->customer trip leaving
// on day t, or -1 when it falls outside the horizon.
func directArrival(inst *IRPInstance, depot, customer, t int) int {
	day := t + int(inst.Duration[depot][customer]/inst.HoursPerDay)
	if day >= inst.T {
		return -1
	}
	return day
}

// heuristicUnitCost prices one unit of commodity m on a direct trip when no
// route structure exists yet: the full trip cost spread over an estimated
// average load of half a vehicle.
func heuristicUnitCost(inst *IRPInstance, m, depot, customer int) float64 {
	trip := inst.VehicleCost + inst.StopCost + inst.KmCost*inst.Dist[depot][customer]
	avgUnits := inst.VehicleCapacity / (2 * inst.Commodities[m].Length)
	if avgUnits < 1 {
		avgUnits = 1
	}
	return trip / avgUnits
}
