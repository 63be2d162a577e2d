package irp

// Site is the shared view over depots and customers. Depots release
// commodities (production), customers consume them (demand with shortage);
// everything else about the inventory bookkeeping is common.
type Site interface {
	// SiteIndex is the global site index: depots 0..D-1, customers D..D+C-1.
	SiteIndex() int
	GetM() int
	GetT() int
	// UsesCommodity reports whether commodity m appears anywhere at this
	// site (initial inventory, production or demand). Deliveries of unused
	// commodities are invalid.
	UsesCommodity(m int) bool
	// PositiveInventory reports whether the cached inventory of commodity m
	// is strictly positive on every day of the horizon.
	PositiveInventory(m int) bool
	MaxInventory(m, t int) float64
	ExcessCostRate(m int) float64
	InventoryAt(m, t int) float64
}

// siteData carries the fields shared by both variants. The Inventory array
// is a derived cache of the current solution.
type siteData struct {
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`

	MaximumInventory [][]float64 `json:"maximum_inventory"` // [M][T]
	ExcessCost       []float64   `json:"excess_cost"`       // [M], per unit over the maximum
	InitialInventory []float64   `json:"initial_inventory"` // [M]

	Inventory     [][]float64 `json:"inventory,omitempty"` // [M][T], derived
	CommodityUsed []bool      `json:"-"`                   // [M], precomputed
}

func (s *siteData) SiteIndex() int { return s.Index }
func (s *siteData) GetM() int      { return len(s.InitialInventory) }
func (s *siteData) GetT() int {
	if len(s.MaximumInventory) == 0 {
		return 0
	}
	return len(s.MaximumInventory[0])
}

func (s *siteData) UsesCommodity(m int) bool { return s.CommodityUsed[m] }

func (s *siteData) PositiveInventory(m int) bool {
	for t := 0; t < s.GetT(); t++ {
		if s.Inventory[m][t] <= 0 {
			return false
		}
	}
	return true
}

func (s *siteData) MaxInventory(m, t int) float64 { return s.MaximumInventory[m][t] }
func (s *siteData) ExcessCostRate(m int) float64  { return s.ExcessCost[m] }
func (s *siteData) InventoryAt(m, t int) float64  { return s.Inventory[m][t] }

// Depot releases Production[m][t] units each morning and is the start of
// routes. QuantitySent is a derived cache of the current solution.
type Depot struct {
	siteData
	Production   [][]float64 `json:"production"`              // [M][T]
	QuantitySent [][]float64 `json:"quantity_sent,omitempty"` // [M][T], derived
}

// Customer demands Demand[m][t] units each morning, served from the prior
// evening's inventory; uncovered demand is absorbed and penalized at
// ShortageCost per unit. QuantityReceived is a derived cache.
type Customer struct {
	siteData
	Demand           [][]float64 `json:"demand"` // [M][T]
	ShortageCost     float64     `json:"shortage_cost"`
	QuantityReceived [][]float64 `json:"quantity_received,omitempty"` // [M][T], derived
}

// initDerived dimensions the derived caches and precomputes CommodityUsed.
// Must be called once after the static data is populated (the parser's
// contract) and is idempotent.
func (s *siteData) initDerived(inout [][]float64) [][]float64 {
	mc := s.GetM()
	tc := s.GetT()
	if len(s.Inventory) != mc {
		s.Inventory = makeMatrix(mc, tc)
	}
	if len(inout) != mc {
		inout = makeMatrix(mc, tc)
	}
	s.CommodityUsed = make([]bool, mc)
	for m := 0; m < mc; m++ {
		s.CommodityUsed[m] = s.InitialInventory[m] > 0
	}
	return inout
}

func (d *Depot) InitDerived() {
	d.QuantitySent = d.siteData.initDerived(d.QuantitySent)
	for m := 0; m < d.GetM(); m++ {
		for t := 0; t < d.GetT(); t++ {
			if d.Production[m][t] > 0 {
				d.CommodityUsed[m] = true
				break
			}
		}
	}
}

func (c *Customer) InitDerived() {
	c.QuantityReceived = c.siteData.initDerived(c.QuantityReceived)
	for m := 0; m < c.GetM(); m++ {
		for t := 0; t < c.GetT(); t++ {
			if c.Demand[m][t] > 0 {
				c.CommodityUsed[m] = true
				break
			}
		}
	}
}

// Site returns the depot or customer with the given global site index.
func (inst *IRPInstance) Site(v int) Site {
	if v < inst.D {
		return inst.Depots[v]
	}
	return inst.Customers[v-inst.D]
}

// CustomerAt returns the customer with the given global site index.
func (inst *IRPInstance) CustomerAt(v int) *Customer {
	return inst.Customers[v-inst.D]
}

// InitDerived prepares all derived caches. Called once after parsing.
func (inst *IRPInstance) InitDerived() {
	for _, d := range inst.Depots {
		d.InitDerived()
	}
	for _, c := range inst.Customers {
		c.InitDerived()
	}
	if inst.Solution == nil {
		inst.Solution = NewSolution(inst.T, inst.D)
	}
}

func makeMatrix(m, t int) [][]float64 {
	a := make([][]float64, m)
	for i := range a {
		a[i] = make([]float64, t)
	}
	return a
}
