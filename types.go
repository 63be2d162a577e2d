package irp

import "time"

const (
	ActionAdd    = "ADD"
	ActionDelete = "DELETE"

	OrderRandom  = "RANDOM"
	OrderWorst   = "WORST"
	OrderLongest = "LONGEST"

	StratLS   = "LS"
	StratLNS  = "LNS"
	StratFull = "FULL"
)

// Commodity is one good that can be shipped. Length is the 1-D space one
// unit occupies in a vehicle.
type Commodity struct {
	Index  int     `json:"index"`
	Length float64 `json:"length"`
}

// IRPInstance aggregates the static problem data together with the current
// solution. The per-site inventory/quantity arrays are derived caches of the
// solution and are maintained by the updater, never by hand.
type IRPInstance struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
	Type    string `json:"type"`

	T int `json:"horizon"`
	D int `json:"depot_count"`
	C int `json:"customer_count"`
	M int `json:"commodity_count"`

	VehicleCapacity float64 `json:"vehicle_capacity"`
	KmCost          float64 `json:"km_cost"`
	VehicleCost     float64 `json:"vehicle_cost"`
	StopCost        float64 `json:"stop_cost"`
	HoursPerDay     float64 `json:"transport_hours_per_day"`
	MaxStops        int     `json:"max_stops"`

	Commodities []Commodity `json:"commodities"`
	Depots      []*Depot    `json:"depots"`
	Customers   []*Customer `json:"customers"`

	// Dist and Duration are site-by-site matrices indexed by global site
	// index (depots 0..D-1, customers D..D+C-1). Dist is in km, Duration
	// in transport hours.
	Dist     [][]float64 `json:"distances"`
	Duration [][]float64 `json:"durations"`

	Solution *Solution `json:"solution,omitempty"`
	Stats    *Stats    `json:"stats,omitempty"`
}

// Options controls the search. All tolerances are relative unless noted.
type Options struct {
	Seed         int64   `json:"seed"`
	TimeLimit    float64 `json:"time_limit"`     // outer wall-clock budget, seconds
	SubTimeLimit float64 `json:"sub_time_limit"` // per MILP solve, seconds
	MIPGap       float64 `json:"mip_gap"`

	NIter         int    `json:"niter"`          // entities per reinsertion sweep
	CustomerOrder string `json:"customer_order"` // RANDOM or WORST
	CommodityOrd  string `json:"commodity_order"`

	SampleProb float64 `json:"sample_prob"` // pair sampling in insert/swap

	MergeTol            float64 `json:"merge_tol"` // absolute gain noise floor
	CustomerRegressTol  float64 `json:"customer_regress_tol"`
	CommodityRegressTol float64 `json:"commodity_regress_tol"`
	ImproveTol          float64 `json:"improve_tol"` // LNS convergence threshold

	Reorder bool `json:"reorder"` // enable the brute-force reorder post-pass

	LogLevel int `json:"log_level"`

	Solver FlowSolver `json:"-"`
}

// DefaultOptions returns the parameter set used by the solver driver.
func DefaultOptions() Options {
	return Options{
		Seed:                1,
		TimeLimit:           3600,
		SubTimeLimit:        20,
		MIPGap:              0.01,
		NIter:               10,
		CustomerOrder:       OrderRandom,
		CommodityOrd:        OrderLongest,
		SampleProb:          0.25,
		MergeTol:            0.5,
		CustomerRegressTol:  0.01,
		CommodityRegressTol: 0.05,
		ImproveTol:          0.001,
		LogLevel:            2,
	}
}

// MoveStats counts one neighborhood's outcomes.
type MoveStats struct {
	Applied int     `json:"applied"`
	Aborted int     `json:"aborted"`
	Gain    float64 `json:"gain"`
}

func (m *MoveStats) record(gain float64, applied bool) {
	if applied {
		m.Applied++
		m.Gain += gain
	} else {
		m.Aborted++
	}
}

// Stats is the result record returned by every entry point. It is threaded
// mutably through the whole call chain.
type Stats struct {
	Merge         MoveStats `json:"merge"`
	MergeMultiday MoveStats `json:"merge_multiday"`
	DeleteRoute   MoveStats `json:"delete_route"`
	Insert        MoveStats `json:"insert"`
	Swap          MoveStats `json:"swap"`
	TwoOpt        MoveStats `json:"two_opt"`
	InsertMD      MoveStats `json:"insert_multidepot"`
	SwapMD        MoveStats `json:"swap_multidepot"`
	TwoOptMD      MoveStats `json:"two_opt_multidepot"`
	DayChange     MoveStats `json:"day_change"`
	Reorder       MoveStats `json:"reorder"`

	CustomerReinsert  MoveStats `json:"customer_reinsertion"`
	CommodityReinsert MoveStats `json:"commodity_reinsertion"`
	Refill            MoveStats `json:"refill"`

	LocalSearchTime time.Duration `json:"local_search_time"`
	CustomerTime    time.Duration `json:"customer_time"`
	CommodityTime   time.Duration `json:"commodity_time"`
	RefillTime      time.Duration `json:"refill_time"`

	InitialCost float64 `json:"initial_cost"`
	FinalCost   float64 `json:"final_cost"`
	LBound      float64 `json:"lbound"`
	Rounds      int     `json:"rounds"`

	Time    string  `json:"time"`
	System  SysInfo `json:"system"`
	Comment string  `json:"comment"`
}

// elapsed returns the total accumulated phase time.
func (s *Stats) elapsed() time.Duration {
	return s.LocalSearchTime + s.CustomerTime + s.CommodityTime + s.RefillTime
}

// SysInfo saves the basic system information
type SysInfo struct {
	Platform string
	CPU      string
	RAM      string
}
