package mission

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avmission/missionperf/internal/flightpoint"
	"github.com/avmission/missionperf/internal/missionerr"
	"github.com/avmission/missionperf/internal/propulsion"
	"github.com/avmission/missionperf/internal/segment"
)

// ReserveRef is a virtual part: rather than flying anything itself, it
// records multiplier·fuel_of(ref_route) once every other part has run
// (spec.md §3, §4.8 step 5).
type ReserveRef struct {
	Name       string
	RefRoute   string
	Multiplier float64
}

func (r ReserveRef) PartName() string { return r.Name }

func (r ReserveRef) RunFrom(start flightpoint.FlightPoint, _ propulsion.Model) (segment.Trace, error) {
	return segment.Trace{Points: []flightpoint.FlightPoint{start}}, nil
}

// Mission is the top-level composition of spec.md §3 (component H):
// an ordered list of routes, phases and reserve references sharing one
// ISA offset, plus the block-fuel/TOW reconciliation flags of §4.8.
type Mission struct {
	Name  string
	Parts []Runner

	ISAOffset float64

	// UseAllBlockFuel treats the first Route's range as unknown,
	// solving it so total fuel equals BlockFuel - reserve_fuel
	// (spec.md §4.8, outer loop).
	UseAllBlockFuel bool
	BlockFuel       float64

	// AdjustFuel and ComputeTOW mirror the framework-level flags of
	// §4.8: AdjustFuel implies ComputeTOW; ComputeTOW=false makes the
	// TOW solver step a no-op.
	AdjustFuel bool
	ComputeTOW bool
	OWE        float64
	Payload    float64
	TOW        float64

	Logger *zap.SugaredLogger
}

// Result is the driver's output record (spec.md §3, §4.8 step 6).
type Result struct {
	RunID       string
	Points      []flightpoint.FlightPoint
	PerPart     map[string]Totals
	TotalFuel   float64
	TotalTime   float64
	ReserveFuel float64
	BlockFuel   float64
	TOW         float64
}

// blockFuelAccuracy bounds the outer range-solving loop's fuel
// residual (kg) when UseAllBlockFuel drives a Route's range
// (spec.md §4.8 reuses the §4.7 bisection shape).
const blockFuelAccuracy = 1.0

// fuelBisectionIterations caps the outer block-fuel fixed point loop.
const fuelBisectionIterations = 40

// Run executes the mission once, applying the block-fuel/TOW
// reconciliation rules of spec.md §4.8 if requested.
func (m *Mission) Run(start flightpoint.FlightPoint, prop propulsion.Model) (Result, error) {
	if err := m.validateStructure(); err != nil {
		return Result{}, err
	}

	route, hasRoute := m.firstRoute()
	if m.UseAllBlockFuel && !hasRoute {
		return Result{}, missionerr.New(missionerr.InvalidMissionStruct, m.Name,
			"use_all_block_fuel requires at least one route part")
	}

	if m.UseAllBlockFuel {
		if err := m.solveRangeForBlockFuel(route, start, prop); err != nil {
			return Result{}, err
		}
	}

	res, err := m.runOnce(start, prop)
	if err != nil {
		return res, err
	}

	if m.AdjustFuel {
		m.ComputeTOW = true
		// res.TotalFuel already includes one reserve_fuel increment
		// (runOnce), so block_fuel = total_fuel here, not total_fuel
		// + reserve_fuel (spec.md §4.8).
		res.BlockFuel = res.TotalFuel
	} else {
		res.BlockFuel = m.BlockFuel
	}

	if m.ComputeTOW {
		res.TOW = m.OWE + m.Payload + res.BlockFuel
	} else {
		res.TOW = m.TOW
		res.BlockFuel = m.TOW - m.OWE - m.Payload
	}

	if m.Logger != nil {
		m.Logger.Infow("mission run complete",
			"mission", m.Name, "run_id", res.RunID,
			"total_fuel", res.TotalFuel, "reserve_fuel", res.ReserveFuel,
			"block_fuel", res.BlockFuel, "tow", res.TOW)
	}
	return res, nil
}

// runOnce executes every part exactly once in declaration order,
// enforcing continuity and computing reserves (spec.md §4.8 steps 4-6).
func (m *Mission) runOnce(start flightpoint.FlightPoint, prop propulsion.Model) (Result, error) {
	res := Result{
		RunID:   uuid.NewString(),
		PerPart: make(map[string]Totals, len(m.Parts)),
	}
	routeFuel := make(map[string]float64, len(m.Parts))

	points := []flightpoint.FlightPoint{start}
	current := start

	for _, part := range m.Parts {
		if ref, ok := part.(ReserveRef); ok {
			fuel, known := routeFuel[ref.RefRoute]
			if !known {
				return res, missionerr.New(missionerr.InvalidMissionStruct, m.Name,
					"reserve references unknown route \""+ref.RefRoute+"\"")
			}
			res.ReserveFuel += ref.Multiplier * fuel
			continue
		}

		if m.Logger != nil {
			m.Logger.Debugw("running part", "mission", m.Name, "part", part.PartName())
		}

		trace, err := part.RunFrom(current, prop)
		if err != nil {
			return res, missionerr.Wrap(errKindOf(err), m.Name, "part \""+part.PartName()+"\" failed", err)
		}
		if len(trace.Points) == 0 {
			continue
		}
		wasUnstarted := unstarted(current)
		if !wasUnstarted && !trace.Points[0].Continuity().Equal(current.Continuity()) {
			return res, missionerr.New(missionerr.InvalidMissionStruct, m.Name,
				"part \""+part.PartName()+"\" did not continue from the previous state")
		}

		first, last := trace.Points[0], trace.Last()
		totals := Totals{
			Distance: last.GroundDistance - first.GroundDistance,
			Duration: last.Time - first.Time,
			Fuel:     last.ConsumedFuel - first.ConsumedFuel,
		}
		res.PerPart[part.PartName()] = totals
		routeFuel[part.PartName()] = totals.Fuel

		if wasUnstarted {
			points = trace.Points
		} else {
			points = append(points, trace.Points[1:]...)
		}
		current = last
	}

	res.Points = points
	first, last := points[0], points[len(points)-1]
	res.TotalFuel = last.ConsumedFuel - first.ConsumedFuel + res.ReserveFuel
	res.TotalTime = last.Time - first.Time
	return res, nil
}

// firstRoute returns the first Route part, used as the range-unknown
// route when UseAllBlockFuel is set (spec.md §4.8's outer loop acts on
// "the main route").
func (m *Mission) firstRoute() (*Route, bool) {
	for _, part := range m.Parts {
		if r, ok := part.(*Route); ok {
			return r, true
		}
	}
	return nil, false
}

// solveRangeForBlockFuel adjusts route.Range by bisection so that a
// full mission run consumes BlockFuel - reserve_fuel of fuel, the
// outer fixed-point loop of spec.md §4.8.
func (m *Mission) solveRangeForBlockFuel(route *Route, start flightpoint.FlightPoint, prop propulsion.Model) error {
	target := func(rng float64) (float64, error) {
		route.Range = rng
		res, err := m.runOnce(start, prop)
		if err != nil {
			return 0, err
		}
		return res.TotalFuel - m.BlockFuel, nil
	}

	lo, hi := 0.1*route.Range, route.Range
	if lo <= 0 {
		lo = 1.0
	}
	residLo, err := target(lo)
	if err != nil {
		return err
	}
	residHi, err := target(hi)
	if err != nil {
		return err
	}
	for i := 0; residLo*residHi > 0 && i < fuelBisectionIterations; i++ {
		hi *= 2
		residHi, err = target(hi)
		if err != nil {
			return err
		}
	}
	if residLo*residHi > 0 {
		return missionerr.New(missionerr.BlockFuelNotConverged, m.Name,
			"no route range reconciles the given block fuel")
	}

	for i := 0; i < fuelBisectionIterations; i++ {
		mid := (lo + hi) / 2
		residMid, err := target(mid)
		if err != nil {
			return err
		}
		if m.Logger != nil {
			m.Logger.Debugw("block fuel bisection", "mission", m.Name, "iteration", i, "range", mid, "residual", residMid)
		}
		if math.Abs(residMid) <= blockFuelAccuracy {
			route.Range = mid
			return nil
		}
		if residLo*residMid <= 0 {
			hi, residHi = mid, residMid
		} else {
			lo, residLo = mid, residMid
		}
	}
	return missionerr.New(missionerr.BlockFuelNotConverged, m.Name, "block fuel bisection did not converge")
}

// validateStructure enforces spec.md §4.8 step 3: no mass-dependent
// segment kind may precede the mass input.
func (m *Mission) validateStructure() error {
	sawMassInput := false
	for _, part := range m.Parts {
		sr, ok := part.(SegmentRunner)
		if !ok {
			continue
		}
		if sr.Desc.Kind == segment.KindMassInput {
			sawMassInput = true
			continue
		}
		if !sawMassInput && massDependent(sr.Desc.Kind) {
			return missionerr.New(missionerr.InvalidMissionStruct, m.Name,
				"mass-dependent segment \""+sr.Desc.Name+"\" precedes the mass input")
		}
	}
	return nil
}

func massDependent(k segment.Kind) bool {
	switch k {
	case segment.KindStart, segment.KindTaxi:
		return false
	default:
		return true
	}
}
