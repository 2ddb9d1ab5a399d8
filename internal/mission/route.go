package mission

import (
	"fmt"
	"math"

	"github.com/avmission/missionperf/internal/flightpoint"
	"github.com/avmission/missionperf/internal/missionerr"
	"github.com/avmission/missionperf/internal/propulsion"
	"github.com/avmission/missionperf/internal/segment"
)

// Route composes climb parts, one cruise segment and descent parts so
// that the total ground distance matches Range within DistanceAccuracy
// (spec.md §4.7, component G). CruiseIsOptimal additionally walks the
// cruise entry altitude to the current max-L/D altitude each bisection
// step, per the OptimalCruise rule of §4.7.
type Route struct {
	Name        string
	Climb       []Runner
	Cruise      segment.Descriptor
	CruisePolicy segment.Policy
	CruiseIsOptimal bool
	Descent     []Runner

	Range            float64
	DistanceAccuracy float64
}

func (r *Route) PartName() string { return r.Name }

// bracketCap is the multiple of range the bisection bracket may widen
// to before the route is declared unreachable (spec.md §4.7).
const bracketCap = 10.0

func (r *Route) RunFrom(start flightpoint.FlightPoint, prop propulsion.Model) (segment.Trace, error) {
	runPrefix := func(parts []Runner, from flightpoint.FlightPoint) (segment.Trace, error) {
		full := segment.Trace{Points: []flightpoint.FlightPoint{from}}
		current := from
		for _, part := range parts {
			trace, err := part.RunFrom(current, prop)
			if err != nil {
				return full, err
			}
			if len(trace.Points) == 0 {
				continue
			}
			full.Points = append(full.Points, trace.Points[1:]...)
			current = trace.Last()
		}
		return full, nil
	}

	climbTrace, err := runPrefix(r.Climb, start)
	if err != nil {
		return climbTrace, missionerr.Wrap(missionerr.RouteUnreachable, r.Name, "climb parts failed", err)
	}
	cruiseEntry := climbTrace.Last()

	// totalDistance runs cruise for a trial cruise_distance and returns
	// the residual against r.Range after appending descent.
	totalDistance := func(cruiseDistance float64) (float64, segment.Trace, error) {
		entry := cruiseEntry
		cruiseDesc := r.Cruise
		if r.CruiseIsOptimal {
			optAlt, err := segment.InitialOptimalCruiseAltitude(entry, cruiseDesc)
			if err == nil {
				entry.Altitude = optAlt
			}
		}
		target := segment.Target{}
		for name, f := range r.Cruise.Target {
			target[name] = f
		}
		target["ground_distance"] = segment.Field{Kind: segment.Absolute, Value: entry.GroundDistance + cruiseDistance}
		cruiseDesc.Target = target
		cruiseTrace, err := segment.Run(entry, cruiseDesc, r.CruisePolicy, prop)
		if err != nil {
			return 0, segment.Trace{}, err
		}

		full := segment.Trace{Points: append(append([]flightpoint.FlightPoint{}, climbTrace.Points...), cruiseTrace.Points[1:]...)}
		descentTrace, err := runPrefix(r.Descent, cruiseTrace.Last())
		if err != nil {
			return 0, full, err
		}
		full.Points = append(full.Points, descentTrace.Points[1:]...)

		total := full.Last().GroundDistance - start.GroundDistance
		return total - r.Range, full, nil
	}

	lo, hi := 0.5*r.Range, r.Range
	residLo, traceLo, err := totalDistance(lo)
	if err != nil {
		return traceLo, missionerr.Wrap(missionerr.RouteUnreachable, r.Name, "climb+cruise+descent infeasible at lower bracket", err)
	}
	residHi, traceHi, err := totalDistance(hi)
	if err != nil {
		return traceHi, missionerr.Wrap(missionerr.RouteUnreachable, r.Name, "climb+cruise+descent infeasible at upper bracket", err)
	}

	// climb+descent alone may already close the range within tolerance
	// (e.g. a short route with no meaningful cruise leg); skip the
	// bracket-widening and bisection passes entirely in that case.
	if math.Abs(residLo) <= r.DistanceAccuracy {
		return traceLo, nil
	}
	if math.Abs(residHi) <= r.DistanceAccuracy {
		return traceHi, nil
	}

	for residLo*residHi > 0 {
		if hi >= bracketCap*r.Range {
			return traceHi, missionerr.New(missionerr.RouteUnreachable, r.Name,
				fmt.Sprintf("no cruise distance in [0, %g] closes range %g m", bracketCap*r.Range, r.Range))
		}
		hi = math.Min(2*hi, bracketCap*r.Range)
		residHi, traceHi, err = totalDistance(hi)
		if err != nil {
			return traceHi, missionerr.Wrap(missionerr.RouteUnreachable, r.Name, "climb+cruise+descent infeasible while widening bracket", err)
		}
	}

	var best segment.Trace
	for i := 0; i < 80; i++ {
		mid := (lo + hi) / 2
		residMid, traceMid, err := totalDistance(mid)
		if err != nil {
			return traceMid, missionerr.Wrap(missionerr.RouteUnreachable, r.Name, "cruise infeasible during bisection", err)
		}
		best = traceMid
		if math.Abs(residMid) <= r.DistanceAccuracy {
			return traceMid, nil
		}
		if residLo*residMid <= 0 {
			hi, residHi = mid, residMid
		} else {
			lo, residLo = mid, residMid
		}
	}
	return best, missionerr.New(missionerr.RouteUnreachable, r.Name, "route distance bisection did not converge")
}

// FuelConsumed totals the fuel burned across a route's trace, for
// reserve computation (spec.md §4.8 step 5).
func FuelConsumed(trace segment.Trace) float64 {
	if len(trace.Points) == 0 {
		return 0
	}
	return trace.Last().ConsumedFuel - trace.Points[0].ConsumedFuel
}
